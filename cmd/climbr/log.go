package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/climbr-etl/internal/adapter/sessionfile"
	"github.com/couchcryptid/climbr-etl/internal/adapter/tz"
	"github.com/couchcryptid/climbr-etl/internal/config"
	"github.com/couchcryptid/climbr-etl/internal/domain"
)

func newLogCmd() *cobra.Command {
	var (
		date  string
		name  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "log [gym]",
		Short: "Create a new session log from a template",
		Long: "Create a pre-filled session log in the input directory. The gym is a\n" +
			"shorthand such as kanata, gatineau, coyote or hog's back; it defaults\n" +
			"to the profile's default_gym, then to " + domain.HomeLocation + ".",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			profile, err := config.LoadProfile(cfg.ProfilePath)
			if err != nil {
				return err
			}

			gym := profile.DefaultGym
			if len(args) == 1 {
				gym = args[0]
			}
			loc, err := resolveGym(gym)
			if err != nil {
				return err
			}

			day, err := sessionDate(date, loc, tz.NewResolver())
			if err != nil {
				return err
			}
			dateStr := day.Format(domain.DateLayout)

			tmpl := domain.NewSessionTemplate(loc, day, profile.Climbers, profile.Shoes)
			path, err := sessionfile.WriteTemplate(cfg.InputDir, sessionfile.TemplateName(dateStr, gym, name), tmpl, force)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "session date as YYYY-MM-DD (default today at the gym)")
	cmd.Flags().StringVar(&name, "name", "", "file name for the new log, overriding the date-based name")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing log")
	return cmd
}

func resolveGym(gym string) (domain.Location, error) {
	if gym == "" {
		return domain.FindLocation(domain.HomeLocation)
	}
	return domain.LookupLocationAlias(gym)
}

// sessionDate parses an explicit date, or returns today in the gym's
// timezone so late sessions are not filed under tomorrow's UTC date.
func sessionDate(date string, loc domain.Location, zones domain.TimezoneResolver) (time.Time, error) {
	if date != "" {
		return domain.ParseDate(date)
	}
	zone, err := zones.Zone(loc.Lat, loc.Lon)
	if err != nil {
		return time.Time{}, &domain.TimezoneError{Location: loc.Name, Err: err}
	}
	return domain.Today(zone), nil
}
