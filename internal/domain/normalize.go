package domain

import (
	"strings"
	"time"
)

// InjuryPlaceholder is the description written into new session templates.
// A log that still carries it with isTrue false recorded no injury.
const InjuryPlaceholder = "Add a description of injury here"

// NormalizedSession is a validated log resolved against the catalog, with
// every optional field defaulted and times placed in the location's zone.
type NormalizedSession struct {
	Source string

	Location    Location
	Style       []string
	Description *string
	Date        time.Time // zoned session start
	Start       time.Time
	End         time.Time
	Climbers    []string
	Injury      Injury
	Media       []string
	Shoes       []string
	Counters    []Counter
	Projects    []*Project
}

// NormalizeSessionLog resolves the log's location, splits its style and shoe
// lists, fills a zero counter for every catalog grade the log omitted and
// resolves start and end times in the timezone at the location.
func NormalizeSessionLog(log SessionLog, zones TimezoneResolver) (NormalizedSession, error) {
	loc, err := FindLocation(log.Location)
	if err != nil {
		return NormalizedSession{}, err
	}

	date, err := ParseDate(log.Date)
	if err != nil {
		return NormalizedSession{}, err
	}
	startOfDay, err := ParseTimeOfDay(log.Start)
	if err != nil {
		return NormalizedSession{}, err
	}
	endOfDay, err := ParseTimeOfDay(log.End)
	if err != nil {
		return NormalizedSession{}, err
	}

	tz, err := zones.Zone(loc.Lat, loc.Lon)
	if err != nil {
		return NormalizedSession{}, &TimezoneError{Location: loc.Name, Err: err}
	}
	start := startOfDay.On(date, tz)
	end := endOfDay.On(date, tz)
	if end.Before(start) {
		// Ends after midnight.
		end = endOfDay.On(date.AddDate(0, 0, 1), tz)
	}

	projects := make([]*Project, 0, len(log.Projects))
	for _, p := range log.Projects {
		projects = append(projects, NewProject(p.Counter(), p.Name, p.Location, p.Style, p.Notes, p.Media, p.Reset))
	}

	return NormalizedSession{
		Source:      log.Source,
		Location:    loc,
		Style:       splitList(log.Style, ","),
		Description: log.Description,
		Date:        start,
		Start:       start,
		End:         end,
		Climbers:    log.Climbers,
		Injury:      normalizeInjury(log.Injury),
		Media:       log.Media,
		Shoes:       normalizeShoes(log.Shoes),
		Counters:    fillGrades(log.Counters, loc),
		Projects:    projects,
	}, nil
}

// fillGrades returns one counter per grade of the location's scale, in scale
// order, using the logged tally where one exists. Logged grades outside the
// scale are kept after the scale grades.
func fillGrades(logged []CounterLog, loc Location) []Counter {
	byGrade := make(map[string]CounterLog, len(logged))
	for _, c := range logged {
		byGrade[c.Grade] = c
	}

	counters := make([]Counter, 0, len(loc.Grading)+len(logged))
	for _, grade := range loc.Grading {
		if c, ok := byGrade[grade]; ok {
			counters = append(counters, c.Counter())
			continue
		}
		var onsight OptionalCount
		if loc.IsOutdoor {
			onsight = Some(0)
		}
		counters = append(counters, NewCounter(grade, 0, 0, 0, 0, onsight))
	}
	for _, c := range logged {
		if !loc.HasGrade(c.Grade) {
			counters = append(counters, c.Counter())
		}
	}
	return counters
}

func normalizeInjury(in *Injury) Injury {
	if in == nil {
		return Injury{}
	}
	if !in.IsTrue && in.Description != nil && *in.Description == InjuryPlaceholder {
		return Injury{}
	}
	return *in
}

func normalizeShoes(s Shoes) []string {
	if s.List != nil {
		return s.List
	}
	if strings.TrimSpace(s.Text) == "" {
		return nil
	}
	return splitList(s.Text, ",/")
}

// splitList splits s on any of the separator runes and trims each part,
// dropping empty ones.
func splitList(s, seps string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
