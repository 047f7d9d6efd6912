package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
)

// Profile holds the personal defaults written into new session templates.
//
//	default_gym = "kanata"
//	shoes = ["La Sportiva Solution", "Scarpa Drago"]
//	climbers = ["Alex", "Sam"]
type Profile struct {
	DefaultGym string   `toml:"default_gym"`
	Shoes      []string `toml:"shoes"`
	Climbers   []string `toml:"climbers"`
}

// LoadProfile decodes the TOML profile at path. An empty path or a missing
// file yields an empty profile.
func LoadProfile(path string) (Profile, error) {
	var p Profile
	if path == "" {
		return p, nil
	}
	md, err := toml.DecodeFile(path, &p)
	if errors.Is(err, fs.ErrNotExist) {
		return Profile{}, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("load profile %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Profile{}, fmt.Errorf("load profile %s: unknown key %q", path, undecoded[0].String())
	}
	return p, nil
}
