// Package tz resolves IANA timezones from coordinates with an embedded
// timezone shape table, so no network lookup is needed.
package tz

import (
	"fmt"
	"sync"
	"time"
	_ "time/tzdata" // zone rules for hosts without a zoneinfo database

	"github.com/bradfitz/latlong"
)

// Resolver implements domain.TimezoneResolver. Loaded locations are cached
// by zone name.
type Resolver struct {
	mu    sync.Mutex
	zones map[string]*time.Location
}

// NewResolver creates an empty Resolver.
func NewResolver() *Resolver {
	return &Resolver{zones: make(map[string]*time.Location)}
}

// Zone returns the timezone observed at lat, lon.
func (r *Resolver) Zone(lat, lon float64) (*time.Location, error) {
	name := latlong.LookupZoneName(lat, lon)
	if name == "" {
		return nil, fmt.Errorf("no timezone found at %.6f,%.6f", lat, lon)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if loc, ok := r.zones[name]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", name, err)
	}
	r.zones[name] = loc
	return loc, nil
}
