package domain

import "time"

// TimezoneResolver maps coordinates to the IANA zone observed there.
type TimezoneResolver interface {
	Zone(lat, lon float64) (*time.Location, error)
}

// ZoneFunc adapts a plain function to TimezoneResolver.
type ZoneFunc func(lat, lon float64) (*time.Location, error)

// Zone calls f(lat, lon).
func (f ZoneFunc) Zone(lat, lon float64) (*time.Location, error) {
	return f(lat, lon)
}

// FixedZone resolves every coordinate to loc.
func FixedZone(loc *time.Location) TimezoneResolver {
	return ZoneFunc(func(float64, float64) (*time.Location, error) {
		return loc, nil
	})
}
