package domain

import (
	"slices"
	"strings"
)

// Location is a climbing gym or crag with its own grading scale.
type Location struct {
	Name      string
	Address   string
	Lat       float64
	Lon       float64
	Grading   []string
	IsOutdoor bool

	// TracksAgeGroups splits session totals into kids and adult buckets,
	// routing grades labelled "Kids" to the kids bucket.
	TracksAgeGroups bool
}

// Coordinates returns the location as [lon, lat], the GeoJSON point order.
func (l Location) Coordinates() []float64 {
	return []float64{l.Lon, l.Lat}
}

// HasGrade reports whether grade belongs to the location's grading scale.
func (l Location) HasGrade(grade string) bool {
	return slices.Contains(l.Grading, grade)
}

var (
	// VScale is the Hueco V scale used at outdoor bouldering areas.
	VScale = []string{
		"VB", "V0-", "V0", "V0+", "V1", "V2", "V3", "V4", "V5", "V6",
		"V7", "V8", "V9", "V10", "V11", "V12", "V13", "V14", "V15", "V16", "V17",
	}

	// FontScale is the Fontainebleau bouldering scale.
	FontScale = []string{
		"3", "4-", "4", "4+", "5", "5+", "6A", "6A+", "6B", "6B+", "6C", "6C+",
		"7A", "7A+", "7B", "7B+", "7C", "7C+", "8A", "8A+", "8B", "8B+", "8C", "8C+", "9A",
	}

	// AltitudeScale is the range grading of the Altitude gyms, with a parallel
	// set of kids circuits and two non-graded categories.
	AltitudeScale = []string{
		"VB/V0", "V0/V1", "V1/V2", "V2/V3", "V3/V4", "V4/V5", "V5/V6", "V6/V7", "V7/V8", "V8/V9", "V9+",
		"Kids - VB/V0", "Kids - V0/V1", "Kids - V1/V2", "Kids - V2/V3", "Kids - V3/V4", "Kids - V4/V5",
		"Kids - V5/V6", "Kids - V6/V7", "Kids - V7/V8", "Kids - V8/V9", "Kids - V9+",
		"competition", "routesetting-squad",
	}

	// CoyoteScale is the colour circuit grading at Coyote Rock Gym.
	CoyoteScale = []string{"White", "Orange", "Red", "Blue", "Green", "Purple", "Black", "Ungraded"}
)

// catalog is the fixed set of known locations. It is never mutated.
var catalog = []Location{
	{
		Name:            "Altitude Kanata",
		Address:         "0E5, 501 Palladium Dr, Kanata, ON K2V 0E5",
		Lat:             45.297970,
		Lon:             -75.911150,
		Grading:         AltitudeScale,
		TracksAgeGroups: true,
	},
	{
		Name:    "Altitude Gatineau",
		Address: "35 Boulevard Saint-Raymond, Gatineau, QC J8Y 1R5",
		Lat:     45.446861,
		Lon:     -75.736801,
		Grading: AltitudeScale,
	},
	{
		Name:      "Hog's Back Falls",
		Address:   "Hog's Back Falls, Ottawa, ON",
		Lat:       45.3710517,
		Lon:       -75.698022,
		Grading:   VScale,
		IsOutdoor: true,
	},
	{
		Name:      "Calabogie",
		Address:   "Greater Madawaska, Ontario",
		Lat:       45.264209,
		Lon:       -76.813545,
		Grading:   VScale,
		IsOutdoor: true,
	},
	{
		Name:      "Lac Beauchamp",
		Address:   "Lac Beauchamp, Gatineau, QC",
		Lat:       45.490288,
		Lon:       -75.617274,
		Grading:   VScale,
		IsOutdoor: true,
	},
	{
		Name:    "Coyote Rock Gym",
		Address: "1737B St Laurent Blvd, Ottawa, ON K1G 3V4",
		Lat:     45.406130,
		Lon:     -75.625500,
		Grading: CoyoteScale,
	},
}

// locationAliases maps the shorthands accepted by the log template command to
// catalog names.
var locationAliases = map[string]string{
	"kanata":            "Altitude Kanata",
	"altitude kanata":   "Altitude Kanata",
	"gatineau":          "Altitude Gatineau",
	"altitude gatineau": "Altitude Gatineau",
	"coyote":            "Coyote Rock Gym",
	"coyote rock gym":   "Coyote Rock Gym",
	"calabogie":         "Calabogie",
	"hogs back":         "Hog's Back Falls",
	"hog's back":        "Hog's Back Falls",
	"lac beauchamp":     "Lac Beauchamp",
}

// HomeLocation is used when no gym is given to the log template command.
const HomeLocation = "Altitude Kanata"

// FindLocation returns the catalog entry whose name matches exactly.
func FindLocation(name string) (Location, error) {
	for _, loc := range catalog {
		if loc.Name == name {
			loc.Grading = slices.Clone(loc.Grading)
			return loc, nil
		}
	}
	return Location{}, &LocationNotFoundError{Name: name, Known: LocationNames()}
}

// LocationNames lists the catalog names in registry order.
func LocationNames() []string {
	names := make([]string, 0, len(catalog))
	for _, loc := range catalog {
		names = append(names, loc.Name)
	}
	return names
}

// LookupLocationAlias resolves a case-insensitive shorthand or full name.
func LookupLocationAlias(alias string) (Location, error) {
	key := strings.ToLower(strings.TrimSpace(alias))
	if name, ok := locationAliases[key]; ok {
		return FindLocation(name)
	}
	for _, loc := range catalog {
		if strings.EqualFold(loc.Name, key) {
			return FindLocation(loc.Name)
		}
	}
	return Location{}, &LocationNotFoundError{Name: alias, Known: LocationNames()}
}
