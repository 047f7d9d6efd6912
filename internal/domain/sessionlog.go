package domain

// RawSessionLog is one session file as decoded, before validation.
type RawSessionLog struct {
	Path   string
	Fields map[string]any
}

// SessionLog is a raw session log that passed validation. Field shapes are
// guaranteed; values are not yet normalized against the catalog.
type SessionLog struct {
	Source string // file the log was read from, for error reporting

	Location    string
	Style       string
	Description *string
	Date        string
	Start       string
	End         string
	Climbers    []string
	Injury      *Injury
	Media       []string
	Counters    []CounterLog
	Projects    []ProjectLog
	Shoes       Shoes
}

// IsOutdoor reports whether the logged style mentions outdoor climbing, in
// which case every counter must track onsights.
func (l SessionLog) IsOutdoor() bool {
	return styleIsOutdoor(l.Style)
}

// CounterLog is one logged grade tally.
type CounterLog struct {
	Grade    string
	Onsight  OptionalCount
	Flash    int
	Redpoint int
	Repeat   int
	Attempts int
}

// Counter converts the tally into a Counter.
func (c CounterLog) Counter() Counter {
	return NewCounter(c.Grade, c.Flash, c.Redpoint, c.Repeat, c.Attempts, c.Onsight)
}

// ProjectLog is one logged project occurrence.
type ProjectLog struct {
	CounterLog

	Name     string
	Location string
	Style    []string
	Notes    *string
	Media    []string
	Reset    bool
}

// Shoes holds the shoes field as written: either one string, possibly naming
// several pairs separated by "," or "/", or a list.
type Shoes struct {
	Text string
	List []string
}

// Injury records whether the climber got hurt during the session.
type Injury struct {
	IsTrue      bool    `json:"isTrue"`
	Description *string `json:"description"`
}
