package domain

// Project is one session's occurrence of a named climb worked across many
// sessions. Besides its own tally it carries the cumulative tally of every
// occurrence up to and including this one, maintained by the Ledger.
type Project struct {
	Counter

	Name     string
	Location string // area within the gym or crag, e.g. "cave"
	Style    []string
	Notes    *string
	Media    []string
	Reset    bool

	isLast     bool
	cumulative Totals
}

// NewProject builds an occurrence whose cumulative tally starts as its own.
func NewProject(counter Counter, name, location string, style []string, notes *string, media []string, reset bool) *Project {
	return &Project{
		Counter:    counter,
		Name:       name,
		Location:   location,
		Style:      style,
		Notes:      notes,
		Media:      media,
		Reset:      reset,
		cumulative: counter.Totals(),
	}
}

// IsLast reports whether this is the latest known occurrence of the project.
func (p *Project) IsLast() bool { return p.isLast }

// SetIsLast is called by the Ledger when the latest occurrence changes.
func (p *Project) SetIsLast(last bool) { p.isLast = last }

// Counts returns this occurrence's own tally.
func (p *Project) Counts() Totals { return p.Counter.Totals() }

// Cumulative returns the running tally up to this occurrence.
func (p *Project) Cumulative() Totals { return p.cumulative }

// SetCumulative overwrites the running tally. Only the Ledger calls it.
func (p *Project) SetCumulative(t Totals) { p.cumulative = t }

// ProjectDocument is the serialized form of a Project occurrence.
type ProjectDocument struct {
	Name      string   `json:"name"`
	Location  string   `json:"location"`
	Style     []string `json:"style"`
	Grade     string   `json:"grade"`
	Onsight   *int     `json:"onsight,omitempty"`
	Flash     int      `json:"flash"`
	Redpoint  int      `json:"redpoint"`
	Repeat    int      `json:"repeat"`
	Attempts  int      `json:"attempts"`
	Completed int      `json:"completed"`
	Total     int      `json:"total"`
	Notes     *string  `json:"notes"`
	Media     []string `json:"media"`

	CumulativeOnsight   *int `json:"cumulative_onsight,omitempty"`
	CumulativeFlash     int  `json:"cumulative_flash"`
	CumulativeRedpoint  int  `json:"cumulative_redpoint"`
	CumulativeRepeat    int  `json:"cumulative_repeat"`
	CumulativeAttempts  int  `json:"cumulative_attempts"`
	CumulativeCompleted int  `json:"cumulative_completed"`
	CumulativeTotal     int  `json:"cumulative_total"`

	IsCompleted bool `json:"is_completed"`
	IsLast      bool `json:"is_last"`
	Reset       bool `json:"reset"`

	Session *SessionSummary `json:"session,omitempty"`
}

// Document serializes the occurrence together with its cumulative tally.
func (p *Project) Document() ProjectDocument {
	doc := ProjectDocument{
		Name:      p.Name,
		Location:  p.Location,
		Style:     p.Style,
		Grade:     p.Grade,
		Onsight:   p.Onsight.ptr(),
		Flash:     p.Flash,
		Redpoint:  p.Redpoint,
		Repeat:    p.Repeat,
		Attempts:  p.Attempts,
		Completed: p.Completed,
		Total:     p.Total,
		Notes:     p.Notes,
		Media:     p.Media,

		CumulativeFlash:     p.cumulative.Flash,
		CumulativeRedpoint:  p.cumulative.Redpoint,
		CumulativeRepeat:    p.cumulative.Repeat,
		CumulativeAttempts:  p.cumulative.Attempts,
		CumulativeCompleted: p.cumulative.Completed,
		CumulativeTotal:     p.cumulative.Total,

		IsCompleted: p.cumulative.Completed > 0,
		IsLast:      p.isLast,
		Reset:       p.Reset,
	}
	// Onsights from earlier occurrences still count toward cumulative_completed.
	if p.Onsight.Set || p.cumulative.Onsight > 0 {
		onsight := p.cumulative.Onsight
		doc.CumulativeOnsight = &onsight
	}
	return doc
}
