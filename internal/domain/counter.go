package domain

// OptionalCount is a tally whose presence carries meaning: an unset onsight
// count means the location does not track onsights, which is different from
// zero onsights logged.
type OptionalCount struct {
	N   int
	Set bool
}

// Some returns a present count.
func Some(n int) OptionalCount {
	return OptionalCount{N: n, Set: true}
}

// OrZero returns the count, or 0 when unset.
func (o OptionalCount) OrZero() int {
	if !o.Set {
		return 0
	}
	return o.N
}

// ptr returns nil for an unset count so it can be omitted from documents.
func (o OptionalCount) ptr() *int {
	if !o.Set {
		return nil
	}
	n := o.N
	return &n
}

// Totals is the fixed seven-field tally shared by counters, projects and
// session aggregates. Onsight is already collapsed to zero when untracked.
type Totals struct {
	Onsight   int
	Flash     int
	Redpoint  int
	Repeat    int
	Attempts  int
	Completed int
	Total     int
}

// Add returns the elementwise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Onsight:   t.Onsight + o.Onsight,
		Flash:     t.Flash + o.Flash,
		Redpoint:  t.Redpoint + o.Redpoint,
		Repeat:    t.Repeat + o.Repeat,
		Attempts:  t.Attempts + o.Attempts,
		Completed: t.Completed + o.Completed,
		Total:     t.Total + o.Total,
	}
}

// Counter tallies the ascents of one grade within one session.
type Counter struct {
	Grade     string
	Onsight   OptionalCount
	Flash     int
	Redpoint  int
	Repeat    int
	Attempts  int
	Completed int
	Total     int
}

// NewCounter derives Completed and Total from the ascent counts. Counts are
// expected to be non-negative; no upper bound is enforced.
func NewCounter(grade string, flash, redpoint, repeat, attempts int, onsight OptionalCount) Counter {
	completed := onsight.OrZero() + flash + redpoint + repeat
	return Counter{
		Grade:     grade,
		Onsight:   onsight,
		Flash:     flash,
		Redpoint:  redpoint,
		Repeat:    repeat,
		Attempts:  attempts,
		Completed: completed,
		Total:     completed + attempts,
	}
}

// Totals returns the counter as a seven-field tally.
func (c Counter) Totals() Totals {
	return Totals{
		Onsight:   c.Onsight.OrZero(),
		Flash:     c.Flash,
		Redpoint:  c.Redpoint,
		Repeat:    c.Repeat,
		Attempts:  c.Attempts,
		Completed: c.Completed,
		Total:     c.Total,
	}
}

// CounterDocument is the serialized form of a Counter.
type CounterDocument struct {
	Grade     string          `json:"grade"`
	Onsight   *int            `json:"onsight,omitempty"`
	Flash     int             `json:"flash"`
	Redpoint  int             `json:"redpoint"`
	Repeat    int             `json:"repeat"`
	Attempts  int             `json:"attempts"`
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
	Session   *SessionSummary `json:"session,omitempty"`
}

// Document serializes the counter. Onsight is emitted only when it was
// supplied at construction, even if zero.
func (c Counter) Document() CounterDocument {
	return CounterDocument{
		Grade:     c.Grade,
		Onsight:   c.Onsight.ptr(),
		Flash:     c.Flash,
		Redpoint:  c.Redpoint,
		Repeat:    c.Repeat,
		Attempts:  c.Attempts,
		Completed: c.Completed,
		Total:     c.Total,
	}
}
