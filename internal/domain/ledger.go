package domain

import (
	"slices"
	"sort"
)

// Ledger tracks the latest occurrence of every project name while sessions
// are folded in date order. It is the only code that sets a project's
// cumulative tally or its IsLast flag.
type Ledger struct {
	latest map[string]*Project
	order  []string
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{latest: make(map[string]*Project)}
}

// Record adds an occurrence. Its cumulative tally becomes the previous
// occurrence's cumulative tally plus its own counts, unless it is marked
// Reset, in which case counting restarts from its own counts. The previous
// occurrence stops being the latest.
func (l *Ledger) Record(p *Project) {
	prev, ok := l.latest[p.Name]
	if !ok {
		l.order = append(l.order, p.Name)
	}
	if ok {
		if !p.Reset {
			p.SetCumulative(prev.Cumulative().Add(p.Counts()))
		} else {
			p.SetCumulative(p.Counts())
		}
		prev.SetIsLast(false)
	}
	p.SetIsLast(true)
	l.latest[p.Name] = p
}

// Fold sorts sessions by date, keeping file order for equal dates, and
// records every project occurrence in that order. It returns the sorted
// sessions; the input slice is not reordered.
func (l *Ledger) Fold(sessions []*Session) []*Session {
	sorted := slices.Clone(sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	for _, s := range sorted {
		for _, p := range s.Projects {
			l.Record(p)
		}
	}
	return sorted
}

// Latest returns the most recent occurrence of the named project.
func (l *Ledger) Latest(name string) (*Project, bool) {
	p, ok := l.latest[name]
	return p, ok
}

// Names lists project names in the order they were first recorded.
func (l *Ledger) Names() []string {
	return slices.Clone(l.order)
}
