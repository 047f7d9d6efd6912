package domain

import "strings"

// kidsGradeMarker identifies youth grades in scales that track age groups.
const kidsGradeMarker = "Kids"

// EnhanceSession derives the session duration and ascent totals. At
// locations tracking age groups every counter is also routed into the kids
// or adult sub-total by its grade label.
func EnhanceSession(n NormalizedSession) *Session {
	s := &Session{
		Source:      n.Source,
		Location:    n.Location,
		Style:       n.Style,
		Description: n.Description,
		Date:        n.Date,
		Start:       n.Start,
		End:         n.End,
		Duration:    n.End.Sub(n.Start),
		Climbers:    n.Climbers,
		Injury:      n.Injury,
		Media:       n.Media,
		Shoes:       n.Shoes,
		Counters:    n.Counters,
		Projects:    n.Projects,
		ProcessedAt: clock.Now().UTC(),
	}

	var kids, adult Totals
	for _, c := range n.Counters {
		t := c.Totals()
		s.Totals = s.Totals.Add(t)
		if !n.Location.TracksAgeGroups {
			continue
		}
		if strings.Contains(c.Grade, kidsGradeMarker) {
			kids = kids.Add(t)
		} else {
			adult = adult.Add(t)
		}
	}
	if n.Location.TracksAgeGroups {
		s.Kids = &kids
		s.Adult = &adult
	}
	return s
}
