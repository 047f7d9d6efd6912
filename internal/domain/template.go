package domain

import "time"

// Default session hours written into new templates.
const (
	templateStart = "6:00 PM"
	templateEnd   = "8:00 PM"
)

// SessionTemplate is a blank session log pre-filled for one location. Field
// order follows the order in which the keys are written to YAML.
type SessionTemplate struct {
	Location    string            `yaml:"location"`
	Style       string            `yaml:"style"`
	Date        string            `yaml:"date"`
	Description string            `yaml:"description"`
	Time        TemplateTime      `yaml:"time"`
	Climbers    []string          `yaml:"climbers,omitempty"`
	Shoes       []string          `yaml:"shoes,omitempty"`
	Injury      TemplateInjury    `yaml:"injury"`
	Media       []string          `yaml:"media"`
	Counter     []TemplateCounter `yaml:"counter"`
	Projects    []any             `yaml:"projects"`
}

// TemplateTime holds the session hours of a template.
type TemplateTime struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// TemplateInjury is the injury block with its placeholder description.
type TemplateInjury struct {
	IsTrue      bool   `yaml:"isTrue"`
	Description string `yaml:"description"`
}

// TemplateCounter is a zeroed tally for one grade.
type TemplateCounter struct {
	Grade    string `yaml:"grade"`
	Onsight  *int   `yaml:"onsight,omitempty"`
	Flash    int    `yaml:"flash"`
	Redpoint int    `yaml:"redpoint"`
	Repeat   int    `yaml:"repeat"`
	Attempts int    `yaml:"attempts"`
}

// NewSessionTemplate builds a template for loc on date with one zeroed
// counter per catalog grade. Outdoor templates track onsights. The template
// validates and normalizes as an empty session once written.
func NewSessionTemplate(loc Location, date time.Time, climbers, shoes []string) SessionTemplate {
	style := "indoor bouldering"
	if loc.IsOutdoor {
		style = "outdoor bouldering"
	}

	counters := make([]TemplateCounter, 0, len(loc.Grading))
	for _, grade := range loc.Grading {
		c := TemplateCounter{Grade: grade}
		if loc.IsOutdoor {
			c.Onsight = intPtr(0)
		}
		counters = append(counters, c)
	}

	return SessionTemplate{
		Location: loc.Name,
		Style:    style,
		Date:     date.Format(DateLayout),
		Time:     TemplateTime{Start: templateStart, End: templateEnd},
		Climbers: climbers,
		Shoes:    shoes,
		Injury:   TemplateInjury{Description: InjuryPlaceholder},
		Media:    []string{},
		Counter:  counters,
		Projects: []any{},
	}
}
