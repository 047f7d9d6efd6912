package domain

import (
	"fmt"
	"time"
)

// Session is a fully derived climbing session, the aggregate root of the
// domain. Its Projects are mutated only by a Ledger fold.
type Session struct {
	Source string

	Location    Location
	Style       []string
	Description *string
	Date        time.Time
	Start       time.Time
	End         time.Time
	Duration    time.Duration
	Climbers    []string
	Injury      Injury
	Media       []string
	Shoes       []string
	Counters    []Counter
	Projects    []*Project

	Totals Totals
	Kids   *Totals // set only for locations tracking age groups
	Adult  *Totals

	Weather       *Weather
	WeatherSource string
	ProcessedAt   time.Time
}

// BuildSession runs a raw session log through validation, normalization and
// enhancement.
func BuildSession(raw map[string]any, zones TimezoneResolver) (*Session, error) {
	log, err := ValidateSessionLog(raw)
	if err != nil {
		return nil, err
	}
	return buildFromLog(log, zones)
}

// BuildSessionFrom is BuildSession for a session file, recording its path.
func BuildSessionFrom(raw RawSessionLog, zones TimezoneResolver) (*Session, error) {
	log, err := ValidateSessionLog(raw.Fields)
	if err != nil {
		return nil, err
	}
	log.Source = raw.Path
	return buildFromLog(log, zones)
}

func buildFromLog(log SessionLog, zones TimezoneResolver) (*Session, error) {
	n, err := NormalizeSessionLog(log, zones)
	if err != nil {
		return nil, err
	}
	return EnhanceSession(n), nil
}

// Coordinates returns the session location as [lon, lat].
func (s *Session) Coordinates() []float64 {
	return s.Location.Coordinates()
}

// SessionSummary is the slice of a session embedded in counter and project
// documents so they can be filtered without a join.
type SessionSummary struct {
	Location  string    `json:"location"`
	Style     []string  `json:"style"`
	Date      time.Time `json:"date"`
	Shoes     []string  `json:"shoes"`
	IsOutdoor bool      `json:"is_outdoor"`
}

// Summary returns the embedded session summary.
func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		Location:  s.Location.Name,
		Style:     s.Style,
		Date:      s.Date,
		Shoes:     s.Shoes,
		IsOutdoor: s.Location.IsOutdoor,
	}
}

// SessionDocument is the serialized form of a Session.
type SessionDocument struct {
	Location        string    `json:"location"`
	Coordinates     []float64 `json:"coordinates"`
	Style           []string  `json:"style"`
	Description     *string   `json:"description"`
	Date            time.Time `json:"date"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Timezone        string    `json:"timezone"`
	Duration        string    `json:"duration"`
	DurationMinutes float64   `json:"duration_minutes"`
	Climbers        []string  `json:"climbers"`
	Injury          Injury    `json:"injury"`
	Media           []string  `json:"media"`
	Shoes           []string  `json:"shoes"`

	Onsight       *int `json:"onsight,omitempty"`
	Flash         int  `json:"flash"`
	Redpoint      int  `json:"redpoint"`
	Repeat        int  `json:"repeat"`
	Attempts      int  `json:"attempts"`
	Completed     int  `json:"completed"`
	TotalProblems int  `json:"total_problems"`

	OnsightKids       *int `json:"onsight_kids,omitempty"`
	FlashKids         *int `json:"flash_kids,omitempty"`
	RedpointKids      *int `json:"redpoint_kids,omitempty"`
	RepeatKids        *int `json:"repeat_kids,omitempty"`
	AttemptsKids      *int `json:"attempts_kids,omitempty"`
	CompletedKids     *int `json:"completed_kids,omitempty"`
	TotalProblemsKids *int `json:"total_problems_kids,omitempty"`

	OnsightAdult       *int `json:"onsight_adult,omitempty"`
	FlashAdult         *int `json:"flash_adult,omitempty"`
	RedpointAdult      *int `json:"redpoint_adult,omitempty"`
	RepeatAdult        *int `json:"repeat_adult,omitempty"`
	AttemptsAdult      *int `json:"attempts_adult,omitempty"`
	CompletedAdult     *int `json:"completed_adult,omitempty"`
	TotalProblemsAdult *int `json:"total_problems_adult,omitempty"`

	Weather       *Weather  `json:"weather,omitempty"`
	WeatherSource string    `json:"weather_source,omitempty"`
	ProcessedAt   time.Time `json:"processed_at"`
}

// Document serializes the session. Onsight totals appear only for outdoor
// locations; age-group totals only where the location tracks them.
func (s *Session) Document() SessionDocument {
	doc := SessionDocument{
		Location:        s.Location.Name,
		Coordinates:     s.Coordinates(),
		Style:           s.Style,
		Description:     s.Description,
		Date:            s.Date,
		Start:           s.Start,
		End:             s.End,
		Timezone:        s.Start.Location().String(),
		Duration:        formatDuration(s.Duration),
		DurationMinutes: s.Duration.Minutes(),
		Climbers:        s.Climbers,
		Injury:          s.Injury,
		Media:           s.Media,
		Shoes:           s.Shoes,

		Flash:         s.Totals.Flash,
		Redpoint:      s.Totals.Redpoint,
		Repeat:        s.Totals.Repeat,
		Attempts:      s.Totals.Attempts,
		Completed:     s.Totals.Completed,
		TotalProblems: s.Totals.Total,

		Weather:       s.Weather,
		WeatherSource: s.WeatherSource,
		ProcessedAt:   s.ProcessedAt,
	}
	outdoor := s.Location.IsOutdoor
	if outdoor {
		doc.Onsight = intPtr(s.Totals.Onsight)
	}
	if k := s.Kids; k != nil {
		if outdoor {
			doc.OnsightKids = intPtr(k.Onsight)
		}
		doc.FlashKids = intPtr(k.Flash)
		doc.RedpointKids = intPtr(k.Redpoint)
		doc.RepeatKids = intPtr(k.Repeat)
		doc.AttemptsKids = intPtr(k.Attempts)
		doc.CompletedKids = intPtr(k.Completed)
		doc.TotalProblemsKids = intPtr(k.Total)
	}
	if a := s.Adult; a != nil {
		if outdoor {
			doc.OnsightAdult = intPtr(a.Onsight)
		}
		doc.FlashAdult = intPtr(a.Flash)
		doc.RedpointAdult = intPtr(a.Redpoint)
		doc.RepeatAdult = intPtr(a.Repeat)
		doc.AttemptsAdult = intPtr(a.Attempts)
		doc.CompletedAdult = intPtr(a.Completed)
		doc.TotalProblemsAdult = intPtr(a.Total)
	}
	return doc
}

// CounterDocuments serializes every counter with the session summary.
func (s *Session) CounterDocuments() []CounterDocument {
	summary := s.Summary()
	docs := make([]CounterDocument, 0, len(s.Counters))
	for _, c := range s.Counters {
		doc := c.Document()
		doc.Session = &summary
		docs = append(docs, doc)
	}
	return docs
}

// ProjectDocuments serializes every project occurrence with the session
// summary. Call after the Ledger fold so cumulative fields are final.
func (s *Session) ProjectDocuments() []ProjectDocument {
	summary := s.Summary()
	docs := make([]ProjectDocument, 0, len(s.Projects))
	for _, p := range s.Projects {
		doc := p.Document()
		doc.Session = &summary
		docs = append(docs, doc)
	}
	return docs
}

// formatDuration renders d as H:MM:SS.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%d:%02d:%02d", h, m, d/time.Second)
}

func intPtr(n int) *int { return &n }
