package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ValidateSessionLog checks the shape of a raw session log, as decoded from
// YAML into a generic map, and converts it into a typed SessionLog. Every
// offending field is collected into a single *ValidationError.
func ValidateSessionLog(raw map[string]any) (SessionLog, error) {
	c := &fieldChecker{}
	var log SessionLog

	log.Location = c.requiredString(raw, "location")
	log.Style = c.requiredString(raw, "style")
	log.Description = c.optionalString(raw, "description")
	log.Date = c.date(raw)
	log.Start, log.End = c.times(raw)

	if v, ok := raw["climbers"]; ok && v != nil {
		list, ok := asStringList(v)
		if !ok {
			c.fail("climbers", "must be a list of strings")
		}
		log.Climbers = list
	}

	if v, ok := raw["injury"]; ok {
		log.Injury = c.injury(v)
	}

	if v, ok := raw["media"]; ok && v != nil {
		list, ok := asStringList(v)
		if !ok {
			c.fail("media", "must be a list of strings or null")
		}
		log.Media = list
	}

	outdoor := styleIsOutdoor(log.Style)
	if v, ok := raw["counter"]; ok && v != nil {
		log.Counters = c.counters(v, outdoor)
	}
	if v, ok := raw["projects"]; ok && v != nil {
		log.Projects = c.projects(v, outdoor)
	}

	if v, ok := raw["shoes"]; ok && v != nil {
		log.Shoes = c.shoes(v)
	}

	if len(c.problems) > 0 {
		return SessionLog{}, &ValidationError{Problems: c.problems}
	}
	return log, nil
}

func styleIsOutdoor(style string) bool {
	return strings.Contains(strings.ToLower(style), "outdoor")
}

// fieldChecker accumulates field problems instead of stopping at the first.
type fieldChecker struct {
	problems []FieldError
}

func (c *fieldChecker) fail(field, reason string) {
	c.problems = append(c.problems, FieldError{Field: field, Reason: reason})
}

func (c *fieldChecker) requiredString(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		c.fail(key, "missing")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		c.fail(key, "must be a string")
		return ""
	}
	if strings.TrimSpace(s) == "" {
		c.fail(key, "must not be empty")
		return ""
	}
	return s
}

func (c *fieldChecker) optionalString(m map[string]any, key string) *string {
	v, ok := m[key]
	if !ok || v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		c.fail(key, "must be a string")
		return nil
	}
	return &s
}

// date accepts a YYYY-MM-DD string, or a timestamp when the YAML decoder
// resolved the value itself.
func (c *fieldChecker) date(m map[string]any) string {
	v, ok := m["date"]
	if !ok {
		c.fail("date", "missing")
		return ""
	}
	switch d := v.(type) {
	case string:
		if _, err := ParseDate(d); err != nil {
			c.fail("date", "must be YYYY-MM-DD")
			return ""
		}
		return d
	case time.Time:
		return d.Format(DateLayout)
	default:
		c.fail("date", "must be YYYY-MM-DD")
		return ""
	}
}

func (c *fieldChecker) times(m map[string]any) (start, end string) {
	v, ok := m["time"]
	if !ok {
		c.fail("time.start", "missing")
		c.fail("time.end", "missing")
		return "", ""
	}
	tm, ok := asMap(v)
	if !ok {
		c.fail("time", "must be a mapping with start and end")
		return "", ""
	}
	return c.timeOfDay(tm, "start"), c.timeOfDay(tm, "end")
}

func (c *fieldChecker) timeOfDay(m map[string]any, key string) string {
	field := "time." + key
	v, ok := m[key]
	if !ok {
		c.fail(field, "missing")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		c.fail(field, "must be a string")
		return ""
	}
	if _, err := ParseTimeOfDay(s); err != nil {
		c.fail(field, "unrecognized time format")
		return ""
	}
	return s
}

func (c *fieldChecker) injury(v any) *Injury {
	m, ok := asMap(v)
	if !ok {
		c.fail("injury", "must be a mapping with isTrue and description")
		return nil
	}
	inj := &Injury{}
	isTrue, ok := m["isTrue"].(bool)
	if !ok {
		c.fail("injury.isTrue", "must be a boolean")
	}
	inj.IsTrue = isTrue

	desc, present := m["description"]
	switch {
	case !present:
		c.fail("injury.description", "missing")
	case desc == nil:
	default:
		s, ok := desc.(string)
		if !ok {
			c.fail("injury.description", "must be a string")
			break
		}
		inj.Description = &s
	}
	return inj
}

func (c *fieldChecker) counters(v any, outdoor bool) []CounterLog {
	items, ok := v.([]any)
	if !ok {
		c.fail("counter", "must be a list")
		return nil
	}
	seen := make(map[string]bool, len(items))
	counters := make([]CounterLog, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("counter[%d]", i)
		m, ok := asMap(item)
		if !ok {
			c.fail(field, "must be a mapping")
			continue
		}
		counter := c.counterFields(m, field, outdoor, false)
		if counter.Grade != "" {
			if seen[counter.Grade] {
				c.fail(field+".grade", fmt.Sprintf("duplicate grade %q", counter.Grade))
			}
			seen[counter.Grade] = true
		}
		counters = append(counters, counter)
	}
	return counters
}

// counterFields reads the tally fields shared by counters and projects.
// Project occurrences record single ascents, so their flash, redpoint and
// onsight values are restricted to 0 or 1.
func (c *fieldChecker) counterFields(m map[string]any, field string, outdoor, single bool) CounterLog {
	var counter CounterLog

	if g, ok := m["grade"].(string); ok && strings.TrimSpace(g) != "" {
		counter.Grade = g
	} else {
		c.fail(field+".grade", "must be a non-empty string")
	}

	counter.Flash = c.count(m, field, "flash", single)
	counter.Redpoint = c.count(m, field, "redpoint", single)
	counter.Repeat = c.count(m, field, "repeat", false)
	counter.Attempts = c.count(m, field, "attempts", false)

	if _, ok := m["onsight"]; ok {
		counter.Onsight = Some(c.count(m, field, "onsight", single))
	} else if outdoor {
		c.fail(field+".onsight", "required for outdoor sessions")
	}
	return counter
}

func (c *fieldChecker) count(m map[string]any, field, key string, single bool) int {
	v, ok := m[key]
	if !ok {
		c.fail(field+"."+key, "missing")
		return 0
	}
	n, ok := asInt(v)
	switch {
	case !ok:
		c.fail(field+"."+key, "must be an integer")
		return 0
	case n < 0:
		c.fail(field+"."+key, "must not be negative")
		return 0
	case single && n > 1:
		c.fail(field+"."+key, "must be 0 or 1")
		return 0
	}
	return n
}

func (c *fieldChecker) projects(v any, outdoor bool) []ProjectLog {
	items, ok := v.([]any)
	if !ok {
		c.fail("projects", "must be a list")
		return nil
	}
	projects := make([]ProjectLog, 0, len(items))
	for i, item := range items {
		field := fmt.Sprintf("projects[%d]", i)
		m, ok := asMap(item)
		if !ok {
			c.fail(field, "must be a mapping")
			continue
		}

		p := ProjectLog{CounterLog: c.counterFields(m, field, outdoor, true)}
		p.Name = c.requiredString(m, "name")
		if p.Name == "" {
			c.renameLast("name", field+".name")
		}
		p.Location = c.requiredString(m, "location")
		if p.Location == "" {
			c.renameLast("location", field+".location")
		}

		style, ok := asStringList(m["style"])
		if !ok || style == nil {
			c.fail(field+".style", "must be a list of strings")
		}
		p.Style = style

		if p.Flash == 1 && p.Redpoint == 1 {
			c.fail(field, "flash and redpoint are mutually exclusive")
		}
		if p.Onsight.N == 1 && (p.Flash == 1 || p.Redpoint == 1) {
			c.fail(field, "onsight excludes flash and redpoint")
		}

		if notes, ok := m["notes"]; ok && notes != nil {
			s, ok := notes.(string)
			if !ok {
				c.fail(field+".notes", "must be a string")
			} else {
				p.Notes = &s
			}
		}
		if media, ok := m["media"]; ok && media != nil {
			list, ok := asStringList(media)
			if !ok {
				c.fail(field+".media", "must be a list of strings or null")
			}
			p.Media = list
		}
		if reset, ok := m["reset"]; ok {
			switch r := reset.(type) {
			case nil:
				p.Reset = true
			case bool:
				p.Reset = r
			default:
				c.fail(field+".reset", "must be a boolean")
			}
		}
		projects = append(projects, p)
	}
	return projects
}

// renameLast rewrites the field path of the most recent problem so nested
// fields read with requiredString report their full path.
func (c *fieldChecker) renameLast(from, to string) {
	if n := len(c.problems); n > 0 && c.problems[n-1].Field == from {
		c.problems[n-1].Field = to
	}
}

func (c *fieldChecker) shoes(v any) Shoes {
	if s, ok := v.(string); ok {
		return Shoes{Text: s}
	}
	list, ok := asStringList(v)
	if !ok {
		c.fail("shoes", "must be a string or a list of strings")
		return Shoes{}
	}
	return Shoes{List: list}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func asStringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// asInt accepts the integer types a YAML or JSON decoder may produce. Booleans
// are not integers here.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		if n != math.Trunc(n) || n >= float64(math.MaxInt) || n < math.MinInt {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
