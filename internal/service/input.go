package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Date accepts RFC 3339 timestamps as well as plain YYYY-MM-DD dates, which
// is what HTML date inputs submit.
type Date struct{ time.Time }

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.Time) }

// SkillList accepts either a JSON array or a single string.  A string is
// split on commas so "go, sql" becomes two skills.
type SkillList []string

func (s *SkillList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*s = cleanSkills(list)
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err != nil {
		return errors.New("requiredSkills must be a string or a list of strings")
	}
	*s = cleanSkills(strings.Split(one, ","))
	return nil
}

func cleanSkills(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseID accepts a positive integer given as a JSON number or a string.
func parseID(v any) (uint64, bool) {
	switch t := v.(type) {
	case float64:
		if t <= 0 || t != math.Trunc(t) || t >= 1<<63 {
			return 0, false
		}
		return uint64(t), true
	case json.Number:
		return parseID(string(t))
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64)
		return n, err == nil && n > 0
	case uint64:
		return t, t > 0
	case int:
		return uint64(t), t > 0
	}
	return 0, false
}
