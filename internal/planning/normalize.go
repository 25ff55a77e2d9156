package planning

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexanderramin/planpilot/internal/domain"
)

// descriptionAliases lists, in probe order, the keys models have been seen to
// use for a task description.
var descriptionAliases = []string{
	"description", "Description", "desc", "details", "content",
	"summary", "steps", "notes", "subtasks",
}

// MissingDescriptionPrefix starts the placeholder substituted when a record
// carries no usable description. The raw record follows it so the gap is
// visible to whoever reviews the plan.
const MissingDescriptionPrefix = "[missing description] raw record: "

// Anomaly records one field of one record that had to be repaired or dropped.
type Anomaly struct {
	Index  int    `json:"index"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (a Anomaly) String() string {
	return fmt.Sprintf("record %d: %s: %s", a.Index, a.Field, a.Reason)
}

// Normalize maps extracted records onto TaskDrafts, preserving order.
// Bad fields fall back to defaults and are reported as anomalies; a record
// without a title is dropped. It never fails the batch.
func Normalize(records []map[string]any) ([]domain.TaskDraft, []Anomaly) {
	drafts := make([]domain.TaskDraft, 0, len(records))
	var anomalies []Anomaly

	for i, rec := range records {
		note := func(field, reason string) {
			anomalies = append(anomalies, Anomaly{Index: i, Field: field, Reason: reason})
		}

		// Surrounding whitespace is the only change made to a title.
		title, ok := rec["title"].(string)
		title = strings.TrimSpace(title)
		if !ok || title == "" {
			note("title", "missing or empty title, record dropped")
			continue
		}

		description, found := normalizeDescription(rec)
		if !found {
			note("description", "no description under any known key")
		}

		priority, valid := normalizePriority(rec)
		if !valid {
			note("priority", fmt.Sprintf("invalid priority %v, using %s", rec["priority"], domain.PriorityNormal))
		}

		days, reason := normalizeDays(rec)
		if reason != "" {
			note("daysFromNow", fmt.Sprintf("%s %v, using %d", reason, rec["daysFromNow"], days))
		}

		drafts = append(drafts, domain.TaskDraft{
			Title:       title,
			Description: description,
			Priority:    priority,
			DaysFromNow: days,
		})
	}
	return drafts, anomalies
}

// normalizeDescription returns the first non-empty alias value, or the
// diagnostic placeholder with found=false.
func normalizeDescription(rec map[string]any) (string, bool) {
	for _, key := range descriptionAliases {
		v, ok := rec[key]
		if !ok {
			continue
		}
		if s := strings.TrimSpace(textValue(v)); s != "" {
			return s, true
		}
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		raw = []byte(fmt.Sprintf("%v", rec))
	}
	return MissingDescriptionPrefix + string(raw), false
}

// textValue flattens a decoded JSON value into text. Sequences are joined
// one element per line.
func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		lines := make([]string, 0, len(t))
		for _, el := range t {
			if s := strings.TrimSpace(textValue(el)); s != "" {
				lines = append(lines, s)
			}
		}
		return strings.Join(lines, "\n")
	case float64, bool:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// normalizePriority accepts only the exact enum literals. valid is false
// when a priority was present but unusable.
func normalizePriority(rec map[string]any) (domain.Priority, bool) {
	v, ok := rec["priority"]
	if !ok || v == nil {
		return domain.PriorityNormal, true
	}
	s, isString := v.(string)
	if isString && domain.ValidPriorities[s] {
		return domain.Priority(s), true
	}
	return domain.PriorityNormal, false
}

// normalizeDays accepts positive JSON numbers and numeric strings, truncating
// fractions. Offsets past domain.MaxDayOffset are clamped to it; anything else
// unusable becomes 1. reason is empty unless a present value was repaired.
func normalizeDays(rec map[string]any) (int, string) {
	v, ok := rec["daysFromNow"]
	if !ok || v == nil {
		return 1, ""
	}

	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			f = float64(n)
		} else if parsed, err := strconv.ParseFloat(s, 64); err == nil {
			f = parsed
		} else {
			return 1, "invalid day offset"
		}
	default:
		return 1, "invalid day offset"
	}

	switch {
	case math.IsNaN(f) || f < 1:
		return 1, "invalid day offset"
	case f > domain.MaxDayOffset:
		return domain.MaxDayOffset, "day offset beyond limit"
	}
	return int(f), ""
}

// DraftDescription returns d's description, or the missing-description
// placeholder embedding the draft when it is blank. Drafts that never passed
// through Normalize get the same treatment at commit time.
func DraftDescription(d domain.TaskDraft) string {
	if strings.TrimSpace(d.Description) != "" {
		return d.Description
	}
	raw, err := json.Marshal(d)
	if err != nil {
		raw = []byte(fmt.Sprintf("%+v", d))
	}
	return MissingDescriptionPrefix + string(raw)
}
