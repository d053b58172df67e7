package feedback

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/yoockh/yoointerview/internal/models"
)

var (
	fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")

	errNoObject = errors.New("no json object in response")
)

// parseResult is the tagged outcome of reading a backend response: either a
// populated report or the reason it could not be read.
type parseResult struct {
	ok        bool
	report    models.FeedbackReport
	defaulted []string
	err       error
}

// extractObject strips code fences and returns the outermost {...} span.
func extractObject(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", errNoObject
	}
	return s[start : end+1], nil
}

func parse(raw string) parseResult {
	obj, err := extractObject(raw)
	if err != nil {
		return parseResult{err: err}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return parseResult{err: err}
	}

	f := fieldReader(fields)
	r := models.FeedbackReport{
		Summary:             f.text("summary"),
		Strengths:           f.list("strengths"),
		Weaknesses:          f.list("weaknesses"),
		Improvements:        f.list("improvements"),
		TechnicalSkills:     f.text("technicalSkills", "technical_skills"),
		CommunicationSkills: f.text("communicationSkills", "communication_skills"),
		Recommendations:     f.text("recommendations"),
		Insights:            f.text("interviewInsights", "insights"),
		NextSteps:           f.text("nextSteps", "next_steps"),
		BackgroundSummary:   f.text("backgroundSummary", "background_summary"),
		Source:              models.FeedbackFromModel,
	}
	defaulted := applyDefaults(&r)
	return parseResult{ok: true, report: r, defaulted: defaulted}
}

type fieldReader map[string]json.RawMessage

func (f fieldReader) lookup(keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := f[k]; ok && !isNull(v) {
			return v, true
		}
	}
	return nil, false
}

// text reads a string field. Numbers and booleans keep their literal form; a
// list is joined into one sentence.
func (f fieldReader) text(keys ...string) string {
	v, ok := f.lookup(keys...)
	if !ok {
		return ""
	}
	if items := decodeList(v); items != nil {
		return strings.Join(items, " ")
	}
	return scalar(v)
}

// list reads a list field. A single scalar becomes a one-element list.
func (f fieldReader) list(keys ...string) []string {
	v, ok := f.lookup(keys...)
	if !ok {
		return nil
	}
	if items := decodeList(v); items != nil {
		return items
	}
	if s := scalar(v); s != "" {
		return []string{s}
	}
	return nil
}

func isNull(v json.RawMessage) bool {
	return len(bytes.TrimSpace(v)) == 0 || string(bytes.TrimSpace(v)) == "null"
}

func scalar(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s)
	}
	t := bytes.TrimSpace(v)
	if len(t) > 0 && (t[0] == '{' || t[0] == '[') {
		return ""
	}
	return string(t)
}

// decodeList returns nil when v is not a JSON array. Blank items are dropped.
func decodeList(v json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := scalar(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}
