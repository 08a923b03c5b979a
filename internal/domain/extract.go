package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TimestampLayout is the format of the Início and Fim cells. Fractional
// seconds are accepted when present.
const TimestampLayout = "2006-01-02 15:04:05"

// pubDateLayouts lists the RSS date formats tried for pubDate, most common first.
var pubDateLayouts = []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822}

var (
	// statusSuffixRe matches the grade suffix to strip from a title,
	// e.g. "Chuva Intensa. Severidade Grau: Perigo" -> "Chuva Intensa".
	statusSuffixRe = regexp.MustCompile(`\. Severidade Grau:.*`)

	// titleSeverityRe captures the grade embedded in a title.
	titleSeverityRe = regexp.MustCompile(`Severidade Grau: (.*)`)

	startRe               = cellPattern("Início", "")
	endRe                 = cellPattern("Fim", "")
	descriptionSeverityRe = cellPattern("Severidade", "")
)

// cellPattern matches "<label></th><td><prefix><value></td>" and captures value.
func cellPattern(label, prefix string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(label+"</th><td>"+prefix) + `(.*?)</td>`)
}

// fieldRule extracts one description cell, substituting fallback when absent.
type fieldRule struct {
	pattern  *regexp.Regexp
	fallback string
	assign   func(*Alert, string)
}

var descriptionFields = []fieldRule{
	{
		pattern:  cellPattern("Evento", ""),
		fallback: EventUnknown,
		assign:   func(a *Alert, v string) { a.Event = v },
	},
	{
		pattern:  cellPattern("Descrição", ""),
		fallback: DescriptionMissing,
		assign:   func(a *Alert, v string) { a.Description = v },
	},
	{
		pattern:  cellPattern("Área", "Aviso para as Áreas: "),
		fallback: AreaUndefined,
		assign:   func(a *Alert, v string) { a.Area = v },
	},
}

// severitySource is one candidate location of the severity grade.
type severitySource func(title, description string) (string, bool)

// severitySources are tried in order; the first match wins.
var severitySources = []severitySource{
	func(title, _ string) (string, bool) { return capture(titleSeverityRe, title) },
	func(_, description string) (string, bool) { return capture(descriptionSeverityRe, description) },
}

// Outcome classifies what happened to one feed item.
type Outcome int

const (
	OutcomeActive Outcome = iota
	OutcomeExpired
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeActive:
		return "active"
	case OutcomeExpired:
		return "expired"
	case OutcomeSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ItemResult is the per-item result of ExtractItems. Err is set only when
// Outcome is OutcomeSkipped, and is always an *ItemError.
type ItemResult struct {
	Index   int
	Alert   Alert
	Outcome Outcome
	Err     error
}

// ExtractItems extracts every item and classifies it against now. A failing
// item never prevents the remaining items from being processed.
func ExtractItems(items []Item, now time.Time) []ItemResult {
	results := make([]ItemResult, 0, len(items))
	for i, item := range items {
		alert, err := ExtractAlert(item)
		if err != nil {
			results = append(results, ItemResult{
				Index:   i,
				Outcome: OutcomeSkipped,
				Err:     &ItemError{Index: i, GUID: deref(item.GUID), Err: err},
			})
			continue
		}

		outcome := OutcomeActive
		if !IsValid(alert, now) {
			outcome = OutcomeExpired
		}
		results = append(results, ItemResult{Index: i, Alert: alert, Outcome: outcome})
	}
	return results
}

// ExtractAlert builds an Alert from one feed item. It fails when guid, title
// or description is missing, when the start time is absent, or when a start
// or end time cannot be parsed.
func ExtractAlert(item Item) (Alert, error) {
	guid := strings.TrimSpace(deref(item.GUID))
	switch {
	case guid == "":
		return Alert{}, fmt.Errorf("%w: guid", ErrMissingField)
	case item.Title == nil:
		return Alert{}, fmt.Errorf("%w: title", ErrMissingField)
	case item.Description == nil:
		return Alert{}, fmt.Errorf("%w: description", ErrMissingField)
	}
	title, description := *item.Title, *item.Description

	start, ok, err := parseCellTime(startRe, description)
	if err != nil {
		return Alert{}, fmt.Errorf("início: %w", err)
	}
	if !ok {
		return Alert{}, ErrMissingStartTime
	}

	end, ok, err := parseCellTime(endRe, description)
	if err != nil {
		return Alert{}, fmt.Errorf("fim: %w", err)
	}

	alert := Alert{
		ID:          guid,
		Status:      strings.TrimSpace(statusSuffixRe.ReplaceAllString(title, "")),
		Severity:    extractSeverity(title, description),
		StartTime:   start,
		PublishedAt: parsePubDate(deref(item.PubDate)),
	}
	if ok {
		alert.EndTime = &end
	}
	for _, rule := range descriptionFields {
		value, found := capture(rule.pattern, description)
		if !found {
			value = rule.fallback
		}
		rule.assign(&alert, value)
	}
	return alert, nil
}

func extractSeverity(title, description string) string {
	for _, source := range severitySources {
		if v, ok := source(title, description); ok {
			return v
		}
	}
	return SeverityUnknown
}

// parseCellTime finds a timestamp cell and parses it as UTC. ok is false when
// the cell is absent.
func parseCellTime(re *regexp.Regexp, description string) (t time.Time, ok bool, err error) {
	raw, found := capture(re, description)
	if !found {
		return time.Time{}, false, nil
	}
	t, err = time.ParseInLocation(TimestampLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w %q", ErrInvalidTime, raw)
	}
	return t, true, nil
}

// parsePubDate returns the zero time when s matches none of the RSS layouts.
func parsePubDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func capture(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
