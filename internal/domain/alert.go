package domain

import (
	"time"

	"github.com/google/uuid"
)

// Sentinel values substituted when a field cannot be extracted.
const (
	EventUnknown       = "Desconhecido"
	SeverityUnknown    = "Desconhecida"
	DescriptionMissing = "Sem descrição"
	AreaUndefined      = "Indefinido"

	// EndUndefined is the display value for open-ended alerts.
	EndUndefined = "Indefinido"
)

// EventName identifies the notification emitted for each newly seen alert.
const EventName = "inmet_alerta_novo"

// DisplayLayout renders alert timestamps for people (dd/mm/yyyy hh:mm).
const DisplayLayout = "02/01/2006 15:04"

// Item is one <item> of the feed. Pointer fields are nil when the child
// element is absent from the document.
type Item struct {
	GUID        *string `xml:"guid"`
	Title       *string `xml:"title"`
	Description *string `xml:"description"`
	PubDate     *string `xml:"pubDate"`
}

// Alert is a typed INMET alert extracted from a feed item.
type Alert struct {
	ID          string
	Status      string
	Event       string
	Severity    string
	Description string
	Area        string
	StartTime   time.Time
	EndTime     *time.Time // nil when the alert is open-ended

	// PublishedAt is the item's pubDate, zero when absent or unparseable.
	PublishedAt time.Time
}

// IsValid reports whether the alert is still active at now. Open-ended alerts
// never expire; otherwise the end time is inclusive.
func IsValid(a Alert, now time.Time) bool {
	return a.EndTime == nil || !now.After(*a.EndTime)
}

// AlertView is the display form of an Alert, with timestamps rendered in a
// chosen location. JSON keys match the attribute names consumers of the
// original integration rely on.
type AlertView struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Event       string `json:"evento"`
	Severity    string `json:"severidade"`
	Description string `json:"descricao"`
	Start       string `json:"inicio"`
	End         string `json:"fim"`
	Area        string `json:"area"`
}

// View renders the alert for display. A nil location means UTC.
func (a Alert) View(loc *time.Location) AlertView {
	if loc == nil {
		loc = time.UTC
	}
	end := EndUndefined
	if a.EndTime != nil {
		end = a.EndTime.In(loc).Format(DisplayLayout)
	}
	return AlertView{
		ID:          a.ID,
		Status:      a.Status,
		Event:       a.Event,
		Severity:    a.Severity,
		Description: a.Description,
		Start:       a.StartTime.In(loc).Format(DisplayLayout),
		End:         end,
		Area:        a.Area,
	}
}

// AlertEvent is the notification published for a newly seen alert.
type AlertEvent struct {
	EventID   string    `json:"event_id"`
	Name      string    `json:"event_name"`
	EmittedAt time.Time `json:"emitted_at"`
	AlertView
}

// NewAlertEvent wraps the display form of a in a notification envelope with a
// fresh event ID.
func NewAlertEvent(a Alert, loc *time.Location, emittedAt time.Time) AlertEvent {
	return AlertEvent{
		EventID:   uuid.NewString(),
		Name:      EventName,
		EmittedAt: emittedAt.UTC(),
		AlertView: a.View(loc),
	}
}
