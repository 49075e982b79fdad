package audit

import "time"

// ActorType identifies who caused an event.
type ActorType string

const (
	ActorUser      ActorType = "user"
	ActorSystem    ActorType = "system"
	ActorAssistant ActorType = "assistant"
)

// Action describes what happened in a planning session.
type Action string

const (
	ActionSessionStarted     Action = "session_started"
	ActionQuestionAnswered   Action = "question_answered"
	ActionItineraryDelivered Action = "itinerary_delivered"
	ActionExportOffered      Action = "export_offered"
	ActionExportCompleted    Action = "export_completed"
	ActionForecastShown      Action = "forecast_shown"
	ActionFollowUp           Action = "follow_up"
	ActionReplyFailed        Action = "reply_failed"
)

// Entry is a single audit trail record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ActorType ActorType `json:"actor_type"`
	SessionID string    `json:"session_id"`
	Action    Action    `json:"action"`
	Phase     string    `json:"phase,omitempty"`
	Summary   string    `json:"summary"`
	Detail    string    `json:"detail,omitempty"`
}
