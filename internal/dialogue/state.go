package dialogue

// MaxQuestions is the number of plain answers collected before the
// itinerary is generated.
const MaxQuestions = 5

// Phase is the stage a conversation is in.
type Phase string

const (
	PhaseOnboarding         Phase = "onboarding"
	PhaseQuestioning        Phase = "questioning"
	PhaseReadyForItinerary  Phase = "ready_for_itinerary"
	PhaseItineraryDelivered Phase = "itinerary_delivered"
	PhaseExportOffered      Phase = "export_offered"
	PhaseExportCompleted    Phase = "export_completed"
	PhaseFollowUp           Phase = "follow_up"
)

// State is everything the phase is derived from. It only changes through
// Transition.
type State struct {
	QuestionsAsked     int  `json:"questions_asked"`
	ItineraryGenerated bool `json:"itinerary_generated"`
	ExportOffered      bool `json:"export_offered"`
	Exported           bool `json:"exported"`
	FollowUps          int  `json:"follow_ups"`
}

// Phase derives the current phase.
func (s State) Phase() Phase {
	switch {
	case s.Exported && s.FollowUps > 0:
		return PhaseFollowUp
	case s.Exported:
		return PhaseExportCompleted
	case s.ExportOffered:
		return PhaseExportOffered
	case s.ItineraryGenerated:
		return PhaseItineraryDelivered
	case s.QuestionsAsked >= MaxQuestions:
		return PhaseReadyForItinerary
	case s.QuestionsAsked > 0:
		return PhaseQuestioning
	default:
		return PhaseOnboarding
	}
}

// Event is something that happened to a conversation.
type Event int

const (
	EventQuestionAnswered Event = iota
	EventItineraryDelivered
	EventExportPromptShown
	EventExportCompleted
	EventFollowUp
)

// Transition applies e to s.
func Transition(s State, e Event) State {
	switch e {
	case EventQuestionAnswered:
		if s.QuestionsAsked < MaxQuestions {
			s.QuestionsAsked++
		}
	case EventItineraryDelivered:
		s.ItineraryGenerated = true
		s.ExportOffered = false
		s.Exported = false
		s.FollowUps = 0
	case EventExportPromptShown:
		if s.ItineraryGenerated {
			s.ExportOffered = true
		}
	case EventExportCompleted:
		s.Exported = true
		s.FollowUps = 0
	case EventFollowUp:
		s.FollowUps++
	}
	return s
}

// Action is what the engine does with a user message.
type Action int

const (
	ActionAskQuestion Action = iota
	ActionGenerateItinerary
	ActionFollowUp
	ActionExport
)

func (a Action) String() string {
	switch a {
	case ActionGenerateItinerary:
		return "generate_itinerary"
	case ActionFollowUp:
		return "follow_up"
	case ActionExport:
		return "export"
	default:
		return "ask_question"
	}
}

// Decide picks the action for a message of intent i arriving in state s.
// Until the itinerary is exported, an explicit itinerary request or a full
// questionnaire generates (or regenerates) it and any other message is a
// questionnaire answer. After export the conversation is free follow-up.
func Decide(s State, i Intent) Action {
	switch {
	case i == IntentAffirmative, i == IntentExport && s.ItineraryGenerated:
		return ActionExport
	case i == IntentItinerary, !s.Exported && s.QuestionsAsked >= MaxQuestions:
		return ActionGenerateItinerary
	case s.Exported:
		return ActionFollowUp
	default:
		return ActionAskQuestion
	}
}

// eventFor returns the event recorded after a successful reply, if any.
// Export requests made before an itinerary exists are answered but do not
// count as answers to the questionnaire.
func eventFor(a Action, i Intent) (Event, bool) {
	switch a {
	case ActionGenerateItinerary:
		return EventItineraryDelivered, true
	case ActionFollowUp:
		return EventFollowUp, true
	case ActionAskQuestion:
		if i == IntentPlain {
			return EventQuestionAnswered, true
		}
	}
	return 0, false
}
