package dialogue

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/travelbudgetfx/internal/llm"
	"github.com/ziadkadry99/travelbudgetfx/internal/markup"
	"github.com/ziadkadry99/travelbudgetfx/internal/trip"
)

// Greeting opens every session.
const Greeting = "Hi! I'm your AI travel assistant. Tell me about your travel preferences - what kind of activities do you enjoy? What's your travel style? Any specific interests or requirements?"

// ExportPrompt is appended shortly after an itinerary is delivered.
const ExportPrompt = "Would you like me to export this itinerary as a PDF document?"

const systemPrompt = `You are a helpful AI travel assistant for TravelBudgetFX.
You help travellers plan trips on a budget. You give practical budgeting advice,
insight into currency exchange, cost-saving tips, an idea of local price levels
and guidance on the best time to exchange money.
Keep answers friendly and concise. Quote costs in the traveller's home currency.`

const itineraryInstructions = `Create the complete itinerary now. Use exactly this format:

Day 1: <short title>
- Morning: <activity> (estimated cost)
- Afternoon: <activity> (estimated cost)
- Evening: <activity> (estimated cost)

Repeat for every day of the trip. After the last day add a "Tips" section with
money-saving and currency exchange tips as bullet points, then a "Budget Summary"
section with estimated totals for accommodation, food, activities and transport.
Do not ask any further questions.`

const questionInstructions = `You are gathering the traveller's preferences before planning.
Briefly acknowledge their answer, then ask question %d of %d. Ask exactly one
question, numbered like "%d.", about something you still need to know
(accommodation style, food, pace, interests, transport). Do not write the itinerary yet.`

const followUpInstructions = `The itinerary has been delivered and exported. Answer the traveller's
follow-up about it directly. Keep costs in their home currency. Only rewrite the
whole itinerary if they ask for it.`

// tripContext renders the trip parameters and questionnaire progress.
func tripContext(p trip.Parameters, s State) string {
	var b strings.Builder
	b.WriteString("Trip details:\n")
	fmt.Fprintf(&b, "- Destination: %s\n", p.Destination)
	fmt.Fprintf(&b, "- Duration: %d days\n", p.DurationDays)
	fmt.Fprintf(&b, "- Budget: %.2f %s\n", p.Budget, p.HomeCurrency)
	fmt.Fprintf(&b, "- Home currency: %s\n", p.HomeCurrency)
	fmt.Fprintf(&b, "- Departure date: %s\n", p.Departure())
	fmt.Fprintf(&b, "- Questions answered: %d of %d\n", s.QuestionsAsked, MaxQuestions)
	return b.String()
}

// instructions returns the phase-specific block for action a.
func instructions(a Action, s State) string {
	switch a {
	case ActionGenerateItinerary:
		return itineraryInstructions
	case ActionFollowUp:
		return followUpInstructions
	default:
		next := s.QuestionsAsked + 1
		if next > MaxQuestions {
			next = MaxQuestions
		}
		return fmt.Sprintf(questionInstructions, next, MaxQuestions, next)
	}
}

// buildMessage is the user message sent for one turn.
func buildMessage(p trip.Parameters, s State, a Action, text string) string {
	return tripContext(p, s) + "\n" + instructions(a, s) + "\n\nTraveller: " + text
}

// buildRequest assembles the completion request. history is the transcript
// before the current user turn; assistant text is sent without display markup.
func buildRequest(model string, history []Turn, message string) llm.CompletionRequest {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	for _, t := range history {
		if t.Speaker == SpeakerUser {
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: t.Text})
			continue
		}
		msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: markup.Strip(t.Text)})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: message})

	return llm.CompletionRequest{
		Model:       model,
		Messages:    msgs,
		MaxTokens:   4096,
		Temperature: 0.7,
	}
}

// failureText is the assistant turn shown when the chat request fails.
func failureText(err error) string {
	return fmt.Sprintf("Sorry, I encountered an error: %v. Please try again.", err)
}
