package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/travelbudgetfx/internal/audit"
	"github.com/ziadkadry99/travelbudgetfx/internal/currency"
	"github.com/ziadkadry99/travelbudgetfx/internal/forecast"
	"github.com/ziadkadry99/travelbudgetfx/internal/itinerary"
	"github.com/ziadkadry99/travelbudgetfx/internal/llm"
	"github.com/ziadkadry99/travelbudgetfx/internal/markup"
	"github.com/ziadkadry99/travelbudgetfx/internal/scoring"
	"github.com/ziadkadry99/travelbudgetfx/internal/trip"
)

var (
	// ErrRequestInFlight is returned when a message is sent while the
	// previous one is still being answered.
	ErrRequestInFlight = errors.New("a request is already in flight for this session")
	// ErrSessionNotFound is returned for unknown session IDs.
	ErrSessionNotFound = errors.New("session not found")
	// ErrEmptyMessage is returned for blank user messages.
	ErrEmptyMessage = errors.New("message is empty")

	errEmptyReply = errors.New("the assistant returned an empty reply")
)

// Options configures an Engine. Provider is required; everything else has
// a usable zero value.
type Options struct {
	Provider llm.Provider
	Model    string

	Store     *Store
	Audit     *audit.Store
	Emitter   itinerary.Emitter
	Forecasts forecast.Source

	Scheduler  Scheduler
	Clock      func() time.Time
	Vocabulary *Vocabulary

	RevealInterval    time.Duration
	RevealChunk       int
	ExportPromptDelay time.Duration
	ForecastDelay     time.Duration
	ForecastHorizon   int
}

// Engine drives planning conversations: it classifies each message, builds
// the chat request, records replies and runs the export and forecast steps.
type Engine struct {
	opts       Options
	classifier *Classifier

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewEngine creates a new dialogue engine.
func NewEngine(opts Options) *Engine {
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.RevealChunk <= 0 {
		opts.RevealChunk = 1
	}
	if opts.ForecastHorizon <= 0 {
		opts.ForecastHorizon = forecast.DefaultHorizon
	}
	vocab := DefaultVocabulary
	if opts.Vocabulary != nil {
		vocab = *opts.Vocabulary
	}
	return &Engine{
		opts:       opts,
		classifier: NewClassifier(vocab),
		sessions:   make(map[string]*Session),
	}
}

// Start validates the trip, scores it and opens a session with the greeting.
func (e *Engine) Start(ctx context.Context, p trip.Parameters) (*Session, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	now := e.opts.Clock()
	s := newSession(uuid.New().String(), p, scoring.ScoreTrip(p, now), e.opts.Clock)

	s.mu.Lock()
	greeting := s.appendLocked(SpeakerAssistant, Greeting, turnTags{}, false)
	s.mu.Unlock()

	if e.opts.Store != nil {
		if err := e.opts.Store.CreateSession(ctx, s); err != nil {
			return nil, fmt.Errorf("saving session: %w", err)
		}
		if err := e.opts.Store.AppendTurn(ctx, s.ID, greeting); err != nil {
			return nil, fmt.Errorf("saving greeting: %w", err)
		}
	}

	e.mu.Lock()
	e.sessions[s.ID] = s
	e.mu.Unlock()

	log.Printf("dialogue: session %s started for %s (%d days, %.2f %s), overall rating %.1f",
		s.ID, p.Destination, p.DurationDays, p.Budget, p.HomeCurrency, s.Rating.Overall)
	e.record(ctx, s, audit.ActorUser, audit.ActionSessionStarted, "Planning started for "+p.Destination, "")
	return s, nil
}

// Session returns a live session, loading it from the store if needed.
func (e *Engine) Session(ctx context.Context, id string) (*Session, error) {
	e.mu.Lock()
	s, ok := e.sessions[id]
	e.mu.Unlock()
	if ok {
		return s, nil
	}
	if e.opts.Store == nil {
		return nil, ErrSessionNotFound
	}

	s, err := e.opts.Store.LoadSession(ctx, id, e.opts.Clock)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, ok := e.sessions[id]; ok {
		return existing, nil
	}
	e.sessions[id] = s
	return s, nil
}

// Send handles one user message and returns the assistant turn it produced.
// Chat failures are not returned as errors: they become an apology turn.
func (e *Engine) Send(ctx context.Context, id, text string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, ErrEmptyMessage
	}
	s, err := e.Session(ctx, id)
	if err != nil {
		return Turn{}, err
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return Turn{}, ErrRequestInFlight
	}
	prev, _ := lastAssistant(s.turns)
	intent := e.classifier.Classify(text, prev.IsExportPrompt)
	state := s.state
	action := Decide(state, intent)
	history := append([]Turn(nil), s.turns...)
	userTurn := s.appendLocked(SpeakerUser, text, turnTags{}, false)
	s.setBusyLocked(true)
	s.mu.Unlock()
	defer s.release()

	e.saveTurn(ctx, s, userTurn)
	log.Printf("dialogue: session %s phase=%s intent=%s action=%s", s.ID, state.Phase(), intent, action)

	if action == ActionExport {
		return e.export(ctx, s), nil
	}
	return e.reply(ctx, s, state, action, intent, history, text), nil
}

func (e *Engine) reply(ctx context.Context, s *Session, state State, action Action, intent Intent, history []Turn, text string) Turn {
	req := buildRequest(e.opts.Model, history, buildMessage(s.Params, state, action, text))

	resp, err := e.opts.Provider.Complete(ctx, req)
	if err == nil && strings.TrimSpace(resp.Content) == "" {
		err = errEmptyReply
	}
	if err != nil {
		return e.fail(ctx, s, err)
	}

	display, err := markup.Sanitize(resp.Content)
	if err != nil {
		return e.fail(ctx, s, err)
	}

	model := resp.Model
	if model == "" {
		model = e.opts.Model
	}
	log.Printf("dialogue: session %s reply from %s (%d in / %d out tokens, ~$%.4f)",
		s.ID, e.opts.Provider.Name(), resp.InputTokens, resp.OutputTokens,
		llm.EstimateCost(model, resp.InputTokens, resp.OutputTokens))

	generating := action == ActionGenerateItinerary

	s.mu.Lock()
	t := s.appendLocked(SpeakerAssistant, display, turnTags{itinerary: generating}, true)
	ev, counted := eventFor(action, intent)
	if counted {
		s.state = Transition(s.state, ev)
	}
	s.mu.Unlock()

	s.reveal(t.ID, e.opts.RevealInterval, e.opts.RevealChunk)
	e.saveTurn(ctx, s, t)

	if counted {
		e.saveState(ctx, s)
		switch ev {
		case EventQuestionAnswered:
			e.record(ctx, s, audit.ActorUser, audit.ActionQuestionAnswered, fmt.Sprintf("Answered question %d of %d", s.State().QuestionsAsked, MaxQuestions), "")
		case EventItineraryDelivered:
			e.record(ctx, s, audit.ActorAssistant, audit.ActionItineraryDelivered, "Itinerary delivered for "+s.Params.Destination, fmt.Sprintf("%d characters", len(resp.Content)))
		case EventFollowUp:
			e.record(ctx, s, audit.ActorUser, audit.ActionFollowUp, "Follow-up answered", "")
		}
	}

	if generating {
		e.opts.Scheduler.After(e.opts.ExportPromptDelay, func() {
			e.offerExport(context.Background(), s)
		})
	}
	return t
}

func (e *Engine) fail(ctx context.Context, s *Session, err error) Turn {
	log.Printf("dialogue: session %s: chat request failed: %v", s.ID, err)

	s.mu.Lock()
	t := s.appendLocked(SpeakerAssistant, failureText(err), turnTags{isError: true}, false)
	s.mu.Unlock()

	e.saveTurn(ctx, s, t)
	e.record(ctx, s, audit.ActorSystem, audit.ActionReplyFailed, "Chat request failed", err.Error())
	return t
}

// offerExport appends the export question once per delivered itinerary.
func (e *Engine) offerExport(ctx context.Context, s *Session) {
	s.mu.Lock()
	if !s.state.ItineraryGenerated || s.state.ExportOffered || s.state.Exported {
		s.mu.Unlock()
		return
	}
	t := s.appendLocked(SpeakerAssistant, ExportPrompt, turnTags{exportPrompt: true}, false)
	s.state = Transition(s.state, EventExportPromptShown)
	s.mu.Unlock()

	e.saveTurn(ctx, s, t)
	e.saveState(ctx, s)
	e.record(ctx, s, audit.ActorAssistant, audit.ActionExportOffered, "Offered itinerary export", "")
}

// export formats the longest itinerary turn, emits it and schedules the
// forecast. No chat request is made.
func (e *Engine) export(ctx context.Context, s *Session) Turn {
	s.mu.Lock()
	src, ok := longestItinerary(s.turns)
	p := s.Params
	s.mu.Unlock()

	var doc *itinerary.Document
	if ok {
		doc = itinerary.Format(src.Text, &p)
	}
	if doc == nil {
		log.Printf("dialogue: session %s: export requested with no itinerary to format", s.ID)
		s.mu.Lock()
		t := s.appendLocked(SpeakerAssistant, "There is no finished itinerary to export yet. Ask me to create one first!", turnTags{}, false)
		s.mu.Unlock()
		e.saveTurn(ctx, s, t)
		return t
	}

	if e.opts.Emitter != nil {
		if err := e.opts.Emitter.Emit(ctx, doc); err != nil {
			log.Printf("dialogue: session %s: emitting %s: %v", s.ID, doc.Name, err)
		}
	}
	if e.opts.Store != nil {
		if err := e.opts.Store.SaveExport(ctx, s.ID, doc); err != nil {
			log.Printf("dialogue: session %s: saving export: %v", s.ID, err)
		}
	}

	info := &ExportInfo{Name: doc.Name, Pages: len(doc.Pages), CreatedAt: e.opts.Clock()}
	confirmation := fmt.Sprintf("Your itinerary has been exported as %s.pdf (%d %s). Here's the currency forecast for your trip!",
		doc.Name, info.Pages, plural(info.Pages, "page", "pages"))

	s.mu.Lock()
	s.doc = doc
	s.export = info
	t := s.appendLocked(SpeakerAssistant, confirmation, turnTags{}, false)
	s.state = Transition(s.state, EventExportCompleted)
	s.publishLocked(Update{Type: UpdateExport, Export: info})
	s.mu.Unlock()

	e.saveTurn(ctx, s, t)
	e.saveState(ctx, s)
	e.record(ctx, s, audit.ActorUser, audit.ActionExportCompleted, "Exported "+doc.Name, fmt.Sprintf("%d pages", info.Pages))

	e.opts.Scheduler.After(e.opts.ForecastDelay, func() {
		e.showForecast(context.Background(), s)
	})
	return t
}

// showForecast fetches the destination→home currency forecast. A failed
// fetch still shows the view, with a zero summary and the error.
func (e *Engine) showForecast(ctx context.Context, s *Session) {
	view := &ForecastView{
		Base:    currency.Resolve(s.Params.Destination),
		Target:  s.Params.HomeCurrency,
		Horizon: e.opts.ForecastHorizon,
	}

	if e.opts.Forecasts == nil {
		view.Error = "no forecast source configured"
	} else {
		fctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		series, err := e.opts.Forecasts.Forecast(fctx, forecast.Request{Base: view.Base, Target: view.Target, Horizon: view.Horizon})
		cancel()
		if err != nil {
			log.Printf("dialogue: session %s: forecast %s/%s: %v", s.ID, view.Base, view.Target, err)
			view.Error = err.Error()
		} else {
			view.Series = series
		}
	}
	view.Summary = forecast.Summarize(view.Series)
	view.Chart = forecast.Chart(view.Series, forecast.DefaultChartBox)
	view.Recommendation = forecast.Recommendation(view.Summary)

	s.mu.Lock()
	s.forecast = view
	s.publishLocked(Update{Type: UpdateForecast, Forecast: view})
	s.mu.Unlock()

	e.record(ctx, s, audit.ActorSystem, audit.ActionForecastShown,
		fmt.Sprintf("Forecast %s/%s shown", view.Base, view.Target), view.Recommendation)
}

func (e *Engine) saveTurn(ctx context.Context, s *Session, t Turn) {
	if e.opts.Store == nil {
		return
	}
	if err := e.opts.Store.AppendTurn(ctx, s.ID, t); err != nil {
		log.Printf("dialogue: session %s: saving turn %d: %v", s.ID, t.ID, err)
	}
}

func (e *Engine) saveState(ctx context.Context, s *Session) {
	if e.opts.Store == nil {
		return
	}
	if err := e.opts.Store.SaveState(ctx, s.ID, s.State()); err != nil {
		log.Printf("dialogue: session %s: saving state: %v", s.ID, err)
	}
}

func (e *Engine) record(ctx context.Context, s *Session, actor audit.ActorType, action audit.Action, summary, detail string) {
	if e.opts.Audit == nil {
		return
	}
	err := e.opts.Audit.Log(ctx, audit.Entry{
		ActorType: actor,
		SessionID: s.ID,
		Action:    action,
		Phase:     string(s.Phase()),
		Summary:   summary,
		Detail:    detail,
	})
	if err != nil {
		log.Printf("dialogue: session %s: audit: %v", s.ID, err)
	}
}

// Document returns the most recent exported document for a session.
func (e *Engine) Document(ctx context.Context, id string) (*itinerary.Document, error) {
	s, err := e.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc := s.Document(); doc != nil {
		return doc, nil
	}
	if e.opts.Store == nil {
		return nil, nil
	}
	return e.opts.Store.LatestExport(ctx, id)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// ListSessions returns stored sessions, most recently active first.
func (e *Engine) ListSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	if e.opts.Store == nil {
		e.mu.Lock()
		defer e.mu.Unlock()
		out := make([]SessionSummary, 0, len(e.sessions))
		for _, s := range e.sessions {
			out = append(out, SessionSummary{ID: s.ID, Destination: s.Params.Destination, Phase: s.Phase(), CreatedAt: s.CreatedAt})
		}
		return out, nil
	}
	return e.opts.Store.ListSessions(ctx, limit)
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.opts.Clock()
}
