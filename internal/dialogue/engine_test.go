package dialogue

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ziadkadry99/travelbudgetfx/internal/audit"
	"github.com/ziadkadry99/travelbudgetfx/internal/db"
	"github.com/ziadkadry99/travelbudgetfx/internal/forecast"
	"github.com/ziadkadry99/travelbudgetfx/internal/itinerary"
	"github.com/ziadkadry99/travelbudgetfx/internal/llm"
	"github.com/ziadkadry99/travelbudgetfx/internal/trip"
)

const franceItinerary = `**Day 1: Arrival in Paris**
- Morning: Check in near the Louvre (about $120)
- Afternoon: Walk along the Seine (free)
- Evening: Dinner in Le Marais (about $45)

**Day 2: Museums**
- Morning: Musee d'Orsay (about $18)
- Evening: Picnic on the Champ de Mars (about $15)

**Tips**
- Exchange money at a local bank rather than the airport`

// scriptedProvider answers itinerary requests with franceItinerary and
// everything else with a numbered question. respond overrides both.
type scriptedProvider struct {
	mu       sync.Mutex
	requests []llm.CompletionRequest
	respond  func(call int, req llm.CompletionRequest) (string, error)

	started chan struct{}
	release chan struct{}
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	call := len(p.requests)
	respond := p.respond
	p.mu.Unlock()

	if p.started != nil {
		p.started <- struct{}{}
	}
	if p.release != nil {
		<-p.release
	}

	var (
		content string
		err     error
	)
	switch {
	case respond != nil:
		content, err = respond(call, req)
	case strings.Contains(lastMessage(req), "Create the complete itinerary now"):
		content = franceItinerary
	default:
		content = "Sounds lovely! **Next question:** what else should I know?"
	}
	if err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{Content: content, InputTokens: 100, OutputTokens: 50}, nil
}

func (p *scriptedProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func (p *scriptedProvider) request(i int) llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests[i]
}

func (p *scriptedProvider) lastRequest() llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests[len(p.requests)-1]
}

func lastMessage(req llm.CompletionRequest) string {
	if len(req.Messages) == 0 {
		return ""
	}
	return req.Messages[len(req.Messages)-1].Content
}

type stubSource struct {
	mu   sync.Mutex
	reqs []forecast.Request
	err  error
}

func (s *stubSource) Forecast(ctx context.Context, req forecast.Request) (forecast.Series, error) {
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return forecast.Series{
		{Date: start, Rate: 1.08},
		{Date: start.AddDate(0, 0, 1), Rate: 1.10},
		{Date: start.AddDate(0, 0, 2), Rate: 1.09},
	}, nil
}

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func franceTrip(t *testing.T) trip.Parameters {
	t.Helper()
	p, err := trip.Parse("France", "10", "2000", "USD", "2025-06-01")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return p
}

type harness struct {
	engine   *Engine
	provider *scriptedProvider
	source   *stubSource
	store    *Store
	audit    *audit.Store

	mu      sync.Mutex
	emitted []*itinerary.Document
}

func (h *harness) docs() []*itinerary.Document {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*itinerary.Document(nil), h.emitted...)
}

func newHarness(t *testing.T, withStore bool) *harness {
	t.Helper()
	h := &harness{provider: &scriptedProvider{}, source: &stubSource{}}

	opts := Options{
		Provider:  h.provider,
		Model:     "test-model",
		Forecasts: h.source,
		Scheduler: ImmediateScheduler{},
		Clock:     func() time.Time { return fixedNow },
		Emitter: itinerary.EmitterFunc(func(ctx context.Context, doc *itinerary.Document) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.emitted = append(h.emitted, doc)
			return nil
		}),
	}
	if withStore {
		database, err := db.OpenMemory()
		if err != nil {
			t.Fatalf("OpenMemory: %v", err)
		}
		t.Cleanup(func() { database.Close() })
		h.store = NewStore(database)
		h.audit = audit.NewStore(database)
		opts.Store = h.store
		opts.Audit = h.audit
	}
	h.engine = NewEngine(opts)
	return h
}

func (h *harness) start(t *testing.T) *Session {
	t.Helper()
	s, err := h.engine.Start(context.Background(), franceTrip(t))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

func (h *harness) send(t *testing.T, id, text string) Turn {
	t.Helper()
	turn, err := h.engine.Send(context.Background(), id, text)
	if err != nil {
		t.Fatalf("Send(%q): %v", text, err)
	}
	return turn
}

// answerQuestionnaire sends MaxQuestions plain answers.
func (h *harness) answerQuestionnaire(t *testing.T, id string) {
	t.Helper()
	answers := []string{
		"I enjoy museums and art galleries",
		"Mid-range hotels near the centre",
		"Local food, nothing fancy",
		"A relaxed pace suits me",
		"Trains and walking",
	}
	for _, a := range answers {
		h.send(t, id, a)
	}
}

func itineraryTurns(turns []Turn) int {
	n := 0
	for _, tr := range turns {
		if tr.IsItineraryDocument {
			n++
		}
	}
	return n
}

func TestStartOpensWithGreeting(t *testing.T) {
	h := newHarness(t, false)
	s := h.start(t)

	turns := s.Turns()
	if len(turns) != 1 {
		t.Fatalf("got %d turns, want 1", len(turns))
	}
	if turns[0].Text != Greeting || turns[0].Speaker != SpeakerAssistant {
		t.Errorf("first turn = %+v, want the assistant greeting", turns[0])
	}
	if got := s.Phase(); got != PhaseOnboarding {
		t.Errorf("phase = %s, want %s", got, PhaseOnboarding)
	}
	if !s.CreatedAt.Equal(fixedNow) {
		t.Errorf("CreatedAt = %v, want %v", s.CreatedAt, fixedNow)
	}
	if s.Rating.Overall <= 0 {
		t.Errorf("Rating.Overall = %v, want > 0", s.Rating.Overall)
	}
	if n := h.provider.calls(); n != 0 {
		t.Errorf("greeting made %d chat requests", n)
	}
}

func TestStartRejectsInvalidTrip(t *testing.T) {
	h := newHarness(t, false)

	_, err := h.engine.Start(context.Background(), trip.Parameters{Destination: "France"})
	if !errors.Is(err, trip.ErrInvalidParameters) {
		t.Errorf("Start error = %v, want ErrInvalidParameters", err)
	}
}

func TestFullPlanningConversation(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	s := h.start(t)

	answers := []string{
		"I enjoy museums and art galleries",
		"Mid-range hotels near the centre",
		"Local food, nothing fancy",
		"A relaxed pace suits me",
		"Trains and walking",
	}
	for i, a := range answers {
		turn := h.send(t, s.ID, a)
		if turn.IsItineraryDocument {
			t.Errorf("answer %d produced an itinerary", i+1)
		}
		if got := s.State().QuestionsAsked; got != i+1 {
			t.Errorf("after answer %d QuestionsAsked = %d", i+1, got)
		}
	}
	if got := s.Phase(); got != PhaseReadyForItinerary {
		t.Errorf("phase = %s, want %s", got, PhaseReadyForItinerary)
	}
	if msg := lastMessage(h.provider.request(0)); !strings.Contains(msg, "ask question 1 of 5") {
		t.Errorf("first request should ask question 1:\n%s", msg)
	}
	if msg := lastMessage(h.provider.request(4)); !strings.Contains(msg, "ask question 5 of 5") {
		t.Errorf("fifth request should ask question 5:\n%s", msg)
	}

	itin := h.send(t, s.ID, "Thanks, that's everything")
	if !itin.IsItineraryDocument {
		t.Error("sixth message should produce the itinerary")
	}
	if msg := lastMessage(h.provider.request(5)); !strings.Contains(msg, "Create the complete itinerary now") {
		t.Errorf("sixth request should carry the itinerary template:\n%s", msg)
	}
	if got := s.State().QuestionsAsked; got != MaxQuestions {
		t.Errorf("QuestionsAsked = %d, want %d", got, MaxQuestions)
	}

	turns := s.Turns()
	last := turns[len(turns)-1]
	if !last.IsExportPrompt || last.Text != ExportPrompt {
		t.Errorf("last turn = %+v, want the export prompt", last)
	}
	if got := s.Phase(); got != PhaseExportOffered {
		t.Errorf("phase = %s, want %s", got, PhaseExportOffered)
	}

	calls := h.provider.calls()
	confirm := h.send(t, s.ID, "Yes please!")
	if h.provider.calls() != calls {
		t.Error("export made a chat request")
	}
	wantConfirm := "Your itinerary has been exported as france-itinerary.pdf (1 page). Here's the currency forecast for your trip!"
	if confirm.Text != wantConfirm {
		t.Errorf("confirmation = %q, want %q", confirm.Text, wantConfirm)
	}
	if got := s.Phase(); got != PhaseExportCompleted {
		t.Errorf("phase = %s, want %s", got, PhaseExportCompleted)
	}

	docs := h.docs()
	if len(docs) != 1 {
		t.Fatalf("emitted %d documents, want 1", len(docs))
	}
	if docs[0].Name != "france-itinerary" {
		t.Errorf("document name = %q", docs[0].Name)
	}
	for _, want := range []string{"Day 1: Arrival in Paris", "Destination: France"} {
		if !strings.Contains(docs[0].Text(), want) {
			t.Errorf("document missing %q", want)
		}
	}

	view := s.Forecast()
	if view == nil {
		t.Fatal("forecast not shown after export")
	}
	if view.Base != "EUR" || view.Target != "USD" {
		t.Errorf("forecast pair = %s/%s, want EUR/USD", view.Base, view.Target)
	}
	if view.Horizon != forecast.DefaultHorizon {
		t.Errorf("Horizon = %d, want %d", view.Horizon, forecast.DefaultHorizon)
	}
	if view.Error != "" {
		t.Errorf("unexpected forecast error %q", view.Error)
	}
	if view.Summary.BestDay == nil || view.Summary.BestDay.Rate != 1.10 {
		t.Errorf("BestDay = %+v, want rate 1.10", view.Summary.BestDay)
	}
	if !strings.Contains(view.Recommendation, "2025-06-02") {
		t.Errorf("recommendation %q should name 2025-06-02", view.Recommendation)
	}

	follow := h.send(t, s.ID, "What should I pack?")
	if follow.IsItineraryDocument {
		t.Error("follow-up answer tagged as itinerary")
	}
	if got := s.Phase(); got != PhaseFollowUp {
		t.Errorf("phase = %s, want %s", got, PhaseFollowUp)
	}
	if msg := lastMessage(h.provider.lastRequest()); !strings.Contains(msg, "follow-up") {
		t.Errorf("follow-up request should carry follow-up instructions:\n%s", msg)
	}

	for i, tr := range s.Turns() {
		if tr.ID != i+1 {
			t.Errorf("turn %d has ID %d", i, tr.ID)
		}
		if !tr.Complete() {
			t.Errorf("turn %d not fully revealed", tr.ID)
		}
	}

	counts, err := h.audit.CountByAction(ctx, s.ID)
	if err != nil {
		t.Fatalf("CountByAction: %v", err)
	}
	want := map[audit.Action]int{
		audit.ActionSessionStarted:     1,
		audit.ActionQuestionAnswered:   5,
		audit.ActionItineraryDelivered: 1,
		audit.ActionExportOffered:      1,
		audit.ActionExportCompleted:    1,
		audit.ActionForecastShown:      1,
		audit.ActionFollowUp:           1,
	}
	for action, n := range want {
		if counts[action] != n {
			t.Errorf("audit %s = %d, want %d", action, counts[action], n)
		}
	}
}

func TestPlainAnswerAtQuotaRegeneratesItinerary(t *testing.T) {
	h := newHarness(t, false)
	s := h.start(t)

	h.answerQuestionnaire(t, s.ID)
	h.send(t, s.ID, "That's all")
	if got := s.Phase(); got != PhaseExportOffered {
		t.Fatalf("phase = %s, want %s", got, PhaseExportOffered)
	}

	turn := h.send(t, s.ID, "no thanks, add more museums")
	if !turn.IsItineraryDocument {
		t.Error("plain answer after the questionnaire should regenerate the itinerary")
	}
	if msg := lastMessage(h.provider.lastRequest()); !strings.Contains(msg, "Create the complete itinerary now") {
		t.Errorf("request should carry the itinerary template:\n%s", msg)
	}
	if n := itineraryTurns(s.Turns()); n != 2 {
		t.Errorf("got %d itinerary turns, want 2", n)
	}
	if got := s.State().QuestionsAsked; got != MaxQuestions {
		t.Errorf("QuestionsAsked = %d, want %d", got, MaxQuestions)
	}
	if got := s.Phase(); got != PhaseExportOffered {
		t.Errorf("phase = %s, want %s after the export prompt is repeated", got, PhaseExportOffered)
	}
	if len(h.docs()) != 0 {
		t.Error("declining the export emitted a document")
	}
}

func TestAnswersAfterEarlyItineraryKeepCounting(t *testing.T) {
	h := newHarness(t, false)
	s := h.start(t)

	h.send(t, s.ID, "I like hiking")
	itin := h.send(t, s.ID, "Can you create the itinerary now?")
	if !itin.IsItineraryDocument {
		t.Fatal("explicit request should produce an itinerary")
	}
	if got := s.State().QuestionsAsked; got != 1 {
		t.Errorf("QuestionsAsked after itinerary request = %d, want 1", got)
	}

	turn := h.send(t, s.ID, "I also like wine")
	if turn.IsItineraryDocument {
		t.Error("plain answer below the quota produced an itinerary")
	}
	if got := s.State().QuestionsAsked; got != 2 {
		t.Errorf("QuestionsAsked = %d, want 2", got)
	}
	if got := s.Phase(); got == PhaseFollowUp {
		t.Errorf("phase = %s before any export", got)
	}
	if msg := lastMessage(h.provider.lastRequest()); !strings.Contains(msg, "ask question 3 of 5") {
		t.Errorf("request should ask the next question:\n%s", msg)
	}
}

func TestDeclinedExportDoesNotExport(t *testing.T) {
	h := newHarness(t, true)
	s := h.start(t)

	h.answerQuestionnaire(t, s.ID)
	h.send(t, s.ID, "That's all")

	h.send(t, s.ID, "no, not now. more museums please")
	if len(h.docs()) != 0 {
		t.Error("declining reply emitted a document")
	}
	if got := s.Phase(); got == PhaseExportCompleted {
		t.Errorf("phase = %s after declining", got)
	}
	if s.Forecast() != nil {
		t.Error("forecast shown after declining")
	}

	counts, err := h.audit.CountByAction(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("CountByAction: %v", err)
	}
	if counts[audit.ActionExportCompleted] != 0 {
		t.Errorf("audit recorded %d exports", counts[audit.ActionExportCompleted])
	}
}

func TestHistoryIsSentWithoutMarkup(t *testing.T) {
	h := newHarness(t, false)
	s := h.start(t)

	h.send(t, s.ID, "I like hiking")
	h.send(t, s.ID, "Hostels are fine")

	req := h.provider.request(1)
	if len(req.Messages) != 5 {
		t.Fatalf("got %d messages, want 5", len(req.Messages))
	}
	if req.Messages[0].Role != llm.RoleSystem {
		t.Errorf("first message role = %s, want system", req.Messages[0].Role)
	}
	if want := (llm.Message{Role: llm.RoleAssistant, Content: Greeting}); req.Messages[1] != want {
		t.Errorf("messages[1] = %+v, want %+v", req.Messages[1], want)
	}
	if want := (llm.Message{Role: llm.RoleUser, Content: "I like hiking"}); req.Messages[2] != want {
		t.Errorf("messages[2] = %+v, want %+v", req.Messages[2], want)
	}
	if want := (llm.Message{Role: llm.RoleAssistant, Content: "Sounds lovely! Next question: what else should I know?"}); req.Messages[3] != want {
		t.Errorf("messages[3] = %+v, want %+v", req.Messages[3], want)
	}
	for _, want := range []string{"Traveller: Hostels are fine", "Destination: France"} {
		if !strings.Contains(req.Messages[4].Content, want) {
			t.Errorf("last message missing %q", want)
		}
	}
	if req.Model != "test-model" {
		t.Errorf("Model = %q, want test-model", req.Model)
	}
}

func TestEarlyItineraryRequestGeneratesImmediately(t *testing.T) {
	h := newHarness(t, false)
	s := h.start(t)

	h.send(t, s.ID, "I like hiking")
	turn := h.send(t, s.ID, "Can you create the itinerary now?")

	if !turn.IsItineraryDocument {
		t.Error("itinerary request did not produce an itinerary")
	}
	if got := s.State().QuestionsAsked; got != 1 {
		t.Errorf("QuestionsAsked = %d, want 1", got)
	}
	if got := s.Phase(); got != PhaseExportOffered {
		t.Errorf("phase = %s, want %s", got, PhaseExportOffered)
	}
}

func TestExportRequestBeforeItinerary(t *testing.T) {
	h := newHarness(t, false)
	s := h.start(t)

	turn := h.send(t, s.ID, "Can I download a PDF?")
	if turn.IsItineraryDocument {
		t.Error("early export request produced an itinerary")
	}
	if got := s.State().QuestionsAsked; got != 0 {
		t.Errorf("QuestionsAsked = %d, want 0", got)
	}
	if len(h.docs()) != 0 {
		t.Error("document emitted before any itinerary")
	}
	if n := h.provider.calls(); n != 1 {
		t.Errorf("chat requests = %d, want 1", n)
	}
}

func TestAffirmationWithoutPromptIsPlain(t *testing.T) {
	h := newHarness(t, false)
	s := h.start(t)

	h.send(t, s.ID, "yes")
	if got := s.State().QuestionsAsked; got != 1 {
		t.Errorf("QuestionsAsked = %d, want 1", got)
	}
	if len(h.docs()) != 0 {
		t.Error("bare yes exported without an export prompt")
	}
}

func TestExportUsesLongestItinerary(t *testing.T) {
	h := newHarness(t, false)
	h.provider.respond = func(call int, req llm.CompletionRequest) (string, error) {
		if call == 1 {
			return franceItinerary, nil
		}
		return "I'm not sure I can improve on that.", nil
	}
	s := h.start(t)

	h.send(t, s.ID, "Give me the itinerary")
	h.send(t, s.ID, "Can you redo the itinerary with more food?")

	if n := itineraryTurns(s.Turns()); n != 2 {
		t.Errorf("got %d itinerary turns, want 2", n)
	}
	if got := s.Phase(); got != PhaseExportOffered {
		t.Errorf("phase = %s, want %s", got, PhaseExportOffered)
	}

	h.send(t, s.ID, "export it")
	docs := h.docs()
	if len(docs) != 1 {
		t.Fatalf("emitted %d documents, want 1", len(docs))
	}
	if !strings.Contains(docs[0].Text(), "Day 2: Museums") {
		t.Error("export did not use the full itinerary")
	}
	if strings.Contains(docs[0].Text(), "improve on that") {
		t.Error("export used the short refusal turn")
	}
}

func TestChatFailureBecomesApologyTurn(t *testing.T) {
	h := newHarness(t, false)
	h.provider.respond = func(call int, req llm.CompletionRequest) (string, error) {
		if call == 1 {
			return "", errors.New("upstream timeout")
		}
		return "All good now. 2. Where will you stay?", nil
	}
	s := h.start(t)

	turn := h.send(t, s.ID, "I like hiking")
	if !turn.IsError {
		t.Error("failed request should produce an error turn")
	}
	if want := "Sorry, I encountered an error: upstream timeout. Please try again."; turn.Text != want {
		t.Errorf("error turn = %q, want %q", turn.Text, want)
	}
	if got := s.State().QuestionsAsked; got != 0 {
		t.Errorf("failed request counted: QuestionsAsked = %d", got)
	}
	if s.Busy() {
		t.Error("session still busy after failure")
	}

	turn = h.send(t, s.ID, "I like hiking")
	if turn.IsError {
		t.Error("retry should succeed")
	}
	if got := s.State().QuestionsAsked; got != 1 {
		t.Errorf("QuestionsAsked after retry = %d, want 1", got)
	}
}

func TestEmptyReplyIsAFailure(t *testing.T) {
	h := newHarness(t, false)
	h.provider.respond = func(int, llm.CompletionRequest) (string, error) { return "  \n", nil }
	s := h.start(t)

	turn := h.send(t, s.ID, "Trains please")
	if !turn.IsError || !strings.Contains(turn.Text, errEmptyReply.Error()) {
		t.Errorf("turn = %+v, want an empty-reply error turn", turn)
	}
	if got := s.State().QuestionsAsked; got != 0 {
		t.Errorf("QuestionsAsked = %d, want 0", got)
	}
}

func TestSendValidation(t *testing.T) {
	h := newHarness(t, false)
	s := h.start(t)

	if _, err := h.engine.Send(context.Background(), s.ID, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("blank message error = %v, want ErrEmptyMessage", err)
	}
	if _, err := h.engine.Send(context.Background(), "missing", "hello"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("unknown session error = %v, want ErrSessionNotFound", err)
	}
	if n := len(s.Turns()); n != 1 {
		t.Errorf("rejected messages appended turns: %d", n)
	}
}

func TestSecondMessageWhileInFlightIsRejected(t *testing.T) {
	h := newHarness(t, false)
	h.provider.started = make(chan struct{})
	h.provider.release = make(chan struct{})
	s := h.start(t)

	done := make(chan error, 1)
	go func() {
		_, err := h.engine.Send(context.Background(), s.ID, "I like hiking")
		done <- err
	}()
	<-h.provider.started

	if !s.Busy() || !s.Snapshot().Busy {
		t.Error("session should be busy while the request is in flight")
	}
	if _, err := h.engine.Send(context.Background(), s.ID, "Hello?"); !errors.Is(err, ErrRequestInFlight) {
		t.Errorf("second send error = %v, want ErrRequestInFlight", err)
	}

	close(h.provider.release)
	if err := <-done; err != nil {
		t.Fatalf("first send: %v", err)
	}
	if s.Busy() {
		t.Error("session still busy after reply")
	}
	if n := h.provider.calls(); n != 1 {
		t.Errorf("chat requests = %d, want 1", n)
	}
	if n := len(s.Turns()); n != 3 {
		t.Errorf("turns = %d, want 3", n)
	}
}

func TestForecastFailureStillShowsView(t *testing.T) {
	h := newHarness(t, false)
	h.source.err = errors.New("rate service down")
	s := h.start(t)

	h.send(t, s.ID, "Make the itinerary please")
	h.send(t, s.ID, "yes")

	view := s.Forecast()
	if view == nil {
		t.Fatal("forecast view missing after a failed fetch")
	}
	if view.Error != "rate service down" {
		t.Errorf("Error = %q", view.Error)
	}
	if view.Summary.BestDay != nil {
		t.Errorf("BestDay = %+v, want nil", view.Summary.BestDay)
	}
	if view.Recommendation != "" {
		t.Errorf("Recommendation = %q, want empty", view.Recommendation)
	}
}

func TestSessionsReloadFromStore(t *testing.T) {
	h := newHarness(t, true)
	ctx := context.Background()
	s := h.start(t)

	h.send(t, s.ID, "I like hiking")
	h.send(t, s.ID, "Make the itinerary")
	h.send(t, s.ID, "sure")

	fresh := NewEngine(Options{Provider: h.provider, Store: h.store, Scheduler: ImmediateScheduler{}})
	loaded, err := fresh.Session(ctx, s.ID)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}

	if loaded.State() != s.State() {
		t.Errorf("state = %+v, want %+v", loaded.State(), s.State())
	}
	if loaded.Params.Destination != s.Params.Destination || loaded.Params.Departure() != s.Params.Departure() {
		t.Errorf("params = %+v, want %+v", loaded.Params, s.Params)
	}
	if loaded.Rating != s.Rating {
		t.Errorf("rating = %+v, want %+v", loaded.Rating, s.Rating)
	}

	want, got := s.Turns(), loaded.Turns()
	if len(got) != len(want) {
		t.Fatalf("loaded %d turns, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Text != want[i].Text || got[i].Speaker != want[i].Speaker ||
			got[i].IsItineraryDocument != want[i].IsItineraryDocument || got[i].IsExportPrompt != want[i].IsExportPrompt {
			t.Errorf("turn %d = %+v, want %+v", i+1, got[i], want[i])
		}
	}

	doc, err := fresh.Document(ctx, s.ID)
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc == nil || doc.Name != "france-itinerary" {
		t.Errorf("Document = %+v, want france-itinerary", doc)
	}

	list, err := fresh.ListSessions(ctx, 10)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(list) != 1 || list[0].Phase != PhaseExportCompleted {
		t.Errorf("ListSessions = %+v, want one exported session", list)
	}

	if _, err := fresh.Session(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("missing session error = %v, want ErrSessionNotFound", err)
	}
}

func TestRevealIsSupersededByNextTurn(t *testing.T) {
	h := newHarness(t, false)
	h.engine.opts.RevealInterval = time.Hour
	s := h.start(t)

	reply := h.send(t, s.ID, "I like hiking")
	snap := s.Snapshot()
	shown := snap.Turns[len(snap.Turns)-1]
	if shown.ID != reply.ID || shown.Text != "" || !shown.Revealing {
		t.Errorf("new reply shown as %+v, want an empty revealing turn %d", shown, reply.ID)
	}

	h.send(t, s.ID, "Hostels are fine")
	snap = s.Snapshot()
	shown = snap.Turns[reply.ID-1]
	if shown.Text != reply.Text || shown.Revealing {
		t.Errorf("superseded reply shown as %+v, want fully revealed", shown)
	}
}

func TestRevealRunsToCompletion(t *testing.T) {
	h := newHarness(t, false)
	h.engine.opts.RevealInterval = time.Millisecond
	h.engine.opts.RevealChunk = 8
	s := h.start(t)

	updates, cancel := s.Subscribe()
	defer cancel()

	reply := h.send(t, s.ID, "I like hiking")
	deadline := time.Now().Add(2 * time.Second)
	for !s.Turns()[reply.ID-1].Complete() {
		if time.Now().After(deadline) {
			t.Fatal("reply was never fully revealed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	for {
		select {
		case u := <-updates:
			if u.Type == UpdateReveal && u.TurnID == reply.ID && u.Done {
				if u.Text != reply.Text {
					t.Errorf("final reveal text = %q, want %q", u.Text, reply.Text)
				}
				return
			}
		case <-time.After(time.Second):
			t.Fatal("no final reveal update")
		}
	}
}

func TestSubscribeReceivesTurnsAndBusy(t *testing.T) {
	h := newHarness(t, false)
	s := h.start(t)

	updates, cancel := s.Subscribe()
	h.send(t, s.ID, "I like hiking")
	cancel()

	var types []UpdateType
	for u := range updates {
		if u.SessionID != s.ID {
			t.Errorf("update for session %q, want %q", u.SessionID, s.ID)
		}
		types = append(types, u.Type)
	}
	want := []UpdateType{UpdateTurn, UpdateBusy, UpdateTurn, UpdateReveal, UpdateBusy}
	if len(types) != len(want) {
		t.Fatalf("update types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("update %d = %s, want %s", i, types[i], want[i])
		}
	}
}
