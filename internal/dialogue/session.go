package dialogue

import (
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ziadkadry99/travelbudgetfx/internal/forecast"
	"github.com/ziadkadry99/travelbudgetfx/internal/itinerary"
	"github.com/ziadkadry99/travelbudgetfx/internal/scoring"
	"github.com/ziadkadry99/travelbudgetfx/internal/trip"
)

// UpdateType identifies what a session Update carries.
type UpdateType string

const (
	UpdateTurn     UpdateType = "turn"
	UpdateReveal   UpdateType = "reveal"
	UpdateBusy     UpdateType = "busy"
	UpdateExport   UpdateType = "export"
	UpdateForecast UpdateType = "forecast"
)

// Update is pushed to subscribers whenever a session changes.
type Update struct {
	Type      UpdateType    `json:"type"`
	SessionID string        `json:"session_id"`
	Phase     Phase         `json:"phase"`
	Turn      *Turn         `json:"turn,omitempty"`
	TurnID    int           `json:"turn_id,omitempty"`
	Text      string        `json:"text,omitempty"`
	Done      bool          `json:"done,omitempty"`
	Busy      bool          `json:"busy,omitempty"`
	Export    *ExportInfo   `json:"export,omitempty"`
	Forecast  *ForecastView `json:"forecast,omitempty"`
}

// ExportInfo describes the last emitted itinerary document.
type ExportInfo struct {
	Name      string    `json:"name"`
	Pages     int       `json:"pages"`
	CreatedAt time.Time `json:"created_at"`
}

// ForecastView is the forecast shown once the itinerary is exported. Error is
// set when the series could not be fetched; the summary is then zero.
type ForecastView struct {
	Base           string             `json:"base"`
	Target         string             `json:"target"`
	Horizon        int                `json:"horizon"`
	Series         forecast.Series    `json:"series"`
	Summary        forecast.Summary   `json:"summary"`
	Chart          forecast.ChartData `json:"chart"`
	Recommendation string             `json:"recommendation,omitempty"`
	Error          string             `json:"error,omitempty"`
}

// Snapshot is a point-in-time copy of a session. Turn text is what has been
// revealed so far.
type Snapshot struct {
	ID        string          `json:"id"`
	Trip      trip.Parameters `json:"trip"`
	Rating    scoring.Rating  `json:"rating"`
	Phase     Phase           `json:"phase"`
	State     State           `json:"state"`
	Busy      bool            `json:"busy"`
	Turns     []TurnView      `json:"turns"`
	Export    *ExportInfo     `json:"export,omitempty"`
	Forecast  *ForecastView   `json:"forecast,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// TurnView is a turn as currently displayed.
type TurnView struct {
	Turn
	Revealing bool `json:"revealing,omitempty"`
}

// Session is one planning conversation. All mutable state is guarded by mu.
type Session struct {
	ID        string
	Params    trip.Parameters
	Rating    scoring.Rating
	CreatedAt time.Time

	mu       sync.Mutex
	turns    []Turn
	state    State
	inFlight bool
	now      func() time.Time

	revealGen uint64
	revealID  int

	doc      *itinerary.Document
	export   *ExportInfo
	forecast *ForecastView

	subs    map[int]chan Update
	nextSub int
}

func newSession(id string, p trip.Parameters, rating scoring.Rating, now func() time.Time) *Session {
	return &Session{
		ID:        id,
		Params:    p,
		Rating:    rating,
		CreatedAt: now(),
		now:       now,
		subs:      make(map[int]chan Update),
	}
}

// State returns the current dialogue state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	return s.State().Phase()
}

// Busy reports whether a request is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Turns returns a copy of the full transcript, unrevealed text included.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.turns...)
}

// Document returns the last exported document, if any.
func (s *Session) Document() *itinerary.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Forecast returns the forecast view once it has been shown.
func (s *Session) Forecast() *ForecastView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forecast
}

// Snapshot copies the session for display.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]TurnView, len(s.turns))
	for i, t := range s.turns {
		v := TurnView{Turn: t, Revealing: !t.Complete()}
		v.Text = t.Visible()
		views[i] = v
	}
	return Snapshot{
		ID:        s.ID,
		Trip:      s.Params,
		Rating:    s.Rating,
		Phase:     s.state.Phase(),
		State:     s.state,
		Busy:      s.inFlight,
		Turns:     views,
		Export:    s.export,
		Forecast:  s.forecast,
		CreatedAt: s.CreatedAt,
	}
}

// Subscribe returns a channel of updates and a function that ends the
// subscription. Slow subscribers miss updates rather than block the session.
func (s *Session) Subscribe() (<-chan Update, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Update, 64)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Session) publishLocked(u Update) {
	u.SessionID = s.ID
	u.Phase = s.state.Phase()
	for _, ch := range s.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

// appendLocked adds a turn. Any reveal still running is completed first so
// it cannot write into a later turn.
func (s *Session) appendLocked(sp Speaker, text string, tags turnTags, reveal bool) Turn {
	s.finishRevealLocked()

	t := Turn{
		ID:                  len(s.turns) + 1,
		Speaker:             sp,
		Text:                text,
		IsItineraryDocument: tags.itinerary,
		IsExportPrompt:      tags.exportPrompt,
		IsError:             tags.isError,
		CreatedAt:           s.now(),
		Revealed:            utf8.RuneCountInString(text),
	}
	if reveal {
		t.Revealed = 0
	}
	s.turns = append(s.turns, t)

	view := t
	view.Text = t.Visible()
	s.publishLocked(Update{Type: UpdateTurn, Turn: &view})
	return t
}

func (s *Session) setBusyLocked(busy bool) {
	s.inFlight = busy
	s.publishLocked(Update{Type: UpdateBusy, Busy: busy})
}

func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setBusyLocked(false)
}

// finishRevealLocked shows the rest of the turn being revealed and retires
// its ticker.
func (s *Session) finishRevealLocked() {
	if s.revealID == 0 {
		return
	}
	id := s.revealID
	s.revealID = 0
	s.revealGen++
	if id > len(s.turns) {
		return
	}
	t := &s.turns[id-1]
	if t.Complete() {
		return
	}
	t.Revealed = utf8.RuneCountInString(t.Text)
	s.publishLocked(Update{Type: UpdateReveal, TurnID: id, Text: t.Text, Done: true})
}

// reveal shows turn id chunk runes per tick. A zero interval reveals it at
// once. The ticker stops as soon as another reveal or append supersedes it.
func (s *Session) reveal(id int, interval time.Duration, chunk int) {
	if chunk <= 0 {
		chunk = 1
	}

	s.mu.Lock()
	s.finishRevealLocked()
	s.revealGen++
	gen := s.revealGen
	s.revealID = id
	if interval <= 0 {
		s.finishRevealLocked()
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if !s.revealStep(id, gen, chunk) {
				return
			}
		}
	}()
}

func (s *Session) revealStep(id int, gen uint64, chunk int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.revealGen != gen || s.revealID != id || id < 1 || id > len(s.turns) {
		return false
	}
	t := &s.turns[id-1]
	total := utf8.RuneCountInString(t.Text)
	t.Revealed += chunk
	if t.Revealed > total {
		t.Revealed = total
	}
	done := t.Revealed >= total
	if done {
		s.revealID = 0
	}
	s.publishLocked(Update{Type: UpdateReveal, TurnID: id, Text: t.Visible(), Done: done})
	return !done
}
