package dialogue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ziadkadry99/travelbudgetfx/internal/db"
	"github.com/ziadkadry99/travelbudgetfx/internal/itinerary"
	"github.com/ziadkadry99/travelbudgetfx/internal/scoring"
	"github.com/ziadkadry99/travelbudgetfx/internal/trip"
)

// Store persists sessions, their transcripts and exported documents.
type Store struct {
	db *db.DB
}

// NewStore creates a new dialogue store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// SessionSummary is a row of the session list.
type SessionSummary struct {
	ID          string    `json:"id"`
	Destination string    `json:"destination"`
	Phase       Phase     `json:"phase"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateSession inserts a new session row.
func (s *Store) CreateSession(ctx context.Context, sess *Session) error {
	rating, err := json.Marshal(sess.Rating)
	if err != nil {
		return fmt.Errorf("marshalling rating: %w", err)
	}
	st := sess.State()
	now := time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, destination, duration_days, budget, home_currency, departure_date, rating,
		  questions_asked, itinerary_generated, export_offered, exported, follow_ups, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Params.Destination, sess.Params.DurationDays, sess.Params.Budget,
		sess.Params.HomeCurrency, sess.Params.Departure(), string(rating),
		st.QuestionsAsked, st.ItineraryGenerated, st.ExportOffered, st.Exported, st.FollowUps,
		sess.CreatedAt.UTC(), now,
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// AppendTurn stores one turn of a session's transcript.
func (s *Store) AppendTurn(ctx context.Context, sessionID string, t Turn) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO turns (session_id, seq, speaker, content, is_itinerary, is_export_prompt, is_error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, t.ID, string(t.Speaker), t.Text, t.IsItineraryDocument, t.IsExportPrompt, t.IsError, t.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting turn: %w", err)
	}
	return nil
}

// SaveState records the dialogue counters for a session.
func (s *Store) SaveState(ctx context.Context, sessionID string, st State) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET questions_asked = ?, itinerary_generated = ?, export_offered = ?, exported = ?,
		  follow_ups = ?, updated_at = ? WHERE id = ?`,
		st.QuestionsAsked, st.ItineraryGenerated, st.ExportOffered, st.Exported, st.FollowUps,
		time.Now().UTC(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("updating session state: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// LoadSession rebuilds a session and its transcript. Every stored turn is
// fully revealed.
func (s *Store) LoadSession(ctx context.Context, id string, now func() time.Time) (*Session, error) {
	var (
		p         trip.Parameters
		departure string
		ratingRaw string
		st        State
		createdAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT destination, duration_days, budget, home_currency, departure_date, rating,
		  questions_asked, itinerary_generated, export_offered, exported, follow_ups, created_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(&p.Destination, &p.DurationDays, &p.Budget, &p.HomeCurrency, &departure, &ratingRaw,
		&st.QuestionsAsked, &st.ItineraryGenerated, &st.ExportOffered, &st.Exported, &st.FollowUps, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	if d, err := time.Parse(trip.DateLayout, departure); err == nil {
		p.DepartureDate = d
	}

	sess := newSession(id, p, decodeRating(ratingRaw), now)
	sess.CreatedAt = createdAt
	sess.state = st

	turns, err := s.turns(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.turns = turns
	return sess, nil
}

func (s *Store) turns(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, speaker, content, is_itinerary, is_export_prompt, is_error, created_at
		 FROM turns WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		var speaker string
		if err := rows.Scan(&t.ID, &speaker, &t.Text, &t.IsItineraryDocument, &t.IsExportPrompt, &t.IsError, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		t.Speaker = Speaker(speaker)
		t.Revealed = utf8.RuneCountInString(t.Text)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// ListSessions returns the most recently updated sessions first.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, destination, questions_asked, itinerary_generated, export_offered, exported, follow_ups, created_at, updated_at
		 FROM sessions ORDER BY updated_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var ss SessionSummary
		var st State
		if err := rows.Scan(&ss.ID, &ss.Destination, &st.QuestionsAsked, &st.ItineraryGenerated,
			&st.ExportOffered, &st.Exported, &st.FollowUps, &ss.CreatedAt, &ss.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		ss.Phase = st.Phase()
		out = append(out, ss)
	}
	return out, rows.Err()
}

// SaveExport stores a formatted document.
func (s *Store) SaveExport(ctx context.Context, sessionID string, doc *itinerary.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshalling document: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO exports (id, session_id, name, pages, document, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), sessionID, doc.Name, len(doc.Pages), string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting export: %w", err)
	}
	return nil
}

// LatestExport returns the most recent document exported for a session, or
// nil when there is none.
func (s *Store) LatestExport(ctx context.Context, sessionID string) (*itinerary.Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM exports WHERE session_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, sessionID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading export: %w", err)
	}

	var doc itinerary.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("unmarshalling document: %w", err)
	}
	return &doc, nil
}

func decodeRating(raw string) scoring.Rating {
	var r scoring.Rating
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return scoring.Rating{}
	}
	return r
}
