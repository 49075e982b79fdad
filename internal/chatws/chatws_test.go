package chatws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/travelbudgetfx/internal/dialogue"
	"github.com/ziadkadry99/travelbudgetfx/internal/llm"
)

type echoProvider struct{}

func (echoProvider) Name() string { return "echo" }

func (echoProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: "Noted! What pace do you like?"}, nil
}

func dial(t *testing.T) *websocket.Conn {
	t.Helper()
	engine := dialogue.NewEngine(dialogue.Options{
		Provider:  echoProvider{},
		Scheduler: dialogue.ImmediateScheduler{},
		Clock:     func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) },
	})
	r := chi.NewRouter()
	New(engine).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/chat", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func write(t *testing.T, ws *websocket.Conn, v any) {
	t.Helper()
	if err := ws.WriteJSON(v); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
}

// readUntil reads frames until match accepts one.
func readUntil(t *testing.T, ws *websocket.Conn, match func(serverFrame) bool) serverFrame {
	t.Helper()
	if err := ws.SetReadDeadline(time.Now().Add(3 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline: %v", err)
	}
	for {
		var f serverFrame
		if err := ws.ReadJSON(&f); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		if match(f) {
			return f
		}
	}
}

func isType(typ string) func(serverFrame) bool {
	return func(f serverFrame) bool { return f.Type == typ }
}

func startFrame() clientFrame {
	return clientFrame{Type: "start", Trip: &tripForm{
		Destination:   "Lisbon, Portugal",
		Duration:      "5",
		Budget:        "1200",
		HomeCurrency:  "GBP",
		DepartureDate: "2025-04-10",
	}}
}

func TestStartAndChat(t *testing.T) {
	ws := dial(t)

	write(t, ws, startFrame())
	session := readUntil(t, ws, isType("session"))
	if session.Snapshot == nil || session.SessionID == "" {
		t.Fatalf("session frame = %+v, want an ID and snapshot", session)
	}
	if turns := session.Snapshot.Turns; len(turns) != 1 || turns[0].Text != dialogue.Greeting {
		t.Errorf("snapshot turns = %+v, want the greeting only", turns)
	}

	write(t, ws, clientFrame{Type: "message", Content: "I like food markets"})
	reply := readUntil(t, ws, func(f serverFrame) bool {
		return f.Type == "update" && f.Update != nil && f.Update.Type == dialogue.UpdateReveal && f.Update.Done
	})
	if reply.SessionID != session.SessionID {
		t.Errorf("reply for session %q, want %q", reply.SessionID, session.SessionID)
	}
	if reply.Update.Text != "Noted! What pace do you like?" {
		t.Errorf("reply text = %q", reply.Update.Text)
	}
	if reply.Update.Phase != dialogue.PhaseQuestioning {
		t.Errorf("phase = %s, want %s", reply.Update.Phase, dialogue.PhaseQuestioning)
	}
}

func TestJoinExistingSession(t *testing.T) {
	ws := dial(t)
	write(t, ws, startFrame())
	first := readUntil(t, ws, isType("session"))

	write(t, ws, clientFrame{Type: "join", SessionID: first.SessionID})
	joined := readUntil(t, ws, isType("session"))
	if joined.SessionID != first.SessionID {
		t.Errorf("joined %q, want %q", joined.SessionID, first.SessionID)
	}

	write(t, ws, clientFrame{Type: "join", SessionID: "missing"})
	errFrame := readUntil(t, ws, isType("error"))
	if errFrame.Error != dialogue.ErrSessionNotFound.Error() {
		t.Errorf("error = %q, want %q", errFrame.Error, dialogue.ErrSessionNotFound.Error())
	}
}

func TestProtocolErrors(t *testing.T) {
	ws := dial(t)

	tests := []struct {
		name  string
		frame any
		want  string
	}{
		{"message before start", clientFrame{Type: "message", Content: "hi"}, "no active session"},
		{"start without trip", clientFrame{Type: "start"}, "trip details are required"},
		{"invalid trip", clientFrame{Type: "start", Trip: &tripForm{Destination: "Rome"}}, "invalid trip parameters"},
		{"unknown type", clientFrame{Type: "dance"}, "unknown message type: dance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			write(t, ws, tt.frame)
			f := readUntil(t, ws, isType("error"))
			if !strings.Contains(f.Error, tt.want) {
				t.Errorf("error = %q, want it to contain %q", f.Error, tt.want)
			}
		})
	}

	if err := ws.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	if f := readUntil(t, ws, isType("error")); f.Error != "invalid message format" {
		t.Errorf("error = %q, want invalid message format", f.Error)
	}
}

func TestEmptyMessageIsRejected(t *testing.T) {
	ws := dial(t)
	write(t, ws, startFrame())
	readUntil(t, ws, isType("session"))

	write(t, ws, clientFrame{Type: "message", Content: "   "})
	if f := readUntil(t, ws, isType("error")); f.Error != dialogue.ErrEmptyMessage.Error() {
		t.Errorf("error = %q, want %q", f.Error, dialogue.ErrEmptyMessage.Error())
	}
}
