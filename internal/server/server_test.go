package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
	mdwlog "github.com/msto63/kylang/foundation/core/log"
	"github.com/msto63/kylang/internal/history"
	"github.com/msto63/kylang/pkg/core/health"
)

// wireResponse mirrors WSResponse with a raw payload for decoding in tests
type wireResponse struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T, mutate func(*Config)) (*Server, *httptest.Server, *history.MemoryStore) {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	store := history.NewMemoryStore()
	srv := New(cfg, Options{Logger: mdwlog.Discard(), History: store})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.ws.Shutdown()
		ts.Close()
	})
	return srv, ts, store
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType, id string, payload interface{}) {
	t.Helper()
	msg := map[string]interface{}{"type": msgType, "id": id}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
}

func receive(t *testing.T, conn *websocket.Conn) wireResponse {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var resp wireResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	return resp
}

// receiveUntil collects messages up to and including the first done or error
func receiveUntil(t *testing.T, conn *websocket.Conn) []wireResponse {
	t.Helper()
	var all []wireResponse
	for {
		resp := receive(t, conn)
		all = append(all, resp)
		if resp.Type == "done" || resp.Type == "error" {
			return all
		}
	}
}

func decodeError(t *testing.T, resp wireResponse) WSErrorPayload {
	t.Helper()
	if resp.Type != "error" {
		t.Fatalf("Expected error message, got %s (%s)", resp.Type, resp.Payload)
	}
	var payload WSErrorPayload
	if err := json.Unmarshal(resp.Payload, &payload); err != nil {
		t.Fatalf("Failed to decode error payload: %v", err)
	}
	return payload
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != 8420 {
		t.Errorf("Expected port 8420, got %d", cfg.Port)
	}
	if cfg.MaxSteps != 1_000_000 {
		t.Errorf("Expected 1000000 max steps, got %d", cfg.MaxSteps)
	}
	if cfg.RunTimeout != 5*time.Second {
		t.Errorf("Expected 5s run timeout, got %v", cfg.RunTimeout)
	}
	if cfg.Version == "" {
		t.Error("Expected a version")
	}
}

func TestServer_Address(t *testing.T) {
	srv := New(Config{Host: "localhost", Port: 9000}, Options{Logger: mdwlog.Discard()})
	if srv.Address() != "localhost:9000" {
		t.Errorf("Expected localhost:9000, got %s", srv.Address())
	}
	if srv.HealthRegistry() == nil {
		t.Error("Expected a health registry")
	}
}

func TestServer_Healthz(t *testing.T) {
	_, ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	var report health.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	if report.Status != health.StatusHealthy {
		t.Errorf("Expected healthy, got %s", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Errorf("Expected engine and history checks, got %d", len(report.Checks))
	}
}

// brokenStatsStore is a history store whose Stats query fails
type brokenStatsStore struct {
	*history.MemoryStore
}

func (brokenStatsStore) Stats(ctx context.Context) (*history.Stats, error) {
	return nil, mdwerror.New("database is locked").WithCode(mdwerror.CodeDatabaseError)
}

func TestServer_HealthzDegradedHistory(t *testing.T) {
	srv := New(DefaultConfig(), Options{
		Logger:  mdwlog.Discard(),
		History: brokenStatsStore{history.NewMemoryStore()},
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.ws.Shutdown()
		ts.Close()
	})

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 for a degraded server, got %d", resp.StatusCode)
	}
	var report health.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	if report.Status != health.StatusDegraded {
		t.Errorf("Expected degraded, got %s", report.Status)
	}
	for _, check := range report.Checks {
		if check.Name == "history" && (check.Critical || !strings.Contains(check.Message, "database is locked")) {
			t.Errorf("Unexpected history check: %+v", check)
		}
	}
}

func TestWebSocket_Run(t *testing.T) {
	_, ts, store := newTestServer(t, nil)
	conn := dial(t, ts)

	send(t, conn, "run", "r1", WSRunPayload{
		Source: "input n\nfor i in 1 .. n:\n\tdisplay i * i",
		Input:  []string{"3"},
	})
	msgs := receiveUntil(t, conn)

	if msgs[0].Type != "started" || msgs[0].ID != "r1" {
		t.Errorf("Expected started for r1, got %+v", msgs[0])
	}
	var lines []string
	for _, m := range msgs {
		if m.Type != "output" {
			continue
		}
		var out WSOutputPayload
		if err := json.Unmarshal(m.Payload, &out); err != nil {
			t.Fatalf("Failed to decode output: %v", err)
		}
		lines = append(lines, out.Line)
	}
	if strings.Join(lines, ",") != "1,4,9" {
		t.Errorf("Expected lines 1,4,9, got %v", lines)
	}

	last := msgs[len(msgs)-1]
	if last.Type != "done" {
		t.Fatalf("Expected done, got %s (%s)", last.Type, last.Payload)
	}
	var done WSDonePayload
	if err := json.Unmarshal(last.Payload, &done); err != nil {
		t.Fatalf("Failed to decode done: %v", err)
	}
	if done.Displays != 3 || done.Inputs != 1 || done.Variables["n"] != 3 {
		t.Errorf("Unexpected done payload %+v", done)
	}

	runs, err := store.List(context.Background(), history.Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected one recorded run, got %d", len(runs))
	}
	if runs[0].Origin != history.OriginServer || runs[0].Output != "1\n4\n9\n" || runs[0].Status != history.StatusOK {
		t.Errorf("Unexpected record %+v", runs[0])
	}
}

func TestWebSocket_RunErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		input  []string
		code   mdwerror.Code
		row    int
		column int
	}{
		{"lexical", "display 1 # 2", nil, mdwerror.CodeLexical, 1, 11},
		{"syntax", "let a := 1\nlet b 2", nil, mdwerror.CodeSyntax, 2, 7},
		{"division by zero", "let z := 0\ndisplay 1 / z", nil, mdwerror.CodeArithmetic, 2, 13},
		{"bad input", "input n", []string{"twelve"}, mdwerror.CodeInputFormat, 1, 0},
		{"missing input", "input n", nil, mdwerror.CodeInputFormat, 1, 0},
	}

	_, ts, store := newTestServer(t, nil)
	conn := dial(t, ts)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			send(t, conn, "run", tt.name, WSRunPayload{Source: tt.source, Input: tt.input})
			msgs := receiveUntil(t, conn)

			payload := decodeError(t, msgs[len(msgs)-1])
			if payload.Code != tt.code.String() {
				t.Errorf("Expected code %s, got %s (%s)", tt.code, payload.Code, payload.Message)
			}
			if payload.Row != tt.row {
				t.Errorf("Expected row %d, got %d", tt.row, payload.Row)
			}
			if tt.column > 0 && payload.Column != tt.column {
				t.Errorf("Expected column %d, got %d", tt.column, payload.Column)
			}
		})
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.ByStatus[history.StatusFailed] != int64(len(tests)) {
		t.Errorf("Expected %d failed runs, got %v", len(tests), stats.ByStatus)
	}
}

func TestWebSocket_Protocol(t *testing.T) {
	_, ts, _ := newTestServer(t, func(cfg *Config) { cfg.MaxSourceBytes = 16 })
	conn := dial(t, ts)

	send(t, conn, "ping", "p1", nil)
	if resp := receive(t, conn); resp.Type != "pong" || resp.ID != "p1" {
		t.Errorf("Expected pong p1, got %+v", resp)
	}

	send(t, conn, "compile", "x", nil)
	if payload := decodeError(t, receive(t, conn)); payload.Code != mdwerror.CodeInvalidInput.String() {
		t.Errorf("Expected INVALID_INPUT for unknown type, got %s", payload.Code)
	}

	send(t, conn, "run", "big", WSRunPayload{Source: strings.Repeat("display 1\n", 4)})
	if payload := decodeError(t, receive(t, conn)); payload.Code != mdwerror.CodeInvalidInput.String() {
		t.Errorf("Expected INVALID_INPUT for oversize source, got %s", payload.Code)
	}

	send(t, conn, "run", "bad", "not an object")
	if payload := decodeError(t, receive(t, conn)); payload.Code != mdwerror.CodeInvalidInput.String() {
		t.Errorf("Expected INVALID_INPUT for malformed payload, got %s", payload.Code)
	}

	send(t, conn, "cancel", "nothing", nil)
	if payload := decodeError(t, receive(t, conn)); payload.Code != mdwerror.CodeNotFound.String() {
		t.Errorf("Expected NOT_FOUND for unknown run, got %s", payload.Code)
	}

	send(t, conn, "run", "", WSRunPayload{Source: "display 7"})
	msgs := receiveUntil(t, conn)
	if msgs[0].ID == "" {
		t.Error("Expected a generated run ID")
	}
	if msgs[len(msgs)-1].Type != "done" {
		t.Errorf("Expected done, got %+v", msgs[len(msgs)-1])
	}
}

func TestWebSocket_Cancel(t *testing.T) {
	_, ts, _ := newTestServer(t, func(cfg *Config) {
		cfg.MaxSteps = 0
		cfg.RunTimeout = 0
	})
	conn := dial(t, ts)

	send(t, conn, "run", "loop", WSRunPayload{Source: "while 0 = 0:\n\tlet x := x + 1"})
	if resp := receive(t, conn); resp.Type != "started" {
		t.Fatalf("Expected started, got %+v", resp)
	}
	send(t, conn, "cancel", "loop", nil)

	payload := decodeError(t, receive(t, conn))
	if payload.Code != mdwerror.CodeCancelled.String() {
		t.Errorf("Expected %s, got %s", mdwerror.CodeCancelled, payload.Code)
	}
}

func TestWebSocket_Limits(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   mdwerror.Code
	}{
		{"timeout", func(cfg *Config) { cfg.MaxSteps = 0; cfg.RunTimeout = 50 * time.Millisecond }, mdwerror.CodeCancelled},
		{"step limit", func(cfg *Config) { cfg.MaxSteps = 500; cfg.RunTimeout = 0 }, mdwerror.CodeStepLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ts, _ := newTestServer(t, tt.mutate)
			conn := dial(t, ts)

			send(t, conn, "run", "loop", WSRunPayload{Source: "while 1 < 2: let x := 1"})
			msgs := receiveUntil(t, conn)

			payload := decodeError(t, msgs[len(msgs)-1])
			if payload.Code != tt.code.String() {
				t.Errorf("Expected %s, got %s", tt.code, payload.Code)
			}
		})
	}
}

func TestLineWriter(t *testing.T) {
	var lines []string
	w := &lineWriter{emit: func(line string) { lines = append(lines, line) }}

	w.Write([]byte("ab"))
	w.Write([]byte("c\nde\nf"))
	if strings.Join(lines, "|") != "abc|de" {
		t.Errorf("Expected abc|de, got %v", lines)
	}
	w.Flush()
	if len(lines) != 3 || lines[2] != "f" {
		t.Errorf("Expected trailing partial line, got %v", lines)
	}
	if w.captured.String() != "abc\nde\nf" {
		t.Errorf("Expected captured output, got %q", w.captured.String())
	}
}

func TestWebSocket_ReusesParsedPrograms(t *testing.T) {
	srv, ts, _ := newTestServer(t, nil)
	conn := dial(t, ts)

	for i := 0; i < 3; i++ {
		send(t, conn, "run", "", WSRunPayload{Source: "display 1"})
		if last := receiveUntil(t, conn); last[len(last)-1].Type != "done" {
			t.Fatalf("Expected done, got %+v", last[len(last)-1])
		}
	}
	send(t, conn, "run", "", WSRunPayload{Source: "let x 1"})
	receiveUntil(t, conn)

	if size := srv.ws.programs.Size(); size != 1 {
		t.Errorf("Expected one cached program, got %d", size)
	}
	hits, _, _ := srv.ws.programs.Stats()
	if hits != 2 {
		t.Errorf("Expected 2 cache hits, got %d", hits)
	}
}
