package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	mdwerror "github.com/msto63/kylang/foundation/core/error"
	mdwlog "github.com/msto63/kylang/foundation/core/log"
	"github.com/msto63/kylang/foundation/kylang"
	"github.com/msto63/kylang/foundation/kylang/ast"
	"github.com/msto63/kylang/internal/history"
	"github.com/msto63/kylang/pkg/core/cache"
	"github.com/msto63/kylang/pkg/core/logging"
)

// WebSocket upgrader with permissive settings for local development
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// readIdleTimeout closes connections that neither send messages nor answer pings
const readIdleTimeout = 120 * time.Second

// WebSocketHandler runs kylang programs sent over WebSocket connections
type WebSocketHandler struct {
	config  Config
	logger  *logging.Logger
	base    *mdwlog.Logger
	history history.Store

	// parsed programs keyed by source hash; syntax trees are never mutated
	programs *cache.Cache[*ast.Program]

	// open connections, closed on shutdown
	mu       sync.Mutex
	sessions map[string]*session
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cfg Config, logger *mdwlog.Logger, store history.Store) *WebSocketHandler {
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	return &WebSocketHandler{
		config:   cfg,
		logger:   logging.Wrap(logger, "kylang-websocket"),
		base:     logger,
		history:  store,
		programs: cache.New[*ast.Program](cache.DefaultConfig()),
		sessions: make(map[string]*session),
	}
}

// WSMessage represents a client message
type WSMessage struct {
	Type    string          `json:"type"`              // "run", "cancel", "ping"
	ID      string          `json:"id,omitempty"`      // Run ID chosen by the client
	Payload json.RawMessage `json:"payload,omitempty"` // Message-specific payload
}

// WSRunPayload carries a program and its input lines
type WSRunPayload struct {
	Source string   `json:"source"`
	Input  []string `json:"input,omitempty"`
}

// WSResponse represents a server message
type WSResponse struct {
	Type    string      `json:"type"`              // "started", "output", "done", "error", "pong"
	ID      string      `json:"id,omitempty"`      // Run the message belongs to
	Payload interface{} `json:"payload,omitempty"` // Response-specific payload
}

// WSOutputPayload is one displayed line
type WSOutputPayload struct {
	Line string `json:"line"`
}

// WSDonePayload describes a finished run
type WSDonePayload struct {
	Steps      int64            `json:"steps"`
	Displays   int              `json:"displays"`
	Inputs     int              `json:"inputs"`
	DurationMS int64            `json:"duration_ms"`
	Variables  map[string]int64 `json:"variables"`
}

// WSErrorPayload represents an error payload
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Row     int    `json:"row,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// session is one WebSocket connection
type session struct {
	id      string
	conn    *websocket.Conn
	cancel  context.CancelFunc
	writeMu sync.Mutex

	mu   sync.Mutex
	runs map[string]context.CancelFunc
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	h.handleConnection(conn)
}

// Shutdown cancels all running programs on all connections
func (h *WebSocketHandler) Shutdown() {
	h.programs.Close()

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, s := range h.sessions {
		s.cancel()
		s.conn.Close()
		delete(h.sessions, id)
	}
}

// handleConnection handles a single WebSocket connection
func (h *WebSocketHandler) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:     uuid.NewString(),
		conn:   conn,
		cancel: cancel,
		runs:   make(map[string]context.CancelFunc),
	}
	logger := h.logger.With("session", s.id)
	logger.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	var wg sync.WaitGroup
	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()
	defer func() {
		cancel()
		wg.Wait()
		h.mu.Lock()
		delete(h.sessions, s.id)
		h.mu.Unlock()
	}()

	conn.SetReadLimit(int64(h.config.MaxSourceBytes)*2 + 64*1024)

	// Set read deadline for ping/pong
	conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
		return nil
	})

	// Read messages in a loop
	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error("WebSocket read error", "error", err)
			} else {
				logger.Info("WebSocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readIdleTimeout))

		switch msg.Type {
		case "ping":
			h.send(s, WSResponse{Type: "pong", ID: msg.ID})

		case "run":
			var payload WSRunPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.sendError(s, msg.ID, WSErrorPayload{
					Code:    mdwerror.CodeInvalidInput.String(),
					Message: "Invalid run payload: " + err.Error(),
				})
				continue
			}
			if msg.ID == "" {
				msg.ID = uuid.NewString()
			}
			if h.config.MaxSourceBytes > 0 && len(payload.Source) > h.config.MaxSourceBytes {
				h.sendError(s, msg.ID, WSErrorPayload{
					Code:    mdwerror.CodeInvalidInput.String(),
					Message: "Source exceeds the limit of " + strconv.Itoa(h.config.MaxSourceBytes) + " bytes",
				})
				continue
			}

			runCtx, runCancel := context.WithCancel(ctx)
			if !s.track(msg.ID, runCancel) {
				runCancel()
				h.sendError(s, msg.ID, WSErrorPayload{
					Code:    mdwerror.CodeInvalidInput.String(),
					Message: "Run " + msg.ID + " is already in progress",
				})
				continue
			}

			wg.Add(1)
			go func(id string, payload WSRunPayload) {
				defer wg.Done()
				defer s.untrack(id)
				h.handleRun(runCtx, s, id, payload)
			}(msg.ID, payload)

		case "cancel":
			if !s.cancelRun(msg.ID) {
				h.sendError(s, msg.ID, WSErrorPayload{
					Code:    mdwerror.CodeNotFound.String(),
					Message: "No run with id " + msg.ID,
				})
			}

		default:
			h.sendError(s, msg.ID, WSErrorPayload{
				Code:    mdwerror.CodeInvalidInput.String(),
				Message: "Unknown message type: " + msg.Type,
			})
		}
	}
}

// handleRun executes one program and streams its output
func (h *WebSocketHandler) handleRun(ctx context.Context, s *session, id string, payload WSRunPayload) {
	if h.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.RunTimeout)
		defer cancel()
	}

	input := ""
	if len(payload.Input) > 0 {
		input = strings.Join(payload.Input, "\n") + "\n"
	}
	out := &lineWriter{emit: func(line string) {
		h.send(s, WSResponse{Type: "output", ID: id, Payload: WSOutputPayload{Line: line}})
	}}

	engine := kylang.New(kylang.Options{
		Logger:   h.base,
		Input:    strings.NewReader(input),
		Output:   out,
		MaxSteps: h.config.MaxSteps,
	})

	record := history.NewRun(history.OriginServer, "", payload.Source)
	h.send(s, WSResponse{Type: "started", ID: id})

	var result *kylang.Result
	prog, err := h.programs.GetOrSet(record.SourceHash, func() (*ast.Program, error) {
		return engine.ParseSource(payload.Source)
	})
	if err == nil {
		result, err = engine.Execute(ctx, prog)
	}
	out.Flush()

	record.Output = out.captured.String()
	if result != nil {
		record.Steps = result.Steps
		record.Duration = result.Duration
	}

	if err != nil {
		record.Fail(err)
	}
	h.logger.Debug("Run finished", "session", s.id, "run", id, "status", record.Status, "steps", record.Steps)
	if h.history != nil {
		// the run context may already be cancelled
		if recErr := h.history.Record(context.Background(), record); recErr != nil {
			h.logger.Warn("Failed to record run", "run", id, "error", recErr)
		}
	}

	if err != nil {
		h.sendError(s, id, errorPayload(err))
		return
	}
	h.send(s, WSResponse{Type: "done", ID: id, Payload: WSDonePayload{
		Steps:      result.Steps,
		Displays:   result.Displays,
		Inputs:     result.Inputs,
		DurationMS: result.Duration.Milliseconds(),
		Variables:  result.Variables,
	}})
}

// errorPayload converts a run failure into its wire form
func errorPayload(err error) WSErrorPayload {
	payload := WSErrorPayload{
		Code:    mdwerror.GetCode(err).String(),
		Message: err.Error(),
	}
	if pos, ok := kylang.ErrorPosition(err); ok {
		payload.Row = pos.Row
		payload.Column = pos.Column
	}
	return payload
}

// send writes a response; writes from concurrent runs are serialised
func (h *WebSocketHandler) send(s *session, resp WSResponse) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if h.config.WriteTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
	}
	if err := s.conn.WriteJSON(resp); err != nil {
		h.logger.Error("WebSocket send error", "session", s.id, "error", err)
	}
}

// sendError sends an error response via WebSocket
func (h *WebSocketHandler) sendError(s *session, id string, payload WSErrorPayload) {
	h.send(s, WSResponse{Type: "error", ID: id, Payload: payload})
}

func (s *session) track(id string, cancel context.CancelFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.runs[id]; busy {
		return false
	}
	s.runs[id] = cancel
	return true
}

func (s *session) untrack(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.runs[id]; ok {
		cancel()
		delete(s.runs, id)
	}
}

func (s *session) cancelRun(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancel, ok := s.runs[id]
	if ok {
		cancel()
	}
	return ok
}

// lineWriter turns program output into one callback per line
type lineWriter struct {
	emit     func(line string)
	pending  bytes.Buffer
	captured bytes.Buffer
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.captured.Write(p)
	w.pending.Write(p)
	for {
		line, err := w.pending.ReadString('\n')
		if err != nil {
			// keep the partial line for the next write
			rest := []byte(line)
			w.pending.Reset()
			w.pending.Write(rest)
			return len(p), nil
		}
		w.emit(strings.TrimSuffix(line, "\n"))
	}
}

// Flush emits a trailing partial line
func (w *lineWriter) Flush() {
	if w.pending.Len() > 0 {
		w.emit(w.pending.String())
		w.pending.Reset()
	}
}
