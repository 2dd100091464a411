package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/platform/logger"
	"github.com/phrazzld/taskhub-api/internal/redact"
	"github.com/phrazzld/taskhub-api/internal/service"
)

// Connection limits.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
)

// Manager tracks open connections by session and runs the relay loop for each.
type Manager struct {
	chats    service.ChatService
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[string]map[*peer]struct{}
	closed   bool
}

// NewManager creates a Manager relaying through chats.
func NewManager(chats service.ChatService, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		chats: chats,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients authenticate with a bearer token, not cookies.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:   logger.With("component", "chat_manager"),
		sessions: make(map[string]map[*peer]struct{}),
	}
}

// peer serializes writes to one connection.
type peer struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (p *peer) write(frame Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteJSON(frame)
}

func (p *peer) control(messageType int, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteControl(messageType, data, time.Now().Add(writeWait))
}

// ServeSession upgrades the request and relays session sessionID for user
// until the client disconnects. The caller must have authenticated user.
func (m *Manager) ServeSession(w http.ResponseWriter, r *http.Request, sessionID string, user uuid.UUID) {
	ctx := r.Context()
	log := logger.FromContextOrDefault(ctx, m.logger).With("session_id", sessionID, "user_id", user)

	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err)
		return
	}
	p := &peer{conn: conn}
	defer func() { _ = conn.Close() }()

	session, err := m.chats.OpenSession(ctx, sessionID, user)
	if err != nil {
		code, reason := websocket.CloseInternalServerErr, "Failed to open session"
		if errors.Is(err, service.ErrSessionForbidden) {
			code, reason = websocket.ClosePolicyViolation, "Session belongs to another user"
			log.Warn("refused websocket for foreign session")
		} else {
			log.Error("failed to open chat session", "error", redact.Error(err))
		}
		_ = p.control(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
		return
	}

	if !m.join(session.SessionID, p) {
		_ = p.control(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down"))
		return
	}
	defer m.leave(session.SessionID, p)

	log.Info("websocket connected", "connections", m.Connections(session.SessionID))

	if err := m.replay(ctx, p, session); err != nil {
		log.Error("failed to replay chat history", "error", redact.Error(err))
		return
	}

	stop := make(chan struct{})
	defer close(stop)
	go m.keepAlive(p, stop)

	m.readLoop(ctx, p, session.SessionID, log)
	log.Info("websocket disconnected")
}

// replay sends the stored transcript, or a stored welcome message when the
// session has no history yet.
func (m *Manager) replay(ctx context.Context, p *peer, session *domain.ChatSession) error {
	history, err := m.chats.History(ctx, session.SessionID, session.UserID)
	if err != nil {
		return err
	}

	if len(history) == 0 {
		welcome, err := m.chats.SaveMessage(ctx, session.SessionID, domain.MessageTypeSystem,
			fmt.Sprintf(welcomeFormat, session.SessionID))
		if err != nil {
			return err
		}
		return p.write(messageFrame(welcome))
	}

	for _, msg := range history {
		if err := p.write(messageFrame(msg)); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) readLoop(ctx context.Context, p *peer, sessionID string, log *slog.Logger) {
	conn := p.conn
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed", "error", err)
			}
			return
		}

		var in inbound
		if err := json.Unmarshal(data, &in); err != nil || in.Content == nil {
			_ = p.write(statusFrame(FrameError, InvalidFormatText))
			continue
		}

		content := strings.TrimSpace(*in.Content)
		if content == "" {
			continue
		}

		if err := m.handleMessage(ctx, sessionID, content); err != nil {
			log.Error("failed to handle chat message", "error", redact.Error(err))
			_ = p.write(statusFrame(FrameError, ProcessFailedText))
		}
	}
}

// handleMessage stores the user message, relays it, and relays the
// assistant's reply.
func (m *Manager) handleMessage(ctx context.Context, sessionID, content string) error {
	userMsg, err := m.chats.SaveMessage(ctx, sessionID, domain.MessageTypeUser, content)
	if err != nil {
		return err
	}
	m.Broadcast(sessionID, messageFrame(userMsg))
	m.Broadcast(sessionID, statusFrame(FrameTyping, TypingText))

	reply, err := m.chats.Reply(ctx, sessionID, content)
	if err != nil {
		return err
	}
	m.Broadcast(sessionID, messageFrame(reply))
	return nil
}

func (m *Manager) keepAlive(p *peer, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := p.control(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Broadcast writes frame to every connection joined to sessionID.
func (m *Manager) Broadcast(sessionID string, frame Frame) {
	m.mu.Lock()
	peers := make([]*peer, 0, len(m.sessions[sessionID]))
	for p := range m.sessions[sessionID] {
		peers = append(peers, p)
	}
	m.mu.Unlock()

	for _, p := range peers {
		if err := p.write(frame); err != nil {
			m.logger.Debug("dropping frame for broken connection",
				"session_id", sessionID,
				"error", err)
		}
	}
}

// Connections returns the number of open connections joined to sessionID.
func (m *Manager) Connections(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions[sessionID])
}

// Close sends a going-away close frame to every connection and refuses new ones.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	var peers []*peer
	for _, set := range m.sessions {
		for p := range set {
			peers = append(peers, p)
		}
	}
	m.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")
	for _, p := range peers {
		_ = p.control(websocket.CloseMessage, msg)
		_ = p.conn.Close()
	}
	m.logger.Info("chat connections closed", "count", len(peers))
}

func (m *Manager) join(sessionID string, p *peer) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}
	set, ok := m.sessions[sessionID]
	if !ok {
		set = make(map[*peer]struct{})
		m.sessions[sessionID] = set
	}
	set[p] = struct{}{}
	return true
}

func (m *Manager) leave(sessionID string, p *peer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set := m.sessions[sessionID]
	delete(set, p)
	if len(set) == 0 {
		delete(m.sessions, sessionID)
	}
}
