package socket

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultPingInterval   = 15 * time.Second
	defaultReconnectDelay = 3 * time.Second
	closeWriteTimeout     = time.Second
)

// FrameHandler receives every inbound text frame, in arrival order, from the
// single read loop.
type FrameHandler func(data []byte)

type Config struct {
	BaseURL        string
	PingInterval   time.Duration
	ReconnectDelay time.Duration
	Handler        FrameHandler
	Logger         *zap.Logger
}

// Manager owns one push connection to a room. It keepalives the link and,
// after an unexpected close, schedules exactly one delayed redial; a clean
// close or an explicit Close ends the connection for good.
type Manager struct {
	cfg       Config
	clientKey string
	dialer    *websocket.Dialer
	log       *zap.Logger

	mu      sync.Mutex
	writeMu sync.Mutex
	handler FrameHandler
	conn    *websocket.Conn
	done    chan struct{}
	intend  bool
	roomID  string
	ctx     context.Context

	// generation invalidates callbacks from torn-down connections: the read
	// loop and any pending redial carry the generation they were created
	// under and bail out when it no longer matches.
	generation uint64
}

func NewManager(cfg Config) *Manager {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = defaultReconnectDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Manager{
		cfg:       cfg,
		clientKey: uuid.NewString(),
		dialer:    websocket.DefaultDialer,
		log:       cfg.Logger,
		handler:   cfg.Handler,
		ctx:       context.Background(),
	}
}

// SetHandler replaces the frame handler. Call before Open.
func (m *Manager) SetHandler(h FrameHandler) {
	m.mu.Lock()
	m.handler = h
	m.mu.Unlock()
}

// ClientKey identifies this client across reconnects of the same Manager.
func (m *Manager) ClientKey() string {
	return m.clientKey
}

func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

// Open dials the room's push endpoint. Reopening tears down any existing
// connection first.
func (m *Manager) Open(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.intend = true
	m.roomID = roomID
	m.ctx = ctx
	return m.dialLocked()
}

func (m *Manager) dialLocked() error {
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
		close(m.done)
	}
	m.generation++
	gen := m.generation

	endpoint, err := endpointURL(m.cfg.BaseURL, m.roomID, m.clientKey)
	if err != nil {
		return err
	}

	conn, _, err := m.dialer.DialContext(m.ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial room socket: %w", err)
	}

	m.conn = conn
	m.done = make(chan struct{})
	go m.readLoop(conn, gen)
	go m.keepalive(conn, m.done)

	m.log.Info("room socket open", zap.String("room", m.roomID))
	return nil
}

// Close ends the connection for good: no redial will follow. Safe to call
// repeatedly.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.intend = false
	m.generation++
	if m.conn == nil {
		return nil
	}

	m.writeMu.Lock()
	m.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeWriteTimeout))
	m.writeMu.Unlock()

	err := m.conn.Close()
	m.conn = nil
	close(m.done)
	return err
}

func (m *Manager) readLoop(conn *websocket.Conn, gen uint64) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			m.handleClosed(gen, err)
			return
		}

		m.mu.Lock()
		handler := m.handler
		m.mu.Unlock()
		if handler == nil {
			m.log.Debug("dropping frame, no handler registered")
			continue
		}
		handler(data)
	}
}

func (m *Manager) keepalive(conn *websocket.Conn, done chan struct{}) {
	ticker := time.NewTicker(m.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			m.writeMu.Lock()
			err := conn.WriteMessage(websocket.TextMessage, []byte("ping"))
			m.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (m *Manager) handleClosed(gen uint64, cause error) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
		close(m.done)
	}
	if !m.intend {
		m.mu.Unlock()
		return
	}

	code := closeCode(cause)
	if code == websocket.CloseNormalClosure {
		m.intend = false
		m.mu.Unlock()
		m.log.Info("room socket closed cleanly")
		return
	}

	delay := m.cfg.ReconnectDelay
	m.mu.Unlock()

	m.log.Warn("room socket lost, scheduling redial",
		zap.Int("code", code), zap.Duration("delay", delay), zap.Error(cause))
	time.AfterFunc(delay, func() { m.redial(gen) })
}

func (m *Manager) redial(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.intend || gen != m.generation {
		return
	}
	if err := m.dialLocked(); err != nil {
		m.log.Warn("redial failed", zap.Error(err))
		next := m.generation
		time.AfterFunc(m.cfg.ReconnectDelay, func() { m.redial(next) })
	}
}

func closeCode(err error) int {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code
	}
	return websocket.CloseAbnormalClosure
}

func endpointURL(base, roomID, clientKey string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("parse server url: unsupported scheme %q", u.Scheme)
	}

	u.Path = path.Join(u.Path, "ws", roomID)
	query := u.Query()
	query.Set("_pk", clientKey)
	u.RawQuery = query.Encode()
	return u.String(), nil
}
