package connection

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	cerr "github.com/saeidalz13/battleship-heatmap/internal/error"
)

const (
	defaultGracePeriod     time.Duration = time.Minute * 2
	defaultCleanupInterval time.Duration = time.Minute * 20
)

type SessionManager interface {
	GenerateNewSession(conn *websocket.Conn) *Session
	CleanupPeriodically(ctx context.Context)

	FindSession(sessionId string) (*Session, error)
	TerminateSession(sessionId string)
	ReconnectSession(sessionId string, conn *websocket.Conn) error
	HandleAbnormalClosureSession(session *Session, failedConn *websocket.Conn) error

	WriteToSessionConn(session *Session, msg interface{}, msgType uint8) error
	ReadFromSessionConn(session *Session) (int, []byte, error)
	FetchCodeFromMsg(payload []byte) (uint8, error)
}

type AISessionManager struct {
	cleanupInterval time.Duration
	gracePeriod     time.Duration
	sessions        map[string]*Session
	mu              sync.RWMutex
}

type SessionManagerOption func(*AISessionManager)

func WithGracePeriod(d time.Duration) SessionManagerOption {
	return func(sm *AISessionManager) {
		sm.gracePeriod = d
	}
}

func WithCleanupInterval(d time.Duration) SessionManagerOption {
	return func(sm *AISessionManager) {
		sm.cleanupInterval = d
	}
}

func NewAISessionManager(opts ...SessionManagerOption) *AISessionManager {
	initMapSize := 10

	sm := &AISessionManager{
		sessions:        make(map[string]*Session, initMapSize),
		cleanupInterval: defaultCleanupInterval,
		gracePeriod:     defaultGracePeriod,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

var _ SessionManager = (*AISessionManager)(nil)

func (sm *AISessionManager) GenerateNewSession(conn *websocket.Conn) *Session {
	sessionId := base64.RawURLEncoding.EncodeToString([]byte(uuid.New().String()))
	session := NewSession(sessionId, conn)

	sm.mu.Lock()
	sm.sessions[sessionId] = session
	sm.mu.Unlock()

	return session
}

func (sm *AISessionManager) FindSession(sessionId string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, prs := sm.sessions[sessionId]
	if !prs {
		return nil, cerr.ErrSessionNotFound(sessionId)
	}

	if session == nil {
		return nil, cerr.ErrSessionIsNil(sessionId)
	}

	return session, nil
}

func (sm *AISessionManager) TerminateSession(sessionId string) {
	sm.mu.Lock()
	delete(sm.sessions, sessionId)
	sm.mu.Unlock()
	log.Info("session terminated", "session", sessionId)
}

func (sm *AISessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

func (sm *AISessionManager) ReconnectSession(sessionId string, conn *websocket.Conn) error {
	session, err := sm.FindSession(sessionId)
	if err != nil {
		return err
	}
	session.reconnectionAfterAbnormalClosure(conn)
	return nil
}

// To ensure that there is no dangling connections,
// server session manager marks the connections with a
// lifetime of more than cleanupInterval as stale and deletes them.
func (sm *AISessionManager) CleanupPeriodically(ctx context.Context) {
	ticker := time.NewTicker(sm.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			sm.mu.Lock()
			for id, session := range sm.sessions {
				if time.Since(session.createdAt) > sm.cleanupInterval {
					delete(sm.sessions, id)
					log.Info("removed stale session", "session", id)
				}
			}
			sm.mu.Unlock()
		}
	}
}

// This function takes care of abnormal closures. The
// session is kept for gracePeriod so the client can come
// back with its session id and carry on with its game.
func (sm *AISessionManager) HandleAbnormalClosureSession(s *Session, failedConn *websocket.Conn) error {
	reconnected := s.reconnected(failedConn)

	log.Info("starting grace period", "session", s.id, "grace_period", sm.gracePeriod)
	timer := time.NewTimer(sm.gracePeriod)
	defer timer.Stop()

	select {
	case <-timer.C:
		return NewConnErr(ConnLoopBreak).AddDesc("grace period is over for session: " + s.id)

	case <-reconnected:
		log.Info("client reconnected", "session", s.id)
		return nil
	}
}

func (sm *AISessionManager) WriteToSessionConn(session *Session, msg interface{}, msgType uint8) error {
	conn := session.Conn()
	err := session.writeToConnWithRetry(msg, msgType)
	if err == nil {
		return nil
	}

	var connErr ConnErr
	if !errors.As(err, &connErr) {
		return err
	}

	if connErr.Code() != ConnLoopAbnormalClosureRetry {
		return connErr
	}

	if err := sm.HandleAbnormalClosureSession(session, conn); err != nil {
		return err
	}
	// one more attempt on the fresh connection
	return session.writeToConnWithRetry(msg, msgType)
}

func (sm *AISessionManager) ReadFromSessionConn(session *Session) (int, []byte, error) {
	var retries uint8

	for {
		conn := session.Conn()
		messageType, payload, err := conn.ReadMessage()
		if err == nil {
			return messageType, payload, nil
		}

		// the client already came back on another connection
		if session.Conn() != conn {
			retries = 0
			continue
		}

		switch session.handleReadFromConnErr(err, retries) {
		case ConnLoopContinue:
			retries++
			continue

		case ConnLoopAbnormalClosureRetry:
			if err := sm.HandleAbnormalClosureSession(session, conn); err != nil {
				return -1, []byte{}, err
			}
			retries = 0

		default:
			return -1, []byte{}, err
		}
	}
}

func (sm *AISessionManager) FetchCodeFromMsg(payload []byte) (uint8, error) {
	var signal Signal
	const randomInvalidCode uint8 = 255

	if err := json.Unmarshal(payload, &signal); err != nil {
		return randomInvalidCode, err
	}

	return signal.Code, nil
}
