package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/saeidalz13/battleship-heatmap/db/sqlc"
	mc "github.com/saeidalz13/battleship-heatmap/models/connection"
	"github.com/saeidalz13/battleship-heatmap/models/game"
	"github.com/sqlc-dev/pqtype"
)

const (
	URLQuerySessionIDKeyword string = "sessionID"
)

var (
	upgrader = websocket.Upgrader{
		HandshakeTimeout: time.Second * 5,
		ReadBufferSize:   2048,
		// heat matrices are sent every turn
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
)

type RequestProcessor struct {
	// sessions end when ctx is done
	ctx            context.Context
	sessionManager mc.SessionManager
	gameManager    game.GameManager
	// nil disables analytics
	db       *sqlc.DbManager
	ipnet    net.IPNet
	defaults game.Config
}

func NewRequestProcessor(
	ctx context.Context,
	sessionManager mc.SessionManager,
	gameManager game.GameManager,
	q sqlc.Querier,
	defaults game.Config,
) *RequestProcessor {
	rp := &RequestProcessor{
		ctx:            ctx,
		sessionManager: sessionManager,
		gameManager:    gameManager,
		ipnet:          serverIpNet(),
		defaults:       defaults,
	}

	if q != nil {
		dm := sqlc.NewDbManager(q, pqtype.Inet{IPNet: rp.ipnet, Valid: true})
		rp.db = &dm
	}
	return rp
}

// The first non-loopback IPv4 address of this machine. Falls back
// to loopback so that the server can run in isolated environments.
func serverIpNet() net.IPNet {
	ifaces, err := net.Interfaces()
	if err != nil {
		log.Warn("failed to list interfaces", "err", err)
		return loopbackIpNet()
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipnet.IP.To4(); ip4 != nil && !ip4.IsLoopback() {
				return net.IPNet{IP: ip4, Mask: net.CIDRMask(32, 32)}
			}
		}
	}

	log.Warn("no external ipv4 address found; using loopback")
	return loopbackIpNet()
}

func loopbackIpNet() net.IPNet {
	return net.IPNet{IP: net.IPv4(127, 0, 0, 1).To4(), Mask: net.CIDRMask(32, 32)}
}

// Expose this method to use it in testing
func (rp *RequestProcessor) GetIpNet() net.IPNet {
	return rp.ipnet
}

func (rp *RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "err", err)
		return
	}

	sessionIdQuery := r.URL.Query().Get(URLQuerySessionIDKeyword)
	switch sessionIdQuery {
	case "":
		log.Info("a new connection established", "remote", conn.RemoteAddr().String())
		rp.processSessionRequests(rp.sessionManager.GenerateNewSession(conn))

	default:
		if err := rp.sessionManager.ReconnectSession(sessionIdQuery, conn); err != nil {
			// This either means an expired session or invalid session ID
			log.Warn("reconnection refused", "err", err)
			_ = conn.WriteJSON(mc.NewMessage[mc.NoPayload](mc.CodeReceivedInvalidSessionID))
			conn.Close()
		}
	}
}

func (rp *RequestProcessor) processSessionRequests(session *mc.Session) {
	sessionId := session.Id()
	ctx, cancel := context.WithCancel(rp.ctx)
	// unblocks the read in sessionLoop on shutdown
	stopClosing := context.AfterFunc(ctx, func() {
		if conn := session.Conn(); conn != nil {
			conn.Close()
		}
	})

	defer func() {
		stopClosing()
		cancel()
		if session.Game() != nil {
			rp.gameManager.TerminateGame(session.Game().Uuid())
		}
		if session.Conn() != nil {
			session.Conn().Close()
		}
		rp.sessionManager.TerminateSession(sessionId)
	}()

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: sessionId})
	if err := rp.sessionManager.WriteToSessionConn(session, resp, mc.MessageTypeJSON); err != nil {
		return
	}

sessionLoop:
	for {
		// A WebSocket frame can be one of 6 types: text=1, binary=2, ping=9, pong=10, close=8 and continuation=0
		// https://www.rfc-editor.org/rfc/rfc6455.html#section-11.8
		_, payload, err := rp.sessionManager.ReadFromSessionConn(session)
		if err != nil {
			// the session connection could not be recovered
			break sessionLoop
		}

		code, err := rp.sessionManager.FetchCodeFromMsg(payload)
		if err != nil {
			msg := mc.NewErrorMessage(mc.CodeSignalAbsent, "incoming req payload must contain 'code' field", "")
			if err = rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		switch code {

		// A new game replaces whatever game the session had
		case mc.CodeCreateGame:
			g, respMsg := NewRequest(payload).HandleCreateGame(rp.gameManager, rp.defaults)
			if g != nil {
				if prev := session.Game(); prev != nil {
					rp.gameManager.TerminateGame(prev.Uuid())
				}
				session.SetGame(g)
				rp.incrementGamesCreated()
			}

			if err := rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}

		// One AI turn. The end game message follows the
		// turn that finished the game.
		case mc.CodeHotShot:
			respMsg := NewRequest(payload).HandleHotShot(session.Game(), sessionId)
			if err := rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}

			if respMsg.Error != nil || !session.Game().IsOver() {
				continue sessionLoop
			}

			if err := rp.endGame(session); err != nil {
				break sessionLoop
			}

		case mc.CodeAutoPlay:
			write := func(msg mc.Message[mc.RespHotShot]) error {
				return rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON)
			}

			respMsg, err := NewRequest(payload).HandleAutoPlay(ctx, session.Game(), sessionId, write)
			if err != nil {
				break sessionLoop
			}
			if respMsg.Error == nil && respMsg.Payload.Result.Won {
				rp.recordGameWon(respMsg.Payload.Result.Shots)
			}

			if err := rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}

		case mc.CodeServerStats:
			respMsg := NewRequest(payload).HandleServerStats(ctx, rp.analytics())
			if err := rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}

		default:
			respInvalidSignal := mc.NewErrorMessage(mc.CodeInvalidSignal, "", "invalid code in the incoming payload")
			if err := rp.sessionManager.WriteToSessionConn(session, respInvalidSignal, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
		}
	}
}

func (rp *RequestProcessor) endGame(session *mc.Session) error {
	g := session.Game()
	res := g.Result()
	if res.Won {
		rp.recordGameWon(res.Shots)
	}

	msg := mc.NewMessage[mc.RespEndGame](mc.CodeEndGame)
	msg.AddPayload(mc.RespEndGame{GameUuid: g.Uuid(), Result: res})
	return rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON)
}

func (rp *RequestProcessor) analytics() *sqlc.AnalyticsManager {
	if rp.db == nil {
		return nil
	}
	return rp.db.Analytics
}

// Analytics failures never end a session.
func (rp *RequestProcessor) incrementGamesCreated() {
	if rp.db == nil {
		return
	}

	ctx, cancel := context.WithTimeout(rp.ctx, sqlc.QuerierCtxTimeout)
	defer cancel()
	if err := rp.db.Analytics.IncrementGamesCreatedCount(ctx); err != nil {
		log.Error("failed to increment games created", "err", err)
	}
}

func (rp *RequestProcessor) recordGameWon(shots int) {
	if rp.db == nil {
		return
	}

	ctx, cancel := context.WithTimeout(rp.ctx, sqlc.QuerierCtxTimeout)
	defer cancel()
	if err := rp.db.Analytics.RecordGameWon(ctx, shots); err != nil {
		log.Error("failed to record won game", "err", err)
	}
}
