package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/websocket"
	"github.com/saeidalz13/battleship-heatmap/db/sqlc"
	mb "github.com/saeidalz13/battleship-heatmap/models/battleship"
	mc "github.com/saeidalz13/battleship-heatmap/models/connection"
	"github.com/saeidalz13/battleship-heatmap/models/game"
	"github.com/sqlc-dev/pqtype"
)

const readTimeout = time.Second * 5

var dialer = websocket.Dialer{
	HandshakeTimeout: 5 * time.Second,
}

type testEnv struct {
	cancel         context.CancelFunc
	wsUrl          string
	rp             *RequestProcessor
	mock           sqlmock.Sqlmock
	gameManager    *game.AIGameManager
	sessionManager *mc.AISessionManager
}

func (e testEnv) inet() pqtype.Inet {
	return pqtype.Inet{IPNet: e.rp.GetIpNet(), Valid: true}
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	sm := mc.NewAISessionManager(mc.WithGracePeriod(time.Second * 2))
	gm := game.NewAIGameManager()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	rp := NewRequestProcessor(ctx, sm, gm, sqlc.New(db), game.DefaultConfig())

	srv := httptest.NewServer(rp)
	t.Cleanup(srv.Close)

	return testEnv{
		cancel:         cancel,
		wsUrl:          "ws" + strings.TrimPrefix(srv.URL, "http"),
		rp:             rp,
		mock:           mock,
		gameManager:    gm,
		sessionManager: sm,
	}
}

func readMessage[T any](t *testing.T, conn *websocket.Conn) mc.Message[T] {
	t.Helper()

	var msg mc.Message[T]
	if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	return msg
}

// Dials a fresh session and returns its id.
func dialSession(t *testing.T, url string) (*websocket.Conn, string) {
	t.Helper()

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })

	msg := readMessage[mc.RespSessionId](t, conn)
	if msg.Code != mc.CodeSessionID {
		t.Fatalf("expected code: %d\tgot: %d", mc.CodeSessionID, msg.Code)
	}
	if msg.Payload.SessionID == "" {
		t.Fatal("expected a session id")
	}
	return conn, msg.Payload.SessionID
}

func createGame(t *testing.T, env testEnv, conn *websocket.Conn, req mc.ReqCreateGame) mc.RespCreateGame {
	t.Helper()

	env.mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, games_created\)`).
		WithArgs(env.inet()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := conn.WriteJSON(mc.Message[mc.ReqCreateGame]{Code: mc.CodeCreateGame, Payload: req}); err != nil {
		t.Fatal(err)
	}

	resp := readMessage[mc.RespCreateGame](t, conn)
	if resp.Code != mc.CodeCreateGame {
		t.Fatalf("expected code: %d\tgot: %d", mc.CodeCreateGame, resp.Code)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %s", resp.Error.ErrorDetails)
	}
	if err := env.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
	return resp.Payload
}

func TestInvalidCode(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := dialSession(t, env.wsUrl)

	tests := []struct {
		name         string
		payload      []byte
		expectedCode uint8
	}{
		{name: "random invalid code", payload: []byte(`{"code": 200}`), expectedCode: mc.CodeInvalidSignal},
		{name: "missing code field", payload: []byte(`{}`), expectedCode: mc.CodeInvalidSignal},
		{name: "not json", payload: []byte(`hot shot please`), expectedCode: mc.CodeSignalAbsent},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, test.payload); err != nil {
				t.Fatal(err)
			}

			resp := readMessage[mc.NoPayload](t, conn)
			if resp.Code != test.expectedCode {
				t.Fatalf("expected code: %d\tgot: %d", test.expectedCode, resp.Code)
			}
			if resp.Error == nil {
				t.Fatal("expected error in response")
			}
		})
	}
}

func TestCreateGame(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := dialSession(t, env.wsUrl)

	t.Run("server defaults", func(t *testing.T) {
		resp := createGame(t, env, conn, mc.ReqCreateGame{Seed: 3})
		if resp.GridSize != game.DefaultGridSize {
			t.Fatalf("expected grid size: %d\tgot: %d", game.DefaultGridSize, resp.GridSize)
		}
		if len(resp.HeatMatrix) != game.DefaultGridSize {
			t.Fatalf("expected heat rows: %d\tgot: %d", game.DefaultGridSize, len(resp.HeatMatrix))
		}
		if _, err := env.gameManager.GetGame(resp.GameUuid); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("replacing the game terminates the previous one", func(t *testing.T) {
		first := createGame(t, env, conn, mc.ReqCreateGame{GridSize: 8, Ships: []int{3, 2}})
		second := createGame(t, env, conn, mc.ReqCreateGame{GridSize: 8, Ships: []int{3, 2}})

		if _, err := env.gameManager.GetGame(first.GameUuid); err == nil {
			t.Fatal("expected the replaced game to be terminated")
		}
		if second.GridSize != 8 || len(second.Ships) != 2 {
			t.Fatalf("expected requested configuration\tgot: %+v", second)
		}
	})

	t.Run("grid above the server limit", func(t *testing.T) {
		req := mc.Message[mc.ReqCreateGame]{Code: mc.CodeCreateGame, Payload: mc.ReqCreateGame{GridSize: 2500, TurnCap: 100}}
		if err := conn.WriteJSON(req); err != nil {
			t.Fatal(err)
		}

		resp := readMessage[mc.RespCreateGame](t, conn)
		if resp.Code != mc.CodeCreateGame {
			t.Fatalf("expected code: %d\tgot: %d", mc.CodeCreateGame, resp.Code)
		}
		if resp.Error == nil {
			t.Fatal("expected error for a grid above the server limit")
		}
		if resp.Payload.GameUuid != "" {
			t.Fatalf("expected no game\tgot: %s", resp.Payload.GameUuid)
		}
	})

	t.Run("turn cap above the server limit", func(t *testing.T) {
		req := mc.Message[mc.ReqCreateGame]{Code: mc.CodeCreateGame, Payload: mc.ReqCreateGame{GridSize: 6, Ships: []int{2}, TurnCap: 1 << 30}}
		if err := conn.WriteJSON(req); err != nil {
			t.Fatal(err)
		}

		if resp := readMessage[mc.RespCreateGame](t, conn); resp.Error == nil {
			t.Fatal("expected error for a turn cap above the server limit")
		}
	})

	t.Run("invalid configuration", func(t *testing.T) {
		req := mc.Message[mc.ReqCreateGame]{Code: mc.CodeCreateGame, Payload: mc.ReqCreateGame{GridSize: 3, Ships: []int{5}}}
		if err := conn.WriteJSON(req); err != nil {
			t.Fatal(err)
		}

		resp := readMessage[mc.RespCreateGame](t, conn)
		if resp.Error == nil {
			t.Fatal("expected error for a ship longer than the grid")
		}
	})
}

func TestHotShotAndAutoPlay(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := dialSession(t, env.wsUrl)

	hotShot := func(gameUuid string) mc.Message[mc.RespHotShot] {
		t.Helper()
		req := mc.Message[mc.ReqGameAction]{Code: mc.CodeHotShot, Payload: mc.ReqGameAction{GameUuid: gameUuid}}
		if err := conn.WriteJSON(req); err != nil {
			t.Fatal(err)
		}
		return readMessage[mc.RespHotShot](t, conn)
	}

	if resp := hotShot("nogame"); resp.Error == nil {
		t.Fatal("expected error when no game was created")
	}

	created := createGame(t, env, conn, mc.ReqCreateGame{GridSize: 6, Ships: []int{3, 2}, TurnCap: 36, Seed: 7})

	if resp := hotShot("-1invalid"); resp.Error == nil {
		t.Fatal("expected error for a foreign game uuid")
	}

	first := hotShot(created.GameUuid)
	if first.Code != mc.CodeHotShot || first.Error != nil {
		t.Fatalf("expected a hot shot response\tgot: %+v", first)
	}
	if first.Payload.Turn != 1 {
		t.Fatalf("expected turn: %d\tgot: %d", 1, first.Payload.Turn)
	}
	if first.Payload.HeatMatrix[first.Payload.X][first.Payload.Y] != 0 {
		t.Fatal("fired cell still carries heat")
	}

	env.mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, games_won, total_shots\)`).
		WithArgs(env.inet(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := mc.Message[mc.ReqGameAction]{Code: mc.CodeAutoPlay, Payload: mc.ReqGameAction{GameUuid: created.GameUuid}}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatal(err)
	}

	fired := map[mb.Coordinates]bool{mb.NewCoordinates(first.Payload.X, first.Payload.Y): true}
	turn := 1
	for {
		msg := readMessage[mc.RespHotShot](t, conn)
		if msg.Code == mc.CodeEndGame {
			break
		}
		if msg.Code != mc.CodeHotShot {
			t.Fatalf("expected code: %d\tgot: %d", mc.CodeHotShot, msg.Code)
		}

		turn++
		if msg.Payload.Turn != turn {
			t.Fatalf("expected turn: %d\tgot: %d", turn, msg.Payload.Turn)
		}
		cell := mb.NewCoordinates(msg.Payload.X, msg.Payload.Y)
		if fired[cell] {
			t.Fatalf("cell %+v fired twice", cell)
		}
		fired[cell] = true
	}

	if err := env.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}

	g, err := env.gameManager.GetGame(created.GameUuid)
	if err != nil {
		t.Fatal(err)
	}
	res := g.Result()
	if !res.Won {
		t.Fatal("expected the AI to win a 6x6 game within 36 turns")
	}
	if res.Shots != turn {
		t.Fatalf("expected shots: %d\tgot: %d", turn, res.Shots)
	}

	if resp := hotShot(created.GameUuid); resp.Error == nil {
		t.Fatal("expected error when shooting after the game is over")
	}
}

func TestReconnectUnknownSession(t *testing.T) {
	env := newTestEnv(t)

	conn, _, err := dialer.Dial(env.wsUrl+"?"+URLQuerySessionIDKeyword+"=unknown", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	resp := readMessage[mc.NoPayload](t, conn)
	if resp.Code != mc.CodeReceivedInvalidSessionID {
		t.Fatalf("expected code: %d\tgot: %d", mc.CodeReceivedInvalidSessionID, resp.Code)
	}
}

func TestReconnectAfterAbnormalClosure(t *testing.T) {
	env := newTestEnv(t)
	conn, sessionId := dialSession(t, env.wsUrl)

	created := createGame(t, env, conn, mc.ReqCreateGame{GridSize: 8, Ships: []int{2}, Seed: 1})

	// dropping the tcp connection without a close frame
	conn.UnderlyingConn().Close()

	newConn, _, err := dialer.Dial(env.wsUrl+"?"+URLQuerySessionIDKeyword+"="+sessionId, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer newConn.Close()

	req := mc.Message[mc.ReqGameAction]{Code: mc.CodeHotShot, Payload: mc.ReqGameAction{GameUuid: created.GameUuid}}
	if err := newConn.WriteJSON(req); err != nil {
		t.Fatal(err)
	}

	resp := readMessage[mc.RespHotShot](t, newConn)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %s", resp.Error.ErrorDetails)
	}
	if resp.Payload.Turn != 1 {
		t.Fatalf("expected turn: %d\tgot: %d", 1, resp.Payload.Turn)
	}
}

func TestServerStats(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := dialSession(t, env.wsUrl)

	env.mock.ExpectQuery(`SELECT games_created FROM game_server_analytics WHERE server_ip = \$1`).
		WithArgs(env.inet()).
		WillReturnRows(sqlmock.NewRows([]string{"games_created"}).AddRow(5))
	env.mock.ExpectQuery(`SELECT games_won FROM game_server_analytics WHERE server_ip = \$1`).
		WithArgs(env.inet()).
		WillReturnRows(sqlmock.NewRows([]string{"games_won"}).AddRow(2))

	if err := conn.WriteJSON(mc.NewMessage[mc.NoPayload](mc.CodeServerStats)); err != nil {
		t.Fatal(err)
	}

	resp := readMessage[mc.RespServerStats](t, conn)
	if resp.Code != mc.CodeServerStats {
		t.Fatalf("expected code: %d\tgot: %d", mc.CodeServerStats, resp.Code)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error: %s", resp.Error.ErrorDetails)
	}
	if resp.Payload.GamesCreated != 5 || resp.Payload.GamesWon != 2 {
		t.Fatalf("expected created: %d won: %d\tgot: %+v", 5, 2, resp.Payload)
	}
	if err := env.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	env := newTestEnv(t)
	conn, _ := dialSession(t, env.wsUrl)

	env.cancel()

	if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the connection to be closed on shutdown")
	}
}
