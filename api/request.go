package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/saeidalz13/battleship-heatmap/db/sqlc"
	cerr "github.com/saeidalz13/battleship-heatmap/internal/error"
	"github.com/saeidalz13/battleship-heatmap/models/ai"
	mc "github.com/saeidalz13/battleship-heatmap/models/connection"
	"github.com/saeidalz13/battleship-heatmap/models/game"
)

type RequestHandler interface {
	HandleCreateGame(gm game.GameManager, defaults game.Config) (*game.Game, mc.Message[mc.RespCreateGame])
	HandleHotShot(g *game.Game, sessionId string) mc.Message[mc.RespHotShot]
	HandleAutoPlay(ctx context.Context, g *game.Game, sessionId string, write func(mc.Message[mc.RespHotShot]) error) (mc.Message[mc.RespEndGame], error)
	HandleServerStats(ctx context.Context, analytics *sqlc.AnalyticsManager) mc.Message[mc.RespServerStats]
}

// Every incoming valid request will have this structure.
// The request is then handled in line with RequestHandler interface.
type Request struct {
	payload []byte
}

var _ RequestHandler = (*Request)(nil)

func NewRequest(payload ...[]byte) Request {
	if len(payload) == 0 {
		return Request{}
	}
	return Request{payload: payload[0]}
}

// Zero fields of the request fall back to the server defaults.
func (r Request) HandleCreateGame(gm game.GameManager, defaults game.Config) (*game.Game, mc.Message[mc.RespCreateGame]) {
	resp := mc.NewMessage[mc.RespCreateGame](mc.CodeCreateGame)

	var req mc.Message[mc.ReqCreateGame]
	if err := json.Unmarshal(r.payload, &req); err != nil {
		resp.AddError(err.Error(), cerr.ConstErrInvalidPayload)
		return nil, resp
	}

	cfg := defaults
	cfg.Ships = append([]int(nil), defaults.Ships...)
	if req.Payload.GridSize != 0 {
		cfg.GridSize = req.Payload.GridSize
	}
	if len(req.Payload.Ships) != 0 {
		cfg.Ships = req.Payload.Ships
	}
	if req.Payload.TurnCap != 0 {
		cfg.TurnCap = req.Payload.TurnCap
	}

	g, err := gm.CreateGame(cfg, req.Payload.Seed)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrCreateGameFailed)
		return nil, resp
	}

	resp.AddPayload(mc.RespCreateGame{
		GameUuid:   g.Uuid(),
		GridSize:   g.GridSize(),
		Ships:      g.Board().ShipLengths(),
		HeatMatrix: g.Heat(),
	})
	return g, resp
}

func (r Request) HandleHotShot(g *game.Game, sessionId string) mc.Message[mc.RespHotShot] {
	resp := mc.NewMessage[mc.RespHotShot](mc.CodeHotShot)

	if err := r.checkGame(g, sessionId); err != nil {
		resp.AddError(err.Error(), cerr.ConstErrHotShotFailed)
		return resp
	}

	snap, err := g.Play()
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrHotShotFailed)
		return resp
	}

	resp.AddPayload(mc.NewRespHotShot(snap))
	return resp
}

// HandleAutoPlay streams every turn through write until the game is over.
// The returned error is only set when write failed, meaning the
// connection is gone.
func (r Request) HandleAutoPlay(
	ctx context.Context,
	g *game.Game,
	sessionId string,
	write func(mc.Message[mc.RespHotShot]) error,
) (mc.Message[mc.RespEndGame], error) {
	resp := mc.NewMessage[mc.RespEndGame](mc.CodeEndGame)

	if err := r.checkGame(g, sessionId); err != nil {
		resp.AddError(err.Error(), cerr.ConstErrAutoPlayFailed)
		return resp, nil
	}
	if g.IsOver() {
		resp.AddError(cerr.ErrGameIsOver(g.Uuid()).Error(), cerr.ConstErrAutoPlayFailed)
		return resp, nil
	}

	var writeErr error
	res, err := g.AutoPlay(ctx, func(snap ai.Snapshot) error {
		msg := mc.NewMessage[mc.RespHotShot](mc.CodeHotShot)
		msg.AddPayload(mc.NewRespHotShot(snap))
		writeErr = write(msg)
		return writeErr
	})
	if writeErr != nil {
		return resp, writeErr
	}
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrAutoPlayFailed)
		return resp, nil
	}

	resp.AddPayload(mc.RespEndGame{GameUuid: g.Uuid(), Result: res})
	return resp, nil
}

// Counts of this server. A server that never recorded anything has no
// row yet, which reads as zero.
func (r Request) HandleServerStats(ctx context.Context, analytics *sqlc.AnalyticsManager) mc.Message[mc.RespServerStats] {
	resp := mc.NewMessage[mc.RespServerStats](mc.CodeServerStats)
	if analytics == nil {
		resp.AddError("analytics are disabled on this server", cerr.ConstErrStatsUnavailable)
		return resp
	}

	ctx, cancel := context.WithTimeout(ctx, sqlc.QuerierCtxTimeout)
	defer cancel()

	created, err := analytics.GetGamesCreatedCount(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		resp.AddError(err.Error(), cerr.ConstErrStatsUnavailable)
		return resp
	}
	won, err := analytics.GetGamesWonCount(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		resp.AddError(err.Error(), cerr.ConstErrStatsUnavailable)
		return resp
	}

	resp.AddPayload(mc.RespServerStats{GamesCreated: created, GamesWon: won})
	return resp
}

// A session only drives the game it created.
func (r Request) checkGame(g *game.Game, sessionId string) error {
	if g == nil {
		return cerr.ErrNoGameInSession(sessionId)
	}

	var req mc.Message[mc.ReqGameAction]
	if err := json.Unmarshal(r.payload, &req); err != nil {
		return err
	}
	if req.Payload.GameUuid != g.Uuid() {
		return cerr.ErrGameNotExists(req.Payload.GameUuid)
	}
	return nil
}
