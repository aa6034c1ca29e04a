package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	cerr "github.com/saeidalz13/battleship-heatmap/internal/error"
	"github.com/saeidalz13/battleship-heatmap/models/ai"
	mb "github.com/saeidalz13/battleship-heatmap/models/battleship"
)

const (
	DefaultGridSize    = 12
	DefaultTurnCap     = 100
	DefaultMaxGridSize = 64
)

func DefaultShips() []int {
	return []int{5, 4, 3, 3, 2}
}

type Config struct {
	GridSize             int
	Ships                []int
	TurnCap              int
	MaxPlacementAttempts int
	// upper bound for GridSize; zero means DefaultMaxGridSize
	MaxGridSize int
}

func DefaultConfig() Config {
	return Config{
		GridSize:             DefaultGridSize,
		Ships:                DefaultShips(),
		TurnCap:              DefaultTurnCap,
		MaxPlacementAttempts: mb.DefaultMaxPlacementAttempts,
		MaxGridSize:          DefaultMaxGridSize,
	}
}

// Validate also bounds the work of a game: the grid by MaxGridSize
// and the turn cap by the cells of the largest allowed grid.
func (c Config) Validate() error {
	maxSize := c.MaxGridSize
	if maxSize <= 0 {
		maxSize = DefaultMaxGridSize
	}
	if c.GridSize > maxSize {
		return cerr.ErrGridSizeTooLarge(c.GridSize, maxSize)
	}

	if err := mb.ValidateConfiguration(c.GridSize, c.Ships); err != nil {
		return err
	}
	if c.TurnCap <= 0 {
		return cerr.ErrTurnCapInvalid(c.TurnCap)
	}
	if maxTurns := maxSize * maxSize; c.TurnCap > maxTurns {
		return cerr.ErrTurnCapTooLarge(c.TurnCap, maxTurns)
	}
	return nil
}

type Result struct {
	Shots int  `json:"shots"`
	Turns int  `json:"turns"`
	Won   bool `json:"won"`
}

// Game pairs a randomly placed board with the AI shooting at it.
// It is driven by a single caller; nothing here is safe for
// concurrent use.
type Game struct {
	uuid       string
	board      *mb.Board
	controller *ai.Controller
	turnCap    int
	createdAt  time.Time
}

func NewGame(cfg Config, rng mb.Randomizer) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []mb.BoardOption{mb.WithRandomPlacement(rng)}
	if cfg.MaxPlacementAttempts > 0 {
		opts = append(opts, mb.WithMaxPlacementAttempts(cfg.MaxPlacementAttempts))
	}

	board, err := mb.NewBoard(cfg.GridSize, cfg.Ships, opts...)
	if err != nil {
		return nil, err
	}

	return &Game{
		uuid:       uuid.NewString()[:6],
		board:      board,
		controller: ai.NewController(board),
		turnCap:    cfg.TurnCap,
		createdAt:  time.Now(),
	}, nil
}

func (g *Game) Uuid() string {
	return g.uuid
}

func (g *Game) Board() *mb.Board {
	return g.board
}

func (g *Game) GridSize() int {
	return g.board.Size()
}

func (g *Game) Heat() ai.HeatMatrix {
	return g.controller.Heat()
}

func (g *Game) CreatedAt() time.Time {
	return g.createdAt
}

// IsOver is true once every ship cell is sunk or the turn cap is hit.
func (g *Game) IsOver() bool {
	return g.IsWon() || g.controller.TurnCount() >= g.turnCap
}

func (g *Game) IsWon() bool {
	return g.board.IsWon()
}

func (g *Game) Result() Result {
	return Result{
		Shots: g.board.ShotCount(),
		Turns: g.controller.TurnCount(),
		Won:   g.IsWon(),
	}
}

// Play runs a single AI turn.
func (g *Game) Play() (ai.Snapshot, error) {
	if g.IsOver() {
		return ai.Snapshot{}, cerr.ErrGameIsOver(g.uuid)
	}
	return g.controller.HotShot(), nil
}

// AutoPlay runs turns until the game is over, handing every snapshot
// to onTurn. It stops early if ctx is done or onTurn fails.
func (g *Game) AutoPlay(ctx context.Context, onTurn func(ai.Snapshot) error) (Result, error) {
	for !g.IsOver() {
		if err := ctx.Err(); err != nil {
			return g.Result(), err
		}

		snap, err := g.Play()
		if err != nil {
			return g.Result(), err
		}

		if onTurn != nil {
			if err := onTurn(snap); err != nil {
				return g.Result(), err
			}
		}
	}
	return g.Result(), nil
}
