package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	cerr "github.com/saeidalz13/battleship-heatmap/internal/error"
)

const (
	maxTimeGame     time.Duration = time.Minute * 30
	cleanupInterval time.Duration = time.Minute * 5
)

type GameManager interface {
	CreateGame(cfg Config, seed int64) (*Game, error)
	GetGame(gameUuid string) (*Game, error)
	TerminateGame(gameUuid string)
	CleanupPeriodically(ctx context.Context)
}

type AIGameManager struct {
	games       map[string]*Game
	maxTimeGame time.Duration
	mu          sync.RWMutex
}

var _ GameManager = (*AIGameManager)(nil)

func NewAIGameManager() *AIGameManager {
	return &AIGameManager{
		games:       make(map[string]*Game, 10),
		maxTimeGame: maxTimeGame,
	}
}

// CreateGame places a new fleet. A zero seed draws one from the clock.
func (gm *AIGameManager) CreateGame(cfg Config, seed int64) (*Game, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	game, err := NewGame(cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}

	gm.mu.Lock()
	gm.games[game.Uuid()] = game
	gm.mu.Unlock()

	log.Info("game created", "uuid", game.Uuid(), "grid_size", cfg.GridSize, "ships", cfg.Ships, "seed", seed)
	return game, nil
}

func (gm *AIGameManager) GetGame(gameUuid string) (*Game, error) {
	gm.mu.RLock()
	game, prs := gm.games[gameUuid]
	gm.mu.RUnlock()
	if !prs {
		return nil, cerr.ErrGameNotExists(gameUuid)
	}
	if game == nil {
		return nil, cerr.ErrGameIsNil(gameUuid)
	}

	return game, nil
}

func (gm *AIGameManager) TerminateGame(gameUuid string) {
	gm.mu.Lock()
	delete(gm.games, gameUuid)
	gm.mu.Unlock()
	log.Debug("game terminated", "uuid", gameUuid)
}

func (gm *AIGameManager) Count() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}

// To ensure there are no dangling games, games older
// than maxTimeGame are removed on every tick.
func (gm *AIGameManager) CleanupPeriodically(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			gm.removeStale(time.Now())
		}
	}
}

func (gm *AIGameManager) removeStale(now time.Time) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	for uuid, game := range gm.games {
		if now.Sub(game.CreatedAt()) > gm.maxTimeGame {
			delete(gm.games, uuid)
			log.Info("removed stale game", "uuid", uuid)
		}
	}
}
