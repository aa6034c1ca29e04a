package sqlc

import (
	"context"

	"github.com/sqlc-dev/pqtype"
)

// AnalyticsManager scopes every analytics query to one server address.
type AnalyticsManager struct {
	queries  Querier
	serverIp pqtype.Inet
}

func NewAnalyticsManager(queries Querier, serverIp pqtype.Inet) *AnalyticsManager {
	return &AnalyticsManager{queries: queries, serverIp: serverIp}
}

func (a *AnalyticsManager) ServerIp() pqtype.Inet {
	return a.serverIp
}

func (a *AnalyticsManager) IncrementGamesCreatedCount(ctx context.Context) error {
	return a.queries.IncrementGamesCreatedCount(ctx, a.serverIp)
}

func (a *AnalyticsManager) RecordGameWon(ctx context.Context, shots int) error {
	return a.queries.RecordGameWon(ctx, RecordGameWonParams{
		ServerIp:   a.serverIp,
		TotalShots: int64(shots),
	})
}

func (a *AnalyticsManager) GetGamesCreatedCount(ctx context.Context) (int64, error) {
	return a.queries.GetGamesCreatedCount(ctx, a.serverIp)
}

func (a *AnalyticsManager) GetGamesWonCount(ctx context.Context) (int64, error) {
	return a.queries.GetGamesWonCount(ctx, a.serverIp)
}
