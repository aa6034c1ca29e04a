package sqlc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sqlc-dev/pqtype"
)

var testServerIp = pqtype.Inet{
	IPNet: net.IPNet{IP: net.IPv4(10, 0, 0, 7), Mask: net.CIDRMask(32, 32)},
	Valid: true,
}

func newTestManager(t *testing.T) (DbManager, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	return NewDbManager(New(db), testServerIp), mock
}

func TestIncrementGamesCreatedCount(t *testing.T) {
	dm, mock := newTestManager(t)

	mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, games_created\)`).
		WithArgs(testServerIp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if err := dm.Analytics.IncrementGamesCreatedCount(ctx); err != nil {
		t.Fatalf("failed to increment created games: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}

func TestRecordGameWon(t *testing.T) {
	dm, mock := newTestManager(t)

	mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, games_won, total_shots\)`).
		WithArgs(testServerIp, int64(57)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := dm.Analytics.RecordGameWon(context.Background(), 57); err != nil {
		t.Fatalf("failed to record won game: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations were not met: %v", err)
	}
}

func TestGetCounts(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		column   string
		fetch    func(*AnalyticsManager, context.Context) (int64, error)
		expected int64
	}{
		{
			name:     "games created",
			query:    `SELECT games_created FROM game_server_analytics WHERE server_ip = \$1`,
			column:   "games_created",
			fetch:    (*AnalyticsManager).GetGamesCreatedCount,
			expected: 4,
		},
		{
			name:     "games won",
			query:    `SELECT games_won FROM game_server_analytics WHERE server_ip = \$1`,
			column:   "games_won",
			fetch:    (*AnalyticsManager).GetGamesWonCount,
			expected: 3,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			dm, mock := newTestManager(t)

			mock.ExpectQuery(test.query).
				WithArgs(testServerIp).
				WillReturnRows(sqlmock.NewRows([]string{test.column}).AddRow(test.expected))

			got, err := test.fetch(dm.Analytics, context.Background())
			if err != nil {
				t.Fatal(err)
			}
			if got != test.expected {
				t.Fatalf("expected count: %d\tgot: %d", test.expected, got)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("expectations were not met: %v", err)
			}
		})
	}
}

func TestQueryErrorIsReturned(t *testing.T) {
	dm, mock := newTestManager(t)

	dbErr := errors.New("connection reset")
	mock.ExpectQuery(`SELECT games_won FROM game_server_analytics`).
		WithArgs(testServerIp).
		WillReturnError(dbErr)

	if _, err := dm.Analytics.GetGamesWonCount(context.Background()); !errors.Is(err, dbErr) {
		t.Fatalf("expected: %v\tgot: %v", dbErr, err)
	}
}
