package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cryptowallet/internal/database"
	"cryptowallet/internal/domain"
	"cryptowallet/internal/infra"
)

// newTestPool connects to the database in TEST_DATABASE_URL.
// SaveAll replaces every account, so this must never point at a live store.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL store tests")
	}

	ctx := context.Background()
	db, err := infra.NewDatabase(ctx, url, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, database.RunMigrations(ctx, db, zap.NewNop()))

	repo := NewUserRepository(db)
	require.NoError(t, repo.SaveAll(ctx, nil))
	t.Cleanup(func() {
		_ = repo.SaveAll(context.Background(), nil)
	})
	return db
}

func TestPostgresSaveAllThenLoadAll(t *testing.T) {
	db := newTestPool(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	in := []domain.UserRecord{
		{
			Username:     "alice",
			PasswordHash: "hash-a",
			CreatedAt:    created,
			Wallet: domain.WalletSnapshot{
				Balance: decimal.RequireFromString("200.5"),
				Lots: map[string][]decimal.Decimal{
					"BTC": {decimal.RequireFromString("166.6666666666666667"), decimal.RequireFromString("100")},
					"ETH": {decimal.RequireFromString("0.25")},
				},
				CostBasis: map[string]decimal.Decimal{
					"BTC": decimal.RequireFromString("3"),
					"ETH": decimal.RequireFromString("2000"),
				},
			},
		},
		{
			Username:     "bob",
			PasswordHash: "hash-b",
			CreatedAt:    created.Add(time.Hour),
			Wallet: domain.WalletSnapshot{
				Balance:   decimal.Zero,
				Lots:      map[string][]decimal.Decimal{},
				CostBasis: map[string]decimal.Decimal{},
			},
		},
	}

	require.NoError(t, repo.SaveAll(ctx, in))

	out, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)

	alice := out[0]
	assert.Equal(t, "alice", alice.Username)
	assert.Equal(t, "hash-a", alice.PasswordHash)
	assert.True(t, alice.CreatedAt.Equal(created))
	assert.True(t, alice.Wallet.Balance.Equal(decimal.RequireFromString("200.5")))

	require.Len(t, alice.Wallet.Lots["BTC"], 2)
	assert.True(t, alice.Wallet.Lots["BTC"][0].Equal(decimal.RequireFromString("166.6666666666666667")))
	assert.True(t, alice.Wallet.Lots["BTC"][1].Equal(decimal.NewFromInt(100)))
	require.Len(t, alice.Wallet.Lots["ETH"], 1)
	assert.True(t, alice.Wallet.CostBasis["BTC"].Equal(decimal.NewFromInt(3)))
	assert.True(t, alice.Wallet.CostBasis["ETH"].Equal(decimal.NewFromInt(2000)))

	bob := out[1]
	assert.Equal(t, "bob", bob.Username)
	assert.True(t, bob.Wallet.Balance.IsZero())
	assert.Empty(t, bob.Wallet.Lots)
	assert.Empty(t, bob.Wallet.CostBasis)

	// restored wallet keeps holdings and basis
	restored := domain.UserFromRecord(alice)
	assert.True(t, restored.Wallet.Holds("BTC"))
	assert.True(t, restored.Wallet.Quantity("BTC").Equal(decimal.RequireFromString("266.6666666666666667")))
}

func TestPostgresSaveAllReplacesPreviousState(t *testing.T) {
	db := newTestPool(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := []domain.UserRecord{
		{
			Username:     "alice",
			PasswordHash: "hash-a",
			CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
			Wallet: domain.WalletSnapshot{
				Balance:   decimal.NewFromInt(10),
				Lots:      map[string][]decimal.Decimal{"BTC": {decimal.NewFromInt(1)}},
				CostBasis: map[string]decimal.Decimal{"BTC": decimal.NewFromInt(100)},
			},
		},
	}
	require.NoError(t, repo.SaveAll(ctx, first))

	// BTC sold, balance credited
	second := []domain.UserRecord{first[0]}
	second[0].Wallet = domain.WalletSnapshot{
		Balance:   decimal.NewFromInt(110),
		Lots:      map[string][]decimal.Decimal{},
		CostBasis: map[string]decimal.Decimal{},
	}
	require.NoError(t, repo.SaveAll(ctx, second))

	out, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Wallet.Balance.Equal(decimal.NewFromInt(110)))
	assert.Empty(t, out[0].Wallet.Lots)
	assert.Empty(t, out[0].Wallet.CostBasis)
}

func TestPostgresLoadAllEmpty(t *testing.T) {
	db := newTestPool(t)

	out, err := NewUserRepository(db).LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)
}
