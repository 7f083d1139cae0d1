package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptowallet/internal/domain"
)

func TestLoadAllCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database", "users.json")
	repo := NewUserFileRepository(path)

	records, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestSaveAllThenLoadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	repo := NewUserFileRepository(path)

	wallet := domain.WalletSnapshot{
		Balance:   decimal.RequireFromString("500"),
		Lots:      map[string][]decimal.Decimal{"BTC": {decimal.RequireFromString("5"), decimal.RequireFromString("0.5")}},
		CostBasis: map[string]decimal.Decimal{"BTC": decimal.RequireFromString("100")},
	}
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	in := []domain.UserRecord{
		{Username: "alice", PasswordHash: "hash-a", Wallet: wallet, CreatedAt: created},
		{Username: "bob", PasswordHash: "hash-b"},
	}

	require.NoError(t, repo.SaveAll(context.Background(), in))

	out, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "alice", out[0].Username)
	assert.Equal(t, "hash-a", out[0].PasswordHash)
	assert.True(t, out[0].CreatedAt.Equal(created))
	assert.True(t, out[0].Wallet.Balance.Equal(decimal.RequireFromString("500")))
	require.Len(t, out[0].Wallet.Lots["BTC"], 2)
	assert.True(t, out[0].Wallet.Lots["BTC"][1].Equal(decimal.RequireFromString("0.5")))
	assert.True(t, out[0].Wallet.CostBasis["BTC"].Equal(decimal.RequireFromString("100")))

	user := domain.UserFromRecord(out[0])
	assert.Equal(t, "Wallet summary : \nCurrent balance: $500.0\nBTC: 5.5\n", user.Wallet.Summary())
}

func TestLoadAllEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	records, err := NewUserFileRepository(path).LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoadAllCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewUserFileRepository(path).LoadAll(context.Background())
	assert.Error(t, err)
}
