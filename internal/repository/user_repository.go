package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"cryptowallet/internal/domain"
)

// UserRepositoryImpl implements the UserRepository interface on PostgreSQL
type UserRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// LoadAll retrieves all users together with their wallets
func (r *UserRepositoryImpl) LoadAll(ctx context.Context) ([]domain.UserRecord, error) {
	query := `
		SELECT username, password_hash, balance::text, created_at
		FROM users
		ORDER BY username ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var records []domain.UserRecord
	index := make(map[string]int)
	for rows.Next() {
		var (
			rec     domain.UserRecord
			balance string
		)
		if err := rows.Scan(&rec.Username, &rec.PasswordHash, &balance, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		rec.Wallet.Balance, err = decimal.NewFromString(balance)
		if err != nil {
			return nil, fmt.Errorf("failed to parse balance of %s: %w", rec.Username, err)
		}
		rec.Wallet.Lots = make(map[string][]decimal.Decimal)
		rec.Wallet.CostBasis = make(map[string]decimal.Decimal)

		index[rec.Username] = len(records)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	if err := r.loadCostBasis(ctx, records, index); err != nil {
		return nil, err
	}
	if err := r.loadLots(ctx, records, index); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *UserRepositoryImpl) loadCostBasis(ctx context.Context, records []domain.UserRecord, index map[string]int) error {
	query := `
		SELECT username, asset_id, price::text
		FROM wallet_cost_basis
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query cost basis: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var username, assetID, price string
		if err := rows.Scan(&username, &assetID, &price); err != nil {
			return fmt.Errorf("failed to scan cost basis: %w", err)
		}
		i, ok := index[username]
		if !ok {
			continue
		}
		value, err := decimal.NewFromString(price)
		if err != nil {
			return fmt.Errorf("failed to parse cost basis of %s/%s: %w", username, assetID, err)
		}
		records[i].Wallet.CostBasis[assetID] = value
	}

	return rows.Err()
}

func (r *UserRepositoryImpl) loadLots(ctx context.Context, records []domain.UserRecord, index map[string]int) error {
	query := `
		SELECT username, asset_id, quantity::text
		FROM wallet_lots
		ORDER BY username, asset_id, seq
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query lots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var username, assetID, quantity string
		if err := rows.Scan(&username, &assetID, &quantity); err != nil {
			return fmt.Errorf("failed to scan lot: %w", err)
		}
		i, ok := index[username]
		if !ok {
			continue
		}
		value, err := decimal.NewFromString(quantity)
		if err != nil {
			return fmt.Errorf("failed to parse lot of %s/%s: %w", username, assetID, err)
		}
		records[i].Wallet.Lots[assetID] = append(records[i].Wallet.Lots[assetID], value)
	}

	return rows.Err()
}

// SaveAll replaces every stored user and wallet in a single transaction
func (r *UserRepositoryImpl) SaveAll(ctx context.Context, records []domain.UserRecord) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		// wallet tables cascade from users
		if _, err := tx.Exec(ctx, `DELETE FROM users`); err != nil {
			return fmt.Errorf("failed to clear users: %w", err)
		}

		batch := &pgx.Batch{}
		for _, rec := range records {
			batch.Queue(`
				INSERT INTO users (username, password_hash, balance, created_at)
				VALUES ($1, $2, $3::numeric, $4)
			`, rec.Username, rec.PasswordHash, rec.Wallet.Balance.String(), rec.CreatedAt)

			for assetID, price := range rec.Wallet.CostBasis {
				batch.Queue(`
					INSERT INTO wallet_cost_basis (username, asset_id, price)
					VALUES ($1, $2, $3::numeric)
				`, rec.Username, assetID, price.String())
			}

			for assetID, lots := range rec.Wallet.Lots {
				for seq, quantity := range lots {
					batch.Queue(`
						INSERT INTO wallet_lots (username, asset_id, seq, quantity)
						VALUES ($1, $2, $3, $4::numeric)
					`, rec.Username, assetID, seq, quantity.String())
				}
			}
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save users: %w", err)
		}
		return nil
	})
}
