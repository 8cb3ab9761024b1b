package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	consts "github.com/taisys-technologies/voc-vault/internal/constants"
)

const settingsCapacity = 16

// SettingsStore persists setting values in PostgreSQL. Values are stored as
// decimal strings so the full uint256 range survives the round trip.
type SettingsStore struct {
	*PostgresBase
}

func NewSettingsStore(db *pgxpool.Pool, logger *slog.Logger) *SettingsStore {
	return &SettingsStore{PostgresBase: NewPostgresBase(db, logger)}
}

func (s *SettingsStore) Get(ctx context.Context, owner common.Address, key string) (*uint256.Int, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var raw string
	err := s.DB.QueryRow(ctx, consts.Queries[consts.StmtGetSetting], owner.Hex(), key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}

	value, err := uint256.FromDecimal(raw)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode setting %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SettingsStore) Put(ctx context.Context, owner common.Address, key string, value *uint256.Int) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := s.DB.Exec(ctx, consts.Queries[consts.StmtUpsertSetting], owner.Hex(), key, value.Dec())
	if err != nil {
		return fmt.Errorf("failed to store setting %s: %w", key, err)
	}
	return nil
}

func (s *SettingsStore) Delete(ctx context.Context, owner common.Address, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := s.DB.Exec(ctx, consts.Queries[consts.StmtDeleteSetting], owner.Hex(), key)
	if err != nil {
		return false, fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return result.RowsAffected() > 0, nil
}

func (s *SettingsStore) List(ctx context.Context, owner common.Address) (map[string]*uint256.Int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := s.DB.Query(ctx, consts.Queries[consts.StmtListSettings], owner.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]*uint256.Int, settingsCapacity)
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan setting row: %w", err)
		}
		value, err := uint256.FromDecimal(raw)
		if err != nil {
			s.logger.Error("skipping undecodable setting", "key", key, "error", err)
			continue
		}
		values[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over settings: %w", err)
	}

	return values, nil
}
