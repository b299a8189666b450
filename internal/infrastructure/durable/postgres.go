package durable

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ingredient-intel/iie/internal/domain/ingredient"
	"github.com/ingredient-intel/iie/internal/domain/safety"
	apperrors "github.com/ingredient-intel/iie/pkg/errors"
)

// PostgresStore adapts a pgxpool.Pool into capability.DurableStore,
// backing the Local Catalog's `safety_profiles` table and the Cache
// Hierarchy L3 tier's `cache_entries` table with one shared connection
// pool, following the same pgx query style as connection.go's
// WithTransaction helper.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an already-connected pool (see
// postgres.NewConnectionPool). Migrations creating safety_profiles and
// cache_entries must have already run.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) UpsertProfile(ctx context.Context, profile *safety.SafetyProfile) error {
	perRegistry, err := json.Marshal(profile.PerRegistryStatus)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeSerialization, "marshal per_registry_status")
	}
	concerns, err := json.Marshal(profile.Concerns)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeSerialization, "marshal concerns")
	}
	sources, err := json.Marshal(profile.Sources)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeSerialization, "marshal sources")
	}

	const q = `
		INSERT INTO safety_profiles
			(canonical_name, score, risk_level, eco_score, per_registry_status, concerns, sources, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (canonical_name) DO UPDATE SET
			score = EXCLUDED.score,
			risk_level = EXCLUDED.risk_level,
			eco_score = EXCLUDED.eco_score,
			per_registry_status = EXCLUDED.per_registry_status,
			concerns = EXCLUDED.concerns,
			sources = EXCLUDED.sources,
			last_updated = EXCLUDED.last_updated`

	_, err = s.pool.Exec(ctx, q,
		profile.CanonicalName.String(), profile.Score, string(profile.RiskLevel), profile.EcoScore,
		perRegistry, concerns, sources, profile.LastUpdated,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDBQueryError, "upsert safety_profiles row")
	}
	return nil
}

func (s *PostgresStore) LoadAllProfiles(ctx context.Context) ([]*safety.SafetyProfile, error) {
	const q = `
		SELECT canonical_name, score, risk_level, eco_score, per_registry_status, concerns, sources, last_updated
		FROM safety_profiles`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDBQueryError, "query safety_profiles")
	}
	defer rows.Close()

	var out []*safety.SafetyProfile
	for rows.Next() {
		profile, scanErr := scanProfileRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDBQueryError, "iterate safety_profiles rows")
	}
	return out, nil
}

func scanProfileRow(row pgx.Row) (*safety.SafetyProfile, error) {
	var (
		name        string
		riskLevel   string
		perRegistry []byte
		concerns    []byte
		sources     []byte
		profile     safety.SafetyProfile
	)
	if err := row.Scan(&name, &profile.Score, &riskLevel, &profile.EcoScore, &perRegistry, &concerns, &sources, &profile.LastUpdated); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDBQueryError, "scan safety_profiles row")
	}

	profile.CanonicalName = ingredient.CanonicalName(name)
	profile.RiskLevel = safety.RiskLevel(riskLevel)

	profile.PerRegistryStatus = map[safety.RegistryID]string{}
	if len(perRegistry) > 0 {
		if err := json.Unmarshal(perRegistry, &profile.PerRegistryStatus); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeSerialization, "unmarshal per_registry_status")
		}
	}
	if len(concerns) > 0 {
		if err := json.Unmarshal(concerns, &profile.Concerns); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeSerialization, "unmarshal concerns")
		}
	}
	if len(sources) > 0 {
		if err := json.Unmarshal(sources, &profile.Sources); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeSerialization, "unmarshal sources")
		}
	}
	return &profile, nil
}

func (s *PostgresStore) DeleteProfile(ctx context.Context, name ingredient.CanonicalName) error {
	const q = `DELETE FROM safety_profiles WHERE canonical_name = $1`
	if _, err := s.pool.Exec(ctx, q, name.String()); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDBQueryError, "delete safety_profiles row")
	}
	return nil
}

func (s *PostgresStore) GetCacheEntry(ctx context.Context, key string) ([]byte, bool, error) {
	const q = `SELECT value FROM cache_entries WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`

	var value []byte
	err := s.pool.QueryRow(ctx, q, key).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, apperrors.Wrap(err, apperrors.CodeDBQueryError, "query cache_entries")
	}
	return value, true, nil
}

func (s *PostgresStore) SetCacheEntry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}

	const q = `
		INSERT INTO cache_entries (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`

	if _, err := s.pool.Exec(ctx, q, key, value, expiresAt); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDBQueryError, "upsert cache_entries row")
	}
	return nil
}

func (s *PostgresStore) DeleteCacheEntry(ctx context.Context, key string) error {
	const q = `DELETE FROM cache_entries WHERE key = $1`
	if _, err := s.pool.Exec(ctx, q, key); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDBQueryError, "delete cache_entries row")
	}
	return nil
}
