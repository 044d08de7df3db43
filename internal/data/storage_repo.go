package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/initcareer/init-web/internal/data/pgxutil"
	apperrors "github.com/initcareer/init-web/internal/errors"
	"github.com/initcareer/init-web/internal/ports"
)

// Storage tier names as stored in client_storage.tier.
const (
	TierLocal   = "local"
	TierSession = "session"
)

var _ ports.KeyValueStore = (*StorageRepo)(nil)

// StorageRepoOptions configures a StorageRepo.
type StorageRepoOptions struct {
	// Tier selects the rows this repo owns: TierLocal or TierSession.
	Tier string
	// TTL expires a whole scope after its last write; zero keeps rows forever.
	TTL time.Duration
	// Now overrides time.Now for tests.
	Now func() time.Time
}

// StorageRepo is the Postgres-backed KeyValueStore for one tier.
type StorageRepo struct {
	db   *sql.DB
	tier string
	ttl  time.Duration
	now  func() time.Time
}

// NewStorageRepo creates a StorageRepo.
func NewStorageRepo(db *sql.DB, opts StorageRepoOptions) *StorageRepo {
	tier := opts.Tier
	if tier == "" {
		tier = TierLocal
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &StorageRepo{db: db, tier: tier, ttl: opts.TTL, now: now}
}

const liveRow = `(expires_at IS NULL OR expires_at > $3)`

func (r *StorageRepo) Get(ctx context.Context, scope, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM client_storage
		 WHERE tier = $1 AND scope = $2 AND `+liveRow+` AND key = $4`,
		r.tier, scope, r.now(), key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s/%s: %w", scope, key, apperrors.MapDBError(err))
	}
	return value, nil
}

func (r *StorageRepo) GetAll(ctx context.Context, scope string) (out map[string]string, err error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value FROM client_storage
		 WHERE tier = $1 AND scope = $2 AND `+liveRow,
		r.tier, scope, r.now(),
	)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", scope, apperrors.MapDBError(err))
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	out = make(map[string]string)
	for rows.Next() {
		var k, v string
		if scanErr := rows.Scan(&k, &v); scanErr != nil {
			return nil, fmt.Errorf("scan storage row: %w", scanErr)
		}
		out[k] = v
	}
	if iterErr := rows.Err(); iterErr != nil {
		return nil, fmt.Errorf("iterate storage rows: %w", apperrors.MapDBError(iterErr))
	}
	return out, nil
}

// Set upserts key and, for tiers with a TTL, slides the expiry of the whole scope.
func (r *StorageRepo) Set(ctx context.Context, scope, key, value string) error {
	now := r.now()
	var expires *time.Time
	if r.ttl > 0 {
		e := now.Add(r.ttl)
		expires = &e
	}

	err := pgxutil.WithPgxTx(ctx, r.db, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			batch := &pgx.Batch{}
			batch.Queue(
				`INSERT INTO client_storage (tier, scope, key, value, updated_at, expires_at)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 ON CONFLICT (tier, scope, key)
				 DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at, expires_at = EXCLUDED.expires_at`,
				r.tier, scope, key, value, now, expires,
			)
			if expires != nil {
				batch.Queue(
					`UPDATE client_storage SET expires_at = $3 WHERE tier = $1 AND scope = $2`,
					r.tier, scope, *expires,
				)
			}
			return tx.SendBatch(ctx, batch).Close()
		},
	})
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", scope, key, apperrors.MapDBError(err))
	}
	return nil
}

func (r *StorageRepo) Delete(ctx context.Context, scope string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := pgxutil.WithPgxConn(ctx, r.db, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx,
			`DELETE FROM client_storage WHERE tier = $1 AND scope = $2 AND key = ANY($3)`,
			r.tier, scope, keys,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", scope, apperrors.MapDBError(err))
	}
	return nil
}

func (r *StorageRepo) Clear(ctx context.Context, scope string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM client_storage WHERE tier = $1 AND scope = $2`, r.tier, scope,
	); err != nil {
		return fmt.Errorf("clear %s: %w", scope, apperrors.MapDBError(err))
	}
	return nil
}

// DeleteExpired removes up to batchSize expired rows of this tier and reports how many went.
func (r *StorageRepo) DeleteExpired(ctx context.Context, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM client_storage
		 WHERE ctid IN (
			SELECT ctid FROM client_storage
			WHERE tier = $1 AND expires_at IS NOT NULL AND expires_at <= $2
			LIMIT $3
		 )`,
		r.tier, r.now(), batchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired storage: %w", apperrors.MapDBError(err))
	}
	return res.RowsAffected()
}
