package famstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wrenfield/famengine/pkg/fam"
)

// Snapshot is the JSON-serializable shape one compute() call produces for a
// single period: every account's value, plus the account table in effect
// at the time (including the accounts the CF Synthesizer added). Rules are
// not stored.
type Snapshot struct {
	Period   fam.PeriodId              `json:"period"`
	Values   map[fam.AccountId]float64 `json:"values"`
	Accounts []fam.Account             `json:"accounts"`
}

var (
	snapshotPool *pgxpool.Pool
	poolOnce     sync.Once
)

// InitDB opens the pgx pool snapshot reads and writes share, reading the
// connection string from DATABASE_URL. It is idempotent: later callers in
// the same process (e.g. a famctl run that persists more than one period)
// reuse the pool opened by the first call.
func InitDB(ctx context.Context) error {
	var err error
	poolOnce.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("famstore: DATABASE_URL environment variable not set")
			return
		}
		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("famstore: failed to parse DATABASE_URL: %w", parseErr)
			return
		}
		snapshotPool, err = pgxpool.NewWithConfig(ctx, config)
	})
	return err
}

// Close releases the pool opened by InitDB. Safe to call even if InitDB was
// never called or failed.
func Close() {
	if snapshotPool != nil {
		snapshotPool.Close()
	}
}

// SnapshotRepo upserts and loads Snapshots keyed by an arbitrary scenario
// name (e.g. a model or company identifier) plus period, against the pool
// opened by InitDB.
type SnapshotRepo struct{}

// NewSnapshotRepo returns a repo bound to the package-level pool. Callers
// must have InitDB'd successfully first.
func NewSnapshotRepo() *SnapshotRepo {
	return &SnapshotRepo{}
}

// Save upserts a snapshot for (scenario, period).
//
// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS fam_snapshots (
//	  scenario TEXT NOT NULL,
//	  period TEXT NOT NULL,
//	  snapshot_json JSONB,
//	  updated_at TIMESTAMPTZ,
//	  PRIMARY KEY (scenario, period)
//	);
func (r *SnapshotRepo) Save(ctx context.Context, scenario string, snap Snapshot) error {
	if snapshotPool == nil {
		return fmt.Errorf("famstore: pool not initialized, call InitDB first")
	}

	jsonData, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("famstore: failed to marshal snapshot: %w", err)
	}

	query := `
		INSERT INTO fam_snapshots (scenario, period, snapshot_json, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scenario, period)
		DO UPDATE SET
			snapshot_json = EXCLUDED.snapshot_json,
			updated_at = EXCLUDED.updated_at;
	`

	_, err = snapshotPool.Exec(ctx, query, scenario, string(snap.Period), jsonData, time.Now())
	if err != nil {
		return fmt.Errorf("famstore: failed to save snapshot: %w", err)
	}
	return nil
}

// Load retrieves the snapshot for (scenario, period).
func (r *SnapshotRepo) Load(ctx context.Context, scenario string, period fam.PeriodId) (*Snapshot, error) {
	if snapshotPool == nil {
		return nil, fmt.Errorf("famstore: pool not initialized, call InitDB first")
	}

	query := `SELECT snapshot_json FROM fam_snapshots WHERE scenario = $1 AND period = $2`

	var jsonData []byte
	err := snapshotPool.QueryRow(ctx, query, scenario, string(period)).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("famstore: no snapshot found for scenario %s period %s", scenario, period)
		}
		return nil, fmt.Errorf("famstore: failed to load snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(jsonData, &snap); err != nil {
		return nil, fmt.Errorf("famstore: failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// FromCompute builds a Snapshot from one compute() result for a single
// period, pairing it with the account table in effect.
func FromCompute(period fam.PeriodId, values map[fam.AccountId]float64, accounts []fam.Account) Snapshot {
	return Snapshot{Period: period, Values: values, Accounts: accounts}
}
