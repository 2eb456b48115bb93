package repo

import (
	"context"
	"time"

	"github.com/Donekulda/openproject-mcp-server/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type DB struct {
	Pool *pgxpool.Pool
	log  zerolog.Logger
}

func MustOpen(ctx context.Context, cfg config.Config, log zerolog.Logger) *DB {
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil { log.Fatal().Err(err).Msg("db connect failed") }
	ctx2, cancel := context.WithTimeout(ctx, 10*time.Second); defer cancel()
	if err := pool.Ping(ctx2); err != nil { log.Fatal().Err(err).Msg("db ping failed") }
	return &DB{Pool: pool, log: log}
}

func (d *DB) Close() { d.Pool.Close() }

type Repository struct {
	db  *DB
	log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

// EnsureSchema creates the audit table when it does not exist yet. The
// table is append-mostly; one row per report run.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	const q = `CREATE TABLE IF NOT EXISTS report_runs(
		id uuid PRIMARY KEY,
		started_at timestamptz NOT NULL,
		finished_at timestamptz,
		project_id int NOT NULL,
		from_date text NOT NULL,
		to_date text NOT NULL,
		status text NOT NULL,
		detail text NOT NULL DEFAULT ''
	)`
	_, err := r.db.Pool.Exec(ctx, q)
	return err
}

func (r *Repository) StartRun(ctx context.Context, runID string, projectID int, from, to string) error {
	const q = `INSERT INTO report_runs(id, started_at, project_id, from_date, to_date, status)
		VALUES($1, now(), $2, $3, $4, 'running')`
	_, err := r.db.Pool.Exec(ctx, q, runID, projectID, from, to)
	return err
}

func (r *Repository) FinishRun(ctx context.Context, runID, status, detail string) error {
	const q = `UPDATE report_runs SET finished_at=now(), status=$2, detail=$3 WHERE id=$1`
	_, err := r.db.Pool.Exec(ctx, q, runID, status, detail)
	return err
}

type LastRun struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	ProjectID  int        `json:"project_id"`
	FromDate   string     `json:"from_date"`
	ToDate     string     `json:"to_date"`
	Status     string     `json:"status"`
	Detail     string     `json:"detail"`
}

func (r *Repository) GetLastRun(ctx context.Context) (*LastRun, error) {
	const q = `SELECT id::text, started_at, finished_at, project_id, from_date, to_date, status, coalesce(detail,'')
		FROM report_runs ORDER BY started_at DESC LIMIT 1`
	row := r.db.Pool.QueryRow(ctx, q)
	lr := &LastRun{}
	if err := row.Scan(&lr.ID, &lr.StartedAt, &lr.FinishedAt, &lr.ProjectID, &lr.FromDate, &lr.ToDate, &lr.Status, &lr.Detail); err != nil {
		return nil, err
	}
	return lr, nil
}
