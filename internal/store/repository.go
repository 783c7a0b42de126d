package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RudolfTheOne/ThetaTracker/internal/screener"
	"github.com/RudolfTheOne/ThetaTracker/pkg/config"
	"github.com/RudolfTheOne/ThetaTracker/pkg/logger"
)

// Repository persists cycle history to PostgreSQL. It is an optional
// sink: the screener runs fine without a database.
type Repository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// New connects a cycle-history repository using the configured pool
// settings and bootstraps the schema.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	r := &Repository{
		pool:   pool,
		logger: log.WithField("module", "store"),
	}
	if err := r.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// ensureSchema creates the history tables when missing.
func (r *Repository) ensureSchema(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS cycles (
			id              BIGSERIAL PRIMARY KEY,
			started_at      TIMESTAMPTZ NOT NULL,
			duration_ms     BIGINT NOT NULL,
			sort_key        TEXT NOT NULL,
			survivors       INT NOT NULL,
			candidate_count INT NOT NULL,
			warning_count   INT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS cycle_candidates (
			cycle_id           BIGINT NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
			rank_position      INT NOT NULL,
			ticker             TEXT NOT NULL,
			line_number        INT NOT NULL,
			strike_price       DOUBLE PRECISION NOT NULL,
			bid                DOUBLE PRECISION NOT NULL,
			delta              DOUBLE PRECISION NOT NULL,
			days_to_expiration INT NOT NULL,
			contracts          INT NOT NULL,
			premium_usd        DOUBLE PRECISION NOT NULL,
			premium_per_day    DOUBLE PRECISION NOT NULL,
			arr                DOUBLE PRECISION NOT NULL,
			arr_valid          BOOLEAN NOT NULL,
			has_earnings       BOOLEAN NOT NULL,
			PRIMARY KEY (cycle_id, rank_position)
		);
		CREATE TABLE IF NOT EXISTS cycle_warnings (
			cycle_id BIGINT NOT NULL REFERENCES cycles(id) ON DELETE CASCADE,
			ticker   TEXT NOT NULL,
			stage    TEXT NOT NULL,
			error    TEXT NOT NULL
		);
	`
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Name implements jobs.CycleSink.
func (r *Repository) Name() string {
	return "postgres"
}

// PublishCycle implements jobs.CycleSink: one transaction per cycle.
func (r *Repository) PublishCycle(ctx context.Context, cycle *screener.CycleResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var cycleID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO cycles (started_at, duration_ms, sort_key, survivors, candidate_count, warning_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		cycle.StartedAt,
		cycle.Duration.Milliseconds(),
		cycle.SortKey,
		cycle.Survivors,
		len(cycle.Ranking),
		len(cycle.Warnings),
	).Scan(&cycleID)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}

	for i, c := range cycle.Ranking {
		_, err = tx.Exec(ctx, `
			INSERT INTO cycle_candidates (
				cycle_id, rank_position, ticker, line_number, strike_price, bid, delta,
				days_to_expiration, contracts, premium_usd, premium_per_day, arr, arr_valid, has_earnings
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`,
			cycleID, i, c.Ticker, c.Line, c.StrikePrice, c.Bid, c.Delta,
			c.DaysToExpiration, c.ContractsAffordable, c.PremiumUSD, c.PremiumPerDay,
			c.ARR, c.ARRValid, c.HasEarnings,
		)
		if err != nil {
			return fmt.Errorf("insert candidate: %w", err)
		}
	}

	for _, warning := range cycle.Warnings {
		_, err = tx.Exec(ctx, `
			INSERT INTO cycle_warnings (cycle_id, ticker, stage, error)
			VALUES ($1, $2, $3, $4)
		`, cycleID, warning.Ticker, warning.Stage, warning.Error)
		if err != nil {
			return fmt.Errorf("insert warning: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"cycle_id":   cycleID,
		"candidates": len(cycle.Ranking),
	}).Debug("Cycle persisted")
	return nil
}

// CycleSummary is one row of stored cycle history.
type CycleSummary struct {
	ID             int64         `json:"id"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	SortKey        string        `json:"sort_key"`
	Survivors      int           `json:"survivors"`
	CandidateCount int           `json:"candidate_count"`
	WarningCount   int           `json:"warning_count"`
}

// RecentCycles returns the newest cycle summaries, newest first.
func (r *Repository) RecentCycles(ctx context.Context, limit int) ([]CycleSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, started_at, duration_ms, sort_key, survivors, candidate_count, warning_count
		FROM cycles
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []CycleSummary
	for rows.Next() {
		var s CycleSummary
		var durationMs int64
		if err := rows.Scan(&s.ID, &s.StartedAt, &durationMs, &s.SortKey, &s.Survivors, &s.CandidateCount, &s.WarningCount); err != nil {
			return nil, err
		}
		s.Duration = time.Duration(durationMs) * time.Millisecond
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
