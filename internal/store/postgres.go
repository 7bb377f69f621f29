package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"job-match/internal/ranker"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	// Use advisory lock to prevent concurrent migrations from multiple services.
	// Note: In production, use dedicated migration tools (e.g., golang-migrate/migrate)
	// that run as a separate deployment step before app services start.
	const lockID = 784623901 // arbitrary number for this application's migration lock

	var acquired bool
	err := s.db.QueryRowContext(ctx, `SELECT pg_try_advisory_lock($1)`, lockID).Scan(&acquired)
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	if !acquired {
		// Another service is running migrations; wait briefly and skip
		time.Sleep(2 * time.Second)
		return nil
	}

	// Ensure lock is released when done
	defer func() {
		_, _ = s.db.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockID)
	}()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id UUID PRIMARY KEY,
			resume_filename TEXT,
			location TEXT,
			keywords TEXT,
			max_jobs INT,
			top_n INT,
			min_salary INT,
			experience_levels TEXT[],
			job_types TEXT[],
			required_skills TEXT[],
			status TEXT,
			fail_reason TEXT DEFAULT '',
			created_at TIMESTAMPTZ DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS recommendations (
			run_id UUID REFERENCES runs(id) ON DELETE CASCADE,
			rank INT,
			similarity DOUBLE PRECISION,
			title TEXT,
			company TEXT,
			location TEXT,
			description TEXT,
			salary TEXT,
			url TEXT,
			source TEXT,
			posted_date TEXT,
			job_type TEXT,
			extra JSONB,
			PRIMARY KEY (run_id, rank)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	run.Status = StatusProcessing
	run.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, resume_filename, location, keywords, max_jobs, top_n,
			min_salary, experience_levels, job_types, required_skills, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		run.ID, run.ResumeFilename, run.Location, run.Keywords, run.MaxJobs, run.TopN,
		run.Criteria.MinSalary, pq.Array(run.Criteria.ExperienceLevels),
		pq.Array(run.Criteria.JobTypes), pq.Array(run.Criteria.RequiredSkills),
		run.Status, run.CreatedAt)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, resume_filename, location, keywords, max_jobs, top_n,
			min_salary, experience_levels, job_types, required_skills,
			status, fail_reason, created_at
		FROM runs WHERE id = $1`, id).
		Scan(&run.ID, &run.ResumeFilename, &run.Location, &run.Keywords,
			&run.MaxJobs, &run.TopN, &run.Criteria.MinSalary,
			pq.Array(&run.Criteria.ExperienceLevels),
			pq.Array(&run.Criteria.JobTypes),
			pq.Array(&run.Criteria.RequiredSkills),
			&run.Status, &run.FailReason, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, id uuid.UUID, status RunStatus, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = $2, fail_reason = $3 WHERE id = $1`,
		id, status, reason)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (s *PostgresStore) SaveRecommendations(ctx context.Context, runID uuid.UUID, recs []ranker.Recommendation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recommendations WHERE run_id = $1`, runID); err != nil {
		return err
	}
	for _, rec := range recs {
		extra, err := json.Marshal(rec.Extra)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recommendations (run_id, rank, similarity, title, company,
				location, description, salary, url, source, posted_date, job_type, extra)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			runID, rec.Rank, rec.Similarity, rec.Title, rec.Company,
			rec.Location, rec.Description, rec.Salary, rec.URL, rec.Source,
			rec.PostedDate, rec.JobType, extra); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) ListRecommendations(ctx context.Context, runID uuid.UUID) ([]ranker.Recommendation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rank, similarity, title, company, location, description,
			salary, url, source, posted_date, job_type, extra
		FROM recommendations WHERE run_id = $1 ORDER BY rank`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []ranker.Recommendation
	for rows.Next() {
		var rec ranker.Recommendation
		var extra []byte
		if err := rows.Scan(&rec.Rank, &rec.Similarity, &rec.Title, &rec.Company,
			&rec.Location, &rec.Description, &rec.Salary, &rec.URL, &rec.Source,
			&rec.PostedDate, &rec.JobType, &extra); err != nil {
			return nil, err
		}
		if len(extra) > 0 {
			var m map[string]string
			if err := json.Unmarshal(extra, &m); err == nil {
				rec.Extra = m
			}
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

var _ Store = (*PostgresStore)(nil)
