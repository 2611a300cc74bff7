// Package jobs persists parse-job lifecycle state in sqlite so API clients
// can poll asynchronous extractions and retrieve their outputs later.
package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"invoice-extractor/pkg/database"
)

// Job statuses. A job moves pending -> processing -> completed | failed.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ErrNotFound is returned when a job ID has no row.
var ErrNotFound = errors.New("job not found")

// Job is one asynchronous parse request and its outputs.
type Job struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	Status       string    `json:"status"`
	Provider     string    `json:"provider,omitempty"`
	SerialNumber string    `json:"serial_number,omitempty"`
	InvoiceCSV   string    `json:"invoice_csv,omitempty"`
	ItemsCSV     string    `json:"items_csv,omitempty"`
	Workbook     string    `json:"workbook,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store reads and writes parse jobs.
type Store struct {
	db     *database.DB
	logger *zap.Logger
}

func NewStore(db *database.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Create inserts a new pending job for the uploaded file and returns it.
func (s *Store) Create(ctx context.Context, filename, provider string) (*Job, error) {
	job := &Job{
		ID:       uuid.NewString(),
		Filename: filename,
		Status:   StatusPending,
		Provider: provider,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO parse_jobs (id, filename, status, provider) VALUES (?, ?, ?, ?)`,
		job.ID, job.Filename, job.Status, job.Provider)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	s.logger.Info("Parse job created",
		zap.String("job_id", job.ID),
		zap.String("filename", filename))
	return job, nil
}

// MarkProcessing flips a job to the processing state.
func (s *Store) MarkProcessing(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, StatusProcessing, "")
}

// Complete records a successful parse and its output paths.
func (s *Store) Complete(ctx context.Context, id, serial, invoiceCSV, itemsCSV, workbook string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE parse_jobs
		 SET status = ?, serial_number = ?, invoice_csv = ?, items_csv = ?, workbook = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		StatusCompleted, serial, invoiceCSV, itemsCSV, workbook, id)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return requireRow(res)
}

// Fail records a failed parse with its error text.
func (s *Store) Fail(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.setStatus(ctx, id, StatusFailed, msg)
}

func (s *Store) setStatus(ctx context.Context, id, status, errText string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE parse_jobs SET status = ?, error = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, errText, id)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	return requireRow(res)
}

// Get returns one job by ID.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, filename, status, provider, serial_number, invoice_csv, items_csv, workbook, error, created_at, updated_at
		 FROM parse_jobs WHERE id = ?`, id)
	return scanJob(row)
}

// List returns jobs newest first, capped at limit.
func (s *Store) List(ctx context.Context, limit int) ([]*Job, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, status, provider, serial_number, invoice_csv, items_csv, workbook, error, created_at, updated_at
		 FROM parse_jobs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(sc scanner) (*Job, error) {
	var job Job
	err := sc.Scan(&job.ID, &job.Filename, &job.Status, &job.Provider, &job.SerialNumber,
		&job.InvoiceCSV, &job.ItemsCSV, &job.Workbook, &job.Error, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}
	return &job, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
