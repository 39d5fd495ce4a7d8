package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dicklesworthstone/sysoptimizer/internal/model"
)

// Timestamps are stored as fixed-width UTC text so they sort correctly.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Snapshot operations

// SaveSnapshot appends a snapshot and returns its id.
func (s *Store) SaveSnapshot(ctx context.Context, snap model.Snapshot) (int64, error) {
	query := `
		INSERT INTO snapshots
		(taken_at, cpu_percent, ram_percent, ram_available_gb, disk_free_percent, disk_free_gb, health_score, health_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := s.db.ExecContext(ctx, query,
		snap.Timestamp.UTC().Format(tsLayout),
		nullFloat(snap.CPUPercent),
		nullFloat(snap.RAMPercent),
		nullFloat(snap.RAMAvailableGB),
		nullFloat(snap.DiskFreePercent),
		nullFloat(snap.DiskFreeGB),
		snap.HealthScore,
		snap.Status.String(),
	)
	if err != nil {
		return 0, wrap("failed to insert snapshot", err)
	}
	return res.LastInsertId()
}

// ListSnapshots returns the most recent snapshots, newest first. limit
// <= 0 returns all of them.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]model.Snapshot, error) {
	query := `
		SELECT taken_at, cpu_percent, ram_percent, ram_available_gb, disk_free_percent, disk_free_gb, health_score, health_status
		FROM snapshots
		ORDER BY taken_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, sqlLimit(limit))
	if err != nil {
		return nil, wrap("failed to query snapshots", err)
	}
	defer rows.Close()

	var out []model.Snapshot
	for rows.Next() {
		var (
			snap                       model.Snapshot
			takenAt, status            string
			cpu, ram, avail, dpct, dgb sql.NullFloat64
		)
		if err := rows.Scan(&takenAt, &cpu, &ram, &avail, &dpct, &dgb, &snap.HealthScore, &status); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if snap.Timestamp, err = time.Parse(tsLayout, takenAt); err != nil {
			return nil, fmt.Errorf("failed to parse taken_at: %w", err)
		}
		if err := snap.Status.UnmarshalText([]byte(status)); err != nil {
			return nil, fmt.Errorf("failed to parse health_status: %w", err)
		}
		snap.CPUPercent = ptrFloat(cpu)
		snap.RAMPercent = ptrFloat(ram)
		snap.RAMAvailableGB = ptrFloat(avail)
		snap.DiskFreePercent = ptrFloat(dpct)
		snap.DiskFreeGB = ptrFloat(dgb)
		out = append(out, snap)
	}
	return out, wrap("failed to iterate snapshots", rows.Err())
}

// Disk report operations

// SaveReport appends a disk report.
func (s *Store) SaveReport(ctx context.Context, r model.DiskReport) error {
	benefitsJSON, err := json.Marshal(r.Benefits)
	if err != nil {
		return fmt.Errorf("failed to marshal benefits: %w", err)
	}

	query := `
		INSERT INTO disk_reports
		(drive, operation, success, bytes_freed, file_count, duration_ms, description, benefits, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		r.Drive,
		r.Operation.String(),
		r.Success,
		r.BytesFreed,
		r.FileCount,
		r.Duration.Milliseconds(),
		r.Description,
		string(benefitsJSON),
		r.ExecutedAt.UTC().Format(tsLayout),
	)
	if err != nil {
		return wrap(fmt.Sprintf("failed to insert %s report for %s", r.Operation, r.Drive), err)
	}
	return nil
}

// ListReports returns the most recent reports, newest first. An empty
// drive matches every drive.
func (s *Store) ListReports(ctx context.Context, drive string, limit int) ([]model.DiskReport, error) {
	query := `
		SELECT drive, operation, success, bytes_freed, file_count, duration_ms, description, benefits, executed_at
		FROM disk_reports
		WHERE (? = '' OR drive = ?)
		ORDER BY executed_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, drive, drive, sqlLimit(limit))
	if err != nil {
		return nil, wrap("failed to query disk reports", err)
	}
	defer rows.Close()

	var out []model.DiskReport
	for rows.Next() {
		var (
			r                       model.DiskReport
			op, executedAt          string
			durationMS              int64
			description, benefitsJS sql.NullString
		)
		if err := rows.Scan(&r.Drive, &op, &r.Success, &r.BytesFreed, &r.FileCount, &durationMS, &description, &benefitsJS, &executedAt); err != nil {
			return nil, fmt.Errorf("failed to scan disk report: %w", err)
		}
		kind, ok := model.ParseOperationKind(op)
		if !ok {
			return nil, fmt.Errorf("unknown operation %q in history", op)
		}
		r.Operation = kind
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.Description = description.String
		if benefitsJS.Valid && benefitsJS.String != "" {
			if err := json.Unmarshal([]byte(benefitsJS.String), &r.Benefits); err != nil {
				return nil, fmt.Errorf("failed to unmarshal benefits: %w", err)
			}
		}
		if r.ExecutedAt, err = time.Parse(tsLayout, executedAt); err != nil {
			return nil, fmt.Errorf("failed to parse executed_at: %w", err)
		}
		out = append(out, r)
	}
	return out, wrap("failed to iterate disk reports", rows.Err())
}

// TotalBytesFreed sums bytes freed by successful reports since t.
func (s *Store) TotalBytesFreed(ctx context.Context, since time.Time) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(bytes_freed) FROM disk_reports WHERE success = 1 AND executed_at >= ?`,
		since.UTC().Format(tsLayout),
	).Scan(&total)
	if err != nil {
		return 0, wrap("failed to sum bytes freed", err)
	}
	return total.Int64, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func ptrFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
