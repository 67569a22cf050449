package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"LoadLedger/internal/domain/models"
	domrepo "LoadLedger/internal/domain/repository"
	pkgch "LoadLedger/pkg/clickhouse"
	applogger "LoadLedger/pkg/logger"
)

// CHReportArchive implements ReportArchive backed by ClickHouse.
type CHReportArchive struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

func NewCHReportArchive(ch *pkgch.Client) *CHReportArchive {
	return &CHReportArchive{ch: ch, db: ch.DB()}
}

var _ domrepo.ReportArchive = (*CHReportArchive)(nil)

// SetLogger injects a structured logger.
func (s *CHReportArchive) SetLogger(l *applogger.Logger) { s.l = l }

// Init ensures the archive database and table exist. Idempotent.
func (s *CHReportArchive) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS loadledger",
		`CREATE TABLE IF NOT EXISTS loadledger.report_runs (
            run_id          String,
            report_type     LowCardinality(String),
            format          LowCardinality(String),
            status          LowCardinality(String),
            audit_precision LowCardinality(String),
            total_hours     Float64,
            total_load      Float64,
            distance_km     Float64,
            event_count     UInt32,
            validated       UInt8,
            phase_count     UInt32,
            warning_count   UInt32,
            compliance      String,
            envelope        String,
            error           String,
            duration_ms     UInt64,
            created_at      DateTime
        ) ENGINE = MergeTree ORDER BY (created_at, run_id)`,
	})
}

func (s *CHReportArchive) StoreRun(ctx context.Context, rec models.RunRecord, envelope models.ReportEnvelope) error {
	start := time.Now()

	compliance, err := json.Marshal(rec.Compliance)
	if err != nil {
		return fmt.Errorf("marshal compliance: %w", err)
	}
	var envJSON []byte
	if rec.Status == "completed" {
		envJSON, err = json.Marshal(envelope)
		if err != nil {
			return fmt.Errorf("marshal envelope: %w", err)
		}
	}

	const q = `
        INSERT INTO loadledger.report_runs
        (run_id, report_type, format, status, audit_precision,
         total_hours, total_load, distance_km, event_count, validated,
         phase_count, warning_count, compliance, envelope, error,
         duration_ms, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	validated := uint8(0)
	if rec.Validated {
		validated = 1
	}
	_, err = s.db.ExecContext(ctx, q,
		rec.RunID, rec.ReportType, rec.Format, rec.Status, rec.AuditPrecision,
		rec.TotalHours, rec.TotalLoad, rec.DistanceKm, uint32(rec.EventCount), validated,
		uint32(rec.PhaseCount), uint32(rec.WarningCount), string(compliance), string(envJSON), rec.Error,
		uint64(rec.Duration.Milliseconds()), rec.GeneratedAt,
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse store_run insert error",
				applogger.String("run_id", rec.RunID),
				applogger.String("range", rec.ReportType),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("store run: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse store_run ok",
			applogger.String("run_id", rec.RunID),
			applogger.String("range", rec.ReportType),
			applogger.String("status", rec.Status),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHReportArchive) RecentRuns(ctx context.Context, limit int) ([]models.RunRecord, error) {
	start := time.Now()
	if limit <= 0 {
		limit = 20
	}
	const q = `
        SELECT run_id, report_type, format, status, audit_precision,
               total_hours, total_load, distance_km, event_count, validated,
               phase_count, warning_count, compliance, error,
               duration_ms, created_at
        FROM loadledger.report_runs
        ORDER BY created_at DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse recent_runs query error",
				applogger.Int("limit", limit),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("recent runs: %w", err)
	}
	defer rows.Close()

	out := make([]models.RunRecord, 0, limit)
	for rows.Next() {
		var (
			rec        models.RunRecord
			eventCount uint32
			validated  uint8
			phaseCount uint32
			warnCount  uint32
			compliance string
			durationMS uint64
		)
		if err := rows.Scan(&rec.RunID, &rec.ReportType, &rec.Format, &rec.Status, &rec.AuditPrecision,
			&rec.TotalHours, &rec.TotalLoad, &rec.DistanceKm, &eventCount, &validated,
			&phaseCount, &warnCount, &compliance, &rec.Error,
			&durationMS, &rec.GeneratedAt); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse recent_runs scan error", applogger.Error(err))
			}
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.EventCount = int(eventCount)
		rec.Validated = validated != 0
		rec.PhaseCount = int(phaseCount)
		rec.WarningCount = int(warnCount)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		if compliance != "" {
			_ = json.Unmarshal([]byte(compliance), &rec.Compliance)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse recent_runs rows error", applogger.Error(err))
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse recent_runs ok",
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHReportArchive) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHReportArchive) Close() error {
	return s.ch.Close()
}
