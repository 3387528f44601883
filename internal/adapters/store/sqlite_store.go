package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
)

// SqliteStore persists analysis results in a local SQLite database.
type SqliteStore struct {
	db        *sql.DB
	logger    *zap.Logger
	retention time.Duration
	stopCh    chan struct{}
}

// NewSqliteStore opens (or creates) the database at dbPath and ensures the
// schema exists. Old rows are swept in the background.
func NewSqliteStore(logger *zap.Logger, dbPath string, retention, cleanupFreq time.Duration) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	s := &SqliteStore{
		db:        db,
		logger:    logger,
		retention: retention,
		stopCh:    make(chan struct{}),
	}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	go s.startCleanupTask(cleanupFreq)
	return s, nil
}

func (s *SqliteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS email_analyses (
			id TEXT PRIMARY KEY,
			email_hash TEXT NOT NULL UNIQUE,
			timestamp TEXT NOT NULL,
			verdict TEXT NOT NULL,
			risk_score REAL NOT NULL,
			reason TEXT,
			artifacts TEXT,
			recommendations TEXT,
			auth_results TEXT,
			urls_analysis TEXT,
			attachments_analysis TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_email_analyses_timestamp ON email_analyses(timestamp)`,
		`CREATE TABLE IF NOT EXISTS url_analyses (
			id TEXT PRIMARY KEY,
			email_analysis_id TEXT NOT NULL,
			url TEXT NOT NULL,
			is_malicious INTEGER NOT NULL,
			timestamp TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS attachment_analyses (
			id TEXT PRIMARY KEY,
			email_analysis_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			file_hash TEXT,
			risk_score REAL NOT NULL,
			is_malicious INTEGER NOT NULL,
			timestamp TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS analytics_trends (
			day TEXT PRIMARY KEY,
			total_emails INTEGER NOT NULL,
			malicious_count INTEGER NOT NULL,
			suspicious_count INTEGER NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// FindByHash returns the stored result for a hash, or nil when absent.
func (s *SqliteStore) FindByHash(ctx context.Context, hash string) (*core.AnalysisResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email_hash, timestamp, verdict, risk_score, reason,
		       artifacts, recommendations, auth_results, urls_analysis, attachments_analysis
		FROM email_analyses WHERE email_hash = ?`, hash)
	return scanResult(row)
}

// Save upserts a result keyed by its email hash, along with per-URL and
// per-attachment detail rows.
func (s *SqliteStore) Save(ctx context.Context, result *core.AnalysisResult) error {
	encoded, err := encodeResult(result)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var previousID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM email_analyses WHERE email_hash = ?`, result.EmailHash).Scan(&previousID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to look up previous analysis: %w", err)
	}
	if previousID != "" {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM url_analyses WHERE email_analysis_id = ?`, previousID); err != nil {
			return fmt.Errorf("failed to clear previous URL rows: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM attachment_analyses WHERE email_analysis_id = ?`, previousID); err != nil {
			return fmt.Errorf("failed to clear previous attachment rows: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO email_analyses
			(id, email_hash, timestamp, verdict, risk_score, reason,
			 artifacts, recommendations, auth_results, urls_analysis, attachments_analysis)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.EmailHash, result.Timestamp.UTC().Format(time.RFC3339Nano),
		string(result.Verdict), result.RiskScore, result.Reason,
		encoded.artifacts, encoded.recommendations, encoded.auth, encoded.urls, encoded.attachments)
	if err != nil {
		return fmt.Errorf("failed to save analysis result: %w", err)
	}

	stamp := result.Timestamp.UTC().Format(time.RFC3339Nano)
	for _, v := range result.URLVerdicts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO url_analyses (id, email_analysis_id, url, is_malicious, timestamp)
			VALUES (?, ?, ?, ?, ?)`,
			uuid.NewString(), result.ID, v.URL, boolToInt(v.IsMalicious), stamp); err != nil {
			return fmt.Errorf("failed to save URL analysis: %w", err)
		}
	}
	for _, v := range result.AttachmentVerdicts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO attachment_analyses
				(id, email_analysis_id, filename, file_hash, risk_score, is_malicious, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), result.ID, v.Filename, v.FileHash, v.RiskScore,
			boolToInt(v.IsMalicious), stamp); err != nil {
			return fmt.Errorf("failed to save attachment analysis: %w", err)
		}
	}

	return tx.Commit()
}

// RecentThreats lists non-SAFE results newer than since, newest first.
func (s *SqliteStore) RecentThreats(ctx context.Context, since time.Time, limit int) ([]core.ThreatSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, verdict, risk_score, artifacts
		FROM email_analyses
		WHERE verdict != ? AND timestamp >= ?
		ORDER BY timestamp DESC LIMIT ?`,
		string(core.VerdictSafe), since.UTC().Format(time.RFC3339Nano), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent threats: %w", err)
	}
	defer rows.Close()

	threats := make([]core.ThreatSummary, 0)
	for rows.Next() {
		var (
			summary   core.ThreatSummary
			stamp     string
			verdict   string
			artifacts sql.NullString
		)
		if err := rows.Scan(&summary.ID, &stamp, &verdict, &summary.RiskScore, &artifacts); err != nil {
			return nil, fmt.Errorf("failed to scan threat row: %w", err)
		}
		summary.Verdict = core.Verdict(verdict)
		if t, err := time.Parse(time.RFC3339Nano, stamp); err == nil {
			summary.Timestamp = t
		}
		if artifacts.Valid {
			var parsed core.EmailArtifact
			if err := json.Unmarshal([]byte(artifacts.String), &parsed); err == nil {
				summary.Sender = parsed.Sender
				summary.Subject = parsed.Subject
			}
		}
		threats = append(threats, summary)
	}
	return threats, rows.Err()
}

// Stats returns the precomputed counts for the day containing the given time,
// falling back to a live count when no trend row exists yet.
func (s *SqliteStore) Stats(ctx context.Context, day time.Time) (*core.DailyStats, error) {
	key := day.UTC().Format("2006-01-02")

	stats := &core.DailyStats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT total_emails, malicious_count, suspicious_count
		FROM analytics_trends WHERE day = ?`, key).
		Scan(&stats.TotalEmails, &stats.MaliciousCount, &stats.SuspiciousCount)
	if err == nil {
		return stats, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	return s.countDay(ctx, day)
}

func (s *SqliteStore) countDay(ctx context.Context, day time.Time) (*core.DailyStats, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	stats := &core.DailyStats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN verdict = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN verdict = ? THEN 1 ELSE 0 END), 0)
		FROM email_analyses WHERE timestamp >= ? AND timestamp < ?`,
		string(core.VerdictMalicious), string(core.VerdictSuspicious),
		start.Format(time.RFC3339Nano), end.Format(time.RFC3339Nano)).
		Scan(&stats.TotalEmails, &stats.MaliciousCount, &stats.SuspiciousCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count daily analyses: %w", err)
	}
	return stats, nil
}

// UpdateDailyStats recomputes today's counts and upserts the trend row.
func (s *SqliteStore) UpdateDailyStats(ctx context.Context) error {
	now := time.Now().UTC()
	stats, err := s.countDay(ctx, now)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO analytics_trends
			(day, total_emails, malicious_count, suspicious_count, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		now.Format("2006-01-02"), stats.TotalEmails, stats.MaliciousCount,
		stats.SuspiciousCount, now.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to update daily stats: %w", err)
	}
	return nil
}

func (s *SqliteStore) startCleanupTask(freq time.Duration) {
	ticker := time.NewTicker(freq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-s.retention).UTC().Format(time.RFC3339Nano)
			res, err := s.db.Exec(`DELETE FROM email_analyses WHERE timestamp < ?`, cutoff)
			if err != nil {
				s.logger.Error("Failed to remove expired analyses", zap.Error(err))
				continue
			}
			s.db.Exec(`DELETE FROM url_analyses WHERE timestamp < ?`, cutoff)
			s.db.Exec(`DELETE FROM attachment_analyses WHERE timestamp < ?`, cutoff)
			if removed, err := res.RowsAffected(); err == nil && removed > 0 {
				s.logger.Debug("Removed expired analysis results", zap.Int64("removed", removed))
			}
		case <-s.stopCh:
			return
		}
	}
}

// Stop stops the cleanup task and closes the database.
func (s *SqliteStore) Stop() {
	close(s.stopCh)
	s.db.Close()
}

type encodedResult struct {
	artifacts       string
	recommendations string
	auth            sql.NullString
	urls            sql.NullString
	attachments     sql.NullString
}

func encodeResult(result *core.AnalysisResult) (*encodedResult, error) {
	artifacts, err := json.Marshal(result.Artifacts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode artifacts: %w", err)
	}
	recommendations, err := json.Marshal(result.Recommendations)
	if err != nil {
		return nil, fmt.Errorf("failed to encode recommendations: %w", err)
	}

	encoded := &encodedResult{
		artifacts:       string(artifacts),
		recommendations: string(recommendations),
	}
	if result.Auth != nil {
		raw, err := json.Marshal(result.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to encode auth results: %w", err)
		}
		encoded.auth = sql.NullString{String: string(raw), Valid: true}
	}
	if len(result.URLVerdicts) > 0 {
		raw, err := json.Marshal(result.URLVerdicts)
		if err != nil {
			return nil, fmt.Errorf("failed to encode URL verdicts: %w", err)
		}
		encoded.urls = sql.NullString{String: string(raw), Valid: true}
	}
	if len(result.AttachmentVerdicts) > 0 {
		raw, err := json.Marshal(result.AttachmentVerdicts)
		if err != nil {
			return nil, fmt.Errorf("failed to encode attachment verdicts: %w", err)
		}
		encoded.attachments = sql.NullString{String: string(raw), Valid: true}
	}
	return encoded, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*core.AnalysisResult, error) {
	var (
		result          core.AnalysisResult
		stamp           string
		verdict         string
		artifacts       sql.NullString
		recommendations sql.NullString
		auth            sql.NullString
		urls            sql.NullString
		attachments     sql.NullString
	)
	err := row.Scan(&result.ID, &result.EmailHash, &stamp, &verdict, &result.RiskScore,
		&result.Reason, &artifacts, &recommendations, &auth, &urls, &attachments)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan analysis result: %w", err)
	}

	result.Verdict = core.Verdict(verdict)
	if t, err := time.Parse(time.RFC3339Nano, stamp); err == nil {
		result.Timestamp = t
	}
	if artifacts.Valid {
		if err := json.Unmarshal([]byte(artifacts.String), &result.Artifacts); err != nil {
			return nil, fmt.Errorf("failed to decode artifacts: %w", err)
		}
	}
	if recommendations.Valid {
		if err := json.Unmarshal([]byte(recommendations.String), &result.Recommendations); err != nil {
			return nil, fmt.Errorf("failed to decode recommendations: %w", err)
		}
	}
	if auth.Valid {
		result.Auth = &core.AuthenticationResult{}
		if err := json.Unmarshal([]byte(auth.String), result.Auth); err != nil {
			return nil, fmt.Errorf("failed to decode auth results: %w", err)
		}
	}
	if urls.Valid {
		if err := json.Unmarshal([]byte(urls.String), &result.URLVerdicts); err != nil {
			return nil, fmt.Errorf("failed to decode URL verdicts: %w", err)
		}
	}
	if attachments.Valid {
		if err := json.Unmarshal([]byte(attachments.String), &result.AttachmentVerdicts); err != nil {
			return nil, fmt.Errorf("failed to decode attachment verdicts: %w", err)
		}
	}
	return &result, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
