// Package audit provides an extension that keeps a SQLite ledger of approval
// requests and their decisions, and reports recent entries through the
// "audit" action.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/tailored-agentic-units/ucf/core/protocol"
	"github.com/tailored-agentic-units/ucf/extension"
)

const (
	Name    = "audit"
	Version = "1.0.0"

	// ActionName is the action registered on install.
	ActionName = "audit"

	// DefaultReportSize is the number of entries the audit action lists.
	DefaultReportSize = 10
)

// ErrNotInstalled is returned by queries before Install or after Uninstall.
var ErrNotInstalled = errors.New("audit ledger is not open")

const schema = `
CREATE TABLE IF NOT EXISTS approvals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL UNIQUE,
	command TEXT NOT NULL,
	intent TEXT NOT NULL,
	risk TEXT NOT NULL,
	requested_at TEXT NOT NULL,
	approved INTEGER,
	reason TEXT,
	decided_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_approvals_risk ON approvals(risk);
`

// Entry is one ledger row. Decided is false while the request is open.
type Entry struct {
	RequestID   string
	Command     string
	Intent      string
	Risk        protocol.Risk
	RequestedAt time.Time
	Decided     bool
	Approved    bool
	Reason      string
	DecidedAt   time.Time
}

// Option configures an Extension.
type Option func(*Extension)

// WithLogger reports ledger write failures to log.
func WithLogger(log *zap.Logger) Option {
	return func(e *Extension) { e.log = log.Named(Name) }
}

// Extension records approvals to a SQLite database.
type Extension struct {
	path string
	log  *zap.Logger

	mu     sync.RWMutex
	db     *sql.DB
	unsubs []func()
}

// New creates an audit extension writing to the database file at path. The
// database is opened on install.
func New(path string, opts ...Option) *Extension {
	e := &Extension{path: path, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Extension) Name() string    { return Name }
func (e *Extension) Version() string { return Version }

func (e *Extension) Install(ctx context.Context, host extension.Host) error {
	db, err := open(ctx, e.path)
	if err != nil {
		return err
	}

	if err := host.AddAction(ActionName, "Show recent approval decisions", e.report); err != nil {
		db.Close()
		return err
	}

	bus := host.Events()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.db = db
	e.unsubs = append(e.unsubs,
		bus.OnApprovalRequest(e.recordRequest),
		bus.OnApprovalDecision(e.recordDecision),
	)
	return nil
}

func (e *Extension) Uninstall(_ context.Context, host extension.Host) error {
	host.RemoveAction(ActionName)

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, unsub := range e.unsubs {
		unsub()
	}
	e.unsubs = nil

	if e.db == nil {
		return nil
	}
	err := e.db.Close()
	e.db = nil
	if err != nil {
		return fmt.Errorf("failed to close audit ledger: %w", err)
	}
	return nil
}

func open(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit ledger: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit ledger: %w", err)
	}
	return db, nil
}

func (e *Extension) recordRequest(ctx context.Context, req protocol.ApprovalRequest) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.db == nil {
		return
	}

	_, err := e.db.ExecContext(context.WithoutCancel(ctx),
		`INSERT INTO approvals (request_id, command, intent, risk, requested_at) VALUES (?, ?, ?, ?, ?)`,
		req.ID, req.Command, req.Intent, string(req.Risk), formatTime(req.Timestamp),
	)
	if err != nil {
		e.log.Error("failed to record approval request", zap.String("request_id", req.ID), zap.Error(err))
	}
}

func (e *Extension) recordDecision(ctx context.Context, d protocol.ApprovalDecision) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.db == nil {
		return
	}

	_, err := e.db.ExecContext(context.WithoutCancel(ctx),
		`UPDATE approvals SET approved = ?, reason = ?, decided_at = ? WHERE request_id = ?`,
		d.Approved, d.Reason, formatTime(d.Timestamp), d.RequestID,
	)
	if err != nil {
		e.log.Error("failed to record approval decision", zap.String("request_id", d.RequestID), zap.Error(err))
	}
}

// Recent returns up to n ledger entries, newest first.
func (e *Extension) Recent(ctx context.Context, n int) ([]Entry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.db == nil {
		return nil, ErrNotInstalled
	}

	rows, err := e.db.QueryContext(ctx,
		`SELECT request_id, command, intent, risk, requested_at, approved, reason, decided_at
		 FROM approvals ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit ledger: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry       Entry
			risk        string
			requestedAt string
			approved    sql.NullInt64
			reason      sql.NullString
			decidedAt   sql.NullString
		)
		if err := rows.Scan(&entry.RequestID, &entry.Command, &entry.Intent, &risk, &requestedAt, &approved, &reason, &decidedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		entry.Risk = protocol.Risk(risk)
		entry.RequestedAt = parseTime(requestedAt)
		if approved.Valid {
			entry.Decided = true
			entry.Approved = approved.Int64 != 0
			entry.Reason = reason.String
			entry.DecidedAt = parseTime(decidedAt.String)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Counts returns the number of approved and denied decisions on record.
func (e *Extension) Counts(ctx context.Context) (approved, denied int, err error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.db == nil {
		return 0, 0, ErrNotInstalled
	}

	err = e.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(approved = 1), 0), COALESCE(SUM(approved = 0), 0) FROM approvals`,
	).Scan(&approved, &denied)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return approved, denied, nil
}

func (e *Extension) report(ctx context.Context) (string, error) {
	entries, err := e.Recent(ctx, DefaultReportSize)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "No approval requests recorded.", nil
	}

	var b strings.Builder
	for i, entry := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		verdict := "PENDING"
		if entry.Decided {
			verdict = "DENIED"
			if entry.Approved {
				verdict = "APPROVED"
			}
		}
		fmt.Fprintf(&b, "%s  %-8s  %-6s  %s", entry.RequestedAt.Format(time.DateTime), verdict, entry.Risk, entry.Command)
	}
	return b.String(), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
