package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/a11yscan/internal/model"
	"github.com/nao1215/a11yscan/internal/report"
)

// DBFileName is the history database file inside the data directory.
const DBFileName = "a11yscan.db"

// HistoryDB stores finished audit runs so later runs can be compared
// with them. One database holds the runs of every base URL.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// ErrNotFound is returned when a database file or run does not exist.
var ErrNotFound = errors.New("not found")

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("database %s: %w", dbPath, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to check database path: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode+"&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// createTables creates the schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	-- One row per finished run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		base_url TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		dir TEXT NOT NULL,
		pages_total INTEGER NOT NULL,
		audited INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		violations INTEGER NOT NULL,
		impact_summary TEXT,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_base_url ON runs(base_url);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);

	-- One row per successfully audited page of a run
	CREATE TABLE IF NOT EXISTS page_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		page TEXT NOT NULL,
		path TEXT NOT NULL,
		violations INTEGER NOT NULL,
		passes INTEGER NOT NULL,
		incomplete INTEGER NOT NULL,
		inapplicable INTEGER NOT NULL,
		critical INTEGER NOT NULL,
		serious INTEGER NOT NULL,
		moderate INTEGER NOT NULL,
		minor INTEGER NOT NULL,
		raw_hash TEXT,
		UNIQUE(run, page)
	);

	CREATE INDEX IF NOT EXISTS idx_page_results_page ON page_results(page);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// HashRaw returns the hex SHA3-256 of a raw analysis result.
// Equal hashes across runs mean axe-core reported exactly the same thing.
func HashRaw(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SaveRun stores a finalized run and its page results in one transaction.
// Raw results are read back from the run directory to hash them; a
// missing artifact leaves the hash empty. It returns the database ID.
func (h *HistoryDB) SaveRun(ctx context.Context, run *model.RunReport) (id int64, err error) {
	reportJSON, err := json.Marshal(run)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize run: %w", err)
	}
	impactJSON, err := json.Marshal(run.ImpactTotals())
	if err != nil {
		return 0, fmt.Errorf("failed to serialize impact summary: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO runs (run_id, base_url, timestamp, dir, pages_total, audited, failed, violations, impact_summary, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.BaseURL,
		run.Timestamp.UTC().Format(time.RFC3339),
		run.Dir,
		run.PagesTotal,
		len(run.Results),
		len(run.Failures),
		run.TotalViolations(),
		string(impactJSON),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, r := range run.Results {
		var hash string
		if raw, rerr := os.ReadFile(filepath.Join(run.Dir, report.ArtifactName(r.Page))); rerr == nil {
			hash = HashRaw(raw)
		}
		if _, err = tx.ExecContext(ctx, `
		INSERT INTO page_results (run, page, path, violations, passes, incomplete, inapplicable, critical, serious, moderate, minor, raw_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			id, r.Page, r.Path,
			r.Violations, r.Passes, r.Incomplete, r.Inapplicable,
			r.ViolationsByImpact.Critical,
			r.ViolationsByImpact.Serious,
			r.ViolationsByImpact.Moderate,
			r.ViolationsByImpact.Minor,
			hash,
		); err != nil {
			return 0, fmt.Errorf("failed to save page result %s: %w", r.Page, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// RunMetadata is the listing view of a stored run.
type RunMetadata struct {
	// ID is the database ID, used by compare --with-run-id.
	ID int64

	// RunID is the UUID of the run.
	RunID string

	BaseURL   string
	Timestamp time.Time
	Dir       string

	PagesTotal int
	Audited    int
	Failed     int
	Violations int

	// Impacts are the violations per impact over all pages.
	Impacts model.ImpactCounts
}

// ListBaseURLs returns every base URL with at least one stored run.
func (h *HistoryDB) ListBaseURLs(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT base_url FROM runs ORDER BY base_url`)
	if err != nil {
		return nil, fmt.Errorf("failed to list base URLs: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan base URL: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// GetRunHistory returns the runs of baseURL, newest first.
func (h *HistoryDB) GetRunHistory(ctx context.Context, baseURL string) ([]RunMetadata, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT id, run_id, base_url, timestamp, dir, pages_total, audited, failed, violations, impact_summary
	FROM runs
	WHERE base_url = ?
	ORDER BY timestamp DESC, id DESC
	`, baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}
	defer rows.Close()

	var out []RunMetadata
	for rows.Next() {
		var (
			meta       RunMetadata
			timestamp  string
			impactJSON sql.NullString
		)
		if err := rows.Scan(&meta.ID, &meta.RunID, &meta.BaseURL, &timestamp, &meta.Dir,
			&meta.PagesTotal, &meta.Audited, &meta.Failed, &meta.Violations, &impactJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		if impactJSON.Valid && impactJSON.String != "" {
			_ = json.Unmarshal([]byte(impactJSON.String), &meta.Impacts) //nolint:errcheck // zero counts on malformed rows
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}

// GetRunByID returns a stored run. The run is returned in StateFinalized.
func (h *HistoryDB) GetRunByID(ctx context.Context, id int64) (*model.RunReport, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx, `SELECT report_json FROM runs WHERE id = ?`, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var run model.RunReport
	if err := json.Unmarshal([]byte(reportJSON), &run); err != nil {
		return nil, fmt.Errorf("failed to parse run: %w", err)
	}
	run.State = model.StateFinalized
	return &run, nil
}

// PageRecord is one stored page result with its run's time.
type PageRecord struct {
	RunID     int64
	Timestamp time.Time
	Result    model.PageAuditResult
	RawHash   string
}

// GetPageHistory returns the stored results of one page of baseURL,
// newest first.
func (h *HistoryDB) GetPageHistory(ctx context.Context, baseURL, page string) ([]PageRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT r.id, r.timestamp, p.page, p.path, p.violations, p.passes, p.incomplete, p.inapplicable,
		p.critical, p.serious, p.moderate, p.minor, p.raw_hash
	FROM page_results p
	JOIN runs r ON r.id = p.run
	WHERE r.base_url = ? AND p.page = ?
	ORDER BY r.timestamp DESC, r.id DESC
	`, baseURL, page)
	if err != nil {
		return nil, fmt.Errorf("failed to get page history: %w", err)
	}
	defer rows.Close()

	var out []PageRecord
	for rows.Next() {
		var (
			rec       PageRecord
			timestamp string
			hash      sql.NullString
			res       = &rec.Result
		)
		if err := rows.Scan(&rec.RunID, &timestamp, &res.Page, &res.Path,
			&res.Violations, &res.Passes, &res.Incomplete, &res.Inapplicable,
			&res.ViolationsByImpact.Critical, &res.ViolationsByImpact.Serious,
			&res.ViolationsByImpact.Moderate, &res.ViolationsByImpact.Minor,
			&hash); err != nil {
			return nil, fmt.Errorf("failed to scan page result: %w", err)
		}
		rec.Timestamp = parseTimestamp(timestamp)
		rec.RawHash = hash.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// timestampFormats are the formats timestamps may be stored in.
var timestampFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses a stored timestamp, returning the zero time if
// no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
