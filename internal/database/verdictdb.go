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

	"github.com/nao1215/phishscan/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "phishscan.db"

// storedTimeLayout is fixed width so timestamps sort as text.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultHistoryLimit caps history queries when the caller passes a
// non-positive limit.
const DefaultHistoryLimit = 50

// VerdictDB stores check verdicts in a single SQLite file.
type VerdictDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures VerdictDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
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

// Open opens or creates a VerdictDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*VerdictDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rwc"
	if !opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	vdb := &VerdictDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := vdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return vdb, nil
}

// Close closes the database connection.
func (vdb *VerdictDB) Close() error {
	return vdb.db.Close()
}

// Path returns the database file path.
func (vdb *VerdictDB) Path() string {
	return vdb.dbPath
}

func (vdb *VerdictDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS verdicts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		url_hash TEXT NOT NULL,
		label INTEGER NOT NULL,
		score REAL NOT NULL DEFAULT 0,
		classifier TEXT,
		checked_at TEXT NOT NULL,
		timed_out INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		blocklisted INTEGER,
		domain_age_days INTEGER,
		reputation_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_verdicts_hash ON verdicts(url_hash);
	CREATE INDEX IF NOT EXISTS idx_verdicts_checked ON verdicts(checked_at);
	`

	_, err := vdb.db.ExecContext(context.Background(), schema)
	return err
}

// Verdict is a stored check result.
type Verdict struct {
	ID             int64       `json:"id"`
	URL            string      `json:"url"`
	URLHash        string      `json:"url_hash"`
	Label          model.Label `json:"prediction"`
	Score          float64     `json:"score"`
	Classifier     string      `json:"classifier,omitempty"`
	CheckedAt      time.Time   `json:"checked_at"`
	TimedOut       bool        `json:"timed_out"`
	Error          string      `json:"error,omitempty"`
	Blocklisted    *bool       `json:"blocklisted,omitempty"`
	DomainAgeDays  *int        `json:"domain_age_days,omitempty"`
	ReputationJSON string      `json:"-"`
}

// Reputation decodes the stored reputation report. It returns nil when
// the check ran without reputation lookups.
func (v *Verdict) Reputation() (*model.ReputationReport, error) {
	if v.ReputationJSON == "" {
		return nil, nil
	}
	var rep model.ReputationReport
	if err := json.Unmarshal([]byte(v.ReputationJSON), &rep); err != nil {
		return nil, fmt.Errorf("failed to parse reputation: %w", err)
	}
	return &rep, nil
}

// HashURL returns the hex SHA3-256 fingerprint used to index rawURL.
func HashURL(rawURL string) string {
	sum := sha3.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}

// SaveVerdict stores the verdict part of report and returns the row ID.
func (vdb *VerdictDB) SaveVerdict(ctx context.Context, report *model.CheckReport) (int64, error) {
	if report == nil {
		return 0, errors.New("report is nil")
	}

	checkedAt := report.DateChecked
	if checkedAt.IsZero() {
		checkedAt = time.Now()
	}

	var (
		blocklisted    sql.NullBool
		domainAge      sql.NullInt64
		reputationJSON sql.NullString
	)
	if rep := report.Reputation; rep != nil {
		if rep.BlocklistChecked {
			blocklisted = sql.NullBool{Bool: rep.Blocklisted, Valid: true}
		}
		if rep.DomainAgeDays >= 0 {
			domainAge = sql.NullInt64{Int64: int64(rep.DomainAgeDays), Valid: true}
		}
		data, err := json.Marshal(rep)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize reputation: %w", err)
		}
		reputationJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `
	INSERT INTO verdicts (url, url_hash, label, score, classifier, checked_at,
		timed_out, error, blocklisted, domain_age_days, reputation_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := vdb.db.ExecContext(ctx, query,
		report.URL,
		HashURL(report.URL),
		int(report.Label),
		report.Score,
		report.ClassifierName,
		checkedAt.UTC().Format(storedTimeLayout),
		report.TimedOut,
		report.ErrorMessage,
		blocklisted,
		domainAge,
		reputationJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save verdict: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get verdict id: %w", err)
	}
	return id, nil
}

const verdictColumns = `id, url, url_hash, label, score, classifier, checked_at,
	timed_out, error, blocklisted, domain_age_days, reputation_json`

// GetVerdict retrieves a verdict by ID. It returns nil, nil if none exists.
func (vdb *VerdictDB) GetVerdict(ctx context.Context, id int64) (*Verdict, error) {
	query := `SELECT ` + verdictColumns + ` FROM verdicts WHERE id = ?`

	v, err := scanVerdict(vdb.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get verdict: %w", err)
	}
	return v, nil
}

// LatestVerdict retrieves the most recent verdict for rawURL.
// It returns nil, nil if the URL was never checked.
func (vdb *VerdictDB) LatestVerdict(ctx context.Context, rawURL string) (*Verdict, error) {
	query := `SELECT ` + verdictColumns + ` FROM verdicts
	WHERE url_hash = ? AND url = ?
	ORDER BY checked_at DESC, id DESC
	LIMIT 1`

	v, err := scanVerdict(vdb.db.QueryRowContext(ctx, query, HashURL(rawURL), rawURL))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest verdict: %w", err)
	}
	return v, nil
}

// History returns stored verdicts, newest first. When rawURL is not empty
// only verdicts for that URL are returned. A non-positive limit means
// DefaultHistoryLimit.
func (vdb *VerdictDB) History(ctx context.Context, rawURL string, limit int) ([]*Verdict, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var (
		rows *sql.Rows
		err  error
	)
	if rawURL == "" {
		query := `SELECT ` + verdictColumns + ` FROM verdicts
		ORDER BY checked_at DESC, id DESC
		LIMIT ?`
		rows, err = vdb.db.QueryContext(ctx, query, limit)
	} else {
		query := `SELECT ` + verdictColumns + ` FROM verdicts
		WHERE url_hash = ? AND url = ?
		ORDER BY checked_at DESC, id DESC
		LIMIT ?`
		rows, err = vdb.db.QueryContext(ctx, query, HashURL(rawURL), rawURL, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var verdicts []*Verdict
	for rows.Next() {
		v, err := scanVerdict(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verdict: %w", err)
		}
		verdicts = append(verdicts, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return verdicts, nil
}

// Stats summarizes the stored verdicts.
type Stats struct {
	Total    int `json:"total"`
	Phishing int `json:"phishing"`
	Benign   int `json:"benign"`
	Unknown  int `json:"unknown"`
}

// Stats counts stored verdicts by label.
func (vdb *VerdictDB) Stats(ctx context.Context) (Stats, error) {
	query := `SELECT label, COUNT(*) FROM verdicts GROUP BY label`

	rows, err := vdb.db.QueryContext(ctx, query)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var s Stats
	for rows.Next() {
		var label, count int
		if err := rows.Scan(&label, &count); err != nil {
			return Stats{}, fmt.Errorf("failed to scan stats: %w", err)
		}
		s.Total += count
		switch model.Label(label) {
		case model.LabelPhishing:
			s.Phishing += count
		case model.LabelBenign:
			s.Benign += count
		default:
			s.Unknown += count
		}
	}
	return s, rows.Err()
}

// DeleteBefore removes verdicts checked before t and returns how many
// rows were deleted.
func (vdb *VerdictDB) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	result, err := vdb.db.ExecContext(ctx,
		`DELETE FROM verdicts WHERE checked_at < ?`,
		t.UTC().Format(storedTimeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to delete verdicts: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVerdict(row rowScanner) (*Verdict, error) {
	var (
		v              Verdict
		label          int
		classifier     sql.NullString
		checkedAt      string
		errMsg         sql.NullString
		blocklisted    sql.NullBool
		domainAge      sql.NullInt64
		reputationJSON sql.NullString
	)
	err := row.Scan(
		&v.ID, &v.URL, &v.URLHash, &label, &v.Score, &classifier, &checkedAt,
		&v.TimedOut, &errMsg, &blocklisted, &domainAge, &reputationJSON,
	)
	if err != nil {
		return nil, err
	}

	v.Label = model.Label(label)
	v.Classifier = classifier.String
	v.CheckedAt = parseTimestamp(checkedAt)
	v.Error = errMsg.String
	v.ReputationJSON = reputationJSON.String
	if blocklisted.Valid {
		b := blocklisted.Bool
		v.Blocklisted = &b
	}
	if domainAge.Valid {
		d := int(domainAge.Int64)
		v.DomainAgeDays = &d
	}
	return &v, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// More specific formats come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp returns the zero time if s matches no known format.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
