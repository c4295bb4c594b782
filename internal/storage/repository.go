package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"salesboard/internal/core"
	"salesboard/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*SQLiteRepository)(nil)

const selectColumns = `id, title, price, description, category, image, sold, date_of_sale, created_at, updated_at`

type SQLiteRepository struct {
	db *sql.DB
}

// DSN adds the pragmas every connection needs: WAL for concurrent readers,
// a busy timeout, and immediate transactions so a seed writer takes the write
// lock before it checks whether the table is empty.
func DSN(dbPath string) string {
	return dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// SeedIfEmpty implements store.Seeder. The seed marker row and every
// transaction are written in one database transaction. An empty batch
// writes nothing, so a later seed may still fill the store.
func (r *SQLiteRepository) SeedIfEmpty(ctx context.Context, source string, txs []core.Transaction) (int, error) {
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return 0, fmt.Errorf("validate transaction %d: %w", t.ID, err)
		}
	}
	if len(txs) == 0 {
		slog.WarnContext(ctx, "Seed batch is empty, leaving store unseeded", "source", source)
		return 0, nil
	}

	dbtx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer dbtx.Rollback()

	var existing int64
	if err := dbtx.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&existing); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	if existing > 0 {
		slog.InfoContext(ctx, "Store already holds transactions, skipping seed", "count", existing)
		return 0, nil
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := dbtx.ExecContext(ctx,
		`INSERT INTO seed_runs (id, source, record_count, seeded_at) VALUES (1, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
		source, len(txs), now)
	if err != nil {
		return 0, fmt.Errorf("write seed marker: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, fmt.Errorf("write seed marker: %w", err)
	} else if n == 0 {
		slog.InfoContext(ctx, "Seed marker already present, skipping seed", "source", source)
		return 0, nil
	}

	stmt, err := dbtx.PrepareContext(ctx, `INSERT INTO transactions
		(id, title, price, description, category, image, sold, date_of_sale, sale_month, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		var dateOfSale, saleMonth any
		if m, ok := t.SaleMonth(); ok {
			dateOfSale = t.DateOfSale.UTC().Format(time.RFC3339Nano)
			saleMonth = int(m)
		}
		if _, err := stmt.ExecContext(ctx,
			t.ID, t.Title, t.Price, t.Description, t.Category, t.Image, t.Sold,
			dateOfSale, saleMonth, now, now); err != nil {
			return 0, fmt.Errorf("insert transaction %d: %w", t.ID, err)
		}
	}

	if err := dbtx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}

	slog.InfoContext(ctx, "Seeded transactions into SQLite", "source", source, "count", len(txs))
	return len(txs), nil
}

// FindAll implements store.TransactionLister
func (r *SQLiteRepository) FindAll(ctx context.Context) ([]core.Transaction, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM transactions ORDER BY row_id`)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}

// QueryByMonth implements store.MonthQuerier
func (r *SQLiteRepository) QueryByMonth(ctx context.Context, month time.Month) ([]core.Transaction, error) {
	return r.query(ctx, `SELECT `+selectColumns+` FROM transactions WHERE sale_month = ? ORDER BY row_id`, int(month))
}

// QueryByMonthAndText implements store.MonthQuerier
func (r *SQLiteRepository) QueryByMonthAndText(ctx context.Context, month time.Month, q core.SearchQuery) ([]core.Transaction, error) {
	if q.IsEmpty() {
		return r.QueryByMonth(ctx, month)
	}

	needle := strings.ToLower(q.Text)
	conds := []string{
		`instr(` + foldFunc + `(title), ?) > 0`,
		`instr(` + foldFunc + `(description), ?) > 0`,
	}
	args := []any{int(month), needle, needle}
	if q.Price != nil {
		conds = append(conds, `price = ?`)
		args = append(args, *q.Price)
	}

	query := `SELECT ` + selectColumns + ` FROM transactions WHERE sale_month = ? AND (` +
		strings.Join(conds, " OR ") + `) ORDER BY row_id`
	return r.query(ctx, query, args...)
}

// SeedInfo returns the recorded seed source and time, if the store was seeded.
func (r *SQLiteRepository) SeedInfo(ctx context.Context) (source string, seededAt time.Time, ok bool, err error) {
	var at string
	err = r.db.QueryRowContext(ctx, `SELECT source, seeded_at FROM seed_runs WHERE id = 1`).Scan(&source, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, false, nil
	}
	if err != nil {
		return "", time.Time{}, false, fmt.Errorf("read seed marker: %w", err)
	}
	seededAt, err = time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return "", time.Time{}, false, fmt.Errorf("parse seed time: %w", err)
	}
	return source, seededAt, true, nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		t          core.Transaction
		dateOfSale sql.NullString
		createdAt  string
		updatedAt  string
	)
	if err := rows.Scan(&t.ID, &t.Title, &t.Price, &t.Description, &t.Category, &t.Image, &t.Sold,
		&dateOfSale, &createdAt, &updatedAt); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	if dateOfSale.Valid && dateOfSale.String != "" {
		d, err := time.Parse(time.RFC3339Nano, dateOfSale.String)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse date_of_sale for %d: %w", t.ID, err)
		}
		d = d.UTC()
		t.DateOfSale = &d
	}
	t.CreatedAt = parseStamp(createdAt)
	t.UpdatedAt = parseStamp(updatedAt)
	return t, nil
}

// parseStamp reads timestamps written either by the application or by the
// column default, which uses millisecond precision with a Z suffix.
func parseStamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
