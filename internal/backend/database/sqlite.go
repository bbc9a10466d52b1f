package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jo-hoe/codex/internal/catalog"

	_ "modernc.org/sqlite"
)

const createEntriesTable = `CREATE TABLE IF NOT EXISTS entries (
		sku TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		collector_num INTEGER NOT NULL DEFAULT 0,
		series TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT ''
	)`

const entryColumns = "sku, name, collector_num, series, description"

// File databases wait for locks instead of failing and use WAL so readers
// never block on the writer.
const filePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

type SQLiteDatabase struct {
	db               *sql.DB
	connectionString string
	// writeMu serialises all mutations on top of SQLite's own locking.
	writeMu sync.Mutex
}

func NewSQLiteDatabase(connectionString string) (*SQLiteDatabase, error) {
	if err := checkDatabasePath(connectionString); err != nil {
		return nil, err
	}

	dsn := connectionString
	inMemory := isInMemory(connectionString)
	if !inMemory && !strings.Contains(dsn, "?") {
		dsn += "?" + filePragmas
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &StoreInitError{Path: connectionString, Reason: "could not be opened", Err: err}
	}
	if inMemory {
		// Every connection to :memory: is a distinct database.
		db.SetMaxOpenConns(1)
	}

	return &SQLiteDatabase{
		db:               db,
		connectionString: connectionString,
	}, nil
}

func (s *SQLiteDatabase) CreateDatabase(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createEntriesTable); err != nil {
		return fmt.Errorf("failed to create entries table: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteDatabase) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteDatabase) Exists(ctx context.Context, sku string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM entries WHERE sku = ?", sku).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up SKU#%s: %w", sku, err)
	}
	return true, nil
}

func (s *SQLiteDatabase) Get(ctx context.Context, sku string) (catalog.Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM entries WHERE sku = ?", sku)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Entry{}, &EntryNotFoundError{SKU: sku}
	}
	if err != nil {
		return catalog.Entry{}, fmt.Errorf("failed to read SKU#%s: %w", sku, err)
	}
	return entry, nil
}

func (s *SQLiteDatabase) Upsert(ctx context.Context, entry catalog.Entry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("cannot persist entry: %w", err)
	}
	return s.inWriteTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(sku) DO UPDATE SET
				name = excluded.name,
				collector_num = excluded.collector_num,
				series = excluded.series,
				description = excluded.description`,
			entry.SKU, entry.Name, int64(entry.CollectorNumber), entry.Series, entry.Description,
		)
		if err != nil {
			return fmt.Errorf("failed to write SKU#%s: %w", entry.SKU, err)
		}
		return nil
	})
}

func (s *SQLiteDatabase) Delete(ctx context.Context, sku string) error {
	return s.inWriteTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE sku = ?", sku); err != nil {
			return fmt.Errorf("failed to delete SKU#%s: %w", sku, err)
		}
		return nil
	})
}

func (s *SQLiteDatabase) List(ctx context.Context) ([]catalog.Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+entryColumns+" FROM entries ORDER BY sku ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer func() {
		_ = rows.Close() // Explicitly ignore error as we're already returning an error from the function
	}()

	entries := make([]catalog.Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (catalog.Entry, error) {
	var (
		entry        catalog.Entry
		collectorNum int64
	)
	if err := row.Scan(&entry.SKU, &entry.Name, &collectorNum, &entry.Series, &entry.Description); err != nil {
		return catalog.Entry{}, err
	}
	if collectorNum < 0 || collectorNum > 0xFFFF {
		return catalog.Entry{}, fmt.Errorf("collector number %d of SKU#%s out of range", collectorNum, entry.SKU)
	}
	entry.CollectorNumber = uint16(collectorNum)
	return entry, nil
}

func (s *SQLiteDatabase) inWriteTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
