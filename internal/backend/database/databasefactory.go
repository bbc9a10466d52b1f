package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

func NewDatabase(ctx context.Context, databaseType, connectionString string) (EntryStore, error) {
	var database *SQLiteDatabase
	switch databaseType {
	case "sqlite":
		var err error
		database, err = NewSQLiteDatabase(connectionString)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", databaseType)
	}

	// Ensure database schema exists (idempotent), important for in-memory SQLite
	slog.Info("initializing database schema (ensuring tables exist)", "type", databaseType)
	if err := database.CreateDatabase(ctx); err != nil {
		_ = database.Close()
		return nil, &StoreInitError{Path: connectionString, Reason: "could not be initialized", Err: err}
	}

	return database, nil
}

func isInMemory(connectionString string) bool {
	return connectionString == ":memory:" ||
		strings.HasPrefix(connectionString, "file::memory:") ||
		strings.Contains(connectionString, "mode=memory")
}

// databaseFile strips the URI scheme and query parameters of a SQLite
// connection string, leaving the file location.
func databaseFile(connectionString string) string {
	name := strings.TrimPrefix(connectionString, "file:")
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	return name
}

// checkDatabasePath accepts an existing regular file or a not yet existing file
// inside an existing directory.
func checkDatabasePath(connectionString string) error {
	if isInMemory(connectionString) {
		return nil
	}
	path := databaseFile(connectionString)
	if strings.TrimSpace(path) == "" {
		return &StoreInitError{Path: connectionString, Reason: "is empty"}
	}

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return &StoreInitError{Path: path, Reason: "refers to a directory"}
	case err == nil && !info.Mode().IsRegular():
		return &StoreInitError{Path: path, Reason: "refers to a non-regular file"}
	case err == nil:
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return &StoreInitError{Path: path, Reason: "cannot be inspected", Err: err}
	}

	parent := filepath.Dir(path)
	parentInfo, err := os.Stat(parent)
	if err != nil {
		return &StoreInitError{Path: path, Reason: "has no existing containing directory", Err: err}
	}
	if !parentInfo.IsDir() {
		return &StoreInitError{Path: path, Reason: "has a containing path that is not a directory"}
	}
	return nil
}
