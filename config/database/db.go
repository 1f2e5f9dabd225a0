package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"prophecyorb/pkg/logger"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS submissions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	text_content TEXT,
	doodle_filename TEXT,
	timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
	submission_type TEXT CHECK(submission_type IN ('text', 'doodle', 'both'))
)`

// Connect opens (and creates, if needed) the single-file SQLite database at
// path and ensures the submissions table exists.
func Connect(path string) *sql.DB {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Sugar.Fatalf("Failed to create database directory %s: %v", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		logger.Sugar.Fatalf("Failed to open database %s: %v", path, err)
	}

	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		logger.Sugar.Infof("Database not ready, retrying in 1s... (%v)", err)
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		logger.Sugar.Fatalf("Could not open database after retries: %v", err)
	}

	if err := Migrate(db); err != nil {
		logger.Sugar.Fatalf("Failed to initialize schema: %v", err)
	}
	logger.Sugar.Infof("Database ready at %s", path)
	return db
}

// Migrate creates the submissions table if it does not exist. Exposed so
// tests can prepare an in-memory database.
func Migrate(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
