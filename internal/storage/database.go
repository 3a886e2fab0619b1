package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"ragchat/internal/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the configured relational database.
func Open(cfg *config.Config) (*sql.DB, error) {
	driver := strings.ToLower(cfg.Database.Driver)
	dsn := cfg.Database.DSN
	if dsn == "" {
		return nil, fmt.Errorf("database dsn must be provided")
	}

	var (
		db  *sql.DB
		err error
	)

	switch driver {
	case "sqlite", "sqlite3":
		db, err = sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite database: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	case "mysql":
		db, err = sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("open mysql database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Migrate ensures the document metadata and chunk tables are present.
func Migrate(db *sql.DB, driver string) error {
	var stmts []string
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS documents (
				id TEXT PRIMARY KEY,
				filename TEXT NOT NULL,
				upload_date DATETIME NOT NULL,
				file_size INTEGER NOT NULL,
				chunk_count INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS document_chunks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				document_id TEXT NOT NULL,
				filename TEXT NOT NULL,
				content TEXT NOT NULL,
				embedding TEXT NOT NULL,
				FOREIGN KEY(document_id) REFERENCES documents(id) ON DELETE CASCADE
			)`,
			`CREATE INDEX IF NOT EXISTS idx_document_chunks_document ON document_chunks(document_id)`,
		}
	case "mysql":
		stmts = []string{
			`CREATE TABLE IF NOT EXISTS documents (
				id VARCHAR(36) NOT NULL,
				filename VARCHAR(255) NOT NULL,
				upload_date DATETIME NOT NULL,
				file_size BIGINT NOT NULL,
				chunk_count INT NOT NULL DEFAULT 0,
				PRIMARY KEY (id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS document_chunks (
				id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
				document_id VARCHAR(36) NOT NULL,
				filename VARCHAR(255) NOT NULL,
				content MEDIUMTEXT NOT NULL,
				embedding LONGTEXT NOT NULL,
				PRIMARY KEY (id),
				INDEX idx_document_chunks_document (document_id),
				CONSTRAINT fk_document_chunks_document FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		}
	default:
		return fmt.Errorf("unsupported driver for migration: %s", driver)
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate (%s): %w", driver, err)
		}
	}
	return nil
}
