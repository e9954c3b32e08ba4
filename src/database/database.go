package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/plusvalia/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS statement_uploads (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		entry_count INTEGER NOT NULL,
		uploaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS operations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		upload_id TEXT NOT NULL,
		isin TEXT NOT NULL,
		name TEXT NOT NULL,
		date TEXT NOT NULL,
		description TEXT NOT NULL,
		kind TEXT NOT NULL,
		quantity REAL NOT NULL,
		amount REAL NOT NULL,
		hash_id TEXT NOT NULL UNIQUE,
		FOREIGN KEY(upload_id) REFERENCES statement_uploads(id)
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.", "databasePath", databasePath)
	} else {
		stdlog.Println("Database tables ensured/created:", databasePath)
	}
}
