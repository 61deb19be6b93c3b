package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Event kinds recorded to the history database.
const (
	EventStockHit     = "stock-hit"
	EventOrderPlaced  = "order-placed"
	EventCheckoutFail = "checkout-failed"
)

// History is a write-only SQLite log of stock hits and checkout outcomes.
// The bot never reads it back; it exists for post-run review. A nil
// *History is valid and records nothing.
type History struct {
	db *sql.DB
}

func OpenHistory(path string) (*History, error) {
	if path == "" {
		return nil, nil
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history db %s: %w", path, err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS events (
		"id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
		"asin" TEXT,
		"event" TEXT,
		"price" REAL,
		"detail" TEXT,
		"created_at" DATETIME
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create events table: %w", err)
	}

	return &History{db: db}, nil
}

func (h *History) Record(asin, event string, price float64, detail string) {
	if h == nil {
		return
	}

	_, err := h.db.Exec(
		`INSERT INTO events (asin, event, price, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		asin, event, price, detail, time.Now(),
	)
	if err != nil {
		log.Warn().Err(err).Str("asin", asin).Str("event", event).Msg("Failed to record history event")
	}
}

func (h *History) Close() {
	if h == nil {
		return
	}
	h.db.Close()
}
