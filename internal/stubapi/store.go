// Package stubapi is a development backend serving the analytics HTTP
// contract from a local SQLite database and a synthetic price model.
package stubapi

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/abelbrown/memescope/internal/model"
)

// ErrNotFound is returned when a row to delete does not exist.
var ErrNotFound = errors.New("not found")

// historyLimit caps how many searches GET /history returns.
const historyLimit = 20

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for file-based DBs.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS favorites (
		coin TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		added_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		coin TEXT NOT NULL,
		display_name TEXT NOT NULL,
		searched_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_searched ON history(searched_at DESC);

	CREATE TABLE IF NOT EXISTS holdings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		coin TEXT NOT NULL,
		display_name TEXT NOT NULL,
		amount REAL NOT NULL,
		purchase_price REAL NOT NULL,
		purchase_date DATETIME NOT NULL,
		notes TEXT
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// AddFavorite inserts coin, keeping the original added_at on repeats.
func (s *Store) AddFavorite(coin string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT OR IGNORE INTO favorites (coin, display_name, added_at) VALUES (?, ?, ?)`,
		model.NormalizeCoin(coin), coin, at.UTC())
	if err != nil {
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes coin. Returns ErrNotFound if it was not a favorite.
func (s *Store) RemoveFavorite(coin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM favorites WHERE coin = ?`, model.NormalizeCoin(coin))
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return affected(res)
}

// Favorites returns all favorites, oldest first.
func (s *Store) Favorites() ([]model.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT coin, display_name, added_at FROM favorites ORDER BY added_at, coin`)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	out := []model.Favorite{}
	for rows.Next() {
		var f model.Favorite
		if err := rows.Scan(&f.Coin, &f.DisplayName, &f.AddedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// RecordSearch appends coin to the search history.
func (s *Store) RecordSearch(coin string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO history (coin, display_name, searched_at) VALUES (?, ?, ?)`,
		model.NormalizeCoin(coin), coin, at.UTC())
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// History returns the most recent searches, newest first, one per coin.
func (s *Store) History() ([]model.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT h.coin, h.display_name, h.searched_at
		FROM history h
		WHERE h.id = (SELECT MAX(id) FROM history WHERE coin = h.coin)
		ORDER BY h.id DESC
		LIMIT ?`, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := []model.HistoryEntry{}
	for rows.Next() {
		var h model.HistoryEntry
		if err := rows.Scan(&h.Coin, &h.DisplayName, &h.SearchedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// AddHolding inserts a position and returns it with its id.
func (s *Store) AddHolding(form model.HoldingForm, at time.Time) (model.Holding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := model.Holding{
		Coin:          model.NormalizeCoin(form.Coin),
		DisplayName:   form.Coin,
		Amount:        form.Amount,
		PurchasePrice: form.PurchasePrice,
		PurchaseDate:  at.UTC(),
		Notes:         form.Notes,
	}
	res, err := s.db.Exec(`
		INSERT INTO holdings (coin, display_name, amount, purchase_price, purchase_date, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		h.Coin, h.DisplayName, h.Amount, h.PurchasePrice, h.PurchaseDate, h.Notes)
	if err != nil {
		return model.Holding{}, fmt.Errorf("insert holding: %w", err)
	}
	h.ID, err = res.LastInsertId()
	if err != nil {
		return model.Holding{}, fmt.Errorf("holding id: %w", err)
	}
	return h, nil
}

// RemoveHolding deletes a position. Returns ErrNotFound for unknown ids.
func (s *Store) RemoveHolding(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM holdings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete holding: %w", err)
	}
	return affected(res)
}

// Holdings returns all positions in purchase order.
func (s *Store) Holdings() ([]model.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, coin, display_name, amount, purchase_price, purchase_date, COALESCE(notes, '')
		FROM holdings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query holdings: %w", err)
	}
	defer rows.Close()

	out := []model.Holding{}
	for rows.Next() {
		var h model.Holding
		if err := rows.Scan(&h.ID, &h.Coin, &h.DisplayName, &h.Amount, &h.PurchasePrice, &h.PurchaseDate, &h.Notes); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
