package marketdata

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mwalczak/evergreen/internal/domain"
)

// Store provides sqlite-backed access to historical market data. It
// implements all four source capabilities so a backtest can run directly
// off a previously synced database.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStore creates a new market data store
func NewStore(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("component", "marketdata_store").Logger(),
	}
}

// fundamentalPayload is the msgpack blob stored per snapshot. The open
// metrics mapping and ROIC history do not map cleanly onto columns, so they
// travel as one serialized payload.
type fundamentalPayload struct {
	Metrics     map[string]float64 `msgpack:"metrics"`
	RoicHistory []float64          `msgpack:"roic_history"`
}

// Init creates the schema if it does not exist.
func (s *Store) Init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS daily_prices (
		symbol TEXT NOT NULL,
		date   TEXT NOT NULL,
		close  REAL NOT NULL,
		PRIMARY KEY (symbol, date)
	);
	CREATE TABLE IF NOT EXISTS fundamentals (
		symbol     TEXT NOT NULL,
		period     TEXT NOT NULL,
		market_cap REAL NOT NULL,
		sector     TEXT NOT NULL,
		payload    BLOB NOT NULL,
		PRIMARY KEY (symbol, period)
	);
	CREATE TABLE IF NOT EXISTS index_members (
		index_name TEXT NOT NULL,
		year       TEXT NOT NULL,
		symbol     TEXT NOT NULL,
		PRIMARY KEY (index_name, year, symbol)
	);
	CREATE TABLE IF NOT EXISTS fx_rates (
		pair TEXT NOT NULL,
		date TEXT NOT NULL,
		rate REAL NOT NULL,
		PRIMARY KEY (pair, date)
	);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create marketdata schema: %w", err)
	}
	return nil
}

// PriceHistory returns all bars for a symbol ordered by date ascending.
func (s *Store) PriceHistory(symbol string) ([]domain.PriceBar, error) {
	rows, err := s.db.Query(
		`SELECT date, close FROM daily_prices WHERE symbol = ? ORDER BY date ASC`, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	var bars []domain.PriceBar
	for rows.Next() {
		var b domain.PriceBar
		if err := rows.Scan(&b.Date, &b.Close); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}
	return bars, nil
}

// SavePrices upserts bars for a symbol.
func (s *Store) SavePrices(symbol string, bars []domain.PriceBar) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin price save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR REPLACE INTO daily_prices (symbol, date, close) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare price insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.Exec(symbol, b.Date, b.Close); err != nil {
			return fmt.Errorf("failed to insert price %s %s: %w", symbol, b.Date, err)
		}
	}
	return tx.Commit()
}

// Fundamentals returns all snapshots for a symbol ordered by period ascending.
func (s *Store) Fundamentals(symbol string) ([]domain.FundamentalSnapshot, error) {
	rows, err := s.db.Query(
		`SELECT period, market_cap, sector, payload
		 FROM fundamentals WHERE symbol = ? ORDER BY period ASC`, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to query fundamentals: %w", err)
	}
	defer rows.Close()

	var snaps []domain.FundamentalSnapshot
	for rows.Next() {
		var snap domain.FundamentalSnapshot
		var blob []byte
		if err := rows.Scan(&snap.Period, &snap.MarketCap, &snap.Sector, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan fundamental snapshot: %w", err)
		}

		var payload fundamentalPayload
		if err := msgpack.Unmarshal(blob, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode fundamental payload %s %s: %w",
				symbol, snap.Period, err)
		}
		snap.Metrics = payload.Metrics
		if snap.Metrics == nil {
			snap.Metrics = map[string]float64{}
		}
		snap.RoicHistory = payload.RoicHistory
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fundamentals: %w", err)
	}
	return snaps, nil
}

// SaveFundamentals upserts snapshots for a symbol.
func (s *Store) SaveFundamentals(symbol string, snaps []domain.FundamentalSnapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin fundamentals save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR REPLACE INTO fundamentals (symbol, period, market_cap, sector, payload)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare fundamentals insert: %w", err)
	}
	defer stmt.Close()

	for _, snap := range snaps {
		blob, err := msgpack.Marshal(fundamentalPayload{
			Metrics:     snap.Metrics,
			RoicHistory: snap.RoicHistory,
		})
		if err != nil {
			return fmt.Errorf("failed to encode fundamental payload %s %s: %w",
				symbol, snap.Period, err)
		}
		if _, err := stmt.Exec(symbol, snap.Period, snap.MarketCap, snap.Sector, blob); err != nil {
			return fmt.Errorf("failed to insert fundamental %s %s: %w", symbol, snap.Period, err)
		}
	}
	return tx.Commit()
}

// Members returns year -> member symbols for an index. Symbols within a
// year come back in insertion (alphabetical) order for reproducibility.
func (s *Store) Members(index string) (map[string][]string, error) {
	rows, err := s.db.Query(
		`SELECT year, symbol FROM index_members
		 WHERE index_name = ? ORDER BY year ASC, symbol ASC`, index)
	if err != nil {
		return nil, fmt.Errorf("failed to query index members: %w", err)
	}
	defer rows.Close()

	members := make(map[string][]string)
	for rows.Next() {
		var year, symbol string
		if err := rows.Scan(&year, &symbol); err != nil {
			return nil, fmt.Errorf("failed to scan index member: %w", err)
		}
		members[year] = append(members[year], symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating index members: %w", err)
	}
	return members, nil
}

// SaveMembers replaces membership for an index year.
func (s *Store) SaveMembers(index, year string, symbols []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin membership save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM index_members WHERE index_name = ? AND year = ?`, index, year); err != nil {
		return fmt.Errorf("failed to clear index members %s %s: %w", index, year, err)
	}
	for _, symbol := range symbols {
		if _, err := tx.Exec(
			`INSERT INTO index_members (index_name, year, symbol) VALUES (?, ?, ?)`,
			index, year, symbol); err != nil {
			return fmt.Errorf("failed to insert index member %s: %w", symbol, err)
		}
	}
	return tx.Commit()
}

// FXHistory returns all bars for a currency pair ordered by date ascending.
func (s *Store) FXHistory(pair string) ([]domain.PriceBar, error) {
	rows, err := s.db.Query(
		`SELECT date, rate FROM fx_rates WHERE pair = ? ORDER BY date ASC`, pair)
	if err != nil {
		return nil, fmt.Errorf("failed to query fx rates: %w", err)
	}
	defer rows.Close()

	var bars []domain.PriceBar
	for rows.Next() {
		var b domain.PriceBar
		if err := rows.Scan(&b.Date, &b.Close); err != nil {
			return nil, fmt.Errorf("failed to scan fx rate: %w", err)
		}
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fx rates: %w", err)
	}
	return bars, nil
}

// SaveFXRates upserts bars for a currency pair.
func (s *Store) SaveFXRates(pair string, bars []domain.PriceBar) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin fx save: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR REPLACE INTO fx_rates (pair, date, rate) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare fx insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		if _, err := stmt.Exec(pair, b.Date, b.Close); err != nil {
			return fmt.Errorf("failed to insert fx rate %s %s: %w", pair, b.Date, err)
		}
	}
	return tx.Commit()
}
