// Package persistence provides the SQLite-backed world store. The
// simulation treats it as a narrow load/save collaborator: failures are
// reported, never fatal, and in-memory state stays authoritative.
package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mezenin/tradeway/internal/world"
)

// Store wraps a SQLite connection holding the world snapshot.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates the world database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS countries (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		capital_city_id INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS cities (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		x REAL NOT NULL,
		y REAL NOT NULL,
		max_storage REAL NOT NULL DEFAULT 1000,
		country_id INTEGER NOT NULL DEFAULT 0,
		population INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS routes (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		from_city_id INTEGER NOT NULL,
		to_city_id INTEGER NOT NULL,
		kind TEXT NOT NULL DEFAULT 'track',
		waypoints_json TEXT NOT NULL DEFAULT '[]',
		speed_coeff REAL NOT NULL DEFAULT 1.0,
		unit_count INTEGER NOT NULL DEFAULT 1,
		transport_id INTEGER NOT NULL DEFAULT 1,
		calculated_duration INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS items (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		icon_key TEXT NOT NULL DEFAULT '',
		base_price REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS transport_types (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		capacity INTEGER NOT NULL,
		base_speed REAL NOT NULL,
		render_hint TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS city_economy (
		city_id INTEGER NOT NULL,
		item_id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		amount REAL NOT NULL,
		position INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS city_inventory (
		city_id INTEGER NOT NULL,
		item_id INTEGER NOT NULL,
		amount REAL NOT NULL,
		PRIMARY KEY (city_id, item_id)
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_economy_city ON city_economy(city_id);
	CREATE INDEX IF NOT EXISTS idx_routes_from ON routes(from_city_id);
	CREATE INDEX IF NOT EXISTS idx_routes_to ON routes(to_city_id);
	`
	_, err := s.conn.Exec(schema)
	return err
}

type routeRow struct {
	ID                 int64   `db:"id"`
	Name               string  `db:"name"`
	FromCityID         int64   `db:"from_city_id"`
	ToCityID           int64   `db:"to_city_id"`
	Kind               string  `db:"kind"`
	WaypointsJSON      string  `db:"waypoints_json"`
	SpeedCoeff         float64 `db:"speed_coeff"`
	UnitCount          int     `db:"unit_count"`
	TransportID        int64   `db:"transport_id"`
	CalculatedDuration int     `db:"calculated_duration"`
}

type ruleRow struct {
	CityID int64   `db:"city_id"`
	ItemID int64   `db:"item_id"`
	Kind   string  `db:"kind"`
	Amount float64 `db:"amount"`
}

// LoadWorld reads the full snapshot and builds its indexes.
func (s *Store) LoadWorld() (*world.World, error) {
	w := &world.World{}

	if err := s.conn.Select(&w.Cities, "SELECT * FROM cities ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load cities: %w", err)
	}
	if err := s.conn.Select(&w.Countries, "SELECT * FROM countries ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load countries: %w", err)
	}
	if err := s.conn.Select(&w.Items, "SELECT * FROM items ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	if err := s.conn.Select(&w.Transports, "SELECT * FROM transport_types ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load transport types: %w", err)
	}
	if err := s.conn.Select(&w.Inventory, "SELECT city_id, item_id, amount FROM city_inventory"); err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	var routeRows []routeRow
	if err := s.conn.Select(&routeRows, "SELECT * FROM routes ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load routes: %w", err)
	}
	for _, row := range routeRows {
		r := &world.Route{
			ID:                 row.ID,
			Name:               row.Name,
			FromCityID:         row.FromCityID,
			ToCityID:           row.ToCityID,
			Kind:               world.RouteKind(row.Kind),
			SpeedCoeff:         row.SpeedCoeff,
			UnitCount:          row.UnitCount,
			TransportID:        row.TransportID,
			CalculatedDuration: row.CalculatedDuration,
		}
		if err := json.Unmarshal([]byte(row.WaypointsJSON), &r.Waypoints); err != nil {
			return nil, fmt.Errorf("route %d waypoints: %w", row.ID, err)
		}
		w.Routes = append(w.Routes, r)
	}

	var ruleRows []ruleRow
	if err := s.conn.Select(&ruleRows, "SELECT city_id, item_id, kind, amount FROM city_economy ORDER BY city_id, position"); err != nil {
		return nil, fmt.Errorf("load economy rules: %w", err)
	}
	for _, row := range ruleRows {
		w.Rules = append(w.Rules, &world.EconomyRule{
			CityID:        row.CityID,
			ItemID:        row.ItemID,
			Kind:          world.RuleKind(row.Kind),
			AmountPerTick: row.Amount,
		})
	}

	w.BuildIndexes()
	return w, nil
}

// SaveCity upserts one city.
func (s *Store) SaveCity(c *world.City) error {
	_, err := s.conn.Exec(`INSERT OR REPLACE INTO cities
		(id, name, description, x, y, max_storage, country_id, population)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.X, c.Y, c.MaxStorage, c.CountryID, c.Population)
	return err
}

// DeleteCity removes a city plus its inventory and economy rules.
func (s *Store) DeleteCity(id int64) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cities WHERE id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM city_inventory WHERE city_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM city_economy WHERE city_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM routes WHERE from_city_id = ? OR to_city_id = ?", id, id); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveRoute upserts one route.
func (s *Store) SaveRoute(r *world.Route) error {
	waypoints, err := json.Marshal(r.Waypoints)
	if err != nil {
		return fmt.Errorf("marshal waypoints: %w", err)
	}
	_, err = s.conn.Exec(`INSERT OR REPLACE INTO routes
		(id, name, from_city_id, to_city_id, kind, waypoints_json,
		 speed_coeff, unit_count, transport_id, calculated_duration)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.FromCityID, r.ToCityID, string(r.Kind), string(waypoints),
		r.SpeedCoeff, r.UnitCount, r.TransportID, r.CalculatedDuration)
	return err
}

// DeleteRoute removes one route.
func (s *Store) DeleteRoute(id int64) error {
	_, err := s.conn.Exec("DELETE FROM routes WHERE id = ?", id)
	return err
}

// SaveCountry upserts one country.
func (s *Store) SaveCountry(c *world.Country) error {
	_, err := s.conn.Exec(`INSERT OR REPLACE INTO countries
		(id, name, color, capital_city_id) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Color, c.CapitalCityID)
	return err
}

// SaveItem upserts one item (used by the seeding tool).
func (s *Store) SaveItem(it *world.Item) error {
	_, err := s.conn.Exec(`INSERT OR REPLACE INTO items
		(id, name, icon_key, base_price) VALUES (?, ?, ?, ?)`,
		it.ID, it.Name, it.IconKey, it.BasePrice)
	return err
}

// SaveTransport upserts one transport profile (used by the seeding tool).
func (s *Store) SaveTransport(t *world.TransportProfile) error {
	_, err := s.conn.Exec(`INSERT OR REPLACE INTO transport_types
		(id, name, capacity, base_speed, render_hint) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.CapacityUnits, t.BaseSpeed, t.RenderHint)
	return err
}

// SaveCityEconomy replaces a city's entire rule set, preserving rule order.
func (s *Store) SaveCityEconomy(cityID int64, rules []*world.EconomyRule) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM city_economy WHERE city_id = ?", cityID); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT INTO city_economy
		(city_id, item_id, kind, amount, position) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range rules {
		if _, err := stmt.Exec(cityID, r.ItemID, string(r.Kind), r.AmountPerTick, i); err != nil {
			return fmt.Errorf("insert rule %d for city %d: %w", i, cityID, err)
		}
	}
	return tx.Commit()
}

// SaveAllInventory replaces the entire inventory snapshot.
func (s *Store) SaveAllInventory(records []world.InventoryRecord) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM city_inventory"); err != nil {
		return err
	}
	stmt, err := tx.Preparex("INSERT INTO city_inventory (city_id, item_id, amount) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(rec.CityID, rec.ItemID, rec.Amount); err != nil {
			return fmt.Errorf("insert inventory (%d,%d): %w", rec.CityID, rec.ItemID, err)
		}
	}
	return tx.Commit()
}

// SetMeta stores a key-value pair in world metadata.
func (s *Store) SetMeta(key, value string) error {
	_, err := s.conn.Exec("INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)", key, value)
	return err
}

// GetMeta retrieves a metadata value.
func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}
