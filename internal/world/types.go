// Package world defines the persistent entities of the trade map and the
// indexed snapshot the simulation runs against.
package world

// Item is a tradeable good. Immutable after creation; looked up by ID.
type Item struct {
	ID        int64   `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	IconKey   string  `db:"icon_key" json:"icon"`
	BasePrice float64 `db:"base_price" json:"base_price"`
}

// InventoryRecord is the stock of one item in one city. At most one record
// exists per (city, item) pair; amount never goes negative.
type InventoryRecord struct {
	CityID int64   `db:"city_id" json:"city_id"`
	ItemID int64   `db:"item_id" json:"item_id"`
	Amount float64 `db:"amount" json:"amount"`
}

// RuleKind distinguishes production from consumption.
type RuleKind string

const (
	RuleProduction  RuleKind = "production"
	RuleConsumption RuleKind = "consumption"
)

// EconomyRule is a static per-city, per-item directive set by the editor and
// read-only for the simulation.
type EconomyRule struct {
	CityID        int64    `db:"city_id" json:"city_id"`
	ItemID        int64    `db:"item_id" json:"item_id"`
	Kind          RuleKind `db:"kind" json:"type"`
	AmountPerTick float64  `db:"amount" json:"amount"`
}

// TransportProfile is a static vehicle-kind definition.
type TransportProfile struct {
	ID            int64   `db:"id" json:"id"`
	Name          string  `db:"name" json:"name"`
	CapacityUnits int     `db:"capacity" json:"capacity"`
	BaseSpeed     float64 `db:"base_speed" json:"base_speed"` // distance units per second
	RenderHint    string  `db:"render_hint" json:"texture"`
}

// RouteKind is the terrain class of a route.
type RouteKind string

const (
	RouteTrack RouteKind = "track"
	RouteWater RouteKind = "water"
)

// Route is a directed path between two cities.
type Route struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	FromCityID  int64        `json:"from_id"`
	ToCityID    int64        `json:"to_id"`
	Kind        RouteKind    `json:"type" validate:"oneof=track water"`
	Waypoints   [][2]float64 `json:"points"`
	SpeedCoeff  float64      `json:"speed_coeff" validate:"gt=0"`
	UnitCount   int          `json:"unit_count" validate:"min=0"`
	TransportID int64        `json:"transport_id"`

	// CalculatedDuration is a cached travel estimate in seconds, refreshed
	// whenever geometry or speed changes. Advisory only; the scheduler
	// recomputes real timing from the path.
	CalculatedDuration int `json:"calculated_duration"`
}

// City is a settlement that owns one bounded storage.
type City struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name" validate:"required"`
	Description string  `db:"description" json:"description"`
	X           float64 `db:"x" json:"x"`
	Y           float64 `db:"y" json:"y"`
	MaxStorage  float64 `db:"max_storage" json:"max_storage" validate:"gte=0"`
	CountryID   int64   `db:"country_id" json:"country_id"`
	Population  int64   `db:"population" json:"population" validate:"gte=0"`
}

// Country groups cities for the map editor.
type Country struct {
	ID            int64  `db:"id" json:"id"`
	Name          string `db:"name" json:"name" validate:"required"`
	Color         string `db:"color" json:"color"`
	CapitalCityID int64  `db:"capital_city_id" json:"capital_id"`
}
