package world

// World is the full loaded snapshot plus id indexes. The indexes are built
// once on load and kept in sync by the mutation helpers, so lookups never
// scan the slices.
type World struct {
	Cities     []*City
	Countries  []*Country
	Routes     []*Route
	Items      []*Item
	Transports []*TransportProfile
	Rules      []*EconomyRule
	Inventory  []InventoryRecord // initial stock, handed to the inventory store on startup

	cityIndex      map[int64]*City
	countryIndex   map[int64]*Country
	routeIndex     map[int64]*Route
	itemIndex      map[int64]*Item
	transportIndex map[int64]*TransportProfile
	rulesByCity    map[int64][]*EconomyRule
}

// BuildIndexes (re)builds all id lookups from the entity slices.
func (w *World) BuildIndexes() {
	w.cityIndex = make(map[int64]*City, len(w.Cities))
	for _, c := range w.Cities {
		w.cityIndex[c.ID] = c
	}
	w.countryIndex = make(map[int64]*Country, len(w.Countries))
	for _, c := range w.Countries {
		w.countryIndex[c.ID] = c
	}
	w.routeIndex = make(map[int64]*Route, len(w.Routes))
	for _, r := range w.Routes {
		w.routeIndex[r.ID] = r
	}
	w.itemIndex = make(map[int64]*Item, len(w.Items))
	for _, it := range w.Items {
		w.itemIndex[it.ID] = it
	}
	w.transportIndex = make(map[int64]*TransportProfile, len(w.Transports))
	for _, t := range w.Transports {
		w.transportIndex[t.ID] = t
	}
	w.rulesByCity = make(map[int64][]*EconomyRule)
	for _, r := range w.Rules {
		w.rulesByCity[r.CityID] = append(w.rulesByCity[r.CityID], r)
	}
}

// CityByID returns nil when the id is unknown.
func (w *World) CityByID(id int64) *City { return w.cityIndex[id] }

// CountryByID returns nil when the id is unknown.
func (w *World) CountryByID(id int64) *Country { return w.countryIndex[id] }

// RouteByID returns nil when the id is unknown.
func (w *World) RouteByID(id int64) *Route { return w.routeIndex[id] }

// ItemByID returns nil when the id is unknown.
func (w *World) ItemByID(id int64) *Item { return w.itemIndex[id] }

// TransportByID returns nil when the id is unknown.
func (w *World) TransportByID(id int64) *TransportProfile { return w.transportIndex[id] }

// RulesForCity returns the city's economy rules in their stored order.
// Order matters: later rules see the effect of earlier ones.
func (w *World) RulesForCity(cityID int64) []*EconomyRule { return w.rulesByCity[cityID] }

// UpsertCity inserts or replaces a city and keeps the index in sync.
func (w *World) UpsertCity(c *City) {
	if old := w.cityIndex[c.ID]; old != nil {
		*old = *c
		return
	}
	w.Cities = append(w.Cities, c)
	w.cityIndex[c.ID] = c
}

// RemoveCity deletes a city. Routes touching it remain in the snapshot;
// the caller is responsible for tearing them down (they will fail the
// endpoint check and spawn nothing afterwards).
func (w *World) RemoveCity(id int64) bool {
	if w.cityIndex[id] == nil {
		return false
	}
	delete(w.cityIndex, id)
	for i, c := range w.Cities {
		if c.ID == id {
			w.Cities = append(w.Cities[:i], w.Cities[i+1:]...)
			break
		}
	}
	return true
}

// UpsertRoute inserts or replaces a route and keeps the index in sync.
func (w *World) UpsertRoute(r *Route) {
	if old := w.routeIndex[r.ID]; old != nil {
		*old = *r
		return
	}
	w.Routes = append(w.Routes, r)
	w.routeIndex[r.ID] = r
}

// RemoveRoute deletes a route.
func (w *World) RemoveRoute(id int64) bool {
	if w.routeIndex[id] == nil {
		return false
	}
	delete(w.routeIndex, id)
	for i, r := range w.Routes {
		if r.ID == id {
			w.Routes = append(w.Routes[:i], w.Routes[i+1:]...)
			break
		}
	}
	return true
}

// UpsertCountry inserts or replaces a country.
func (w *World) UpsertCountry(c *Country) {
	if old := w.countryIndex[c.ID]; old != nil {
		*old = *c
		return
	}
	w.Countries = append(w.Countries, c)
	w.countryIndex[c.ID] = c
}

// ReplaceCityRules swaps out a city's entire rule set (editor semantics:
// full replace, never merge).
func (w *World) ReplaceCityRules(cityID int64, rules []*EconomyRule) {
	kept := w.Rules[:0]
	for _, r := range w.Rules {
		if r.CityID != cityID {
			kept = append(kept, r)
		}
	}
	w.Rules = append(kept, rules...)
	delete(w.rulesByCity, cityID)
	if len(rules) > 0 {
		w.rulesByCity[cityID] = rules
	}
}

// RoutePath assembles the full polyline of a route: source city, waypoints,
// destination city. Returns nil when either endpoint is missing.
func (w *World) RoutePath(r *Route) Path {
	from := w.CityByID(r.FromCityID)
	to := w.CityByID(r.ToCityID)
	if from == nil || to == nil {
		return nil
	}
	pts := make(Path, 0, len(r.Waypoints)+2)
	pts = append(pts, Point{from.X, from.Y})
	for _, p := range r.Waypoints {
		pts = append(pts, Point{p[0], p[1]})
	}
	pts = append(pts, Point{to.X, to.Y})
	return pts
}
