package api

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezenin/tradeway/internal/engine"
	"github.com/mezenin/tradeway/internal/persistence"
	"github.com/mezenin/tradeway/internal/world"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	store, err := persistence.Open(filepath.Join(t.TempDir(), "world.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	w := &world.World{
		Cities: []*world.City{{ID: 1, Name: "Veles", MaxStorage: 1000}},
		Items:  []*world.Item{{ID: 1, Name: "Grain"}},
	}
	w.BuildIndexes()

	return &Server{
		Sim:   engine.NewSimulation(w, 1, nil, nil),
		Store: store,
		Hub:   NewHub(),
	}
}

func TestHandleEconomyReplacesRules(t *testing.T) {
	s := testServer(t)

	body := `[{"item_id":1,"type":"production","amount":5}]`
	req := httptest.NewRequest(http.MethodPost, "/api/economy/1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleEconomy(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	rules := s.Sim.World.RulesForCity(1)
	require.Len(t, rules, 1)
	assert.Equal(t, world.RuleProduction, rules[0].Kind)
	assert.Equal(t, int64(1), rules[0].CityID, "city id comes from the URL, not the payload")
}

func TestHandleEconomyRejectsNullEntries(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/economy/1", strings.NewReader(`[null]`))
	rec := httptest.NewRecorder()
	s.handleEconomy(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, s.Sim.World.RulesForCity(1), "rejected payload changes nothing")
}

func TestHandleEconomyRejectsUnknownKind(t *testing.T) {
	s := testServer(t)

	body := `[{"item_id":1,"type":"barter","amount":5}]`
	req := httptest.NewRequest(http.MethodPost, "/api/economy/1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleEconomy(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, s.Sim.World.RulesForCity(1))
}
