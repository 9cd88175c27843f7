package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/parkinglot-manager/internal/parkinglots"
	"github.com/angelmondragon/parkinglot-manager/pkg/enums"
)

func newAPIRouter(env *testEnv) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/v1/lots", APIListLots(env.lots, nil))
	r.Get("/api/v1/lots/summary", APILotSummary(env.lots, nil))
	r.Get("/api/v1/lots/{id}", APIGetLot(env.lots, nil))
	return r
}

func TestAPIListLotsReturnsAvailableOnly(t *testing.T) {
	env := newTestEnv(t)
	open := env.createLot(t, "Open", 10)
	_, err := env.lots.UpdateOccupancy(context.Background(), open.ID, 4)
	require.NoError(t, err)
	closed := env.createLot(t, "Closed", 10)
	_, err = env.lots.UpdateParkingLot(context.Background(), closed.ID, lotInputFor(closed, enums.LotStatusClosed))
	require.NoError(t, err)

	rec := serve(newAPIRouter(env), httptest.NewRequest(http.MethodGet, "/api/v1/lots", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data []parkinglots.LotDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Data, 1)
	assert.Equal(t, "Open", payload.Data[0].LotName)
	assert.Equal(t, 6, payload.Data[0].AvailableSlots)
	assert.InDelta(t, 40.0, payload.Data[0].OccupancyPercentage, 0.001)
}

func TestAPILotSummary(t *testing.T) {
	env := newTestEnv(t)
	env.createLot(t, "One", 10)
	env.createLot(t, "Two", 10)

	rec := serve(newAPIRouter(env), httptest.NewRequest(http.MethodGet, "/api/v1/lots/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"total":2,"available":2,"maintenance":0,"closed":0}}`, rec.Body.String())
}

func TestAPIGetLot(t *testing.T) {
	env := newTestEnv(t)
	lot := env.createLot(t, "Solo", 10)
	router := newAPIRouter(env)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/lots/"+strconv.FormatInt(lot.ID, 10), nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"lot_name":"Solo"`)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/lots/999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), parkinglots.MsgLotNotFound)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/lots/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
