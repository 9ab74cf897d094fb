package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/pid2go/internal/configuration"
	"github.com/markusressel/pid2go/internal/control_loop"
	"github.com/markusressel/pid2go/internal/persistence"
	"github.com/markusressel/pid2go/internal/simulation"
	"github.com/markusressel/pid2go/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createService(t *testing.T, ids ...string) (*echo.Echo, map[string]*simulation.DefaultSimulationLoop) {
	simulation.SimulationMap.Clear()
	t.Cleanup(simulation.SimulationMap.Clear)

	loops := map[string]*simulation.DefaultSimulationLoop{}
	for _, id := range ids {
		config := configuration.DefaultSimulationConfig()
		config.ID = id
		config.Setpoint = 1.0
		config.Disturbance.NoiseStdDev = 0
		loop, err := simulation.NewSimulationLoop(config)
		require.NoError(t, err)
		simulation.SimulationMap.Set(id, loop)
		loops[id] = loop
	}

	pers := persistence.NewPersistence(filepath.Join(t.TempDir(), "pid2go.db"))
	require.NoError(t, pers.Init())

	return CreateRestService(pers, prometheus.NewRegistry()), loops
}

func request(e *echo.Echo, method string, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	var result T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func TestAlive(t *testing.T) {
	// GIVEN
	e, _ := createService(t)

	// WHEN
	rec := request(e, http.MethodGet, "/alive", "")

	// THEN
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetSimulations(t *testing.T) {
	// GIVEN
	e, _ := createService(t, "b", "a")

	// WHEN
	rec := request(e, http.MethodGet, "/simulation/", "")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	snapshots := decode[[]simulation.Snapshot](t, rec)
	require.Len(t, snapshots, 2)
	assert.Equal(t, "a", snapshots[0].Id)
	assert.Equal(t, "b", snapshots[1].Id)
	assert.Equal(t, simulation.Idle, snapshots[0].Status)
}

func TestGetSimulation_NotFound(t *testing.T) {
	// GIVEN
	e, _ := createService(t, "rod")

	// WHEN
	rec := request(e, http.MethodGet, "/simulation/other/", "")
	recCommand := request(e, http.MethodPost, "/simulation/other/start/", "")

	// THEN
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, recCommand.Code)
	result := decode[Result](t, rec)
	assert.Equal(t, "No item with id 'other' found", result.Message)
}

func TestGetSimulationConfig(t *testing.T) {
	// GIVEN
	e, _ := createService(t, "rod")

	// WHEN
	rec := request(e, http.MethodGet, "/simulation/rod/config/", "")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	config := decode[configuration.SimulationConfig](t, rec)
	assert.Equal(t, "rod", config.ID)
	assert.Equal(t, configuration.DefaultDt, config.Dt)
}

func TestCommands(t *testing.T) {
	// GIVEN
	e, loops := createService(t, "rod")
	loop := loops["rod"]

	// WHEN
	rec := request(e, http.MethodPost, "/simulation/rod/start/", "")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, simulation.Running, loop.GetStatus())
	assert.Equal(t, simulation.Running, decode[simulation.Snapshot](t, rec).Status)

	// WHEN
	rec = request(e, http.MethodPost, "/simulation/rod/pause/", "")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, simulation.Paused, loop.GetStatus())

	// WHEN
	rec = request(e, http.MethodPost, "/simulation/rod/reset/", "")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, simulation.Idle, loop.GetStatus())
}

func TestGetTelemetry(t *testing.T) {
	// GIVEN
	e, loops := createService(t, "rod")
	loop := loops["rod"]
	loop.Start()
	require.NoError(t, loop.Advance(20))

	// WHEN
	recAll := request(e, http.MethodGet, "/simulation/rod/telemetry/", "")
	recLimited := request(e, http.MethodGet, "/simulation/rod/telemetry/?limit=5", "")
	recInvalid := request(e, http.MethodGet, "/simulation/rod/telemetry/?limit=abc", "")

	// THEN
	require.Equal(t, http.StatusOK, recAll.Code)
	assert.Len(t, decode[[]telemetry.Sample](t, recAll), 20)

	require.Equal(t, http.StatusOK, recLimited.Code)
	limited := decode[[]telemetry.Sample](t, recLimited)
	require.Len(t, limited, 5)
	latest, _ := loop.GetTelemetry().Latest()
	assert.Equal(t, latest, limited[4])

	assert.Equal(t, http.StatusBadRequest, recInvalid.Code)
}

func TestSetGains(t *testing.T) {
	// GIVEN
	e, loops := createService(t, "rod")

	// WHEN
	rec := request(e, http.MethodPut, "/simulation/rod/gains/", `{"kp": 5, "ki": 1}`)

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, control_loop.Gains{Kp: 5, Ki: 1, Kd: 0}, loops["rod"].GetParameters().Gains)

	// WHEN
	rec = request(e, http.MethodPut, "/simulation/rod/gains/", `{"kd": 0.5}`)

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	params := decode[simulation.Parameters](t, rec)
	assert.Equal(t, control_loop.Gains{Kp: 5, Ki: 1, Kd: 0.5}, params.Gains)
}

func TestSetGains_BadRequest(t *testing.T) {
	// GIVEN
	e, loops := createService(t, "rod")
	before := loops["rod"].GetParameters()

	// WHEN
	rec := request(e, http.MethodPut, "/simulation/rod/gains/", `{"kp": "fast"}`)

	// THEN
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, before, loops["rod"].GetParameters())
}

func TestSetSetpointAndDisturbance(t *testing.T) {
	// GIVEN
	e, loops := createService(t, "rod")

	// WHEN
	recSetpoint := request(e, http.MethodPut, "/simulation/rod/setpoint/", `{"value": 0.75}`)
	recDisturbance := request(e, http.MethodPut, "/simulation/rod/disturbance/", `{"value": -0.25}`)
	recMissing := request(e, http.MethodPut, "/simulation/rod/setpoint/", `{}`)

	// THEN
	assert.Equal(t, http.StatusOK, recSetpoint.Code)
	assert.Equal(t, http.StatusOK, recDisturbance.Code)
	assert.Equal(t, http.StatusBadRequest, recMissing.Code)
	params := loops["rod"].GetParameters()
	assert.Equal(t, 0.75, params.Setpoint)
	assert.Equal(t, -0.25, params.Disturbance)
}

func TestProfiles(t *testing.T) {
	// GIVEN
	e, loops := createService(t, "rod")
	loop := loops["rod"]
	require.NoError(t, loop.SetGains(control_loop.Gains{Kp: 5, Ki: 1, Kd: 0.5}))

	// WHEN
	recSave := request(e, http.MethodPost, "/simulation/rod/profile/tuned/", "")

	// THEN
	require.Equal(t, http.StatusCreated, recSave.Code)
	saved := decode[persistence.Profile](t, recSave)
	assert.Equal(t, "tuned", saved.Name)
	assert.Equal(t, control_loop.Gains{Kp: 5, Ki: 1, Kd: 0.5}, saved.Gains)

	// WHEN
	require.NoError(t, loop.SetGains(control_loop.Gains{Kp: 1}))
	recList := request(e, http.MethodGet, "/simulation/rod/profile/", "")
	recApply := request(e, http.MethodPut, "/simulation/rod/profile/tuned/", "")

	// THEN
	require.Equal(t, http.StatusOK, recList.Code)
	assert.Len(t, decode[[]persistence.Profile](t, recList), 1)
	require.Equal(t, http.StatusOK, recApply.Code)
	assert.Equal(t, control_loop.Gains{Kp: 5, Ki: 1, Kd: 0.5}, loop.GetParameters().Gains)

	// WHEN
	recDelete := request(e, http.MethodDelete, "/simulation/rod/profile/tuned/", "")
	recDeleteAgain := request(e, http.MethodDelete, "/simulation/rod/profile/tuned/", "")
	recGet := request(e, http.MethodGet, "/simulation/rod/profile/tuned/", "")

	// THEN
	assert.Equal(t, http.StatusNoContent, recDelete.Code)
	assert.Equal(t, http.StatusNotFound, recDeleteAgain.Code)
	assert.Equal(t, http.StatusNotFound, recGet.Code)
}

func TestMetrics(t *testing.T) {
	// GIVEN
	e, _ := createService(t, "rod")
	request(e, http.MethodGet, "/simulation/", "")

	// WHEN
	rec := request(e, http.MethodGet, "/metrics/", "")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "api_requests_total")
}

func TestStatisticsServer(t *testing.T) {
	// GIVEN
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "pid2go_test_total", Help: "test"})
	registry.MustRegister(counter)
	counter.Inc()
	e := CreateStatisticsServer(registry)

	// WHEN
	rec := request(e, http.MethodGet, "/metrics", "")

	// THEN
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pid2go_test_total 1")
}
