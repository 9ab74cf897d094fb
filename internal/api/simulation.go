package api

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/pid2go/internal/control_loop"
	"github.com/markusressel/pid2go/internal/simulation"
	"github.com/qdm12/reprint"
)

const queryParamLimit = "limit"

type ValueRequest struct {
	Value *float64 `json:"value"`
}

type GainsRequest struct {
	Kp *float64 `json:"kp"`
	Ki *float64 `json:"ki"`
	Kd *float64 `json:"kd"`
}

func registerSimulationEndpoints(rest *echo.Echo) {
	group := rest.Group("/simulation")

	group.GET("/", getSimulations)
	group.GET("/:"+urlParamId+"/", getSimulation)
	group.GET("/:"+urlParamId+"/config/", getSimulationConfig)
	group.GET("/:"+urlParamId+"/telemetry/", getTelemetry)

	group.POST("/:"+urlParamId+"/start/", withSimulation(startSimulation))
	group.POST("/:"+urlParamId+"/pause/", withSimulation(pauseSimulation))
	group.POST("/:"+urlParamId+"/reset/", withSimulation(resetSimulation))

	group.PUT("/:"+urlParamId+"/gains/", withSimulation(setGains))
	group.PUT("/:"+urlParamId+"/setpoint/", withSimulation(setSetpoint))
	group.PUT("/:"+urlParamId+"/disturbance/", withSimulation(setDisturbance))
}

type simulationHandler func(c echo.Context, sim simulation.SimulationLoop) error

// withSimulation resolves the simulation of the id url param, or answers 404
func withSimulation(handler simulationHandler) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param(urlParamId)
		sim, exists := simulation.SimulationMap.Get(id)
		if !exists {
			return returnNotFound(c, id)
		}
		return handler(c, sim)
	}
}

// returns the snapshots of all simulations, sorted by id
func getSimulations(c echo.Context) error {
	snapshots := []simulation.Snapshot{}
	for _, sim := range simulation.SimulationMap.Items() {
		snapshots = append(snapshots, sim.GetSnapshot())
	}
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Id < snapshots[j].Id
	})
	data := reprint.This(snapshots)
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func getSimulation(c echo.Context) error {
	id := c.Param(urlParamId)
	sim, exists := simulation.SimulationMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}
	return c.JSONPretty(http.StatusOK, sim.GetSnapshot(), indentationChar)
}

func getSimulationConfig(c echo.Context) error {
	id := c.Param(urlParamId)
	sim, exists := simulation.SimulationMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}
	data := reprint.This(sim.GetConfig())
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

// returns the telemetry window of a simulation, optionally limited to the most recent samples
func getTelemetry(c echo.Context) error {
	id := c.Param(urlParamId)
	sim, exists := simulation.SimulationMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}

	limit := -1
	if raw := c.QueryParam(queryParamLimit); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return returnBadRequest(c, errors.New("limit must be a non-negative integer"))
		}
		limit = parsed
	}

	return c.JSONPretty(http.StatusOK, sim.GetTelemetry().Last(limit), indentationChar)
}

func startSimulation(c echo.Context, sim simulation.SimulationLoop) error {
	sim.Start()
	return c.JSONPretty(http.StatusOK, sim.GetSnapshot(), indentationChar)
}

func pauseSimulation(c echo.Context, sim simulation.SimulationLoop) error {
	sim.Pause()
	return c.JSONPretty(http.StatusOK, sim.GetSnapshot(), indentationChar)
}

func resetSimulation(c echo.Context, sim simulation.SimulationLoop) error {
	sim.Reset()
	return c.JSONPretty(http.StatusOK, sim.GetSnapshot(), indentationChar)
}

// setGains replaces the given gains, missing ones keep their current value
func setGains(c echo.Context, sim simulation.SimulationLoop) error {
	var request GainsRequest
	if err := c.Bind(&request); err != nil {
		return returnBadRequest(c, err)
	}

	gains := sim.GetParameters().Gains
	if request.Kp != nil {
		gains.Kp = *request.Kp
	}
	if request.Ki != nil {
		gains.Ki = *request.Ki
	}
	if request.Kd != nil {
		gains.Kd = *request.Kd
	}

	return applyGains(c, sim, gains)
}

func applyGains(c echo.Context, sim simulation.SimulationLoop, gains control_loop.Gains) error {
	if err := sim.SetGains(gains); err != nil {
		return returnErrorFor(c, sim.GetId(), err)
	}
	return c.JSONPretty(http.StatusOK, sim.GetParameters(), indentationChar)
}

func setSetpoint(c echo.Context, sim simulation.SimulationLoop) error {
	value, err := bindValue(c)
	if err != nil {
		return returnBadRequest(c, err)
	}
	if err := sim.SetSetpoint(value); err != nil {
		return returnErrorFor(c, sim.GetId(), err)
	}
	return c.JSONPretty(http.StatusOK, sim.GetParameters(), indentationChar)
}

func setDisturbance(c echo.Context, sim simulation.SimulationLoop) error {
	value, err := bindValue(c)
	if err != nil {
		return returnBadRequest(c, err)
	}
	if err := sim.SetDisturbance(value); err != nil {
		return returnErrorFor(c, sim.GetId(), err)
	}
	return c.JSONPretty(http.StatusOK, sim.GetParameters(), indentationChar)
}

func bindValue(c echo.Context) (float64, error) {
	var request ValueRequest
	if err := c.Bind(&request); err != nil {
		return 0, err
	}
	if request.Value == nil {
		return 0, errors.New("missing field: value")
	}
	return *request.Value, nil
}
