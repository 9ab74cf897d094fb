package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/pid2go/internal/persistence"
	"github.com/markusressel/pid2go/internal/simulation"
	"github.com/markusressel/pid2go/internal/ui"
)

func registerProfileEndpoints(rest *echo.Echo, pers persistence.Persistence) {
	group := rest.Group("/simulation/:" + urlParamId + "/profile")

	group.GET("/", withSimulation(listProfiles(pers)))
	group.GET("/:"+urlParamName+"/", withSimulation(getProfile(pers)))
	group.POST("/:"+urlParamName+"/", withSimulation(saveProfile(pers)))
	group.PUT("/:"+urlParamName+"/", withSimulation(applyProfile(pers)))
	group.DELETE("/:"+urlParamName+"/", withSimulation(deleteProfile(pers)))
}

func listProfiles(pers persistence.Persistence) simulationHandler {
	return func(c echo.Context, sim simulation.SimulationLoop) error {
		profiles, err := pers.ListProfiles(sim.GetId())
		if err != nil {
			return returnError(c, err)
		}
		return c.JSONPretty(http.StatusOK, profiles, indentationChar)
	}
}

func getProfile(pers persistence.Persistence) simulationHandler {
	return func(c echo.Context, sim simulation.SimulationLoop) error {
		name := c.Param(urlParamName)
		profile, err := pers.LoadProfile(sim.GetId(), name)
		if err != nil {
			return returnErrorFor(c, name, err)
		}
		return c.JSONPretty(http.StatusOK, profile, indentationChar)
	}
}

// saveProfile stores the current gains of the simulation under the given name
func saveProfile(pers persistence.Persistence) simulationHandler {
	return func(c echo.Context, sim simulation.SimulationLoop) error {
		profile := persistence.Profile{
			Name:  c.Param(urlParamName),
			Gains: sim.GetParameters().Gains,
		}
		if err := pers.SaveProfile(sim.GetId(), profile); err != nil {
			return returnErrorFor(c, profile.Name, err)
		}
		ui.Info("Saved gains of simulation %s as profile '%s'", sim.GetId(), profile.Name)

		saved, err := pers.LoadProfile(sim.GetId(), profile.Name)
		if err != nil {
			return returnError(c, err)
		}
		return c.JSONPretty(http.StatusCreated, saved, indentationChar)
	}
}

// applyProfile replaces the gains of the simulation with the ones of the given profile
func applyProfile(pers persistence.Persistence) simulationHandler {
	return func(c echo.Context, sim simulation.SimulationLoop) error {
		name := c.Param(urlParamName)
		profile, err := pers.LoadProfile(sim.GetId(), name)
		if err != nil {
			return returnErrorFor(c, name, err)
		}
		ui.Info("Applying profile '%s' to simulation %s", name, sim.GetId())
		return applyGains(c, sim, profile.Gains)
	}
}

func deleteProfile(pers persistence.Persistence) simulationHandler {
	return func(c echo.Context, sim simulation.SimulationLoop) error {
		name := c.Param(urlParamName)
		err := pers.DeleteProfile(sim.GetId(), name)
		if errors.Is(err, os.ErrNotExist) {
			return returnNotFound(c, name)
		}
		if err != nil {
			return returnError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
