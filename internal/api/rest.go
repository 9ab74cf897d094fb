package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/markusressel/pid2go/internal/persistence"
	"github.com/markusressel/pid2go/internal/util"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	EndpointPathAlive   = "/alive/"
	EndpointPathMetrics = "/metrics/"
)

type (
	Result struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
)

// CreateRestService creates the REST api for all simulations in simulation.SimulationMap.
// Request metrics are registered with the given registry and served on EndpointPathMetrics.
func CreateRestService(pers persistence.Persistence, registry *prometheus.Registry) *echo.Echo {
	echoRest := echo.New()
	echoRest.HideBanner = true
	echoRest.HidePort = true

	// Root level middleware
	echoRest.Pre(middleware.AddTrailingSlash())

	echoRest.Use(middleware.Secure())

	echoRest.Use(middleware.Logger())
	echoRest.Use(middleware.Recover())

	echoRest.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "api",
		Registerer: registry,
		Skipper: func(c echo.Context) bool {
			return c.Path() == EndpointPathMetrics
		},
	}))
	echoRest.GET(EndpointPathMetrics, echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: registry,
	}))

	echoRest.GET(EndpointPathAlive, isAlive)

	registerSimulationEndpoints(echoRest)
	registerProfileEndpoints(echoRest, pers)

	return echoRest
}

// returns an empty "ok" answer
func isAlive(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// return a "not found" message
func returnNotFound(c echo.Context, id string) (err error) {
	return c.JSONPretty(http.StatusNotFound, &Result{
		Name:    "Not found",
		Message: "No item with id '" + id + "' found",
	}, indentationChar)
}

// return a "bad request" message
func returnBadRequest(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusBadRequest, &Result{
		Name:    "Bad Request",
		Message: e.Error(),
	}, indentationChar)
}

// return the error message of an error
func returnError(c echo.Context, e error) (err error) {
	return c.JSONPretty(http.StatusInternalServerError, &Result{
		Name:    "Unknown Error",
		Message: e.Error(),
	}, indentationChar)
}

// returnErrorFor maps typed errors to a matching status code
func returnErrorFor(c echo.Context, id string, e error) error {
	switch {
	case util.IsRecoverable(e):
		return returnBadRequest(c, e)
	case errors.Is(e, os.ErrNotExist):
		return returnNotFound(c, id)
	default:
		return returnError(c, e)
	}
}
