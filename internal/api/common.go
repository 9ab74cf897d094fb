package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	urlParamId      = "id"
	urlParamName    = "name"
	indentationChar = "  "
)

func CreateWebserver() *echo.Echo {
	webserver := echo.New()
	webserver.HideBanner = true
	webserver.HidePort = true

	// Root level middleware
	webserver.Pre(middleware.AddTrailingSlash())

	//webserver.Use(middleware.Logger())
	webserver.Use(middleware.Secure())
	webserver.Use(middleware.Recover())

	return webserver
}

// CreateStatisticsServer serves everything registered with the given gatherer on /metrics/
func CreateStatisticsServer(gatherer prometheus.Gatherer) *echo.Echo {
	webserver := CreateWebserver()
	webserver.GET("/metrics/", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	return webserver
}
