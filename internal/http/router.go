package http

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"lexicon/internal/handler"
)

func NewRouter(
	translationHandler *handler.TranslationHandler,
	exportHandler *handler.ExportHandler,
	db *sql.DB,
	rateLimit float64,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(RequestIDMiddleware())
	e.Use(RequestLoggerMiddleware())
	if rateLimit > 0 {
		e.Use(RateLimitMiddleware(rateLimit))
	}

	e.GET("/healthz", func(c echo.Context) error {
		if err := db.PingContext(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	translationHandler.RegisterRoutes(api)
	exportHandler.RegisterRoutes(api)

	return e
}
