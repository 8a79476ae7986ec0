package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"lexicon/internal/service"
)

type ExportHandler struct {
	service service.ExportService
}

type exportResponse struct {
	Locale      string            `json:"locale"`
	Messages    map[string]string `json:"messages"`
	Count       int               `json:"count"`
	GeneratedAt string            `json:"generatedAt"`
}

func NewExportHandler(service service.ExportService) *ExportHandler {
	return &ExportHandler{service: service}
}

func (h *ExportHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/exports/:locale", h.Export)
	g.GET("/locales", h.Locales)
	g.GET("/tags", h.Tags)
}

// Export returns the cached key→value mapping for one locale.
// @Summary Export a locale
// @Description Full key→value mapping for a locale, optionally restricted to translations carrying any of the given tags
// @Tags exports
// @Produce json
// @Param locale path string true "Locale code"
// @Param tags query string false "Comma-separated tag names (match any)"
// @Success 200 {object} exportResponse
// @Router /exports/{locale} [get]
func (h *ExportHandler) Export(c echo.Context) error {
	locale := strings.TrimSpace(c.Param("locale"))
	if locale == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	export, err := h.service.Export(c.Request().Context(), locale, splitCSV(c.QueryParam("tags")))
	if err != nil {
		return writeServiceError(c, err)
	}
	messages := export.Messages
	if messages == nil {
		messages = map[string]string{}
	}
	return c.JSON(http.StatusOK, exportResponse{
		Locale:      export.Locale,
		Messages:    messages,
		Count:       export.Count,
		GeneratedAt: export.GeneratedAt.UTC().Format(time.RFC3339),
	})
}

// Locales returns the sorted list of locales with at least one translation.
// @Summary List locales
// @Tags exports
// @Produce json
// @Success 200 {array} string
// @Router /locales [get]
func (h *ExportHandler) Locales(c echo.Context) error {
	locales, err := h.service.Locales(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	if locales == nil {
		locales = []string{}
	}
	return c.JSON(http.StatusOK, locales)
}

// Tags returns the sorted list of known tag names.
// @Summary List tags
// @Tags exports
// @Produce json
// @Success 200 {array} string
// @Router /tags [get]
func (h *ExportHandler) Tags(c echo.Context) error {
	tags, err := h.service.TagNames(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	if tags == nil {
		tags = []string{}
	}
	return c.JSON(http.StatusOK, tags)
}
