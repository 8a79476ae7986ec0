package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"lexicon/internal/model"
	"lexicon/internal/service"
)

type TranslationHandler struct {
	service service.TranslationService
}

type createTranslationRequest struct {
	Key    string   `json:"key"`
	Value  string   `json:"value"`
	Locale string   `json:"locale"`
	Tags   []string `json:"tags"`
}

type updateTranslationRequest struct {
	Key    *string   `json:"key"`
	Value  *string   `json:"value"`
	Locale *string   `json:"locale"`
	Tags   *[]string `json:"tags"`
}

type translationResponse struct {
	ID        string   `json:"id"`
	Key       string   `json:"key"`
	Value     string   `json:"value"`
	Locale    string   `json:"locale"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

type translationListResponse struct {
	Items   []translationResponse `json:"items"`
	Total   int                   `json:"total"`
	Page    int                   `json:"page"`
	PerPage int                   `json:"perPage"`
}

func NewTranslationHandler(service service.TranslationService) *TranslationHandler {
	return &TranslationHandler{service: service}
}

func (h *TranslationHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/translations", h.Create)
	g.GET("/translations", h.List)
	g.GET("/translations/:id", h.Get)
	g.PUT("/translations/:id", h.Update)
	g.DELETE("/translations/:id", h.Delete)
}

// Create creates a new translation.
// @Summary Create a translation
// @Description Create a translation for a (key, locale) pair with optional tags
// @Tags translations
// @Accept json
// @Produce json
// @Param translation body createTranslationRequest true "Translation creation request"
// @Success 201 {object} translationResponse
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /translations [post]
func (h *TranslationHandler) Create(c echo.Context) error {
	var req createTranslationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	created, err := h.service.Create(c.Request().Context(), service.CreateTranslationInput{
		Key:    req.Key,
		Value:  req.Value,
		Locale: req.Locale,
		Tags:   req.Tags,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toTranslationResponse(created))
}

// List returns a filtered page of translations. Listing always reads live
// from the database, never from the export cache.
// @Summary List translations
// @Description Filter translations by key/value substring, locale and tags
// @Tags translations
// @Produce json
// @Param key query string false "Key substring (case-insensitive)"
// @Param value query string false "Value substring (case-insensitive)"
// @Param locale query string false "Exact locale"
// @Param tags query string false "Comma-separated tag names (match any)"
// @Param page query int false "Page number"
// @Param perPage query int false "Page size (clamped to 100)"
// @Success 200 {object} translationListResponse
// @Router /translations [get]
func (h *TranslationHandler) List(c echo.Context) error {
	params := service.ListParams{
		Key:    c.QueryParam("key"),
		Value:  c.QueryParam("value"),
		Locale: c.QueryParam("locale"),
		Tags:   splitCSV(c.QueryParam("tags")),
	}
	if raw := c.QueryParam("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		}
		params.Page = parsed
	}
	if raw := c.QueryParam("perPage"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		}
		params.PerPage = parsed
	}

	page, err := h.service.List(c.Request().Context(), params)
	if err != nil {
		return writeServiceError(c, err)
	}

	items := make([]translationResponse, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, toTranslationResponse(item))
	}
	return c.JSON(http.StatusOK, translationListResponse{
		Items:   items,
		Total:   page.Total,
		Page:    page.Page,
		PerPage: page.PerPage,
	})
}

// Get returns a single translation by ID.
// @Summary Get a translation
// @Tags translations
// @Produce json
// @Param id path int true "Translation ID"
// @Success 200 {object} translationResponse
// @Failure 404 {object} errorResponse
// @Router /translations/{id} [get]
func (h *TranslationHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	tr, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTranslationResponse(tr))
}

// Update applies a partial update. Omitting "tags" leaves the existing
// associations untouched; an empty list clears them.
// @Summary Update a translation
// @Tags translations
// @Accept json
// @Produce json
// @Param id path int true "Translation ID"
// @Param translation body updateTranslationRequest true "Translation update request"
// @Success 200 {object} translationResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /translations/{id} [put]
func (h *TranslationHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	var req updateTranslationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	updated, err := h.service.Update(c.Request().Context(), id, service.UpdateTranslationInput{
		Key:    req.Key,
		Value:  req.Value,
		Locale: req.Locale,
		Tags:   req.Tags,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTranslationResponse(updated))
}

// Delete removes a translation.
// @Summary Delete a translation
// @Tags translations
// @Param id path int true "Translation ID"
// @Success 204 "No Content"
// @Failure 404 {object} errorResponse
// @Router /translations/{id} [delete]
func (h *TranslationHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func toTranslationResponse(tr model.Translation) translationResponse {
	tags := tr.Tags
	if tags == nil {
		tags = []string{}
	}
	return translationResponse{
		ID:        strconv.FormatInt(tr.ID, 10),
		Key:       tr.Key,
		Value:     tr.Value,
		Locale:    tr.Locale,
		Tags:      tags,
		CreatedAt: tr.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: tr.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
