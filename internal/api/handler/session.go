// Package handler provides HTTP handlers for the SkyCast API.
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/skycast/skycast/internal/api/middleware"
	"github.com/skycast/skycast/internal/api/models"
	"github.com/skycast/skycast/internal/api/response"
	"github.com/skycast/skycast/internal/session"
	"github.com/skycast/skycast/internal/weather"
)

// SessionHandler exposes the weather session.
type SessionHandler struct {
	session *session.Session
	logger  zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(s *session.Session, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		session: s,
		logger:  logger,
	}
}

// Search handles POST /v1/search - look up a city and load its weather.
func (h *SessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.City) == "" {
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "city", Message: "is required", Code: "required"},
		})
		return
	}

	view, err := h.session.Search(r.Context(), weather.BuildQuery(req.City, req.Country))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

// OpenSearch handles POST /v1/search/open - reopen the search form.
func (h *SessionHandler) OpenSearch(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, h.session.OpenSearch())
}

// Refresh handles POST /v1/refresh - re-run the search on display.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	view, err := h.session.Refresh(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

// SelectDay handles PUT /v1/selection - choose the day shown in detail.
func (h *SessionHandler) SelectDay(w http.ResponseWriter, r *http.Request) {
	var req models.SelectDayRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	view, err := h.session.SelectDay(*req.DayIndex)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

// GetView handles GET /v1/view - the current view.
func (h *SessionHandler) GetView(w http.ResponseWriter, r *http.Request) {
	view := h.session.View()
	if view.Current == nil {
		response.NotFound(w, r, session.ErrNoModel.Error())
		return
	}
	response.JSON(w, r, http.StatusOK, view)
}

// writeError maps session and search errors to problem responses. Search
// failures carry the same message the view shows.
func (h *SessionHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var shapeErr *weather.DataShapeError

	switch {
	case errors.Is(err, weather.ErrEmptyQuery):
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "city", Message: "is required", Code: "required"},
		})
	case errors.Is(err, weather.ErrLocationNotFound):
		response.LocationNotFound(w, r, session.MessageLocationNotFound)
	case errors.Is(err, session.ErrSuperseded):
		response.Conflict(w, r, err.Error())
	case errors.Is(err, session.ErrNoModel), errors.Is(err, session.ErrNoPreviousQuery):
		response.Conflict(w, r, err.Error())
	case errors.Is(err, session.ErrDayOutOfRange):
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: "dayIndex", Message: "is out of range", Code: "range"},
		})
	case errors.Is(err, weather.ErrNetwork), errors.As(err, &shapeErr), errors.Is(err, weather.ErrInvalidCoordinates):
		h.logger.Warn().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).Msg("search failed upstream")
		response.BadGateway(w, r, session.MessageSearchFailed)
	default:
		h.logger.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).Msg("unexpected session error")
		response.InternalError(w, r, "an unexpected error occurred")
	}
}
