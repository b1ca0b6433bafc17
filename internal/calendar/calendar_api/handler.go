package calendar_api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	calendar "web-calendar/internal/calendar/service"
	"web-calendar/internal/logger"
	"web-calendar/internal/models"
	"web-calendar/internal/utils"
)

type EventService interface {
	CreateEvent(ctx context.Context, name string, date models.Date) (*models.Event, error)
	ListEvents(ctx context.Context, window *calendar.DateRange) ([]models.Event, error)
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	TodayEvents(ctx context.Context) ([]models.Event, error)
}

type Handler struct {
	EventService EventService
	Logger       *logger.Logger
}

func NewHandler(eventService EventService, log *logger.Logger) *Handler {
	return &Handler{
		EventService: eventService,
		Logger:       log,
	}
}

// RegisterRoutes registers the calendar routes on a chi router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/event", func(r chi.Router) {
		r.Get("/", h.ListEvents)
		r.Post("/", h.CreateEvent)
		r.Get("/today", h.TodayEvents)
		r.Get("/{eventId:[0-9]+}", h.GetEvent)
		r.Delete("/{eventId:[0-9]+}", h.DeleteEvent)
	})
}

// ListEvents handles GET /event with an optional start_time/end_time window.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	window, err := parseRangeParams(r.URL.Query())
	if err != nil {
		h.writeError(w, "ListEvents", err)
		return
	}

	events, err := h.EventService.ListEvents(r.Context(), window)
	if err != nil {
		h.writeError(w, "ListEvents", err)
		return
	}
	h.writeJSON(w, http.StatusOK, toEventResponses(events))
}

// CreateEvent handles POST /event?event=<name>&date=YYYY-MM-DD.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	name, date, err := parseCreateParams(r.URL.Query())
	if err != nil {
		h.writeError(w, "CreateEvent", err)
		return
	}

	event, err := h.EventService.CreateEvent(r.Context(), name, date)
	if err != nil {
		h.writeError(w, "CreateEvent", err)
		return
	}

	h.writeJSON(w, http.StatusOK, EventCreatedResponse{
		Message: msgEventAdded,
		Event:   event.Name,
		Date:    event.Date.String(),
	})
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		h.writeError(w, "GetEvent", models.ErrEventNotFound)
		return
	}

	event, err := h.EventService.GetEvent(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetEvent", err)
		return
	}
	h.writeJSON(w, http.StatusOK, toEventResponse(*event))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventIDParam(r)
	if !ok {
		h.writeError(w, "DeleteEvent", models.ErrEventNotFound)
		return
	}

	if err := h.EventService.DeleteEvent(r.Context(), id); err != nil {
		h.writeError(w, "DeleteEvent", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.NewMessage(msgEventDeleted))
}

func (h *Handler) TodayEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.EventService.TodayEvents(r.Context())
	if err != nil {
		h.writeError(w, "TodayEvents", err)
		return
	}
	h.writeJSON(w, http.StatusOK, toEventResponses(events))
}

// eventIDParam fails for ids that overflow int64; such an event cannot exist.
func eventIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "eventId"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.Logger.Debug("API", fmt.Sprintf("%s: rejected: %v", op, err))
		h.writeJSON(w, http.StatusBadRequest, utils.NewFieldError(validationErr.Field, validationErr.Message))
	case errors.Is(err, models.ErrEventNotFound):
		h.Logger.Debug("API", fmt.Sprintf("%s: %v", op, err))
		h.writeJSON(w, http.StatusNotFound, utils.NewMessage(msgEventNotFound))
	default:
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
		h.writeJSON(w, http.StatusInternalServerError, utils.NewMessage(msgInternalError))
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	if err := utils.WriteJSON(w, status, data); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}
