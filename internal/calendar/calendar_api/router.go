package calendar_api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"web-calendar/internal/logger"
	"web-calendar/internal/utils"
)

// NewRouter builds the complete HTTP surface: recovery, request logging and the calendar routes.
func NewRouter(h *Handler, log *logger.Logger) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(log.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusNotFound, utils.NewMessage(msgRouteNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusMethodNotAllowed, utils.NewMessage(msgNotAllowed))
	})

	h.RegisterRoutes(r)
	return r
}
