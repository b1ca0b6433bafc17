package calendar_api

import (
	"web-calendar/internal/models"
)

const (
	msgEventAdded    = "The event has been added!"
	msgEventDeleted  = "The event has been deleted!"
	msgEventNotFound = "The event doesn't exist!"
	msgInternalError = "Internal Server Error"
	msgRouteNotFound = "The requested URL was not found on the server."
	msgNotAllowed    = "The method is not allowed for the requested URL."
)

type EventResponse struct {
	ID    int64  `json:"id"`
	Event string `json:"event"`
	Date  string `json:"date"`
}

type EventCreatedResponse struct {
	Message string `json:"message"`
	Event   string `json:"event"`
	Date    string `json:"date"`
}

func toEventResponse(event models.Event) EventResponse {
	return EventResponse{
		ID:    event.ID,
		Event: event.Name,
		Date:  event.Date.String(),
	}
}

// toEventResponses never returns nil so an empty listing encodes as [].
func toEventResponses(events []models.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, toEventResponse(event))
	}
	return out
}
