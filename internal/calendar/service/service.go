package calendar

import (
	"context"
	"fmt"
	"time"

	"web-calendar/internal/logger"
	"web-calendar/internal/models"
)

type EventDBLayer interface {
	Insert(ctx context.Context, name string, date models.Date) (*models.Event, error)
	GetAll(ctx context.Context) ([]models.Event, error)
	GetByDateRange(ctx context.Context, start, end models.Date) ([]models.Event, error)
	GetByDate(ctx context.Context, date models.Date) ([]models.Event, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	DeleteByID(ctx context.Context, id int64) error
}

// Notifier receives changes after they are committed.
type Notifier interface {
	EventCreated(ctx context.Context, event models.Event) error
	EventDeleted(ctx context.Context, eventID int64) error
}

// DateRange is an inclusive [Start, End] filter.
type DateRange struct {
	Start models.Date
	End   models.Date
}

type EventService struct {
	DB       EventDBLayer
	Notifier Notifier
	Logger   *logger.Logger
	Now      func() time.Time
}

// NewEventService wires the storage layer. notifier may be nil.
func NewEventService(db EventDBLayer, notifier Notifier, log *logger.Logger) *EventService {
	return &EventService{
		DB:       db,
		Notifier: notifier,
		Logger:   log,
		Now:      time.Now,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, name string, date models.Date) (*models.Event, error) {
	event, err := s.DB.Insert(ctx, name, date)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.Logger.LogEvent("CREATE", event.ID, fmt.Sprintf("%q on %s", event.Name, event.Date))

	if s.Notifier != nil {
		if err := s.Notifier.EventCreated(ctx, *event); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish creation of event %d: %v", event.ID, err))
		}
	}
	return event, nil
}

// ListEvents returns every event, or only those inside window when it is not nil. An inverted
// window matches nothing and skips storage.
func (s *EventService) ListEvents(ctx context.Context, window *DateRange) ([]models.Event, error) {
	if window == nil {
		events, err := s.DB.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list events: %w", err)
		}
		return events, nil
	}

	if window.End.Before(window.Start) {
		return []models.Event{}, nil
	}

	events, err := s.DB.GetByDateRange(ctx, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list events between %s and %s: %w", window.Start, window.End, err)
	}
	return events, nil
}

func (s *EventService) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.DB.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("event %d: %w", id, err)
	}
	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.DB.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("event %d: %w", id, err)
	}
	s.Logger.LogEvent("DELETE", id, "event deleted")

	if s.Notifier != nil {
		if err := s.Notifier.EventDeleted(ctx, id); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish deletion of event %d: %v", id, err))
		}
	}
	return nil
}

// Today is the current calendar day in the server's local time.
func (s *EventService) Today() models.Date {
	return models.DateOf(s.Now())
}

func (s *EventService) TodayEvents(ctx context.Context) ([]models.Event, error) {
	today := s.Today()
	events, err := s.DB.GetByDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list events for %s: %w", today, err)
	}
	return events, nil
}
