package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"web-calendar/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// Insert stores a new event and returns it with the id assigned by the engine.
func (d *DB) Insert(ctx context.Context, name string, date models.Date) (*models.Event, error) {
	event := &models.Event{Name: name, Date: date}
	if _, err := d.Bun.NewInsert().Model(event).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

// GetAll returns every stored event.
func (d *DB) GetAll(ctx context.Context) ([]models.Event, error) {
	events := []models.Event{}
	err := d.Bun.NewSelect().
		Model(&events).
		Order("id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select events: %w", err)
	}
	return events, nil
}

// GetByDateRange returns events whose date lies in [start, end], both ends included.
func (d *DB) GetByDateRange(ctx context.Context, start, end models.Date) ([]models.Event, error) {
	events := []models.Event{}
	err := d.Bun.NewSelect().
		Model(&events).
		Where("? BETWEEN ? AND ?", bun.Ident("date"), start, end).
		Order("id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select events between %s and %s: %w", start, end, err)
	}
	return events, nil
}

// GetByDate returns events falling exactly on date.
func (d *DB) GetByDate(ctx context.Context, date models.Date) ([]models.Event, error) {
	events := []models.Event{}
	err := d.Bun.NewSelect().
		Model(&events).
		Where("? = ?", bun.Ident("date"), date).
		Order("id").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select events on %s: %w", date, err)
	}
	return events, nil
}

func (d *DB) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select event %d: %w", id, err)
	}
	return &event, nil
}

// DeleteByID removes the event in a single statement and reports models.ErrEventNotFound
// when nothing was deleted.
func (d *DB) DeleteByID(ctx context.Context, id int64) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	if affected == 0 {
		return models.ErrEventNotFound
	}
	return nil
}

// CountEvents reports how many events are stored.
func (d *DB) CountEvents(ctx context.Context) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Count(ctx)
}
