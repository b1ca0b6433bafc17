package models

import (
	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:calendar"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"event,notnull"`
	Date Date   `bun:"date,notnull"`
}
