package model

import "time"

type Tag struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
