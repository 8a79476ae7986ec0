package model

import "time"

type Translation struct {
	ID        int64
	Key       string
	Value     string
	Locale    string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
