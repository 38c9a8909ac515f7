// Package models holds the gorm entities of the marketplace.
package models

// All returns every model in migration order.
func All() []any {
	return []any{
		&Profile{},
		&Permission{},
		&Property{},
		&Review{},
		&ScheduledVisit{},
		&Favorite{},
		&Lead{},
		&Message{},
	}
}
