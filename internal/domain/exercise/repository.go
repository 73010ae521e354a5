package exercise

import (
	"context"
)

// Repository defines persistence operations for the exercise catalog.
type Repository interface {
	// FindByDescriptor returns the item with the exact (appID, descriptor)
	// pair, or shared.ErrExerciseNotFound.
	FindByDescriptor(ctx context.Context, appID, descriptor string) (*Item, error)

	// Create inserts a new item. Returns shared.ErrExerciseExists when a
	// concurrent creator already inserted the same (appID, descriptor).
	Create(ctx context.Context, item *Item) error

	// ListByApps returns up to limit catalog items for the given apps,
	// used for suggesting exercises when there is not enough outcome data
	// to generate a session.
	ListByApps(ctx context.Context, appIDs []string, limit int) ([]*Item, error)
}
