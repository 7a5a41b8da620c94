package property

import "context"

// Store is durable record storage for properties.
//
// Update and Delete on an id the store does not hold are not errors: Update
// returns a nil row and Delete returns nil.
type Store interface {
	ListAll(ctx context.Context) ([]Row, error)
	Insert(ctx context.Context, row Row) (Row, error)
	Update(ctx context.Context, id string, row Row) (*Row, error)
	Delete(ctx context.Context, id string) error
}
