// package models defines the data model shared by the gateway and its clients
package models

import (
	"time"
)

// Model is a record persisted by the client-side credential store.
type Model interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error
}

var _ Model = (*Credential)(nil)

// Repository is the storage contract for one [Model] type.
type Repository[T Model] interface {
	Create(model T) error
	Get(id string) (T, error)
	Update(model T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error) // supported criteria keys depend on the implementation
}
