package model

import "time"

// Metadata carries the store-managed lifecycle columns. A non-nil DeletedAt
// marks the row as soft deleted.
type Metadata struct {
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func (m Metadata) IsDeleted() bool {
	return m.DeletedAt != nil
}
