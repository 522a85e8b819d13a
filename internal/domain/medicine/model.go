package medicine

import (
	"time"

	"github.com/google/uuid"
)

// Medicine maps to the medicines table.
type Medicine struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Dose        float64   `db:"dose" json:"dose"`
	Unit        string    `db:"unit" json:"unit"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
