package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// StatusActive is the users.status value that enrolls a user in reconciliation.
const StatusActive = "active"

// UserRecord is the slice of the host users table the directory reads.
type UserRecord struct {
	bun.BaseModel `bun:"table:users"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Status    string    `bun:"status,notnull"`
	CreatedAt time.Time `bun:"created_at"`
	UpdatedAt time.Time `bun:"updated_at"`
}
