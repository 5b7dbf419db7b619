package domain

import "github.com/google/uuid"

// User is an external collaborator entity, referenced by id-based lookups
// only. The settlement engine resolves users to find their wallets and to
// address notifications; it never manages user lifecycle.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

// Kitchen is a selling entity owned by a user. Withdrawals "as kitchen"
// resolve the kitchen through its owner.
type Kitchen struct {
	ID          uuid.UUID `json:"id"`
	OwnerUserID uuid.UUID `json:"owner_user_id"`
	Name        string    `json:"name"`
}
