package repo

import "context"

// Identity is what the external identity provider vouches for.
type Identity struct {
	UID       string `json:"uid"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

type IdentityProvider interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
