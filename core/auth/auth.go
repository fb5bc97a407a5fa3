package auth

import (
	"encoding/gob"

	"github.com/takiras/storefront/core/user"
)

func init() {
	// Role lists travel through the session codec.
	gob.Register([]string{})
}

// Record is the auth state persisted on the device: the profile returned
// by the upstream plus the bearer token attached on authenticated calls.
// It is written on login, read on every session bootstrap and destroyed
// on logout.
type Record struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

// Session value keys. The cookie session only carries who this browser
// is acting as; the durable record lives in the store.
const (
	sessionUserKey  = "userID"
	sessionRolesKey = "roles"
)
