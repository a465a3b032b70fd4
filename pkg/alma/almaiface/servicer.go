package almaiface

import (
	"github.com/alma-tools/copyroles/pkg/alma"
)

// Servicer makes working with the Alma Client struct easier
type Servicer interface {
	// GetUser returns the user record with the given primary ID
	GetUser(primaryID string) (alma.User, error)
	// UpdateRoles replaces the roles on a user record and writes the whole record back
	UpdateRoles(roles []interface{}, user alma.User) error
	// CreateUser creates a user from a full user record
	CreateUser(user alma.User) error
	// Environment returns which environment (production or sandbox) the API key is for
	Environment() (alma.Environment, error)
}
