package alma

import (
	"strings"

	"github.com/alma-tools/copyroles/pkg/errors"
	"github.com/mitchellh/mapstructure"
)

// Environment is the Alma deployment an API key belongs to
type Environment string

const (
	// Production environment
	Production Environment = "production"
	// Sandbox environment
	Sandbox Environment = "sandbox"
)

// ValidEnvironments has the valid environment options
var ValidEnvironments = [2]Environment{
	Production,
	Sandbox,
}

// String returns the string value of Environment
func (e Environment) String() string {
	return string(e)
}

// Matches reports whether two environment tags name the same deployment,
// ignoring case
func (e Environment) Matches(other Environment) bool {
	return strings.EqualFold(string(e), string(other))
}

// User is an Alma user record. Only primary_id and user_role are read; every
// other field is carried through unchanged.
type User map[string]interface{}

const (
	primaryIDField = "primary_id"
	// the list of roles in the user object is called 'user_role' (singular)
	rolesField = "user_role"
)

// PrimaryID returns the record's primary_id, or "" if it has none
func (u User) PrimaryID() string {
	id, _ := u[primaryIDField].(string)
	return id
}

// Roles returns the raw user_role entries
func (u User) Roles() []interface{} {
	roles, _ := u[rolesField].([]interface{})
	if roles == nil {
		return []interface{}{}
	}
	return roles
}

// withRoles returns a shallow copy of the record with user_role replaced
func (u User) withRoles(roles []interface{}) User {
	if roles == nil {
		roles = []interface{}{}
	}
	updated := make(User, len(u)+1)
	for k, v := range u {
		updated[k] = v
	}
	updated[rolesField] = roles
	return updated
}

// CodeDesc is the {value, desc} pair Alma uses for coded fields
type CodeDesc struct {
	Value string `mapstructure:"value"`
	Desc  string `mapstructure:"desc"`
}

// Role is the displayable part of a user_role entry
type Role struct {
	Status   CodeDesc `mapstructure:"status"`
	RoleType CodeDesc `mapstructure:"role_type"`
	Scope    CodeDesc `mapstructure:"scope"`
}

// DecodeRoles reads raw user_role entries into Roles. Fields Role does not
// know about are ignored.
func DecodeRoles(raw []interface{}) ([]Role, error) {
	roles := []Role{}
	decoder, err := mapstructure.NewDecoder(
		&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &roles,
		})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.NewTransport("could not read user roles", err)
	}
	return roles, nil
}
