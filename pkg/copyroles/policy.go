package copyroles

import (
	"github.com/alma-tools/copyroles/pkg/alma"
	"github.com/alma-tools/copyroles/pkg/errors"
	validation "github.com/go-ozzo/ozzo-validation"
)

var environmentRule = []validation.Rule{
	validation.Required,
	validation.In(alma.Production, alma.Sandbox).Error("must be production or sandbox"),
}

// checkEnvironments rejects any copy from sandbox into production. It runs
// before a client exists, so a rejected pairing never reaches the network.
func checkEnvironments(source alma.Environment, target alma.Environment) error {
	if source == alma.Sandbox && target == alma.Production {
		return errors.NewPolicyViolation("refusing to copy", errors.ErrSandboxToProduction)
	}
	return nil
}
