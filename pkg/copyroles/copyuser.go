package copyroles

import (
	"github.com/alma-tools/copyroles/pkg/alma"
	"github.com/alma-tools/copyroles/pkg/errors"
	validation "github.com/go-ozzo/ozzo-validation"
)

// CopyUserToken must be typed verbatim to create the user
const CopyUserToken = "copy-user"

// CopyUserInput names the user to clone and the environments to copy between
type CopyUserInput struct {
	PrimaryID string           `json:"primary_id"`
	SourceEnv alma.Environment `json:"source_env"`
	TargetEnv alma.Environment `json:"target_env"`
}

// Validate the copy-user input
func (in CopyUserInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.PrimaryID, validation.Required),
		validation.Field(&in.SourceEnv, environmentRule...),
		validation.Field(&in.TargetEnv, environmentRule...),
	)
	if err != nil {
		return errors.NewValidation("copy-user", err)
	}
	return nil
}

// CopyUser creates a user in the target environment from the full record of
// the same user in the source environment, after the operator types
// CopyUserToken.
func (w *Workflow) CopyUser(input CopyUserInput) (Outcome, error) {
	err := input.Validate()
	if err != nil {
		return Failed, err
	}
	err = checkEnvironments(input.SourceEnv, input.TargetEnv)
	if err != nil {
		return Failed, err
	}
	err = w.config.Require(input.SourceEnv, input.TargetEnv)
	if err != nil {
		return Failed, err
	}

	source, err := w.connect(input.SourceEnv)
	if err != nil {
		return Failed, err
	}
	target := source
	if input.TargetEnv != input.SourceEnv {
		target, err = w.connect(input.TargetEnv)
		if err != nil {
			return Failed, err
		}
	}
	logger := w.logger.WithField("user", input.PrimaryID)

	user, err := w.fetch(source, input.PrimaryID)
	if err != nil {
		return Failed, err
	}
	logger.Debug("user fetched")

	err = w.say("This will create %s in the %s environment from its %s record.",
		bold(displayID(user, input.PrimaryID)), label(input.TargetEnv), label(input.SourceEnv))
	if err != nil {
		return Failed, err
	}

	ok, err := w.confirmToken("Create this user? WARNING: This operation cannot be undone.", CopyUserToken)
	if err != nil {
		return Failed, err
	}
	if !ok {
		logger.Debug("declined at final confirmation")
		return w.cancel()
	}

	err = target.CreateUser(user)
	if err != nil {
		return Failed, errors.NewStepFailure("Could not create user", err)
	}
	logger.Debug("user created")

	err = w.say("Created %s in the %s environment.", bold(displayID(user, input.PrimaryID)), label(input.TargetEnv))
	return Committed, err
}
