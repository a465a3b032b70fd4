package copyroles

import (
	"github.com/alma-tools/copyroles/pkg/alma"
	"github.com/alma-tools/copyroles/pkg/errors"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/sirupsen/logrus"
)

// CopyRolesToken must be typed verbatim to write the roles
const CopyRolesToken = "copy-roles"

// CopyRolesInput names the two users and the environment each lives in
type CopyRolesInput struct {
	SourceID  string           `json:"source_user"`
	TargetID  string           `json:"target_user"`
	SourceEnv alma.Environment `json:"source_env"`
	TargetEnv alma.Environment `json:"target_env"`
}

// Validate the copy-roles input
func (in CopyRolesInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.SourceID, validation.Required),
		validation.Field(&in.TargetID, validation.Required),
		validation.Field(&in.SourceEnv, environmentRule...),
		validation.Field(&in.TargetEnv, environmentRule...),
	)
	if err != nil {
		return errors.NewValidation("copy-roles", err)
	}
	return nil
}

// CopyRoles replaces the target user's roles with the source user's roles.
// Both records are fetched first, the operator confirms the pair, may review
// the roles, and must type CopyRolesToken before the target is written.
func (w *Workflow) CopyRoles(input CopyRolesInput) (Outcome, error) {
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
	logger := w.logger.WithFields(logrus.Fields{
		"source": input.SourceID,
		"target": input.TargetID,
	})
	logger.Debug("environment selected")

	sourceUser, err := w.fetch(source, input.SourceID)
	if err != nil {
		return Failed, err
	}
	targetUser, err := w.fetch(target, input.TargetID)
	if err != nil {
		return Failed, err
	}
	sourceRoles := sourceUser.Roles()
	logger.WithField("roles", len(sourceRoles)).Debug("users fetched")

	err = w.say("This will copy roles from %s (%s) to %s (%s).",
		bold(displayID(sourceUser, input.SourceID)), label(input.SourceEnv),
		bold(displayID(targetUser, input.TargetID)), label(input.TargetEnv))
	if err != nil {
		return Failed, err
	}
	if len(sourceRoles) == 0 {
		err = w.say("WARNING: the source user has no roles. Every role on the target user will be removed.")
		if err != nil {
			return Failed, err
		}
	}

	ok, err := w.confirm("Continue and review roles?")
	if err != nil {
		return Failed, err
	}
	if !ok {
		logger.Debug("declined at continue")
		return w.cancel()
	}

	review, err := w.confirm("Would you like to review the roles that will be copied?")
	if err != nil {
		return Failed, err
	}
	if review {
		err = w.showRoles(sourceRoles)
		if err != nil {
			return Failed, err
		}
	}

	ok, err = w.confirmToken("Copy these roles? WARNING: This operation cannot be undone.", CopyRolesToken)
	if err != nil {
		return Failed, err
	}
	if !ok {
		logger.Debug("declined at final confirmation")
		return w.cancel()
	}

	err = target.UpdateRoles(sourceRoles, targetUser)
	if err != nil {
		return Failed, errors.NewStepFailure("Could not update user roles", err)
	}
	logger.Debug("roles copied")

	err = w.say("Copied %d role(s) to %s.", len(sourceRoles), bold(displayID(targetUser, input.TargetID)))
	return Committed, err
}

func (w *Workflow) showRoles(raw []interface{}) error {
	if len(raw) == 0 {
		return w.say("The source user has no roles.")
	}
	roles, err := alma.DecodeRoles(raw)
	if err != nil {
		return err
	}
	return w.prompter.WriteLine(RenderRoles(roles))
}

func displayID(user alma.User, fallback string) string {
	if id := user.PrimaryID(); id != "" {
		return id
	}
	return fallback
}
