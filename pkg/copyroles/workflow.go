// Package copyroles runs the interactive copy-roles and copy-user workflows.
// Every write to Alma sits behind a typed confirmation.
package copyroles

import (
	"fmt"
	"strings"

	"github.com/alma-tools/copyroles/pkg/alma"
	"github.com/alma-tools/copyroles/pkg/alma/almaiface"
	"github.com/alma-tools/copyroles/pkg/config"
	"github.com/alma-tools/copyroles/pkg/errors"
	"github.com/sirupsen/logrus"
)

var _ almaiface.Servicer = (*alma.Client)(nil)

// Outcome is how a workflow ended
type Outcome string

const (
	// Committed means the write was made
	Committed Outcome = "committed"
	// Aborted means the operator declined and nothing was written
	Aborted Outcome = "aborted"
	// Failed means an error ended the workflow
	Failed Outcome = "failed"
)

const cancelledMessage = "Copy operation cancelled."

// ClientFactory creates the client for an environment
type ClientFactory func(environment alma.Environment, apiKey string) (almaiface.Servicer, error)

// Workflow holds the configuration, the operator port and one client per
// environment for the life of the process
type Workflow struct {
	config    *config.Config
	prompter  Prompter
	newClient ClientFactory
	clients   map[alma.Environment]almaiface.Servicer
	logger    logrus.FieldLogger
}

// NewWorkflowInput Input for creating a new Workflow
type NewWorkflowInput struct {
	Config   *config.Config
	Prompter Prompter
	// NewClient is optional; clients default to alma.Client
	NewClient ClientFactory
	Logger    logrus.FieldLogger
}

// NewWorkflow creates a new instance of the Workflow
func NewWorkflow(input NewWorkflowInput) *Workflow {
	w := &Workflow{
		config:    input.Config,
		prompter:  input.Prompter,
		newClient: input.NewClient,
		clients:   map[alma.Environment]almaiface.Servicer{},
		logger:    input.Logger,
	}
	if w.logger == nil {
		w.logger = logrus.StandardLogger()
	}
	if w.newClient == nil {
		w.newClient = w.almaClient
	}
	return w
}

func (w *Workflow) almaClient(environment alma.Environment, apiKey string) (almaiface.Servicer, error) {
	return alma.NewClient(alma.NewClientInput{
		APIKey:  apiKey,
		BaseURL: w.config.BaseURL,
		Timeout: w.config.Timeout(),
		Logger:  w.logger.WithField("environment", environment),
	})
}

// client returns the cached client for an environment, creating it on first use
func (w *Workflow) client(environment alma.Environment) (almaiface.Servicer, error) {
	if c, ok := w.clients[environment]; ok {
		return c, nil
	}
	apiKey, err := w.config.APIKey(environment)
	if err != nil {
		return nil, err
	}
	c, err := w.newClient(environment, apiKey)
	if err != nil {
		return nil, err
	}
	w.clients[environment] = c
	return c, nil
}

// connect returns the client for an environment after checking with Alma
// that its key really belongs to that environment
func (w *Workflow) connect(environment alma.Environment) (almaiface.Servicer, error) {
	c, err := w.client(environment)
	if err != nil {
		return nil, err
	}

	reported, err := c.Environment()
	if err != nil {
		return nil, errors.NewStepFailure("Could not get environment", err)
	}
	if !environment.Matches(reported) {
		return nil, errors.NewPolicyViolation(
			fmt.Sprintf("the %s api key belongs to the %s environment", environment, reported), nil)
	}
	w.logger.WithField("environment", environment).Debug("environment confirmed")
	return c, nil
}

// fetch reads a user record, ending the workflow on failure
func (w *Workflow) fetch(c almaiface.Servicer, primaryID string) (alma.User, error) {
	user, err := c.GetUser(primaryID)
	if err != nil {
		return nil, errors.NewStepFailure("Could not get user", err)
	}
	return user, nil
}

// confirm asks a yes/no question
func (w *Workflow) confirm(question string) (bool, error) {
	answer, err := w.prompter.ReadLine(question + " [y/n] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// confirmToken asks the operator to type token exactly; surrounding
// whitespace does not match
func (w *Workflow) confirmToken(question string, token string) (bool, error) {
	answer, err := w.prompter.ReadLine(fmt.Sprintf("%s [type '%s' to continue] ", question, token))
	if err != nil {
		return false, err
	}
	return answer == token, nil
}

func (w *Workflow) say(format string, args ...interface{}) error {
	return w.prompter.WriteLine(fmt.Sprintf(format, args...))
}

func (w *Workflow) cancel() (Outcome, error) {
	if err := w.say(cancelledMessage); err != nil {
		return Failed, err
	}
	return Aborted, nil
}

func bold(s string) string {
	return "\033[1m" + s + "\033[0m"
}

func label(environment alma.Environment) string {
	return bold(strings.ToUpper(environment.String()))
}
