package config

import (
	"fmt"
	"regexp"
	"time"

	"github.com/alma-tools/copyroles/pkg/alma"
	"github.com/alma-tools/copyroles/pkg/errors"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/sirupsen/logrus"
)

// Environment variable names
const (
	BaseURLEnv          = "ALMA_API_URL"
	ProductionAPIKeyEnv = "ALMA_API_KEY_PRODUCTION"
	SandboxAPIKeyEnv    = "ALMA_API_KEY_SANDBOX"
	TimeoutEnv          = "ALMA_API_TIMEOUT"
	LogLevelEnv         = "LOG_LEVEL"
)

// Config is everything the copy commands need from outside the process
type Config struct {
	BaseURL          string `env:"ALMA_API_URL" envDefault:"https://api-na.hosted.exlibrisgroup.com/almaws/v1/"`
	ProductionAPIKey string `env:"ALMA_API_KEY_PRODUCTION"`
	SandboxAPIKey    string `env:"ALMA_API_KEY_SANDBOX"`
	TimeoutSeconds   int    `env:"ALMA_API_TIMEOUT" envDefault:"10"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"warning"`
}

var baseURLRule = []validation.Rule{
	validation.Required,
	validation.Match(regexp.MustCompile("^https?://")).Error("must be an http or https url"),
}

// New loads the configuration from the builder's dotenv files, the process
// environment and any values set on the builder, in increasing precedence.
func New(builder ConfigurationBuilder) (*Config, error) {
	err := builder.Build()
	if err != nil {
		return nil, errors.NewConfiguration("could not load configuration", err)
	}

	var cfg Config
	err = builder.Unmarshal(&cfg)
	if err != nil {
		return nil, errors.NewConfiguration("could not read configuration from environment", err)
	}
	err = builder.Dump(&cfg)
	if err != nil {
		return nil, errors.NewConfiguration("could not apply configuration overrides", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate the configuration values. API keys are checked separately by
// Require since which ones are needed depends on the command.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, baseURLRule...),
		validation.Field(&c.TimeoutSeconds, validation.Min(1)),
		validation.Field(&c.LogLevel, validation.By(isLogLevel)),
	)
	if err != nil {
		return errors.NewConfiguration("invalid configuration", err)
	}
	return nil
}

// Timeout bounds every request to Alma
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Level is the parsed log level
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}
	return level
}

// APIKey returns the API key for an environment
func (c *Config) APIKey(environment alma.Environment) (string, error) {
	err := c.Require(environment)
	if err != nil {
		return "", err
	}
	if environment == alma.Sandbox {
		return c.SandboxAPIKey, nil
	}
	return c.ProductionAPIKey, nil
}

// Require checks that an API key is set for every given environment. All
// missing keys are reported together.
func (c *Config) Require(environments ...alma.Environment) error {
	var missing []error
	seen := map[alma.Environment]bool{}
	for _, environment := range environments {
		if seen[environment] {
			continue
		}
		seen[environment] = true

		var key, envVar string
		switch environment {
		case alma.Production:
			key, envVar = c.ProductionAPIKey, ProductionAPIKeyEnv
		case alma.Sandbox:
			key, envVar = c.SandboxAPIKey, SandboxAPIKeyEnv
		default:
			return errors.NewValidation("environment", fmt.Errorf("unknown environment %q", environment))
		}
		if key == "" {
			missing = append(missing, fmt.Errorf("%s", envVar))
		}
	}

	if len(missing) > 0 {
		return errors.NewConfiguration("configuration error",
			errors.NewMultiError("missing required environment variable", missing))
	}
	return nil
}

func isLogLevel(value interface{}) error {
	s, _ := value.(string)
	_, err := logrus.ParseLevel(s)
	return err
}
