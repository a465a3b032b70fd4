package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
)

// ConfigurationError is an error that is returned by configuration
// methods when keys cannot be found or when there is an error whilst
// building the configuration.
type ConfigurationError error

// configurationValues holds the values and sources collected by the builder
type configurationValues struct {
	vals        map[string]interface{}
	dotEnvFiles []string
}

// ConfigurationBuilder collects configuration sources and loads them into a struct
type ConfigurationBuilder interface {
	Unmarshal(cfgStruct interface{}) error
	Dump(cfgStruct interface{}) error
	WithDotEnv(path string) *DefaultConfigurationBuilder
	WithVal(key string, val interface{}) *DefaultConfigurationBuilder
	Build() error
}

// DefaultConfigurationBuilder is the default implementation of a configuration loader.
type DefaultConfigurationBuilder struct {
	values  *configurationValues
	parsers env.CustomParsers
	isBuilt bool
}

// Unmarshal loads configuration into the provided structure from environment variables.
// Use the "env" tag on cfgStruct fields to indicate the corresponding environment variable to load from.
func (config *DefaultConfigurationBuilder) Unmarshal(cfgStruct interface{}) error {
	if !config.isBuilt {
		return ConfigurationError(errors.New("call Build() before attempting to unmarshal"))
	}
	config.parsers = config.createCustomParsers()
	err := env.ParseWithFuncs(cfgStruct, config.parsers)
	return err
}

// Dump dumps the values set with WithVal into the provided structure. Config keys are
// matched to cfgStruct fields using the "env" tag, so a value set this way takes
// precedence over the environment variable of the same name.
func (config *DefaultConfigurationBuilder) Dump(cfgStruct interface{}) error {
	config.initialize()
	decoder, err := mapstructure.NewDecoder(
		&mapstructure.DecoderConfig{
			TagName:          "env",
			WeaklyTypedInput: true,
			Result:           cfgStruct,
		})
	if err != nil {
		panic(err)
	}
	err = decoder.Decode(config.values.vals)
	return err
}

// WithDotEnv adds a dotenv file whose variables are loaded into the process
// environment at Build time. Variables already set are not overridden and a
// missing file is ignored.
func (config *DefaultConfigurationBuilder) WithDotEnv(path string) *DefaultConfigurationBuilder {
	config.initialize()
	if path != "" {
		config.values.dotEnvFiles = append(config.values.dotEnvFiles, path)
	}
	return config
}

// WithVal allows you to hardcode values into the configuration.
// This is good for testing, injecting known values or values derived by means
// outside the configuration, such as command line flags.
func (config *DefaultConfigurationBuilder) WithVal(key string, val interface{}) *DefaultConfigurationBuilder {
	config.initialize()
	config.values.vals[key] = val
	return config
}

// Build builds the configuration.
func (config *DefaultConfigurationBuilder) Build() error {
	config.initialize()

	for _, path := range config.values.dotEnvFiles {
		err := godotenv.Load(path)
		if err != nil && !os.IsNotExist(err) {
			return ConfigurationError(fmt.Errorf("could not load %s: %w", path, err))
		}
	}

	config.isBuilt = true
	return nil
}

func (config *DefaultConfigurationBuilder) initialize() {
	if config.values == nil {
		config.values = &configurationValues{}
	}
	if config.values.vals == nil {
		config.values.vals = make(map[string]interface{})
	}
}

func (config *DefaultConfigurationBuilder) createCustomParsers() env.CustomParsers {
	funcMap := env.CustomParsers{}
	return funcMap
}
