package alma

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alma-tools/copyroles/pkg/errors"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is the North America Alma API gateway
	DefaultBaseURL = "https://api-na.hosted.exlibrisgroup.com/almaws/v1/"
	// DefaultTimeout bounds every request
	DefaultTimeout = 10 * time.Second

	usersEndpoint       = "users/"
	configEndpoint      = "conf/general"
	contentTypeJSON     = "application/json"
	authorizationScheme = "apikey "
)

// HTTPClienter interface requires a method to execute an http request and
// return the http response
type HTTPClienter interface {
	Do(*http.Request) (*http.Response, error)
}

// Client talks to the Alma users and configuration APIs with a single API key
type Client struct {
	baseURL    string
	headers    http.Header
	httpClient HTTPClienter
	logger     logrus.FieldLogger
}

// NewClientInput Input for creating a new Client
type NewClientInput struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient HTTPClienter
	Logger     logrus.FieldLogger
}

// NewClient creates a new instance of the Client
func NewClient(input NewClientInput) (*Client, error) {
	if input.APIKey == "" {
		return nil, errors.NewConfiguration("cannot create alma client", errors.ErrMissingCredential)
	}

	baseURL := input.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, errors.NewConfiguration(fmt.Sprintf("invalid alma base url %q", baseURL), err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	timeout := input.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := input.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := input.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	headers := http.Header{}
	headers.Set("Authorization", authorizationScheme+input.APIKey)
	headers.Set("Accept", contentTypeJSON)
	headers.Set("Content-Type", contentTypeJSON)

	return &Client{
		baseURL:    baseURL,
		headers:    headers,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// GetUser returns the user record with the given primary ID
func (c *Client) GetUser(primaryID string) (User, error) {
	err := validation.Validate(primaryID, validation.Required)
	if err != nil {
		return nil, errors.NewValidation("primary_id", err)
	}

	var user User
	err = c.do(http.MethodGet, userEndpoint(primaryID), nil, &user)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateRoles replaces the roles on a user record and writes the whole record
// back. The record must have been fetched first since Alma overwrites every
// field with what is sent.
func (c *Client) UpdateRoles(roles []interface{}, user User) error {
	primaryID := user.PrimaryID()
	if primaryID == "" {
		return errors.NewValidation("user", errors.ErrMissingPrimaryID)
	}

	return c.do(http.MethodPut, userEndpoint(primaryID), user.withRoles(roles), nil)
}

// CreateUser creates a user from a full user record
func (c *Client) CreateUser(user User) error {
	return c.do(http.MethodPost, usersEndpoint, user, nil)
}

// Environment returns which environment (production or sandbox) the API key is for
func (c *Client) Environment() (Environment, error) {
	var conf struct {
		EnvironmentType string `json:"environment_type"`
	}
	err := c.do(http.MethodGet, configEndpoint, nil, &conf)
	if err != nil {
		return "", err
	}
	return Environment(conf.EnvironmentType), nil
}

func (c *Client) do(method string, endpoint string, body interface{}, out interface{}) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.NewTransport(fmt.Sprintf("could not encode %s %s", method, endpoint), err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, payload)
	if err != nil {
		return errors.NewTransport(fmt.Sprintf("could not build %s %s", method, endpoint), err)
	}
	req.Header = c.headers.Clone()

	logger := c.logger.WithFields(logrus.Fields{
		"method": method,
		"path":   endpoint,
	})
	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		logger.WithError(err).Debug("alma request failed")
		return errors.NewTransport(fmt.Sprintf("%s %s failed", method, endpoint), err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.NewTransport(fmt.Sprintf("could not read %s %s response", method, endpoint), err)
	}
	logger.WithFields(logrus.Fields{
		"status":   res.StatusCode,
		"duration": time.Since(start),
	}).Debug("alma request")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return errors.NewRemoteRequest(method, endpoint, res.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(out); err != nil {
		return errors.NewTransport(fmt.Sprintf("could not decode %s %s response", method, endpoint), err)
	}
	return nil
}

// userEndpoint escapes the ID as a single path segment. url.PathEscape would
// leave '@' unescaped.
func userEndpoint(primaryID string) string {
	return usersEndpoint + strings.ReplaceAll(url.QueryEscape(primaryID), "+", "%20")
}
