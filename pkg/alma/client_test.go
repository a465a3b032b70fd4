package alma_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alma-tools/copyroles/pkg/alma"
	"github.com/alma-tools/copyroles/pkg/alma/almatest"
	apperrors "github.com/alma-tools/copyroles/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, server *almatest.Server) *alma.Client {
	client, err := alma.NewClient(alma.NewClientInput{
		APIKey:  "test_api_key",
		BaseURL: server.BaseURL(),
	})
	require.Nil(t, err)
	return client
}

func TestNewClient(t *testing.T) {

	t.Run("should require an api key", func(t *testing.T) {
		client, err := alma.NewClient(alma.NewClientInput{})
		assert.Nil(t, client)
		assert.True(t, apperrors.IsConfiguration(err))
		assert.True(t, errors.Is(err, apperrors.ErrMissingCredential))
	})

	t.Run("should reject a malformed base url", func(t *testing.T) {
		client, err := alma.NewClient(alma.NewClientInput{APIKey: "key", BaseURL: "not a url"})
		assert.Nil(t, client)
		assert.True(t, apperrors.IsConfiguration(err))
	})

	t.Run("should send the fixed headers on every request", func(t *testing.T) {
		server := almatest.NewServer("production")
		defer server.Close()
		server.PutUser(alma.User{"primary_id": "kerb@mit.edu"})
		client := newClient(t, server)

		_, err := client.Environment()
		require.Nil(t, err)
		_, err = client.GetUser("kerb@mit.edu")
		require.Nil(t, err)

		requests := server.Requests()
		require.Len(t, requests, 2)
		for _, r := range requests {
			assert.Equal(t, "apikey test_api_key", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		}
	})

	t.Run("should add a missing trailing slash to the base url", func(t *testing.T) {
		server := almatest.NewServer("sandbox")
		defer server.Close()
		client, err := alma.NewClient(alma.NewClientInput{
			APIKey:  "key",
			BaseURL: strings.TrimSuffix(server.BaseURL(), "/"),
		})
		require.Nil(t, err)

		env, err := client.Environment()
		require.Nil(t, err)
		assert.Equal(t, alma.Sandbox, env)
	})
}

func TestGetUser(t *testing.T) {

	tests := []struct {
		name      string
		primaryID string
		expPath   string
	}{
		{name: "should escape @", primaryID: "kerb@mit.edu", expPath: "users/kerb%40mit.edu"},
		{name: "should escape spaces", primaryID: "john smith", expPath: "users/john%20smith"},
		{name: "should escape slashes", primaryID: "a/b", expPath: "users/a%2Fb"},
		{name: "should leave plain ids alone", primaryID: "johns", expPath: "users/johns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := almatest.NewServer("production")
			defer server.Close()
			stored := alma.User{"primary_id": tt.primaryID, "user_role": []interface{}{map[string]interface{}{"role": "test"}}}
			server.PutUser(stored)
			client := newClient(t, server)

			user, err := client.GetUser(tt.primaryID)
			require.Nil(t, err)
			assert.Equal(t, tt.primaryID, user.PrimaryID())
			assert.Len(t, user.Roles(), 1)

			requests := server.Requests()
			require.Len(t, requests, 1)
			assert.Equal(t, http.MethodGet, requests[0].Method)
			assert.Equal(t, tt.expPath, requests[0].Path)
		})
	}

	t.Run("should contain the escaped id exactly once", func(t *testing.T) {
		server := almatest.NewServer("production")
		defer server.Close()
		server.PutUser(alma.User{"primary_id": "a@b.edu"})
		client := newClient(t, server)

		_, err := client.GetUser("a@b.edu")
		require.Nil(t, err)

		path := server.Requests()[0].Path
		assert.Equal(t, 1, strings.Count(path, "a%40b.edu"))
		assert.NotContains(t, path, "@")
	})

	t.Run("should surface a 404 with its body", func(t *testing.T) {
		server := almatest.NewServer("production")
		defer server.Close()
		client := newClient(t, server)

		user, err := client.GetUser("missing@mit.edu")
		assert.Nil(t, user)
		require.NotNil(t, err)

		var statusErr *apperrors.StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusNotFound, statusErr.HTTPCode())
		assert.Equal(t, "not found", statusErr.Body())
		assert.True(t, apperrors.IsRemoteRequest(err))
	})

	t.Run("should surface server errors the same way", func(t *testing.T) {
		server := almatest.NewServer("production")
		defer server.Close()
		server.Fail(http.MethodGet, "users/kerb%40mit.edu", http.StatusInternalServerError, "boom")
		client := newClient(t, server)

		_, err := client.GetUser("kerb@mit.edu")
		assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPCodeForError(err))
		assert.Equal(t, "GET users/kerb%40mit.edu responded with status 500: boom", err.Error())
	})

	t.Run("should reject an empty id without a request", func(t *testing.T) {
		server := almatest.NewServer("production")
		defer server.Close()
		client := newClient(t, server)

		_, err := client.GetUser("")
		assert.Equal(t, apperrors.ExitUsage, apperrors.ExitCodeForError(err))
		assert.Empty(t, server.Requests())
	})

	t.Run("should keep numbers intact", func(t *testing.T) {
		server := almatest.NewServer("production")
		defer server.Close()
		server.PutUser(alma.User{"primary_id": "johns", "pin_number": json.Number("4554000000000000001")})
		client := newClient(t, server)

		user, err := client.GetUser("johns")
		require.Nil(t, err)
		assert.Equal(t, json.Number("4554000000000000001"), user["pin_number"])
	})
}

func TestUpdateRoles(t *testing.T) {

	t.Run("should submit the full record with only roles changed", func(t *testing.T) {
		server := almatest.NewServer("production")
		defer server.Close()
		server.PutUser(alma.User{"primary_id": "x"})
		client := newClient(t, server)

		target := alma.User{"primary_id": "x"}
		err := client.UpdateRoles([]interface{}{map[string]interface{}{"role": "test"}}, target)
		require.Nil(t, err)

		requests := server.Requests()
		require.Len(t, requests, 1)
		assert.Equal(t, http.MethodPut, requests[0].Method)
		assert.Equal(t, "users/x", requests[0].Path)
		assert.JSONEq(t, `{"primary_id": "x", "user_role": [{"role": "test"}]}`, string(requests[0].Body))

		assert.NotContains(t, target, "user_role", "caller's record should not be mutated")
	})

	t.Run("should keep every other field", func(t *testing.T) {
		server := almatest.NewServer("production")
		defer server.Close()
		server.PutUser(alma.User{"primary_id": "kerb@mit.edu"})
		client := newClient(t, server)

		target := alma.User{
			"primary_id": "kerb@mit.edu",
			"first_name": "John",
			"user_role":  []interface{}{map[string]interface{}{"role": "old"}},
			"user_group": map[string]interface{}{"value": "FACULTY"},
		}
		err := client.UpdateRoles([]interface{}{map[string]interface{}{"role": "new"}}, target)
		require.Nil(t, err)

		req := server.Requests()[0]
		assert.Equal(t, "users/kerb%40mit.edu", req.Path)
		assert.JSONEq(t, `{
			"primary_id": "kerb@mit.edu",
			"first_name": "John",
			"user_role": [{"role": "new"}],
			"user_group": {"value": "FACULTY"}
		}`, string(req.Body))
	})

	t.Run("should send an empty role list rather than null", func(t *testing.T) {
		server := almatest.NewServer("production")
		defer server.Close()
		server.PutUser(alma.User{"primary_id": "x"})
		client := newClient(t, server)

		err := client.UpdateRoles(nil, alma.User{"primary_id": "x"})
		require.Nil(t, err)
		assert.JSONEq(t, `{"primary_id": "x", "user_role": []}`, string(server.Requests()[0].Body))
	})

	t.Run("should reject a record without a primary id", func(t *testing.T) {
		server := almatest.NewServer("production")
		defer server.Close()
		client := newClient(t, server)

		err := client.UpdateRoles([]interface{}{}, alma.User{"first_name": "John"})
		assert.True(t, errors.Is(err, apperrors.ErrMissingPrimaryID))
		assert.Empty(t, server.Requests())
	})

	t.Run("should surface a failed write", func(t *testing.T) {
		server := almatest.NewServer("production")
		defer server.Close()
		server.PutUser(alma.User{"primary_id": "x"})
		server.Fail(http.MethodPut, "users/x", http.StatusBadRequest, `{"errorsExist":true}`)
		client := newClient(t, server)

		err := client.UpdateRoles([]interface{}{}, alma.User{"primary_id": "x"})
		assert.Equal(t, http.StatusBadRequest, apperrors.HTTPCodeForError(err))
		assert.Equal(t, `{"errorsExist":true}`, err.(*apperrors.StatusError).Body())
	})
}

func TestCreateUser(t *testing.T) {

	t.Run("should post the record unchanged", func(t *testing.T) {
		server := almatest.NewServer("sandbox")
		defer server.Close()
		client := newClient(t, server)

		err := client.CreateUser(userRecord)
		require.Nil(t, err)

		requests := server.Requests()
		require.Len(t, requests, 1)
		assert.Equal(t, http.MethodPost, requests[0].Method)
		assert.Equal(t, "users/", requests[0].Path)

		body, err := requests[0].JSON()
		require.Nil(t, err)
		assert.Equal(t, "johns", body["primary_id"])
		assert.Equal(t, "The best cataloger", body["job_description"])
		assert.Len(t, body["user_role"], 1)

		_, stored := server.User("johns")
		assert.True(t, stored)
	})

	t.Run("should surface a rejected create", func(t *testing.T) {
		server := almatest.NewServer("sandbox")
		defer server.Close()
		server.PutUser(alma.User{"primary_id": "johns"})
		client := newClient(t, server)

		err := client.CreateUser(userRecord)
		assert.True(t, apperrors.IsRemoteRequest(err))
		assert.Equal(t, http.StatusBadRequest, apperrors.HTTPCodeForError(err))
	})
}

func TestEnvironment(t *testing.T) {

	tests := []struct {
		name        string
		environment string
		exp         alma.Environment
	}{
		{name: "production", environment: "production", exp: alma.Production},
		{name: "sandbox", environment: "sandbox", exp: alma.Sandbox},
		{name: "case is preserved", environment: "PRODUCTION", exp: alma.Environment("PRODUCTION")},
		{name: "unknown values are returned as is", environment: "test", exp: alma.Environment("test")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := almatest.NewServer(tt.environment)
			defer server.Close()
			client := newClient(t, server)

			env, err := client.Environment()
			require.Nil(t, err)
			assert.Equal(t, tt.exp, env)
			assert.Equal(t, "conf/general", server.Requests()[0].Path)
		})
	}

	t.Run("should surface a rejected key", func(t *testing.T) {
		server := almatest.NewServer("production")
		defer server.Close()
		server.Fail(http.MethodGet, "conf/general", http.StatusUnauthorized, "unauthorized")
		client := newClient(t, server)

		_, err := client.Environment()
		assert.Equal(t, http.StatusUnauthorized, apperrors.HTTPCodeForError(err))
	})
}

type timeoutClient struct{}

func (timeoutClient) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("context deadline exceeded (Client.Timeout exceeded while awaiting headers)")
}

func TestTransportFailure(t *testing.T) {
	client, err := alma.NewClient(alma.NewClientInput{
		APIKey:     "key",
		Timeout:    time.Second,
		HTTPClient: timeoutClient{},
	})
	require.Nil(t, err)

	_, err = client.Environment()
	require.NotNil(t, err)
	assert.False(t, apperrors.IsRemoteRequest(err))
	assert.Equal(t, apperrors.ExitFailure, apperrors.ExitCodeForError(err))
	assert.Contains(t, err.Error(), "GET conf/general failed")
}

var userRecord = alma.User{
	"link":            "",
	"record_type":     map[string]interface{}{"value": "STAFF"},
	"primary_id":      "johns",
	"first_name":      "John",
	"last_name":       "Smith",
	"job_category":    map[string]interface{}{"value": "Cataloger"},
	"job_description": "The best cataloger",
	"user_group":      map[string]interface{}{"value": "FACULTY"},
	"status":          map[string]interface{}{"value": "ACTIVE"},
	"contact_info": map[string]interface{}{
		"email": []interface{}{
			map[string]interface{}{
				"preferred":     "true",
				"email_address": "johns@mylib.org",
				"email_type":    []interface{}{map[string]interface{}{"value": "personal"}},
			},
		},
	},
	"user_role": []interface{}{
		map[string]interface{}{
			"status":    map[string]interface{}{"value": "NEW"},
			"scope":     map[string]interface{}{"value": ""},
			"role_type": map[string]interface{}{"value": "200"},
			"parameter": []interface{}{
				map[string]interface{}{"value": map[string]interface{}{"value": "CircDeskOp"}},
			},
		},
	},
}
