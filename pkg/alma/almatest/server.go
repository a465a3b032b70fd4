// Package almatest provides an in-process stand-in for the Alma users and
// configuration APIs.
package almatest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/alma-tools/copyroles/pkg/alma"
	"github.com/gorilla/mux"
)

// Root is the API root the server answers under
const Root = "/almaws/v1/"

// Request is a request the server received
type Request struct {
	Method string
	// Path is the escaped path relative to Root
	Path   string
	Header http.Header
	Body   []byte
}

// JSON decodes the request body
func (r Request) JSON() (map[string]interface{}, error) {
	var v map[string]interface{}
	err := json.Unmarshal(r.Body, &v)
	return v, err
}

type failure struct {
	status int
	body   string
}

// Server serves conf/general and the users resources from memory. It records
// every request it receives.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	environment string
	keys        map[string]string
	users       map[string]alma.User
	failures    map[string]failure
	requests    []Request
}

// NewServer starts a server reporting the given environment_type
func NewServer(environment string) *Server {
	s := &Server{
		environment: environment,
		keys:        map[string]string{},
		users:       map[string]alma.User{},
		failures:    map[string]failure{},
	}

	router := mux.NewRouter().UseEncodedPath()
	router.HandleFunc(Root+"conf/general", s.getConfiguration).Methods(http.MethodGet)
	router.HandleFunc(Root+"users/", s.createUser).Methods(http.MethodPost)
	router.HandleFunc(Root+"users/{primary_id}", s.getUser).Methods(http.MethodGet)
	router.HandleFunc(Root+"users/{primary_id}", s.updateUser).Methods(http.MethodPut)

	s.Server = httptest.NewServer(s.record(router))
	return s
}

// BaseURL is the address to configure a client with
func (s *Server) BaseURL() string {
	return s.URL + Root
}

// SetKeyEnvironment makes conf/general report environment for requests
// authorized with apiKey. Other keys get the server's default environment.
// Every key sees the same users.
func (s *Server) SetKeyEnvironment(apiKey string, environment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[apiKey] = environment
}

// PutUser stores a user record
func (s *Server) PutUser(user alma.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.PrimaryID()] = user
}

// User returns the stored record for a primary ID
func (s *Server) User(primaryID string) (alma.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[primaryID]
	return user, ok
}

// Fail makes every request for method and path (escaped, relative to Root)
// respond with status and body
func (s *Server) Fail(method string, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

// Requests returns the requests received so far, in order
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
		path := strings.TrimPrefix(r.URL.EscapedPath(), Root)

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		f, failing := s.failures[r.Method+" "+path]
		s.mu.Unlock()

		if failing {
			w.WriteHeader(f.status)
			io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getConfiguration(w http.ResponseWriter, r *http.Request) {
	apiKey := strings.TrimPrefix(r.Header.Get("Authorization"), "apikey ")
	s.mu.Lock()
	environment, ok := s.keys[apiKey]
	if !ok {
		environment = s.environment
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"environment_type": environment})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	primaryID, err := url.PathUnescape(mux.Vars(r)["primary_id"])
	if err != nil {
		http.Error(w, "bad primary id", http.StatusBadRequest)
		return
	}
	user, ok := s.User(primaryID)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	primaryID, err := url.PathUnescape(mux.Vars(r)["primary_id"])
	if err != nil {
		http.Error(w, "bad primary id", http.StatusBadRequest)
		return
	}
	if _, ok := s.User(primaryID); !ok {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "not found")
		return
	}
	user, err := decodeUser(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.users[primaryID] = user
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	user, err := decodeUser(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, exists := s.User(user.PrimaryID()); exists {
		http.Error(w, "user already exists", http.StatusBadRequest)
		return
	}
	s.PutUser(user)
	writeJSON(w, http.StatusOK, user)
}

func decodeUser(r io.Reader) (alma.User, error) {
	var user alma.User
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	err := decoder.Decode(&user)
	return user, err
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
