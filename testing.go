package credstore

// This file provides an in-memory credential store speaking the real wire
// protocol, for tests and examples that should not reach a live store.

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hengadev/credstore/internal/envelope"
	"github.com/hengadev/credstore/internal/testkeys"
	"github.com/hengadev/credstore/internal/transport"
)

const (
	testUsername = "test-user"
	testPassword = "test-password"
)

// TestKeyPair is an RSA key pair as bare base64 PEM bodies.
type TestKeyPair struct {
	PrivateKey string
	PublicKey  string
}

// NewTestKeyPair generates a throwaway 2048-bit RSA key pair.
func NewTestKeyPair() (TestKeyPair, error) {
	pair, err := testkeys.Generate()
	if err != nil {
		return TestKeyPair{}, err
	}
	return TestKeyPair{PrivateKey: pair.PrivateKey, PublicKey: pair.PublicKey}, nil
}

// RecordedRequest is one request seen by a TestStore, with its body already
// decrypted.
type RecordedRequest struct {
	Method      string
	Type        string
	Name        string
	RawQuery    string
	Namespace   string
	ContentType string
	Body        json.RawMessage
}

// TestStore is an httptest server that behaves like the credential store:
// basic auth, namespace partitioning, JWE bodies in both directions.
type TestStore struct {
	server *httptest.Server

	// Client holds the key pair whose private half opens store responses.
	Client TestKeyPair
	// Server holds the key pair whose public half seals requests.
	Server TestKeyPair

	toClient *envelope.Encrypter
	fromCli  *envelope.Decrypter

	mu          sync.Mutex
	credentials map[string]json.RawMessage
	requests    []RecordedRequest
	failures    []int
}

// NewTestStore starts a store with fresh key pairs. Call Close when done.
func NewTestStore() (*TestStore, error) {
	clientKeys, err := NewTestKeyPair()
	if err != nil {
		return nil, err
	}
	serverKeys, err := NewTestKeyPair()
	if err != nil {
		return nil, err
	}

	toClient, err := envelope.NewEncrypter(clientKeys.PublicKey)
	if err != nil {
		return nil, err
	}
	fromClient, err := envelope.NewDecrypter(serverKeys.PrivateKey)
	if err != nil {
		return nil, err
	}

	s := &TestStore{
		Client:      clientKeys,
		Server:      serverKeys,
		toClient:    toClient,
		fromCli:     fromClient,
		credentials: make(map[string]json.RawMessage),
	}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s, nil
}

// NewTestClient starts a TestStore and returns a Client bound to it. Both
// are torn down with the test.
func NewTestClient(t testing.TB, opts ...ClientOption) (*Client, *TestStore) {
	t.Helper()

	store, err := NewTestStore()
	if err != nil {
		t.Fatalf("start test store: %v", err)
	}
	t.Cleanup(store.Close)

	client, err := New(store.Binding(), opts...)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client, store
}

func (s *TestStore) URL() string {
	return s.server.URL
}

func (s *TestStore) Close() {
	s.server.Close()
}

// Binding returns a binding pointing at the store with the right keys.
func (s *TestStore) Binding() Binding {
	return Binding{
		URL:      s.server.URL,
		Username: testUsername,
		Password: testPassword,
		Encryption: Encryption{
			ClientPrivateKey: s.Client.PrivateKey,
			ServerPublicKey:  s.Server.PublicKey,
		},
	}
}

// Put seeds a credential.
func (s *TestStore) Put(namespace, credentialType, name string, credential any) error {
	raw, err := json.Marshal(credential)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.credentials[storeKey(namespace, credentialType, name)] = raw
	s.mu.Unlock()
	return nil
}

// Get returns a stored credential as the store holds it.
func (s *TestStore) Get(namespace, credentialType, name string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.credentials[storeKey(namespace, credentialType, name)]
	return raw, ok
}

// FailNext makes the next requests answer with the given statuses, in order.
func (s *TestStore) FailNext(statuses ...int) {
	s.mu.Lock()
	s.failures = append(s.failures, statuses...)
	s.mu.Unlock()
}

// Requests returns every request seen so far.
func (s *TestStore) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

func (s *TestStore) handle(w http.ResponseWriter, r *http.Request) {
	rec := RecordedRequest{
		Method:      r.Method,
		Type:        strings.TrimPrefix(r.URL.Path, "/"),
		Name:        r.URL.Query().Get("name"),
		RawQuery:    r.URL.RawQuery,
		Namespace:   r.Header.Get(transport.HeaderNamespace),
		ContentType: r.Header.Get(transport.HeaderContentType),
	}

	if r.Method == http.MethodPost {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		plaintext, err := s.fromCli.Decrypt(string(body))
		if err == nil {
			rec.Body = plaintext
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, rec)
	var forced int
	if len(s.failures) > 0 {
		forced, s.failures = s.failures[0], s.failures[1:]
	}
	s.mu.Unlock()

	if forced != 0 {
		w.WriteHeader(forced)
		return
	}

	if user, pass, ok := r.BasicAuth(); !ok || user != testUsername || pass != testPassword {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if rec.Namespace == "" || rec.Type == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleRead(w, rec)
	case http.MethodPost:
		s.handleWrite(w, rec)
	case http.MethodDelete:
		s.handleDelete(w, rec)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *TestStore) handleRead(w http.ResponseWriter, rec RecordedRequest) {
	raw, ok := s.Get(rec.Namespace, rec.Type, rec.Name)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	s.respond(w, http.StatusOK, raw)
}

func (s *TestStore) handleWrite(w http.ResponseWriter, rec RecordedRequest) {
	if rec.ContentType != transport.ContentTypeJOSE {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		return
	}
	if rec.Body == nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var fields map[string]any
	if err := json.Unmarshal(rec.Body, &fields); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	name, _ := fields["name"].(string)
	if name == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.credentials[storeKey(rec.Namespace, rec.Type, name)] = rec.Body
	s.mu.Unlock()

	// The confirmation echoes the credential without its value.
	delete(fields, "value")
	fields["status"] = "created"
	confirmation, err := json.Marshal(fields)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	s.respond(w, http.StatusOK, confirmation)
}

func (s *TestStore) handleDelete(w http.ResponseWriter, rec RecordedRequest) {
	key := storeKey(rec.Namespace, rec.Type, rec.Name)
	s.mu.Lock()
	_, ok := s.credentials[key]
	delete(s.credentials, key)
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *TestStore) respond(w http.ResponseWriter, status int, plaintext []byte) {
	sealed, err := s.toClient.Encrypt(plaintext)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set(transport.HeaderContentType, transport.ContentTypeJOSE)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, sealed)
}

func storeKey(namespace, credentialType, name string) string {
	return fmt.Sprintf("%s\x00%s\x00%s", namespace, credentialType, name)
}
