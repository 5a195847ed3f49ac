// Package credstore is a client for an encrypted credential store: it reads,
// writes and deletes named secrets whose values travel end-to-end encrypted
// between the application and the store.
//
// Every credential value crosses the wire as a JWE compact envelope
// (RSA-OAEP-256 key wrapping, A256GCM content encryption). Requests are
// sealed for the store's public key; responses are sealed for the caller's
// public key and opened with the caller's private key. The HTTP layer only
// carries opaque envelopes.
//
// # Key Features
//
//   - Read, write and delete of password, key and keyring credentials
//   - Envelope encryption with per-message content keys and nonces
//   - Basic authentication and namespace isolation on every request
//   - Typed helpers (Password, Key) and generic ReadAs / WriteAs
//   - Bindings from VCAP_SERVICES, .env, JSON/YAML files, Vault or AWS Secrets Manager
//   - Structured logging, observability hooks and metrics
//
// # Quick Start
//
// Load the binding the platform injected and read a credential:
//
//	binding, err := credstore.LoadBindingFromEnvironment("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := credstore.New(binding,
//	    credstore.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}),
//	    credstore.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	raw, err := client.Read(ctx, "orders", credstore.TypePassword, "db-password")
//
// Typed helpers decode the JSON for you:
//
//	password, err := client.ReadPassword(ctx, "orders", "db-password")
//	fmt.Println(password.Username)
//
// One-off calls can skip the Client:
//
//	raw, err := credstore.ReadCredential(ctx, binding, "orders", credstore.TypePassword, "db-password")
//
// # Binding
//
// A Binding holds the store URL, the basic-auth credentials and two keys:
// the caller's private key and the store's public key, both as bare base64
// PEM bodies. Bindings are plain values; nothing is read from global state
// once the Client is built.
//
// # Error Handling
//
// Failures keep their cause reachable through errors.Is and errors.As:
//
//	raw, err := client.Read(ctx, ns, credstore.TypePassword, name)
//	if err != nil {
//	    switch {
//	    case credstore.IsNotFound(err):
//	        // no such credential
//	    case credstore.IsConfigurationError(err):
//	        // fix the binding
//	    case credstore.IsCryptoError(err):
//	        // key mismatch or tampered envelope
//	    case credstore.IsTransportError(err):
//	        // store answered non-2xx or was unreachable
//	    }
//	}
//
// The client never retries. IsRetryableError tells callers that do whether
// a failure looks transient.
//
// # Concurrency
//
// A Client is immutable after New and safe for concurrent use. It starts no
// goroutines and holds no caches. Deadlines and cancellation come from the
// context and the http client passed in.
//
// # Testing
//
// NewTestClient starts an in-process store speaking the same protocol:
//
//	client, store := credstore.NewTestClient(t)
//	store.Put("ns", credstore.TypePassword, "db", credstore.Password{Name: "db", Value: "pw"})
//	password, err := client.ReadPassword(ctx, "ns", "db")
package credstore
