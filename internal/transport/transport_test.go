package transport

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hengadev/credstore/internal/storeerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHeaders(t *testing.T) {
	extra := http.Header{}
	extra.Set(HeaderContentType, ContentTypeJOSE)
	extra.Set(HeaderNamespace, "spoofed")
	extra.Set(HeaderAuthorization, "Bearer spoofed")

	headers := BuildHeaders("user", "p@ss:word", "com.example.app", extra)

	expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("user:p@ss:word"))
	assert.Equal(t, expected, headers.Get(HeaderAuthorization))
	assert.Equal(t, "com.example.app", headers.Get(HeaderNamespace))
	assert.Equal(t, ContentTypeJOSE, headers.Get(HeaderContentType))
	assert.Len(t, headers.Values(HeaderNamespace), 1)
	assert.Len(t, headers.Values(HeaderAuthorization), 1)

	// extra is left untouched
	assert.Equal(t, "spoofed", extra.Get(HeaderNamespace))
}

func TestBuildHeaders_NoExtra(t *testing.T) {
	headers := BuildHeaders("u", "p", "ns", nil)
	assert.Len(t, headers, 2)
}

func TestSend_Success(t *testing.T) {
	var gotMethod, gotBody, gotNamespace, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotNamespace = r.Header.Get(HeaderNamespace)
		gotContentType = r.Header.Get(HeaderContentType)
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set(HeaderContentType, ContentTypeJOSE)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("a.b.c.d.e"))
	}))
	defer server.Close()

	extra := http.Header{}
	extra.Set(HeaderContentType, ContentTypeJOSE)
	headers := BuildHeaders("u", "p", "ns", extra)

	payload, err := Send(context.Background(), server.Client(), http.MethodPost, server.URL+"/password", headers, []byte("1.2.3.4.5"))
	require.NoError(t, err)
	assert.Equal(t, "a.b.c.d.e", string(payload))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "1.2.3.4.5", gotBody)
	assert.Equal(t, "ns", gotNamespace)
	assert.Equal(t, ContentTypeJOSE, gotContentType)
}

func TestSend_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantErr    bool
		wantStatus int
	}{
		{name: "ok", status: http.StatusOK},
		{name: "no content", status: http.StatusNoContent},
		{name: "created", status: http.StatusCreated},
		{name: "not found", status: http.StatusNotFound, wantErr: true, wantStatus: http.StatusNotFound},
		{name: "unauthorized", status: http.StatusUnauthorized, wantErr: true, wantStatus: http.StatusUnauthorized},
		{name: "conflict", status: http.StatusConflict, wantErr: true, wantStatus: http.StatusConflict},
		{name: "redirect not followed", status: http.StatusNotModified, wantErr: true, wantStatus: http.StatusNotModified},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set(HeaderContentType, "application/json")
				w.WriteHeader(tt.status)
				if tt.status != http.StatusNoContent && tt.status != http.StatusNotModified {
					w.Write([]byte(`{"error":"should not be parsed"}`))
				}
			}))
			defer server.Close()

			payload, err := Send(context.Background(), server.Client(), http.MethodGet, server.URL+"/password?name=x", nil, nil)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Nil(t, payload)
			var transportErr *storeerr.TransportError
			require.True(t, errors.As(err, &transportErr))
			assert.Equal(t, tt.wantStatus, transportErr.StatusCode)
			assert.NotContains(t, transportErr.URL, "name=x")
			assert.NotContains(t, err.Error(), "should not be parsed")
		})
	}
}

func TestSend_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := Send(context.Background(), http.DefaultClient, http.MethodDelete, url+"/password?name=x", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, storeerr.ErrStoreUnavailable)

	var transportErr *storeerr.TransportError
	assert.False(t, errors.As(err, &transportErr))
}

func TestSend_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Send(ctx, server.Client(), http.MethodGet, server.URL, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, storeerr.ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSend_InvalidURL(t *testing.T) {
	_, err := Send(context.Background(), http.DefaultClient, http.MethodGet, "://bad", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, storeerr.ErrStoreUnavailable)
}
