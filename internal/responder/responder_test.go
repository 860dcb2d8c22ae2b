// ABOUTME: Tests for the remote responder client
// ABOUTME: Covers the wire contract, status handling, and the missing-reply case

package responder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverse(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]string{"reply": "Debes renovarla cada 5 años."})
	}))
	defer srv.Close()

	c := New(srv.URL, 0, nil)
	reply, err := c.Converse(context.Background(), "¿Cómo renuevo mi licencia?")
	require.NoError(t, err)

	assert.Equal(t, "Debes renovarla cada 5 años.", reply)
	assert.Equal(t, map[string]string{"message": "¿Cómo renuevo mi licencia?"}, gotBody)
}

func TestConverse_MissingReplyField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	c := New(srv.URL, 0, nil)
	_, err := c.Converse(context.Background(), "hola")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoReply)
}

func TestConverse_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, 0, nil)
	_, err := c.Converse(context.Background(), "hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestConverse_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := New(srv.URL, 0, nil)
	_, err := c.Converse(context.Background(), "hola")
	require.Error(t, err)
}

func TestConverse_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // shut down before the call

	c := New(srv.URL, 0, nil)
	_, err := c.Converse(context.Background(), "hola")
	require.Error(t, err)
}

func TestConverse_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(srv.URL, 0, nil)
	_, err := c.Converse(ctx, "hola")
	require.Error(t, err)
}
