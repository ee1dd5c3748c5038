package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID          int64  `json:"id"`
	Description string `json:"descricao"`
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(Config{BaseURL: srv.URL, HTTPClient: srv.Client()}, nil)
	require.NoError(t, err)
	return client, srv
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{}, nil)
	require.Error(t, err)
	_, err = New(Config{BaseURL: "not-a-url"}, nil)
	require.Error(t, err)
}

func TestFetchIntoPopulatesSink(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/temas/2", r.URL.Path)
		assert.Equal(t, "tok-123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(record{ID: 2, Description: "Tech"})
	}))

	var sink record
	err := client.FetchInto(context.Background(), "/temas/2", &sink, WithAuthorization("tok-123"))
	require.NoError(t, err)
	assert.Equal(t, record{ID: 2, Description: "Tech"}, sink)
}

func TestFetchIntoCollection(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]record{{ID: 1, Description: "a"}, {ID: 2, Description: "b"}})
	}))

	var sink []record
	require.NoError(t, client.FetchInto(context.Background(), "/temas", &sink))
	assert.Len(t, sink, 2)
}

func TestFetchIntoLeavesSinkOnFailure(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	sink := record{ID: 99, Description: "unchanged"}
	err := client.FetchInto(context.Background(), "/temas/1", &sink)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 401, StatusOf(err))
	assert.Equal(t, record{ID: 99, Description: "unchanged"}, sink)
}

func TestCreateIntoSerializesBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var in record
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		in.ID = 7
		_ = json.NewEncoder(w).Encode(in)
	}))

	var sink record
	err := client.CreateInto(context.Background(), "/temas", record{Description: "new"}, &sink)
	require.NoError(t, err)
	assert.Equal(t, int64(7), sink.ID)
}

func TestUpdateIntoUsesPut(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var in record
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(in)
	}))

	var sink record
	err := client.UpdateInto(context.Background(), "/temas", record{ID: 2, Description: "edit"}, &sink)
	require.NoError(t, err)
	assert.Equal(t, "edit", sink.Description)
}

func TestDelete(t *testing.T) {
	var method, path string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.Delete(context.Background(), "/postagens/5"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/postagens/5", path)
}

func TestNetworkFailureUsesSentinelStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := New(Config{BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	srv.Close()

	var sink record
	err = client.FetchInto(context.Background(), "/temas", &sink)
	require.Error(t, err)
	assert.Equal(t, StatusNetwork, StatusOf(err))
	assert.False(t, IsUnauthorized(err))
}

func TestStatusOfUnrelatedError(t *testing.T) {
	assert.Equal(t, StatusNetwork, StatusOf(context.Canceled))
}
