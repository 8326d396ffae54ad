package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/napatw/lingothai/internal/lesson"
)

func TestRemoteClientRoundTrip(t *testing.T) {
	var stored map[string][]byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path + "?" + r.URL.Query().Get("user_id")
		switch r.Method {
		case http.MethodPost:
			var body json.RawMessage
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if stored == nil {
				stored = make(map[string][]byte)
			}
			stored[key] = body
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			data, ok := stored[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(data)
		case http.MethodDelete:
			delete(stored, key)
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	client := NewRemoteClient(srv.URL, srv.Client())
	snap := snapshotFixture(2)
	ctx := context.Background()

	// Missing session reads as absent, not as an error.
	got, err := client.GetSession(ctx, snap.Key)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, client.PostSession(ctx, snap))

	got, err = client.GetSession(ctx, snap.Key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snap.Key, got.Key)
	assert.Equal(t, 2, got.CurrentIndex)
	assert.Len(t, got.Questions, 2)

	require.NoError(t, client.DeleteSession(ctx, snap.Key))

	got, err = client.GetSession(ctx, snap.Key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRemoteClientServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewRemoteClient(srv.URL, srv.Client())
	key := lesson.Key{LessonID: "th-greetings"}

	_, err := client.GetSession(context.Background(), key)
	assert.Error(t, err)
	assert.Error(t, client.PostSession(context.Background(), snapshotFixture(0)))
	assert.Error(t, client.DeleteSession(context.Background(), key))
}

func TestRemoteClientDeleteToleratesNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewRemoteClient(srv.URL, srv.Client())
	assert.NoError(t, client.DeleteSession(context.Background(), lesson.Key{LessonID: "x"}))
}
