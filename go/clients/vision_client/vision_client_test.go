package vision_client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadLetters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, MessagesEndpoint, r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get(APIKeyHeader))
		require.Equal(t, APIVersion, r.Header.Get(VersionHeader))

		var req messageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, DefaultModel, req.Model)
		require.Len(t, req.Messages, 1)
		require.Equal(t, "Zm9v", req.Messages[0].Content[0].Source.Data)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":" f-e s!t "}]}`))
	}))
	defer srv.Close()

	c := NewVisionClient("test-key")
	c.SetBaseURL(srv.URL)

	letters, raw, err := c.ReadLetters(context.Background(), "Zm9v")
	require.NoError(t, err)
	require.Equal(t, "F-E S!T", raw)
	require.Equal(t, "FEST", letters)
}

func TestReadLettersAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewVisionClient("test-key")
	c.SetBaseURL(srv.URL)

	_, _, err := c.ReadLetters(context.Background(), "Zm9v")
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
}

func TestReadLettersEmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	c := NewVisionClient("test-key")
	c.SetBaseURL(srv.URL)

	_, _, err := c.ReadLetters(context.Background(), "Zm9v")
	require.Error(t, err)
}

func TestFilterLetters(t *testing.T) {
	require.Equal(t, "FESTIVAL", FilterLetters("FESTIVAL"))
	require.Equal(t, "FEST", FilterLetters("F E*S?T"))
	require.Equal(t, "", FilterLetters("NBZ"))
	require.Equal(t, "", FilterLetters(""))
}
