package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tryon-bot/internal/domain/entity"
)

func TestRemoteAnalyzer_Analyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req analyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.True(t, strings.HasPrefix(req.Image, "data:"))
		require.NotEmpty(t, req.Prompt)

		_ = json.NewEncoder(w).Encode(analyzeResponse{
			Text: "```json\n{\"face_found\": true, \"bounding_box\": {\"x\": 0.3, \"y\": 0.2, \"width\": 0.4, \"height\": 0.5}, \"confidence\": 0.9}\n```",
		})
	}))
	defer srv.Close()

	a := NewRemoteAnalyzer(srv.URL, "secret", time.Second, nil)
	d := a.Analyze(context.Background(), []byte("\x89PNG\r\n\x1a\n"))
	require.True(t, d.Found(), d.Reason)
	require.Equal(t, 0.9, d.Region.Confidence)
}

func TestRemoteAnalyzer_PlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"face_found": false}`))
	}))
	defer srv.Close()

	d := NewRemoteAnalyzer(srv.URL, "", time.Second, nil).Analyze(context.Background(), []byte("img"))
	require.Equal(t, entity.DetectionNotFound, d.Kind)
}

func TestRemoteAnalyzer_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/error":
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		default:
			_, _ = w.Write([]byte(`{"text": "sorry, I can't help with that"}`))
		}
	}))
	defer srv.Close()

	d := NewRemoteAnalyzer(srv.URL+"/error", "", time.Second, nil).Analyze(context.Background(), []byte("img"))
	require.Equal(t, entity.DetectionNotFound, d.Kind)
	require.Contains(t, d.Reason, "503")

	d = NewRemoteAnalyzer(srv.URL+"/text", "", time.Second, nil).Analyze(context.Background(), []byte("img"))
	require.Equal(t, entity.DetectionMalformed, d.Kind)

	d = NewRemoteAnalyzer("", "", time.Second, nil).Analyze(context.Background(), []byte("img"))
	require.Equal(t, entity.DetectionNotFound, d.Kind)
}
