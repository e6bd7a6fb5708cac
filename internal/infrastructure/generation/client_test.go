package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tryon-bot/internal/domain/entity"
)

func TestClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req tryOnRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "person", req.PersonImage)
		require.Equal(t, "cloth", req.ClothImage)
		require.True(t, req.PreserveFace)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"result_image": "QUJD",
			"metadata":     map[string]any{"face_preserved": true},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second, nil)
	out, err := c.Generate(context.Background(), entity.GenerationRequest{
		PersonImage:  "person",
		GarmentImage: "cloth",
		PreserveFace: true,
	})
	require.NoError(t, err)
	require.Equal(t, "data:image/png;base64,QUJD", out)
}

func TestClient_Generate_KeepsHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result_image": "data:image/jpeg;base64,QUJD"}`))
	}))
	defer srv.Close()

	out, err := NewClient(srv.URL, "", time.Second, nil).Generate(context.Background(), entity.GenerationRequest{})
	require.NoError(t, err)
	require.Equal(t, "data:image/jpeg;base64,QUJD", out)
}

func TestClient_Generate_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fail":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "/empty":
			_, _ = w.Write([]byte(`{"metadata": {}}`))
		case "/refused":
			_, _ = w.Write([]byte(`{"error": "nsfw"}`))
		default:
			_, _ = w.Write([]byte(`<html>`))
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	_, err := NewClient(srv.URL+"/fail", "", time.Second, nil).Generate(ctx, entity.GenerationRequest{})
	require.ErrorIs(t, err, entity.ErrGenerationFailed)

	_, err = NewClient(srv.URL+"/empty", "", time.Second, nil).Generate(ctx, entity.GenerationRequest{})
	require.ErrorIs(t, err, entity.ErrMalformedResponse)

	_, err = NewClient(srv.URL+"/refused", "", time.Second, nil).Generate(ctx, entity.GenerationRequest{})
	require.ErrorIs(t, err, entity.ErrGenerationFailed)

	_, err = NewClient(srv.URL+"/html", "", time.Second, nil).Generate(ctx, entity.GenerationRequest{})
	require.ErrorIs(t, err, entity.ErrMalformedResponse)

	_, err = NewClient("", "", time.Second, nil).Generate(ctx, entity.GenerationRequest{})
	require.ErrorIs(t, err, entity.ErrCapabilityUnavailable)
}
