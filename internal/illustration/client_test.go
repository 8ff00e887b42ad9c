// Image API client tests in Chalkboard.

package illustration

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Minimal PNG header, enough for magic-byte sniffing.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func TestGenerateImageReturnsHostedURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"url":"https://img/x.png"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", logger)
	url, err := client.GenerateImage(ctx, "a red ball")

	assert.Nil(t, err)
	assert.Equal(t, "https://img/x.png", url)
}

func TestGenerateImageDecodesInlinePayload(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(pngHeader)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"b64_json":"` + encoded + `"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", logger)
	url, err := client.GenerateImage(ctx, "a red ball")

	assert.Nil(t, err)
	assert.Equal(t, "data:image/png;base64,"+encoded, url)
}

func TestGenerateImageRejectsNonImagePayload(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("definitely not an image"))
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"b64_json":"` + encoded + `"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", logger)
	_, err := client.GenerateImage(ctx, "a red ball")

	assert.NotNil(t, err)
}

func TestGenerateImageSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"prompt rejected"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", logger)
	_, err := client.GenerateImage(ctx, "a red ball")

	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "prompt rejected")
}

func TestGenerateImageEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", logger)
	_, err := client.GenerateImage(ctx, "a red ball")

	assert.NotNil(t, err)
}

func TestGenerateImageUnreachableAPI(t *testing.T) {
	client := NewClient("http://127.0.0.1:1/v1/images/generations", "test-key", logger)
	_, err := client.GenerateImage(ctx, "a red ball")

	assert.NotNil(t, err)
}
