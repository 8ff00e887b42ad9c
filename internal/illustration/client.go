// Thin HTTP client for the external image-generation API.

package illustration

import (
	"Chalkboard/pkg/log"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/h2non/filetype"
)

// The external call gets one attempt with a hard bound,
// expiry is treated as a generation failure.
const clientTimeout = 30 * time.Second

// Client calls the external image-generation API.
// Kept as an interface so tests can inject a counting or failing fake.
type Client interface {
	// GenerateImage requests exactly one square image for the prompt and
	// returns a URL the portal can render.
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type imageAPIClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     log.Logger
}

// NewClient returns a client for the configured image API endpoint.
func NewClient(endpoint, apiKey string, logger log.Logger) Client {
	return &imageAPIClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
		logger: logger,
	}
}

// Request / response shapes of the external images endpoint.
type generationRequest struct {
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type generationResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *imageAPIClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	body, jsonerr := json.Marshal(generationRequest{
		Prompt: prompt,
		N:      1,
		Size:   "1024x1024",
	})
	if jsonerr != nil {
		return "", fmt.Errorf("couldn't encode generation request: %w", jsonerr)
	}

	req, reqerr := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if reqerr != nil {
		return "", fmt.Errorf("couldn't build generation request: %w", reqerr)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, callerr := c.httpClient.Do(req)
	if callerr != nil {
		c.logger.WithCtx(ctx).Error().Err(callerr).Msg("Image API call failed")
		return "", fmt.Errorf("image API unreachable: %w", callerr)
	}
	defer resp.Body.Close()

	var decoded generationResponse
	if decerr := json.NewDecoder(resp.Body).Decode(&decoded); decerr != nil {
		return "", fmt.Errorf("malformed image API response: %w", decerr)
	}
	if resp.StatusCode != http.StatusOK {
		if decoded.Error != nil && decoded.Error.Message != "" {
			return "", fmt.Errorf("image API error: %s", decoded.Error.Message)
		}
		return "", fmt.Errorf("image API returned status %d", resp.StatusCode)
	}
	if len(decoded.Data) == 0 {
		return "", fmt.Errorf("image API returned no image")
	}

	generated := decoded.Data[0]
	if generated.URL != "" {
		return generated.URL, nil
	}
	if generated.B64JSON != "" {
		return c.decodeInlineImage(ctx, generated.B64JSON)
	}
	return "", fmt.Errorf("image API returned an empty image entry")
}

// decodeInlineImage turns a base64 payload into a data URL the portal can
// put straight into an img tag. The payload is sniffed first, anything that
// isn't an image counts as a malformed response.
func (c *imageAPIClient) decodeInlineImage(ctx context.Context, b64 string) (string, error) {
	raw, decerr := base64.StdEncoding.DecodeString(b64)
	if decerr != nil {
		return "", fmt.Errorf("couldn't decode inline image payload: %w", decerr)
	}
	if !filetype.IsImage(raw) {
		c.logger.WithCtx(ctx).Error().Msg("Image API inline payload is not an image")
		return "", fmt.Errorf("image API inline payload is not an image")
	}
	kind, matcherr := filetype.Match(raw)
	if matcherr != nil {
		return "", fmt.Errorf("couldn't sniff inline image payload: %w", matcherr)
	}
	return fmt.Sprintf("data:%s;base64,%s", kind.MIME.Value, b64), nil
}
