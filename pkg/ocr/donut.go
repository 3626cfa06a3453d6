package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

// CORDTaskPrompt is the decoder prompt of the CORD v2 receipt task.
const CORDTaskPrompt = "<s_cord-v2>"

// DonutClient calls a Donut inference endpoint over HTTP. It performs a
// single attempt per call.
type DonutClient struct {
	URL     string
	ModelID string
	Token   string
	client  *http.Client
	log     zerolog.Logger
}

// NewDonutClient returns a client for the endpoint at url.
func NewDonutClient(url, modelID, token string, timeout time.Duration, log zerolog.Logger) *DonutClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &DonutClient{
		URL:     url,
		ModelID: modelID,
		Token:   token,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

type donutRequest struct {
	Inputs     string          `json:"inputs"`
	Parameters donutParameters `json:"parameters"`
}

type donutParameters struct {
	TaskPrompt string `json:"task_prompt"`
	Model      string `json:"model,omitempty"`
	MaxLength  int    `json:"max_length"`
	NumBeams   int    `json:"num_beams"`
}

type donutOutput struct {
	GeneratedText string `json:"generated_text"`
}

// Infer encodes img as PNG, posts it with the CORD task prompt and returns
// the generated text.
func (c *DonutClient) Infer(ctx context.Context, img image.Image) (string, error) {
	var png bytes.Buffer
	if err := imaging.Encode(&png, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode page: %w", err)
	}
	payload, err := json.Marshal(donutRequest{
		Inputs: base64.StdEncoding.EncodeToString(png.Bytes()),
		Parameters: donutParameters{
			TaskPrompt: CORDTaskPrompt,
			Model:      c.ModelID,
			MaxLength:  512,
			NumBeams:   1,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("donut request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Error().Int("status", resp.StatusCode).Str("body", snippet(string(body), 300)).Msg("donut inference error")
		return "", fmt.Errorf("donut returned status %d", resp.StatusCode)
	}
	text, err := decodeDonutOutput(body)
	if err != nil {
		return "", err
	}
	c.log.Debug().Dur("duration", time.Since(start)).Int("chars", len(text)).Msg("donut inference ok")
	return text, nil
}

// decodeDonutOutput accepts {"generated_text": ...} or a list of such objects.
func decodeDonutOutput(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	var text string
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		var outs []donutOutput
		if err := json.Unmarshal(trimmed, &outs); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		if len(outs) > 0 {
			text = outs[0].GeneratedText
		}
	default:
		var out donutOutput
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
		text = out.GeneratedText
	}
	return text, nil
}
