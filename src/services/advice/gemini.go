package advice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrNoText means the model answered without usable text.
var ErrNoText = errors.New("model returned no text")

// Generator turns a prompt into free text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient calls the generateContent endpoint of a Gemini model.
type GeminiClient struct {
	Endpoint string
	Model    string
	APIKey   string
	HTTP     *http.Client
}

func NewGeminiClient(endpoint, model, apiKey string) *GeminiClient {
	return &GeminiClient{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Model:    model,
		APIKey:   apiKey,
		HTTP:     &http.Client{Timeout: 30 * time.Second},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate returns ErrNoText for non 200 answers and answers without a
// candidate; any other error is a transport failure.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	b, err := json.Marshal(geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}})
	if err != nil {
		return "", errors.Wrap(err, "encode prompt")
	}

	endpoint := fmt.Sprintf("%s/%s:generateContent?key=%s", g.Endpoint, g.Model, url.QueryEscape(g.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", errors.Wrap(err, "build gemini request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := g.HTTP.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "call gemini")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", errors.Wrapf(ErrNoText, "gemini returned status %s", res.Status)
	}

	var out geminiResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", errors.Wrap(ErrNoText, err.Error())
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoText
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
