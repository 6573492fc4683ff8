// Package genai wraps the hosted generative-AI endpoint used for document
// extraction and narrative insights. Requests carry a prompt plus optional
// inline document bytes with a declared MIME type; responses are free text.
package genai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// ErrUnavailable covers transport, auth, and server-side failures on the AI
// endpoint. Callers distinguish it from response-format problems, which are
// theirs to classify.
var ErrUnavailable = errors.New("genai: endpoint unavailable")

// Generator is the narrow surface the domain packages consume.
type Generator interface {
	// GenerateText sends a text-only prompt and returns the model's text.
	GenerateText(ctx context.Context, prompt string) (string, error)
	// GenerateFromDocument sends a prompt plus inline document bytes.
	GenerateFromDocument(ctx context.Context, prompt string, doc []byte, mimeType string) (string, error)
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type Client struct {
	http   *resty.Client
	model  string
	logger zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", cfg.APIKey)
	return &Client{http: http, model: cfg.Model, logger: logger}
}

type generatePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type generateRequest struct {
	Contents []struct {
		Parts []generatePart `json:"parts"`
	} `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, []generatePart{{Text: prompt}})
}

func (c *Client) GenerateFromDocument(ctx context.Context, prompt string, doc []byte, mimeType string) (string, error) {
	return c.generate(ctx, []generatePart{
		{Text: prompt},
		{InlineData: &inlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(doc),
		}},
	})
}

func (c *Client) generate(ctx context.Context, parts []generatePart) (string, error) {
	var req generateRequest
	req.Contents = append(req.Contents, struct {
		Parts []generatePart `json:"parts"`
	}{Parts: parts})

	// SetResult only decodes 2xx bodies; SetError targets the same struct so
	// the API's error payload survives rejected requests too.
	var out generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", c.model))
	if err != nil {
		c.logger.Error().Err(err).Msg("genai request failed")
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		msg := resp.Status()
		if out.Error != nil {
			msg = out.Error.Message
		}
		c.logger.Error().Int("status", resp.StatusCode()).Str("message", msg).Msg("genai request rejected")
		return "", fmt.Errorf("%w: %s", ErrUnavailable, msg)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
