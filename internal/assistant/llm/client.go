package llm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/geoassist/server/internal/assistant/model"
	errx "github.com/geoassist/server/internal/core/error"
	logx "github.com/geoassist/server/pkg/logger"
)

// Client issues single-turn completions through the Anthropic messages API.
// The credential is supplied per call and never stored.
type Client struct {
	cfg model.LLMConfig
	api anthropic.Client
}

func New(cfg model.LLMConfig) *Client {
	return &Client{
		cfg: cfg,
		api: anthropic.NewClient(
			option.WithBaseURL(cfg.BaseURL),
			option.WithHeader("anthropic-version", cfg.Version),
			option.WithHeader("anthropic-dangerous-direct-browser-access", "true"),
			option.WithRequestTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second),
			// One question, one round trip. Retrying is the caller's call.
			option.WithMaxRetries(0),
		),
	}
}

// Complete sends one user turn under the fixed system instruction and
// returns the text of the first content block. A non-success status maps to
// a service error carrying the provider's own message when present; a
// transport failure maps to a service error with a generic message so raw
// dial errors never reach a transcript.
func (c *Client) Complete(ctx context.Context, credential, system, user string) (string, error) {
	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: int64(c.cfg.MaxTokens),
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(user))},
	}, option.WithAPIKey(credential))
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			payload := payloadMessage(apierr.RawJSON())
			logx.Warn().
				Str("component", "llm_client").
				Int("status", apierr.StatusCode).
				Str("message", payload).
				Msg("llm request failed")
			return "", errx.Service(err, apierr.StatusCode, payload)
		}
		logx.Warn().
			Err(err).
			Str("component", "llm_client").
			Msg("llm endpoint unreachable")
		return "", errx.Service(err, 0, errx.AIUnreachableMessage)
	}

	if len(msg.Content) == 0 {
		return "", nil
	}
	return msg.Content[0].Text, nil
}

// payloadMessage pulls the human-readable message out of an API error body,
// or returns "" when the body carries none.
func payloadMessage(raw string) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal([]byte(raw), &body) != nil {
		return ""
	}
	return body.Error.Message
}
