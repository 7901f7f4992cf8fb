package translate

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/geoassist/server/internal/assistant/model"
	"github.com/geoassist/server/internal/assistant/observe"
	"github.com/geoassist/server/internal/assistant/parsers"
	"github.com/geoassist/server/internal/assistant/prompts"
	errx "github.com/geoassist/server/internal/core/error"
	logx "github.com/geoassist/server/pkg/logger"
)

// Completer is the single-turn completion surface the translator needs from
// the LLM client.
type Completer interface {
	Complete(ctx context.Context, credential, system, user string) (string, error)
}

// Translator turns a free-text question into validated QueryParams via one
// language-model round trip. Stateless across calls apart from a transient
// loading flag; no retries.
type Translator struct {
	completer Completer
	loading   atomic.Bool
}

func New(completer Completer) *Translator {
	return &Translator{completer: completer}
}

// Loading reports whether a translation round trip is in flight.
func (t *Translator) Loading() bool {
	return t.loading.Load()
}

// Translate sends the question with the dataset's field hints to the model,
// strips any code fences from the reply, parses it as JSON and normalizes
// the result. Failure classes: a service error from the transport layer, or
// a malformed-response error when the reply is not a JSON object.
func (t *Translator) Translate(ctx context.Context, credential, question string, dataset *model.Dataset) (model.QueryParams, error) {
	t.loading.Store(true)
	defer t.loading.Store(false)

	start := time.Now()
	params, err := t.translate(ctx, credential, question, dataset)
	observe.ObserveTranslation(start, err)
	return params, err
}

func (t *Translator) translate(ctx context.Context, credential, question string, dataset *model.Dataset) (model.QueryParams, error) {
	user, err := prompts.RenderUser(question, dataset)
	if err != nil {
		return model.QueryParams{}, err
	}

	text, err := t.completer.Complete(ctx, credential, prompts.System(), user)
	if err != nil {
		return model.QueryParams{}, err
	}

	cleaned := StripFences(text)

	var raw any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		logx.Warn().
			Str("component", "translator").
			Str("dataset", dataset.ID).
			Str("reply", snippet(cleaned)).
			Msg("model reply is not valid JSON")
		return model.QueryParams{}, errx.Malformed(err)
	}

	params, err := parsers.ParseQueryParams(raw)
	if err != nil {
		return model.QueryParams{}, err
	}

	logx.Debug().
		Str("component", "translator").
		Str("dataset", dataset.ID).
		Str("where", params.Where).
		Int("resultRecordCount", params.ResultRecordCount).
		Msg("question translated")
	return params, nil
}

// StripFences removes ```json / ``` code-fence markers and surrounding
// whitespace from a model reply so fenced and bare JSON parse identically.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

const maxErrSnippet = 200

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
