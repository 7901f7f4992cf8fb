package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/geoassist/server/internal/assistant/model"
	"github.com/geoassist/server/internal/assistant/observe"
	errx "github.com/geoassist/server/internal/core/error"
	logx "github.com/geoassist/server/pkg/logger"
)

// State is the controller's position in the per-question chain. There is no
// observable terminal state: whether a question ended in an answer or a
// failure is reported through the appended transcript entry and the question
// metric, and the controller is back at Idle before Ask returns.
type State string

const (
	StateIdle        State = "idle"
	StateTranslating State = "translating"
	StateQuerying    State = "querying"
)

// ErrBusy is returned when a question is submitted while another chain is
// still in flight. The single-flight guard, not the caller's UI, is what
// prevents concurrent chains.
var ErrBusy = errors.New("a question is already being processed")

// Translator is the translation surface the controller drives.
type Translator interface {
	Translate(ctx context.Context, credential, question string, dataset *model.Dataset) (model.QueryParams, error)
}

// Executor is the feature-query surface the controller drives.
type Executor interface {
	Execute(ctx context.Context, dataset *model.Dataset, params model.QueryParams) ([]model.Feature, error)
}

type Config struct {
	// SessionID keys the persisted transcript; generated when empty.
	SessionID  string
	Translator Translator
	Executor   Executor
	Transcript model.TranscriptRepository
	Credential model.CredentialStore

	// OnCredentialRequired fires when a question arrives with no credential
	// configured; the question is dropped without any state change.
	OnCredentialRequired func()
}

// Controller sequences translate → execute per user question, owns the
// append-only transcript and the latest result set, and converts every
// failure into exactly one error-flagged transcript entry.
type Controller struct {
	id                   string
	translator           Translator
	executor             Executor
	transcript           model.TranscriptRepository
	credentialStore      model.CredentialStore
	onCredentialRequired func()

	busy atomic.Bool

	mu           sync.Mutex
	state        State
	dataset      *model.Dataset
	features     []model.Feature
	currentQuery *model.QueryParams
	queryText    string
	selected     int
	credential   string
}

// New builds a controller and reads any persisted credential.
func New(ctx context.Context, cfg Config) (*Controller, error) {
	if cfg.Translator == nil {
		return nil, fmt.Errorf("translator is nil")
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("executor is nil")
	}
	if cfg.Transcript == nil {
		return nil, fmt.Errorf("transcript repo is nil")
	}

	id := cfg.SessionID
	if id == "" {
		id = uuid.NewString()
	}

	c := &Controller{
		id:                   id,
		translator:           cfg.Translator,
		executor:             cfg.Executor,
		transcript:           cfg.Transcript,
		credentialStore:      cfg.Credential,
		onCredentialRequired: cfg.OnCredentialRequired,
		state:                StateIdle,
		selected:             -1,
	}

	if cfg.Credential != nil {
		cred, err := cfg.Credential.Load(ctx)
		if err != nil {
			return nil, err
		}
		c.credential = cred
	}

	return c, nil
}

// SessionID returns the identifier keying this controller's transcript.
func (c *Controller) SessionID() string {
	return c.id
}

// Busy reports whether a translate-then-execute chain is in flight.
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

// State returns the controller's current position in the question chain.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetQueryText stages question text, mirroring an input field.
func (c *Controller) SetQueryText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queryText = text
}

// Ask runs one question through the full chain. A blank question, a missing
// dataset selection or a missing credential is a silent no-op (the last one
// fires the credential side channel instead). Translation and execution
// failures are absorbed into an error-flagged transcript entry; only
// infrastructure failures (transcript persistence) and ErrBusy surface.
func (c *Controller) Ask(ctx context.Context, question string) error {
	c.mu.Lock()
	if question == "" {
		question = c.queryText
	}
	question = strings.TrimSpace(question)
	dataset := c.dataset
	credential := c.credential
	c.mu.Unlock()

	if question == "" || dataset == nil {
		observe.ObserveQuestion("rejected")
		return nil
	}
	if credential == "" {
		observe.ObserveQuestion("rejected")
		if c.onCredentialRequired != nil {
			c.onCredentialRequired()
		}
		return nil
	}

	if !c.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer c.busy.Store(false)

	c.mu.Lock()
	c.queryText = ""
	c.selected = -1
	c.state = StateTranslating
	c.mu.Unlock()
	defer c.setState(StateIdle)

	if err := c.transcript.Append(ctx, c.id, model.UserMessage(question)); err != nil {
		return err
	}

	logx.Info().
		Str("component", "session").
		Str("session", c.id).
		Str("dataset", dataset.ID).
		Msg("translating question")

	params, err := c.translator.Translate(ctx, credential, question, dataset)
	if err != nil {
		return c.fail(ctx, err)
	}

	c.mu.Lock()
	c.currentQuery = &params
	c.state = StateQuerying
	c.mu.Unlock()

	features, err := c.executor.Execute(ctx, dataset, params)
	if err != nil {
		return c.fail(ctx, err)
	}

	c.mu.Lock()
	c.features = features
	c.mu.Unlock()

	summary := params.Summary
	if len(features) > 0 {
		plural := "s"
		if len(features) == 1 {
			plural = ""
		}
		summary = fmt.Sprintf("%s — Found %d result%s.", params.Summary, len(features), plural)
	} else {
		summary = params.Summary + " — No results found. Try broadening your search."
	}

	if err := c.transcript.Append(ctx, c.id, model.AssistantMessage(summary, len(features), &params)); err != nil {
		return err
	}

	observe.ObserveQuestion("done")
	logx.Info().
		Str("component", "session").
		Str("session", c.id).
		Int("results", len(features)).
		Msg("question answered")
	return nil
}

// fail converts a chain failure into exactly one error-flagged transcript
// entry. The failure itself is absorbed so the session survives.
func (c *Controller) fail(ctx context.Context, cause error) error {
	observe.ObserveQuestion("failed")
	logx.Warn().
		Err(cause).
		Str("component", "session").
		Str("session", c.id).
		Str("kind", string(errx.KindOf(cause))).
		Msg("question failed")

	if err := c.transcript.Append(ctx, c.id, model.ErrorMessage(errx.UserMessage(cause))); err != nil {
		return err
	}
	return nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// SelectDataset switches the active dataset and clears transcript, result
// set, current query and staged question text unconditionally.
func (c *Controller) SelectDataset(ctx context.Context, dataset *model.Dataset) error {
	if err := c.clear(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	c.dataset = dataset
	c.mu.Unlock()
	return nil
}

// Reset navigates back to dataset selection, dropping all session state.
func (c *Controller) Reset(ctx context.Context) error {
	if err := c.clear(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	c.dataset = nil
	c.mu.Unlock()
	return nil
}

func (c *Controller) clear(ctx context.Context) error {
	if err := c.transcript.Clear(ctx, c.id); err != nil {
		return err
	}
	c.mu.Lock()
	c.features = nil
	c.currentQuery = nil
	c.queryText = ""
	c.selected = -1
	c.mu.Unlock()
	return nil
}

// Transcript loads the persisted transcript for this session.
func (c *Controller) Transcript(ctx context.Context) (*model.Transcript, error) {
	return c.transcript.Load(ctx, c.id)
}

// Dataset returns the currently selected dataset, or nil.
func (c *Controller) Dataset() *model.Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dataset
}

// Features returns the latest result set, or nil when no query has run.
func (c *Controller) Features() []model.Feature {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.features
}

// CurrentQuery returns the query attached to the latest answered question.
func (c *Controller) CurrentQuery() *model.QueryParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentQuery
}

// SelectResult highlights one feature of the latest result set for the
// rendering collaborators. Out-of-range indexes clear the selection.
func (c *Controller) SelectResult(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.features) {
		c.selected = -1
		return
	}
	c.selected = index
}

// SelectedResult returns the highlighted feature index, or -1.
func (c *Controller) SelectedResult() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// SaveCredential persists the API credential and makes it effective for
// subsequent questions.
func (c *Controller) SaveCredential(ctx context.Context, credential string) error {
	if c.credentialStore != nil {
		if err := c.credentialStore.Save(ctx, credential); err != nil {
			return err
		}
	}
	c.mu.Lock()
	c.credential = credential
	c.mu.Unlock()
	return nil
}

// HasCredential reports whether a credential is configured.
func (c *Controller) HasCredential() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.credential != ""
}
