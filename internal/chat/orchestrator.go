// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/hisassist/internal/classify"
	"github.com/jeranaias/hisassist/internal/config"
	"github.com/jeranaias/hisassist/internal/llm"
	"github.com/jeranaias/hisassist/internal/normalize"
	"github.com/jeranaias/hisassist/internal/portal"
	"github.com/jeranaias/hisassist/internal/ratelimit"
	"github.com/jeranaias/hisassist/internal/routes"
	"github.com/jeranaias/hisassist/internal/session"
	"github.com/jeranaias/hisassist/internal/tool"
	"github.com/jeranaias/hisassist/internal/util"
)

// =============================================================================
// SERVICES
// =============================================================================

// Services are the host-portal collaborators the orchestrator binds to.
type Services struct {
	Auth      portal.Auth
	Theme     portal.Theme
	Navigator portal.Navigator

	// RouteTree is the host application's static route tree; AppRoot is
	// its shared leading segment.
	RouteTree *routes.Route
	AppRoot   string
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// streamTimeout is the absolute cap on one streaming turn, retries
// included.
const streamTimeout = 2 * time.Minute

// Orchestrator is the assistant engine. Create one per embedding
// context with New and release it with Close. Safe for concurrent use.
type Orchestrator struct {
	logger      *zap.Logger
	services    Services
	catalog     *routes.Catalog
	executor    *tool.Executor
	idle        *session.Timer
	unsubscribe func()

	mu         sync.Mutex
	cfg        *config.Config
	client     *llm.Client
	classifier *classify.Classifier
	limiter    *ratelimit.Limiter
	messages   []*Message
	open       bool
	offline    bool
	hotline    string
	generating bool
	cancel     context.CancelFunc
	inflight   chan struct{}

	// typingDelay simulates a human pause before canned replies.
	// Replaced in tests.
	typingDelay func(runes int) time.Duration

	healthStop chan struct{}
	healthKick chan struct{}
	closeOnce  sync.Once
}

// New creates an orchestrator over the host services. A nil logger
// disables logging.
func New(cfg *config.Config, svc Services, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &Orchestrator{
		logger:     logger,
		services:   svc,
		cfg:        cfg,
		hotline:    cfg.Hotline,
		healthStop: make(chan struct{}),
		healthKick: make(chan struct{}, 1),
	}

	o.catalog = routes.NewCatalog(svc.RouteTree, svc.AppRoot, svc.Auth, 0)
	o.executor = tool.NewExecutor(svc.Navigator, svc.Theme, o.catalog, tool.DefaultConfig(), logger)
	o.idle = session.NewTimer(cfg.Session.IdleTimeout(), o.idleReset)
	o.applyLocked(cfg)

	o.typingDelay = func(runes int) time.Duration {
		o.mu.Lock()
		min, max := o.cfg.Typing.MinDelay(), o.cfg.Typing.MaxDelay()
		o.mu.Unlock()
		d := min + time.Duration(runes)*2*time.Millisecond
		if d > max {
			d = max
		}
		return d
	}

	// Route visibility follows login state; the transcript must not
	// survive a user change.
	o.unsubscribe = svc.Auth.Subscribe(func(loggedIn bool) {
		o.catalog.Invalidate()
		if !loggedIn {
			o.ResetChat()
		}
	})

	go o.healthLoop()
	return o
}

// applyLocked rebuilds config-derived collaborators; caller holds the
// lock (or owns o exclusively during construction).
func (o *Orchestrator) applyLocked(cfg *config.Config) {
	o.cfg = cfg
	o.client = llm.NewClient(llm.Config{
		BaseURL:     cfg.Gateway.BaseURL,
		Model:       cfg.Gateway.Model,
		Timeout:     cfg.Gateway.Timeout(),
		TokenSource: o.services.Auth.AccessToken,
	})
	o.classifier = classify.New(classify.Config{
		Hotline:       cfg.Hotline,
		MinInputRunes: cfg.Gate.MinInputRunes,
		Gate: classify.GateConfig{
			MaxCommandRunes:   cfg.Gate.MaxCommandRunes,
			MinWords:          cfg.Gate.MinWords,
			MinKeywordDensity: cfg.Gate.MinKeywordDensity,
		},
	})
	o.limiter = ratelimit.New(ratelimit.Config{
		Window:   cfg.Limits.Window(),
		Ceiling:  cfg.Limits.Ceiling,
		Cooldown: cfg.Limits.Cooldown(),
	})
}

// ApplyConfig swaps in a reloaded configuration. In-flight turns keep
// the collaborators they started with.
func (o *Orchestrator) ApplyConfig(cfg *config.Config) {
	o.mu.Lock()
	o.applyLocked(cfg)
	if o.hotline == "" {
		o.hotline = cfg.Hotline
	}
	o.mu.Unlock()

	select {
	case o.healthKick <- struct{}{}:
	default:
	}
}

// Close releases subscriptions, timers, and any in-flight request.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		if o.unsubscribe != nil {
			o.unsubscribe()
		}
		o.StopGeneration()
		o.idle.Stop()
		close(o.healthStop)
	})
}

// =============================================================================
// READ-ONLY SURFACE
// =============================================================================

// IsOpen reports whether the chat widget is open.
func (o *Orchestrator) IsOpen() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

// IsGenerating reports whether a turn is in flight.
func (o *Orchestrator) IsGenerating() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generating
}

// IsNavigating reports whether a tool navigation is pending.
func (o *Orchestrator) IsNavigating() bool {
	return o.executor.NavPending()
}

// IsOffline reports whether the gateway failed its last health check.
func (o *Orchestrator) IsOffline() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.offline
}

// Hotline returns the current IT hotline, as advertised by the gateway
// health endpoint or configured.
func (o *Orchestrator) Hotline() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hotline
}

// Messages returns a snapshot copy of the transcript.
func (o *Orchestrator) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Message, len(o.messages))
	for i, m := range o.messages {
		out[i] = *m
	}
	return out
}

// =============================================================================
// LIFECYCLE OPERATIONS
// =============================================================================

// ToggleChat opens or closes the widget. Opening an empty conversation
// seeds a welcome message and starts the idle countdown; closing stops
// it.
func (o *Orchestrator) ToggleChat() {
	o.mu.Lock()
	o.open = !o.open
	opened := o.open
	if opened && len(o.messages) == 0 {
		name := ""
		if u := o.services.Auth.CurrentUser(); u != nil {
			name = u.FullName
		}
		o.messages = append(o.messages, newMessage(RoleAssistant, welcomeMessage(name)))
	}
	o.mu.Unlock()

	if opened {
		o.idle.Touch()
	} else {
		o.idle.Stop()
	}
}

// ResetChat aborts any in-flight turn and clears the conversation and
// rate-limit state.
func (o *Orchestrator) ResetChat() {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
	}
	o.messages = nil
	o.limiter.Reset()
	open := o.open
	o.mu.Unlock()

	if open {
		o.idle.Touch()
	} else {
		o.idle.Stop()
	}
}

// StopGeneration aborts the in-flight request, if any. The partial
// content streamed so far is finalized.
func (o *Orchestrator) StopGeneration() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
}

// idleReset models the shared-workstation rule: walk away and the
// conversation resets and closes.
func (o *Orchestrator) idleReset() {
	o.logger.Info("idle timeout, resetting conversation")
	o.mu.Lock()
	o.open = false
	o.mu.Unlock()
	o.ResetChat()
}

// =============================================================================
// SEND
// =============================================================================

// SendMessage runs one conversation turn. Returns false when the input
// is empty after sanitization or a prior send is still in flight;
// every accepted send resolves to transcript mutations, never an error.
func (o *Orchestrator) SendMessage(text string) bool {
	text = sanitizeInput(text)
	if text == "" {
		return false
	}

	o.mu.Lock()
	if o.generating {
		o.mu.Unlock()
		o.logger.Debug("send rejected, turn in flight")
		return false
	}

	o.idle.Touch()

	// The throttling notice is a canned turn like any other: same
	// placeholder, same typing pacing.
	if d := o.limiter.Allow(time.Now()); !d.OK {
		lang := classify.DetectLanguage(text)
		retry := int(d.RetryAfter.Round(time.Second) / time.Second)
		o.messages = append(o.messages, newMessage(RoleUser, text))
		id := o.beginDirectLocked()
		o.mu.Unlock()
		go o.deliverDirect(id, throttleMessage(lang, retry))
		return true
	}

	o.messages = append(o.messages, newMessage(RoleUser, text))
	result := o.classifier.Classify(text)
	cfg := o.cfg

	// Canned and refused turns skip the network entirely.
	if result.Type == classify.TypeDirect || result.Type == classify.TypeBlocked {
		id := o.beginDirectLocked()
		o.mu.Unlock()
		go o.deliverDirect(id, result.Response)
		return true
	}

	// Password-change style requests navigate locally.
	if result.NavKey != "" {
		id := o.beginDirectLocked()
		o.mu.Unlock()
		go o.deliverLocalNav(id, result)
		return true
	}

	// Ambiguous navigation short-circuits with a candidate list.
	if result.Intent == classify.IntentNav {
		hits := o.catalog.FuzzyAll(normalize.Words(result.ExtractedCommand))
		if len(hits) > 1 {
			id := o.beginDirectLocked()
			o.mu.Unlock()
			go o.deliverDirect(id, disambiguationMessage(result.Language, hits))
			return true
		}
	}

	// A known-down gateway answers immediately instead of timing out.
	if o.offline {
		hotline := o.hotline
		id := o.beginDirectLocked()
		o.mu.Unlock()
		go o.deliverDirect(id, offlineMessage(result.Language, hotline))
		return true
	}

	// Full model turn.
	placeholder := newMessage(RoleAssistant, "")
	placeholder.IsStreaming = true
	o.messages = append(o.messages, placeholder)

	// Hard wall-clock cap: a stalled stream ends through the same
	// context path as a user cancel.
	ctx, cancel := context.WithTimeout(context.Background(), streamTimeout)
	o.beginTurnLocked(cancel)
	req := o.buildRequestLocked(result, cfg)
	client := o.client
	o.mu.Unlock()

	go o.stream(ctx, client, cfg, req, result, placeholder.ID)
	return true
}

// beginTurnLocked flips the single-flight flag; caller holds the lock.
func (o *Orchestrator) beginTurnLocked(cancel context.CancelFunc) {
	o.generating = true
	o.cancel = cancel
	o.inflight = make(chan struct{})
}

// beginDirectLocked starts a canned turn: appends the reply placeholder
// and flips the single-flight flag. The placeholder is finalized by ID,
// so a reset during the typing delay discards the reply with it. Caller
// holds the lock.
func (o *Orchestrator) beginDirectLocked() string {
	placeholder := newMessage(RoleAssistant, "")
	placeholder.IsStreaming = true
	o.messages = append(o.messages, placeholder)
	o.beginTurnLocked(nil)
	return placeholder.ID
}

// endTurn clears generation state and releases waiters.
func (o *Orchestrator) endTurn() {
	o.mu.Lock()
	o.generating = false
	cancel := o.cancel
	o.cancel = nil
	ch := o.inflight
	o.inflight = nil
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if ch != nil {
		close(ch)
	}
}

// waitTurn blocks until the in-flight turn ends. Test helper.
func (o *Orchestrator) waitTurn() {
	o.mu.Lock()
	ch := o.inflight
	o.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

// =============================================================================
// DIRECT DELIVERY
// =============================================================================

// deliverDirect resolves a canned turn's placeholder after a short
// typing pause. Finalization is by ID: if a reset removed the
// placeholder meanwhile, the reply is dropped with it.
func (o *Orchestrator) deliverDirect(id, content string) {
	defer o.endTurn()
	time.Sleep(o.typingDelay(len([]rune(content))))
	o.finalizeMessage(id, finalizeContent(content), false)
}

// deliverLocalNav executes a navigation decided without the model.
func (o *Orchestrator) deliverLocalNav(id string, result classify.Result) {
	defer o.endTurn()

	calls := []tool.Call{{Name: tool.NameNav, Args: llm.Args{"key": result.NavKey}}}
	replies := o.executor.Execute(calls, result.Language)
	content := strings.Join(replies, " ")

	time.Sleep(o.typingDelay(len([]rune(content))))
	o.finalizeMessage(id, finalizeContent(content), false)
}

// =============================================================================
// STREAMING TURN
// =============================================================================

// turnRequest is everything a streaming turn needs, captured at send
// time so a config reload cannot shear a turn in half.
type turnRequest struct {
	messages []llm.Message
	tools    []llm.Tool
	options  *llm.Options
}

// buildRequestLocked assembles the wire request: trimmed history, the
// intent system prompt, and tool schemas for nav/theme intents only.
// Caller holds the lock.
func (o *Orchestrator) buildRequestLocked(result classify.Result, cfg *config.Config) turnRequest {
	history := make([]llm.Message, 0, cfg.Stream.HistoryTurns+1)
	history = append(history, llm.NewSystemMessage(systemPrompt(result.Intent, cfg.Hotline)))

	// Most recent N non-system, non-empty turns, oldest first, each
	// individually length-capped.
	var recent []llm.Message
	for i := len(o.messages) - 1; i >= 0 && len(recent) < cfg.Stream.HistoryTurns; i-- {
		m := o.messages[i]
		if m.Role == RoleSystem || m.IsStreaming || strings.TrimSpace(m.Content) == "" {
			continue
		}
		recent = append(recent, llm.Message{
			Role:    m.Role,
			Content: util.TruncateRunesNoEllipsis(m.Content, cfg.Stream.HistoryTurnRunes),
		})
	}
	for i := len(recent) - 1; i >= 0; i-- {
		history = append(history, recent[i])
	}

	var schemas []llm.Tool
	switch result.Intent {
	case classify.IntentNav:
		schemas = []llm.Tool{tool.NavSchema(o.catalog.Routes()), tool.ThemeSchema()}
	case classify.IntentTheme:
		schemas = []llm.Tool{tool.ThemeSchema()}
	}

	return turnRequest{
		messages: history,
		tools:    schemas,
		options: &llm.Options{
			Temperature:   cfg.Options.Temperature,
			TopP:          cfg.Options.TopP,
			TopK:          cfg.Options.TopK,
			RepeatPenalty: cfg.Options.RepeatPenalty,
			NumPredict:    cfg.Options.NumPredict,
			NumCtx:        cfg.Options.NumCtx,
		},
	}
}

// stream runs the network turn: retries, incremental updates, tool
// execution, finalization. Every exit path finalizes or removes the
// placeholder; the transcript never keeps a stuck streaming message.
func (o *Orchestrator) stream(ctx context.Context, client *llm.Client, cfg *config.Config, req turnRequest, result classify.Result, placeholderID string) {
	defer o.endTurn()

	deb := llm.NewDebouncer(cfg.Stream.FlushInterval(), func(snapshot string) {
		o.updateMessage(placeholderID, snapshot)
	})
	defer deb.Close()

	var text strings.Builder
	var calls []llm.ToolCall
	var err error

	attempts := cfg.Stream.MaxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		text.Reset()
		calls = nil

		err = client.ChatStream(ctx, req.messages, req.tools, req.options, func(ch llm.Chunk) {
			if ch.Content != "" {
				text.WriteString(ch.Content)
				deb.Publish(text.String())
			}
			calls = append(calls, ch.ToolCalls...)
		})
		if err == nil || llm.IsCancelled(err) {
			break
		}

		o.logger.Warn("stream attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if attempt < attempts-1 {
			select {
			case <-time.After(cfg.Stream.RetryDelay() * time.Duration(attempt+1)):
			case <-ctx.Done():
				err = llm.ErrCancelled
			}
			if llm.IsCancelled(err) {
				break
			}
		}
	}

	deb.Close()
	o.finishTurn(cfg, result, placeholderID, text.String(), calls, err)
}

// finishTurn resolves the placeholder from the stream outcome.
func (o *Orchestrator) finishTurn(cfg *config.Config, result classify.Result, placeholderID, raw string, calls []llm.ToolCall, err error) {
	hotline := o.Hotline()

	switch {
	case err != nil && llm.IsCancelled(err):
		// User cancel: keep the partial text, no apology.
		partial := llm.Sanitize(raw, cfg.Stream.MaxOutputRunes)
		if partial == "" {
			o.removeMessage(placeholderID)
			return
		}
		o.finalizeMessage(placeholderID, finalizeContent(partial), false)

	case err != nil:
		o.finalizeMessage(placeholderID, apologyMessage(result.Language, hotline), true)

	default:
		normalized := tool.NormalizeCalls(calls, raw)
		if len(normalized) > 0 {
			// Tool turns suppress the raw text entirely.
			replies := o.executor.Execute(normalized, result.Language)
			o.finalizeMessage(placeholderID, finalizeContent(strings.Join(replies, " ")), false)
			return
		}

		clean := llm.Sanitize(raw, cfg.Stream.MaxOutputRunes)
		if clean == "" {
			o.finalizeMessage(placeholderID, apologyMessage(result.Language, hotline), true)
			return
		}
		o.finalizeMessage(placeholderID, finalizeContent(clean), false)
	}
}

// =============================================================================
// TRANSCRIPT MUTATION
// =============================================================================

// updateMessage replaces the streaming placeholder's content.
func (o *Orchestrator) updateMessage(id, content string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, m := range o.messages {
		if m.ID == id {
			m.Content = content
			return
		}
	}
}

// finalizeMessage closes out the placeholder with its final content.
func (o *Orchestrator) finalizeMessage(id, content string, isError bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, m := range o.messages {
		if m.ID == id {
			m.Content = content
			m.IsStreaming = false
			m.IsError = isError
			return
		}
	}
}

// removeMessage drops a message, used for cancelled empty placeholders.
func (o *Orchestrator) removeMessage(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, m := range o.messages {
		if m.ID == id {
			o.messages = append(o.messages[:i], o.messages[i+1:]...)
			return
		}
	}
}

// =============================================================================
// HEALTH POLLING
// =============================================================================

// healthLoop polls the gateway and maintains the offline flag and the
// advertised hotline. The interval is re-read every cycle; ApplyConfig
// kicks the loop so a shorter interval does not wait out the old timer.
func (o *Orchestrator) healthLoop() {
	o.checkHealth()

	for {
		o.mu.Lock()
		interval := o.cfg.Gateway.HealthInterval()
		o.mu.Unlock()

		timer := time.NewTimer(interval)
		select {
		case <-o.healthStop:
			timer.Stop()
			return
		case <-o.healthKick:
			timer.Stop()
		case <-timer.C:
			o.checkHealth()
		}
	}
}

// checkHealth runs one health probe.
func (o *Orchestrator) checkHealth() {
	o.mu.Lock()
	client := o.client
	timeout := o.cfg.Gateway.Timeout()
	o.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	hs, err := client.Health(ctx)

	o.mu.Lock()
	wasOffline := o.offline
	o.offline = err != nil
	if hs != nil && hs.Hotline != "" {
		o.hotline = hs.Hotline
	}
	o.mu.Unlock()

	if err != nil && !wasOffline {
		o.logger.Warn("gateway health check failed", zap.Error(err))
	}
}
