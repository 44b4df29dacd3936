// Package file_modifier runs one modification request through scope
// analysis, the strategy chosen for the scope and, when that fails, the
// fallback and emergency tiers.
package file_modifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	codeContracts "github.com/meysamhadeli/reactforge/code_analyzer/contracts"
	codeModels "github.com/meysamhadeli/reactforge/code_analyzer/models"
	"github.com/meysamhadeli/reactforge/component_generator"
	"github.com/meysamhadeli/reactforge/config"
	"github.com/meysamhadeli/reactforge/file_modifier/contracts"
	"github.com/meysamhadeli/reactforge/file_modifier/models"
	providerContracts "github.com/meysamhadeli/reactforge/providers/contracts"
	"github.com/meysamhadeli/reactforge/scope_analyzer"
	"github.com/meysamhadeli/reactforge/strategies/emergency"
	"github.com/meysamhadeli/reactforge/strategies/fallback"
	"github.com/meysamhadeli/reactforge/strategies/full_file"
	"github.com/meysamhadeli/reactforge/strategies/tailwind"
	"github.com/meysamhadeli/reactforge/strategies/targeted_nodes"
	"github.com/meysamhadeli/reactforge/strategies/text_based"
	tokenContracts "github.com/meysamhadeli/reactforge/token_management/contracts"
	"github.com/sirupsen/logrus"
)

// ErrBudgetExceeded is reported when the session spent its token budget
// before the request started.
var ErrBudgetExceeded = errors.New("token budget exceeded")

const (
	defaultCleanupTimeout = 5 * time.Minute
	ledgerContextEntries  = 5
)

// escalation lists the tiers tried in order after the primary strategy of
// a scope fails. Scopes without an entry only reach the emergency tier when
// their strategy errored.
var escalation = map[models.ScopeKind][]models.DispatchState{
	models.ScopeFullFile:          {models.StateFallback, models.StateEmergency},
	models.ScopeTargetedNodes:     {models.StateFallback, models.StateEmergency},
	models.ScopeComponentAddition: {models.StateEmergency},
}

// Budget caps session spend. Zero values are unlimited.
type Budget struct {
	MaxTokens int
	MaxCost   float64
}

// Dependencies are the collaborators of a FileModifier. Store and Tokens
// are optional.
type Dependencies struct {
	Analyzer       codeContracts.ICodeAnalyzer
	ScopeAnalyzer  contracts.IScopeAnalyzer
	Executors      map[models.ScopeKind]contracts.IStrategyExecutor
	Fallback       contracts.IStrategyExecutor
	Emergency      contracts.IStrategyExecutor
	Store          contracts.IProjectStore
	Tokens         tokenContracts.ITokenManagement
	ProviderName   string
	Model          string
	Budget         Budget
	CleanupTimeout time.Duration
}

// NewDependencies wires every strategy to one completion provider.
func NewDependencies(provider providerContracts.ICompletionProvider, analyzer codeContracts.ICodeAnalyzer, cfg config.ModifierConfig) Dependencies {
	deps := Dependencies{
		Analyzer:      analyzer,
		ScopeAnalyzer: scope_analyzer.NewScopeAnalyzer(provider),
		Executors: map[models.ScopeKind]contracts.IStrategyExecutor{
			models.ScopeFullFile:      full_file.NewProcessor(provider, cfg.MaxFullFileRewrites),
			models.ScopeTargetedNodes: targeted_nodes.NewProcessor(provider, cfg.MaxTargetedFiles, cfg.SimilarityThreshold),
			models.ScopeTailwind:      tailwind.NewProcessor(provider),
			models.ScopeTextBased: text_based.NewProcessor(provider, text_based.Options{
				ConfidenceThreshold: cfg.HybridConfidenceThreshold,
				WordBoundary:        cfg.WordBoundaryMatch,
			}),
			models.ScopeComponentAddition: component_generator.NewExecutor(component_generator.NewGenerator(provider, analyzer)),
		},
		Fallback:       fallback.NewProcessor(provider, cfg.FallbackCandidates, cfg.FallbackMaxModifications),
		Emergency:      emergency.NewCreator(),
		CleanupTimeout: cfg.CleanupTimeout,
	}
	if provider != nil {
		deps.ProviderName, deps.Model = provider.Name(), provider.Model()
	}
	return deps
}

// FileModifier dispatches requests for one session.
type FileModifier struct {
	session *Session
	deps    Dependencies
}

func NewFileModifier(session *Session, deps Dependencies) contracts.IFileModifier {
	if deps.CleanupTimeout <= 0 {
		deps.CleanupTimeout = defaultCleanupTimeout
	}
	if deps.ScopeAnalyzer == nil {
		deps.ScopeAnalyzer = scope_analyzer.NewScopeAnalyzer(nil)
	}
	if deps.Emergency == nil {
		deps.Emergency = emergency.NewCreator()
	}
	return &FileModifier{session: session, deps: deps}
}

func (m *FileModifier) SessionID() string { return m.session.ID }

func (m *FileModifier) Ledger() contracts.ILedger { return m.session.Ledger() }

func (m *FileModifier) Reset(ctx context.Context) error {
	if m.deps.Tokens != nil {
		m.deps.Tokens.ClearToken()
	}
	return m.session.Reset(ctx)
}

// dispatch is the state of one request as it moves through the tiers.
type dispatch struct {
	sessionID      string
	prompt         string
	result         *models.ModificationResult
	request        *models.StrategyRequest
	emergencyTried bool
}

func (d *dispatch) enter(state models.DispatchState) {
	d.result.StateTrail = append(d.result.StateTrail, state)
	logrus.WithFields(logrus.Fields{"session": d.sessionID, "state": state}).Debug("dispatch state")
}

func (d *dispatch) fail(layer string, err error) {
	d.result.ErrorTrail = append(d.result.ErrorTrail, fmt.Sprintf("%s: %v", layer, err))
}

func (d *dispatch) finish(success bool) {
	d.result.Success = success
	if success {
		d.enter(models.StateCompleted)
		return
	}
	d.result.Error = strings.Join(d.result.ErrorTrail, "; ")
	if d.result.Reasoning == "" {
		d.result.Reasoning = d.result.Error
	}
	d.enter(models.StateFailed)
}

// ProcessModification applies prompt to the session's project. It always
// returns a result; failures are described in Error and ErrorTrail, and files
// written before a later tier failed stay written.
func (m *FileModifier) ProcessModification(ctx context.Context, prompt string, options models.ProcessOptions) *models.ModificationResult {
	s := m.session
	s.requestMu.Lock()
	defer s.requestMu.Unlock()

	start := time.Now()
	d := &dispatch{
		sessionID: s.ID,
		prompt:    prompt,
		result:    &models.ModificationResult{SelectedFiles: []string{}, AddedFiles: []string{}},
	}
	d.enter(models.StateInitializing)

	var cleanedUp atomic.Bool
	timer := time.AfterFunc(m.deps.CleanupTimeout, func() {
		cleanedUp.Store(true)
		s.cleanup()
	})

	m.run(ctx, d, options)

	timer.Stop()
	if cleanedUp.Load() {
		s.resync(ctx)
	}

	d.result.Duration = time.Since(start)
	if m.deps.Tokens != nil {
		usage := m.deps.Tokens.Snapshot(m.deps.ProviderName, m.deps.Model)
		d.result.TokenUsage = &usage
	}
	m.summarize(ctx, d, options)

	logrus.WithFields(logrus.Fields{
		"session":  s.ID,
		"approach": d.result.Approach,
		"success":  d.result.Success,
		"duration": d.result.Duration,
	}).Info("modification finished")
	return d.result
}

func (m *FileModifier) run(ctx context.Context, d *dispatch, options models.ProcessOptions) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("dispatcher panicked: %v", r)
			logrus.WithField("session", d.sessionID).Error(err)
			d.fail("dispatcher", err)
			success := false
			if !d.emergencyTried {
				success = m.lastResort(ctx, d)
			}
			d.finish(success)
		}
	}()

	if m.overBudget() {
		d.fail("budget", ErrBudgetExceeded)
		d.finish(false)
		return
	}

	snapshot := m.loadSnapshot(ctx)
	d.enter(models.StateSnapshotReady)

	conversation := joinContext(options.ConversationContext, m.session.Ledger().ContextSummary(ledgerContextEntries))
	scope := m.analyzeScope(ctx, d.prompt, snapshot, conversation, m.dbSummary(ctx, options))
	d.result.Scope = scope
	d.enter(models.StateScopeAnalyzed)

	d.request = &models.StrategyRequest{
		Prompt:              d.prompt,
		Scope:               scope,
		Snapshot:            snapshot,
		BasePath:            m.session.BasePath,
		ConversationContext: conversation,
	}

	d.enter(models.StateExecuting)
	var ok bool
	var err error
	if executor := m.deps.Executors[scope.Kind]; executor != nil {
		ok, err = m.attempt(ctx, d, executor)
	} else {
		err = fmt.Errorf("no strategy registered for scope %s", scope.Kind)
		d.fail("dispatcher", err)
	}

	if !ok {
		tiers := escalation[scope.Kind]
		if err != nil && len(tiers) == 0 {
			tiers = []models.DispatchState{models.StateEmergency}
		}
		for _, tier := range tiers {
			executor := m.tierExecutor(tier)
			if executor == nil {
				continue
			}
			d.enter(tier)
			if tier == models.StateEmergency {
				d.emergencyTried = true
			}
			if ok, _ = m.attempt(ctx, d, executor); ok {
				break
			}
		}
	}

	// a placeholder file is only an answer to a request for a new file
	if ok && d.emergencyTried && scope.Kind != models.ScopeComponentAddition {
		d.fail(d.result.Approach, fmt.Errorf("created placeholder %s; the requested change was not applied", strings.Join(d.result.AddedFiles, ", ")))
		ok = false
	}
	d.finish(ok)
}

func (m *FileModifier) tierExecutor(tier models.DispatchState) contracts.IStrategyExecutor {
	switch tier {
	case models.StateFallback:
		return m.deps.Fallback
	case models.StateEmergency:
		return m.deps.Emergency
	}
	return nil
}

// lastResort runs the emergency tier after a panic outside any strategy.
func (m *FileModifier) lastResort(ctx context.Context, d *dispatch) (success bool) {
	defer func() {
		if r := recover(); r != nil {
			d.fail(m.deps.Emergency.Name(), fmt.Errorf("panicked: %v", r))
			success = false
		}
	}()

	d.enter(models.StateEmergency)
	d.emergencyTried = true
	if d.request == nil {
		d.request = &models.StrategyRequest{
			Prompt:   d.prompt,
			Scope:    d.result.Scope,
			Snapshot: codeModels.NewProjectSnapshot(m.session.BasePath),
			BasePath: m.session.BasePath,
		}
	}
	ok, _ := m.attempt(ctx, d, m.deps.Emergency)
	return ok && d.result.Scope != nil && d.result.Scope.Kind == models.ScopeComponentAddition
}

// attempt runs one tier and records whatever it changed, even on failure.
func (m *FileModifier) attempt(ctx context.Context, d *dispatch, executor contracts.IStrategyExecutor) (bool, error) {
	name := executor.Name()
	d.result.Approach = name

	result, err := execute(ctx, executor, d.request)
	if result != nil {
		m.record(ctx, d, name, result)
	}

	fields := logrus.Fields{"session": d.sessionID, "strategy": name}
	if err != nil {
		logrus.WithFields(fields).Warnf("strategy failed: %v", err)
		d.fail(name, err)
		return false, err
	}
	if !result.Success {
		reason := result.Reasoning
		if reason == "" {
			reason = "no usable change"
		}
		logrus.WithFields(fields).Warnf("strategy reported failure: %s", reason)
		d.fail(name, errors.New(reason))
		return false, nil
	}

	d.result.Reasoning = result.Reasoning
	return true, nil
}

// execute converts a panicking strategy into an error.
func execute(ctx context.Context, executor contracts.IStrategyExecutor, request *models.StrategyRequest) (result *models.StrategyResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("%s panicked: %v", executor.Name(), r)
		}
	}()

	result, err = executor.Execute(ctx, request)
	if err == nil && result == nil {
		err = fmt.Errorf("%s returned no result", executor.Name())
	}
	return result, err
}

func (m *FileModifier) record(ctx context.Context, d *dispatch, strategy string, result *models.StrategyResult) {
	d.result.SelectedFiles = appendUnique(d.result.SelectedFiles, result.ModifiedFiles...)
	d.result.AddedFiles = appendUnique(d.result.AddedFiles, result.AddedFiles...)
	if result.Tailwind != nil {
		d.result.Tailwind = result.Tailwind
	}
	if result.Component != nil {
		d.result.Component = result.Component
	}

	for _, change := range result.Changes {
		if change.Strategy == "" {
			change.Strategy = strategy
		}
		m.session.RecordChange(ctx, change)
	}

	if len(result.ModifiedFiles) > 0 || len(result.AddedFiles) > 0 {
		d.request.Snapshot = m.refreshSnapshot(ctx, d.request.Snapshot, result)
	}
}

func (m *FileModifier) overBudget() bool {
	b := m.deps.Budget
	if m.deps.Tokens == nil || (b.MaxTokens <= 0 && b.MaxCost <= 0) {
		return false
	}
	return m.deps.Tokens.ExceedsBudget(m.deps.ProviderName, m.deps.Model, b.MaxTokens, b.MaxCost)
}

func (m *FileModifier) analyzeScope(ctx context.Context, prompt string, snapshot *codeModels.ProjectSnapshot, conversation, dbSummary string) (scope *models.ModificationScope) {
	defer func() {
		if r := recover(); r != nil {
			scope = models.SafeDefaultScope(fmt.Sprintf("scope analysis failed (%v); defaulting to targeted node changes", r))
		}
	}()

	scope = m.deps.ScopeAnalyzer.AnalyzeScope(ctx, prompt, snapshot.Summary(), conversation, dbSummary)
	if scope == nil {
		return models.SafeDefaultScope("")
	}
	if err := scope.Validate(); err != nil {
		logrus.WithField("session", m.session.ID).Warnf("discarding invalid scope: %v", err)
		return models.SafeDefaultScope(fmt.Sprintf("invalid scope (%v); defaulting to targeted node changes", err))
	}
	return scope
}

func (m *FileModifier) dbSummary(ctx context.Context, options models.ProcessOptions) string {
	if options.DBSummary != "" || m.deps.Store == nil || options.ProjectID == "" {
		return options.DBSummary
	}
	summary, err := m.deps.Store.GetProjectSummary(ctx, options.ProjectID)
	if err != nil {
		logrus.WithField("session", m.session.ID).Warnf("failed to load project summary: %v", err)
		return ""
	}
	return summary
}

func joinContext(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
