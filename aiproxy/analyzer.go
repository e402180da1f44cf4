package aiproxy

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/wenhao1996/jikelens/llm"
	"github.com/wenhao1996/jikelens/model"
)

// Analyzer is an orchestrated analysis session for one piece of content.
// The session is primed with the content once and then answers a series
// of classification prompts over it. All orchestration state (model pool,
// rate counters, retry state, chat session) is owned by this instance;
// analyze different content items with different Analyzers.
//
// Every operation may block on quota waits and retry backoffs, and may
// transparently switch models. Parse failures never surface: each
// operation has a typed fallback (empty tags, NONE sentinel, false) that
// callers must read as "uninterpretable", not as a definitive negative.
type Analyzer struct {
	orch    *Orchestrator
	prompts PromptSet
	logger  *zap.Logger
}

// Option configures an Analyzer.
type Option func(*analyzerConfig)

type analyzerConfig struct {
	catalog   []Model
	prompts   PromptSet
	cfg       Config
	orchOpts  []OrchestratorOption
	logger    *zap.Logger
	hasLogger bool
}

// WithCatalog overrides the model catalog.
func WithCatalog(catalog []Model) Option {
	return func(c *analyzerConfig) { c.catalog = catalog }
}

// WithPrompts overrides the prompt set.
func WithPrompts(prompts PromptSet) Option {
	return func(c *analyzerConfig) { c.prompts = prompts }
}

// WithConfig overrides the retry/failover configuration.
func WithConfig(cfg Config) Option {
	return func(c *analyzerConfig) { c.cfg = cfg }
}

// WithAnalyzerClock substitutes the wall clock, for tests.
func WithAnalyzerClock(clock Clock) Option {
	return func(c *analyzerConfig) { c.orchOpts = append(c.orchOpts, WithClock(clock)) }
}

// WithAnalyzerLogger sets the logger. The default discards everything.
func WithAnalyzerLogger(logger *zap.Logger) Option {
	return func(c *analyzerConfig) {
		c.logger = logger
		c.hasLogger = true
		c.orchOpts = append(c.orchOpts, WithLogger(logger))
	}
}

// WithSharedQuota shares rate state with other analyzers drawing on the
// same credential.
func WithSharedQuota(ledger *QuotaLedger) Option {
	return func(c *analyzerConfig) { c.orchOpts = append(c.orchOpts, WithQuotaLedger(ledger)) }
}

// New creates an Analyzer for the given content text. Fails immediately
// on blank content or an invalid catalog; no remote call is made until
// the first operation.
func New(content string, transport llm.Transport, opts ...Option) (*Analyzer, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	c := analyzerConfig{
		catalog: DefaultCatalog(),
		prompts: DefaultPrompts(),
		cfg:     DefaultConfig(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if !c.hasLogger {
		c.logger = zap.NewNop()
	}

	pool, err := NewPoolManager(c.catalog)
	if err != nil {
		return nil, err
	}

	orch := NewOrchestrator(transport, pool, c.prompts.PrimingFor(content), c.cfg, c.orchOpts...)
	return &Analyzer{orch: orch, prompts: c.prompts, logger: c.logger}, nil
}

// Tags extracts topic keyword tags. The reply must be a literal list of
// strings; on parse failure an empty slice is returned, never an error.
func (a *Analyzer) Tags(ctx context.Context) ([]string, error) {
	reply, err := a.orch.Send(ctx, "tags", a.prompts.Tags)
	if err != nil {
		return nil, err
	}
	tags, ok := parseTagList(reply)
	if !ok {
		a.logger.Warn("unparseable tags reply", zap.String("reply", reply))
		return []string{}, nil
	}
	return tags, nil
}

// PostType classifies the content into one of the post-type categories.
// An unmatched reply yields PostTypeNone, never an error.
func (a *Analyzer) PostType(ctx context.Context) (model.PostType, error) {
	reply, err := a.orch.Send(ctx, "post_type", a.prompts.PostType)
	if err != nil {
		return model.PostTypeNone, err
	}
	postType, parseErr := model.ParsePostType(reply)
	if parseErr != nil {
		a.logger.Warn("unparseable post type reply", zap.String("reply", reply))
		return model.PostTypeNone, nil
	}
	return postType, nil
}

// Sentiment classifies the content's emotional tone. An unmatched reply
// yields SentimentNone, never an error.
func (a *Analyzer) Sentiment(ctx context.Context) (model.SentimentType, error) {
	reply, err := a.orch.Send(ctx, "sentiment", a.prompts.Sentiment)
	if err != nil {
		return model.SentimentNone, err
	}
	sentiment, parseErr := model.ParseSentimentType(reply)
	if parseErr != nil {
		a.logger.Warn("unparseable sentiment reply", zap.String("reply", reply))
		return model.SentimentNone, nil
	}
	return sentiment, nil
}

// IsHotspot reports whether the content covers a trending topic. Any
// reply other than the literal "true" yields false.
func (a *Analyzer) IsHotspot(ctx context.Context) (bool, error) {
	reply, err := a.orch.Send(ctx, "is_hotspot", a.prompts.Hotspot)
	if err != nil {
		return false, err
	}
	return parseBoolFlag(reply), nil
}

// IsCreative reports whether the content is creative work. Any reply
// other than the literal "true" yields false.
func (a *Analyzer) IsCreative(ctx context.Context) (bool, error) {
	reply, err := a.orch.Send(ctx, "is_creative", a.prompts.Creative)
	if err != nil {
		return false, err
	}
	return parseBoolFlag(reply), nil
}

// CurrentModel returns the model calls are currently routed to.
func (a *Analyzer) CurrentModel() Model {
	return a.orch.CurrentModel()
}
