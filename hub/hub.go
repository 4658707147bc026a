// Package hub is the sitekb service core: the tiered content/knowledge-base
// cache, the publish pipeline and the lead ledger, exposed over HTTP and MCP.
//
// A context read walks the tiers strictly in order — gist cache, content
// cache, raw content store — taking the cheapest available source. A publish
// rebuilds the content cache per language and invalidates every gist; gists
// are regenerated lazily on the next read.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/sitekb/config"
	"github.com/hazyhaar/sitekb/internal/store"
	"github.com/hazyhaar/sitekb/idgen"
	"github.com/hazyhaar/sitekb/kbase"
	"github.com/hazyhaar/sitekb/notify"
	"github.com/hazyhaar/sitekb/observability"
	"github.com/hazyhaar/sitekb/summarize"
)

// Service ties the store, the builder, the summarizer and the notifier
// together. Each request executes as an independent unit of work; all shared
// state lives in the backing store.
type Service struct {
	store      *store.Store
	cfg        *config.Config
	summarizer summarize.Summarizer
	notifier   notify.Notifier
	events     *observability.EventLogger
	logger     *slog.Logger
	newLeadID  idgen.Generator

	jwtSecret []byte
	adminHash string
}

// Option configures a Service.
type Option func(*Service)

// WithSummarizer sets the gist summarizer. Default: summarize.Disabled.
func WithSummarizer(s summarize.Summarizer) Option {
	return func(svc *Service) { svc.summarizer = s }
}

// WithNotifier sets the lead notifier. Default: notify.Null.
func WithNotifier(n notify.Notifier) Option {
	return func(svc *Service) { svc.notifier = n }
}

// WithEvents sets the business event logger. Default: none.
func WithEvents(e *observability.EventLogger) Option {
	return func(svc *Service) { svc.events = e }
}

// WithLeadIDGenerator sets a custom lead ID generator.
func WithLeadIDGenerator(gen idgen.Generator) Option {
	return func(svc *Service) { svc.newLeadID = gen }
}

// WithAuth configures the JWT signing secret and the bcrypt hash of the
// admin password. Without it, every admin endpoint rejects.
func WithAuth(jwtSecret []byte, adminHash string) Option {
	return func(svc *Service) {
		svc.jwtSecret = jwtSecret
		svc.adminHash = adminHash
	}
}

// New creates the hub service.
func New(st *store.Store, cfg *config.Config, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:      st,
		cfg:        cfg,
		summarizer: summarize.Disabled{},
		notifier:   notify.Null{},
		logger:     logger,
		newLeadID:  idgen.Prefixed("lead_", idgen.Default),
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	for _, o := range opts {
		o(svc)
	}
	return svc
}

// Context is the assistant-facing payload for one language.
type Context struct {
	KnowledgeBase string          `json:"knowledgeBase"`
	QAPairs       json.RawMessage `json:"qaPairs"`
	SystemPrompt  *string         `json:"systemPrompt"`
	Lang          string          `json:"lang"`
}

// GetContext answers a context read for lang through the tier fallback
// chain. Empty cache tiers and summarizer failures degrade gracefully; only
// a hard store failure returns an error.
func (s *Service) GetContext(ctx context.Context, lang string) (*Context, error) {
	if !s.cfg.Supported(lang) {
		lang = s.cfg.DefaultLang()
	}
	log := s.logger.With("lang", lang)

	// Tier 1: gist cache. A hit skips all further computation.
	if gist, err := s.store.GetGist(ctx, lang); err != nil {
		return nil, fmt.Errorf("hub: gist lookup: %w", err)
	} else if gist != nil {
		qa, prompt, err := s.assistantExtras(ctx, lang, nil)
		if err != nil {
			return nil, err
		}
		return &Context{KnowledgeBase: gist.Gist, QAPairs: qa, SystemPrompt: prompt, Lang: lang}, nil
	}

	// Tier 2: content cache.
	content, err := s.cachedContent(ctx, lang, log)
	if err != nil {
		return nil, err
	}

	// Tier 3: raw assembly from the content store (degraded path).
	if content == nil {
		assembled, skipped, err := s.store.AssembleLanguage(ctx, lang)
		if err != nil {
			return nil, fmt.Errorf("hub: assemble %s: %w", lang, err)
		}
		if len(skipped) > 0 {
			log.Warn("skipped corrupt content sections", "sections", skipped)
		}
		content = assembled
	}

	text := s.buildKB(ctx, content, log)
	qa, prompt, err := s.assistantExtras(ctx, lang, content)
	if err != nil {
		return nil, err
	}

	// Attempt compression. On failure serve the raw text without caching it,
	// so the next read retries summarization instead of pinning a
	// degraded result.
	if gist := s.summarizer.Summarize(ctx, text); gist != "" {
		if err := s.store.PutGist(ctx, lang, gist); err != nil {
			log.Warn("gist cache write failed", "error", err)
		} else if s.events != nil {
			s.events.Log(ctx, observability.Event{
				Type: "gist_generated", EntityType: "gist", EntityID: lang, Success: true,
			})
		}
		return &Context{KnowledgeBase: gist, QAPairs: qa, SystemPrompt: prompt, Lang: lang}, nil
	}

	return &Context{KnowledgeBase: text, QAPairs: qa, SystemPrompt: prompt, Lang: lang}, nil
}

// cachedContent returns the content-cache blob for lang decoded into a
// section map, or nil on a miss. An unparsable blob is logged and treated as
// a miss rather than aborting the read.
func (s *Service) cachedContent(ctx context.Context, lang string, log *slog.Logger) (kbase.Content, error) {
	entry, err := s.store.GetCache(ctx, lang)
	if err != nil {
		return nil, fmt.Errorf("hub: content cache lookup: %w", err)
	}
	if entry == nil {
		return nil, nil
	}

	var content kbase.Content
	if err := json.Unmarshal([]byte(entry.Data), &content); err != nil {
		log.Warn("content cache blob unparsable, falling back to raw assembly", "error", err)
		return nil, nil
	}
	return content, nil
}

// buildKB serializes content into knowledge-base text with the live lead
// count appended. The count rides on the text handed to the summarizer but
// is deliberately not part of the gist invalidation key: a cached gist stays
// stale on lead count until the next publish.
func (s *Service) buildKB(ctx context.Context, content kbase.Content, log *slog.Logger) string {
	var stats string
	if n, err := s.store.CountLeads(ctx); err != nil {
		log.Warn("lead count failed", "error", err)
	} else if n > 0 {
		stats = fmt.Sprintf("%d client inquiries received to date.", n)
	}

	return kbase.Build(content, kbase.Options{
		SiteName:    s.cfg.SiteName,
		SiteBaseURL: s.cfg.SiteBaseURL,
		LiveStats:   stats,
	})
}

type assistantSection struct {
	Prompt string `json:"prompt"`
}

// assistantExtras resolves qaPairs and systemPrompt for lang. When the
// caller already holds assembled content it is used directly; on the gist
// fast path the two sections are read individually, which is still far
// cheaper than a full assembly.
func (s *Service) assistantExtras(ctx context.Context, lang string, content kbase.Content) (json.RawMessage, *string, error) {
	qaRaw := content["qa"]
	asstRaw := content["assistant"]

	if content == nil {
		if sec, err := s.store.GetSection(ctx, "qa", lang); err != nil {
			return nil, nil, fmt.Errorf("hub: qa section: %w", err)
		} else if sec != nil {
			qaRaw = sec.Data
		}
		if sec, err := s.store.GetSection(ctx, "assistant", lang); err != nil {
			return nil, nil, fmt.Errorf("hub: assistant section: %w", err)
		} else if sec != nil {
			asstRaw = sec.Data
		}
	}

	var prompt *string
	if len(asstRaw) > 0 {
		var a assistantSection
		if err := json.Unmarshal(asstRaw, &a); err == nil && a.Prompt != "" {
			prompt = &a.Prompt
		}
	}
	if len(qaRaw) > 0 && !json.Valid(qaRaw) {
		qaRaw = nil
	}
	return qaRaw, prompt, nil
}

// PublishResult reports a completed publish.
type PublishResult struct {
	RebuiltLanguages []string  `json:"rebuiltLanguages"`
	PublishedAt      time.Time `json:"publishedAt"`
}

// Publish rebuilds the content cache for every supported language from the
// content store, then clears the gist cache globally. Each language's row is
// replaced atomically; the rebuild is not atomic across languages, which is
// the accepted consistency contract. Idempotent and safe to retry.
func (s *Service) Publish(ctx context.Context) (*PublishResult, error) {
	if err := s.store.EnsureCacheTable(ctx); err != nil {
		return nil, fmt.Errorf("hub: ensure content cache: %w", err)
	}

	var rebuilt []string
	for _, lang := range s.cfg.Languages {
		assembled, skipped, err := s.store.AssembleLanguage(ctx, lang)
		if err != nil {
			return nil, fmt.Errorf("hub: publish %s: %w", lang, err)
		}
		if len(skipped) > 0 {
			s.logger.Warn("publish: skipped corrupt sections", "lang", lang, "sections", skipped)
		}

		blob, err := json.Marshal(assembled)
		if err != nil {
			return nil, fmt.Errorf("hub: publish %s: marshal: %w", lang, err)
		}
		if err := s.store.ReplaceCache(ctx, lang, string(blob)); err != nil {
			return nil, fmt.Errorf("hub: publish %s: %w", lang, err)
		}
		rebuilt = append(rebuilt, lang)
	}

	// Global invalidation: cheaper and simpler than per-language tracking,
	// correct because gists regenerate lazily on the next read.
	if err := s.store.ClearGists(ctx); err != nil {
		return nil, fmt.Errorf("hub: clear gists: %w", err)
	}

	if s.events != nil {
		s.events.Log(ctx, observability.Event{
			Type: "publish", EntityType: "cache", Success: true,
		})
	}
	s.logger.Info("content cache published", "languages", rebuilt)

	return &PublishResult{RebuiltLanguages: rebuilt, PublishedAt: time.Now()}, nil
}

// Status reports which languages hold a content-cache row.
func (s *Service) Status(ctx context.Context) (map[string]int64, error) {
	return s.store.CacheStatus(ctx)
}
