package translate

import (
	"context"
	"fmt"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-translate/internal/cache"
	"github.com/goliatone/go-translate/internal/commands/translations"
	"github.com/goliatone/go-translate/internal/hydrate"
	"github.com/goliatone/go-translate/internal/linearize"
	"github.com/goliatone/go-translate/internal/locale"
	"github.com/goliatone/go-translate/internal/logging"
	"github.com/goliatone/go-translate/internal/logging/gologger"
	openaiprovider "github.com/goliatone/go-translate/internal/provider/openai"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

// Content tree variants accepted by the linearization step.
type (
	Node      = linearize.Node
	Text      = linearize.Text
	Number    = linearize.Number
	Sequence  = linearize.Sequence
	Composite = linearize.Composite
	Opaque    = linearize.Opaque
)

// Document exports the linearized segment list stored with each record.
type Document = linearize.Document

// Segment exports a single id-addressed fragment of a document.
type Segment = linearize.Segment

// OutputOptions exports the translation output contract.
type OutputOptions = cache.OutputOptions

// TranslationRecord exports the persisted cache row.
type TranslationRecord = cache.TranslationRecord

// ResolveRequest exports the shared cache resolution input.
type ResolveRequest = cache.ResolveRequest

// Resolution exports the shared cache resolution result.
type Resolution = cache.Resolution

// CacheService exports the translation cache contract.
type CacheService = cache.Service

// CacheRepository exports the persistence contract backing the cache.
type CacheRepository = cache.Repository

// TranslationProvider exports the producer contract used to fill placeholders.
type TranslationProvider = cache.Provider

// LocaleNegotiator exports the Accept-Language negotiation helper.
type LocaleNegotiator = locale.Negotiator

// HydrationStore exports the client-side read-through session store.
type HydrationStore = hydrate.Store

// ReclaimHandler exports the stale placeholder sweep command handler.
type ReclaimHandler = translations.ReclaimHandler

// ReclaimCommand exports the reclaim command message.
type ReclaimCommand = translations.ReclaimCommand

type moduleOptions struct {
	db              *bun.DB
	repository      cache.Repository
	provider        cache.Provider
	loggerProvider  interfaces.LoggerProvider
	readCache       repocache.CacheService
	readCacheKeys   repocache.KeySerializer
	disableReadSide bool
}

// Option overrides a module dependency during construction.
type Option func(*moduleOptions)

// WithDB binds the module to a bun database handle. Without it the module
// runs on an in-memory repository.
func WithDB(db *bun.DB) Option {
	return func(o *moduleOptions) {
		o.db = db
	}
}

// WithRepository replaces the storage layer entirely. It takes precedence
// over WithDB.
func WithRepository(repo cache.Repository) Option {
	return func(o *moduleOptions) {
		o.repository = repo
	}
}

// WithProvider overrides the translation producer configured via
// ProviderConfig.
func WithProvider(provider cache.Provider) Option {
	return func(o *moduleOptions) {
		o.provider = provider
	}
}

// WithLoggerProvider replaces the logging backend built from LoggingConfig.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *moduleOptions) {
		o.loggerProvider = provider
	}
}

// WithReadCache supplies the repository read-cache pair used when
// CacheConfig.ReadCache is enabled with a database handle.
func WithReadCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(o *moduleOptions) {
		o.readCache = service
		o.readCacheKeys = serializer
	}
}

// WithoutReadCache disables the repository read cache even when the
// configuration enables it.
func WithoutReadCache() Option {
	return func(o *moduleOptions) {
		o.disableReadSide = true
	}
}

// Module represents the top level translation runtime façade.
type Module struct {
	config         Config
	loggerProvider interfaces.LoggerProvider
	repository     cache.Repository
	cacheService   cache.Service
	negotiator     *locale.Negotiator
	reclaim        *translations.ReclaimHandler
}

// New constructs a translation module using the provided configuration and
// optional dependency overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := moduleOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	loggerProvider, err := buildLoggerProvider(cfg, options)
	if err != nil {
		return nil, err
	}

	repository, err := buildRepository(cfg, options)
	if err != nil {
		return nil, err
	}

	provider, err := buildProvider(cfg, options)
	if err != nil {
		return nil, err
	}

	serviceOpts := []cache.ServiceOption{
		cache.WithLogger(logging.CacheLogger(loggerProvider)),
	}
	if provider != nil {
		serviceOpts = append(serviceOpts, cache.WithProvider(provider))
	}
	cacheService := cache.NewService(repository, serviceOpts...)

	negotiator := locale.New(locale.Config{
		Supported: cfg.Locales.Supported,
		Default:   cfg.Locales.Default,
	}, locale.WithLogger(logging.LocaleLogger(loggerProvider)))

	module := &Module{
		config:         cfg,
		loggerProvider: loggerProvider,
		repository:     repository,
		cacheService:   cacheService,
		negotiator:     negotiator,
	}

	if cfg.Features.Reclaim {
		module.reclaim = translations.NewReclaimHandler(
			cacheService,
			logging.ReclaimLogger(loggerProvider),
			translations.ReclaimWithMaxAge(cfg.Reclaim.MaxAge),
			translations.ReclaimWithCronExpression(cfg.Reclaim.CronExpression),
		)
	}

	return module, nil
}

func buildLoggerProvider(cfg Config, options moduleOptions) (interfaces.LoggerProvider, error) {
	if options.loggerProvider != nil {
		return options.loggerProvider, nil
	}
	if !cfg.Features.Logger {
		return nil, nil
	}

	format := cfg.Logging.Format
	if strings.EqualFold(strings.TrimSpace(cfg.Logging.Provider), "console") && strings.TrimSpace(format) == "" {
		format = "console"
	}

	provider, err := gologger.NewProvider(gologger.Config{
		Level:     cfg.Logging.Level,
		Format:    format,
		AddSource: cfg.Logging.AddSource,
		Focus:     cfg.Logging.Focus,
	})
	if err != nil {
		return nil, fmt.Errorf("translate: build logger provider: %w", err)
	}
	return provider, nil
}

func buildRepository(cfg Config, options moduleOptions) (cache.Repository, error) {
	if options.repository != nil {
		return options.repository, nil
	}
	if options.db == nil {
		return cache.NewMemoryRepository(), nil
	}

	if !cfg.Cache.ReadCache || options.disableReadSide {
		return cache.NewBunRepository(options.db), nil
	}

	service := options.readCache
	serializer := options.readCacheKeys
	if service == nil {
		repoCfg := repocache.DefaultConfig()
		if cfg.Cache.DefaultTTL > 0 {
			repoCfg.TTL = cfg.Cache.DefaultTTL
		}
		built, err := repocache.NewCacheService(repoCfg)
		if err != nil {
			return nil, fmt.Errorf("translate: build read cache: %w", err)
		}
		service = built
	}
	if serializer == nil {
		serializer = repocache.NewDefaultKeySerializer()
	}
	return cache.NewBunRepositoryWithCache(options.db, service, serializer), nil
}

func buildProvider(cfg Config, options moduleOptions) (cache.Provider, error) {
	if options.provider != nil {
		return options.provider, nil
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider.Name)) {
	case "":
		return nil, nil
	case "openai":
		return openaiprovider.New(openaiprovider.Config{
			APIKey:      cfg.Provider.APIKey,
			Model:       cfg.Provider.Model,
			MaxTokens:   cfg.Provider.MaxTokens,
			Temperature: cfg.Provider.Temperature,
		})
	default:
		return nil, fmt.Errorf("translate: unknown provider %q", cfg.Provider.Name)
	}
}

// Cache returns the shared translation cache service.
func (m *Module) Cache() CacheService {
	return m.cacheService
}

// Repository exposes the storage layer for advanced integrations.
func (m *Module) Repository() CacheRepository {
	return m.repository
}

// Locales returns the configured locale negotiator.
func (m *Module) Locales() *LocaleNegotiator {
	return m.negotiator
}

// Reclaim returns the stale placeholder command handler when the feature is
// enabled, nil otherwise.
func (m *Module) Reclaim() *ReclaimHandler {
	if m == nil {
		return nil
	}
	return m.reclaim
}

// LoggerProvider exposes the logging backend used by the module.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	if m == nil {
		return nil
	}
	return m.loggerProvider
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config {
	return m.config
}

// Snapshot collects the usable translations for the given keys so they can be
// shipped to a client in a single round trip.
func (m *Module) Snapshot(ctx context.Context, keys []string) map[string]string {
	return hydrate.Snapshot(ctx, m.cacheService, keys)
}

// NewHydrationStore builds a session store seeded with a snapshot for the
// given keys. Misses fall through to the shared cache.
func (m *Module) NewHydrationStore(ctx context.Context, keys []string) *HydrationStore {
	return hydrate.NewStore(
		m.Snapshot(ctx, keys),
		m.cacheService,
		hydrate.WithLogger(logging.HydrateLogger(m.loggerProvider)),
	)
}

// Flatten linearizes a content tree into its id-wrapped textual form.
func Flatten(node Node) string {
	return linearize.Flatten(node, linearize.DefaultBaseKey)
}

// Segments linearizes a content tree into its id-addressed document form.
func Segments(node Node) Document {
	return linearize.Segments(node, linearize.DefaultBaseKey)
}
