// Package translations exposes cache maintenance as dispatchable commands.
package translations

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-translate/internal/commands"
	"github.com/goliatone/go-translate/internal/logging"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

const reclaimMessageType = "translate.cache.reclaim"

// DefaultReclaimMaxAge bounds how long an unfilled placeholder may linger
// before the reclaim sweep removes it.
const DefaultReclaimMaxAge = 24 * time.Hour

// StaleReclaimer exposes the cache maintenance operations the reclaim
// command drives.
type StaleReclaimer interface {
	ReclaimStale(ctx context.Context, maxAge time.Duration) (int, error)
	CountStale(ctx context.Context, maxAge time.Duration) (int, error)
}

// ReclaimCommand removes placeholder records that never received a
// translation. When DryRun is true only the candidate count is reported.
type ReclaimCommand struct {
	MaxAge time.Duration `json:"max_age,omitempty"`
	DryRun bool          `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (ReclaimCommand) Type() string { return reclaimMessageType }

// Validate satisfies command.Message.
func (c ReclaimCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MaxAge, validation.Min(time.Duration(0))),
	)
}

type reclaimHandlerConfig struct {
	cronConfig command.HandlerConfig
	timeout    time.Duration
	maxAge     time.Duration
}

// ReclaimHandlerOption customises the reclaim handler.
type ReclaimHandlerOption func(*reclaimHandlerConfig)

// ReclaimWithCronConfig overrides the cron registration options for the reclaim handler.
func ReclaimWithCronConfig(config command.HandlerConfig) ReclaimHandlerOption {
	return func(cfg *reclaimHandlerConfig) {
		cfg.cronConfig = config
	}
}

// ReclaimWithCronExpression overrides the cron expression for the reclaim handler.
func ReclaimWithCronExpression(expression string) ReclaimHandlerOption {
	return func(cfg *reclaimHandlerConfig) {
		if trimmed := strings.TrimSpace(expression); trimmed != "" {
			cfg.cronConfig.Expression = trimmed
		}
	}
}

// ReclaimWithTimeout overrides the default execution timeout.
func ReclaimWithTimeout(timeout time.Duration) ReclaimHandlerOption {
	return func(cfg *reclaimHandlerConfig) {
		cfg.timeout = timeout
	}
}

// ReclaimWithMaxAge overrides the default age threshold used by cron runs.
func ReclaimWithMaxAge(maxAge time.Duration) ReclaimHandlerOption {
	return func(cfg *reclaimHandlerConfig) {
		if maxAge > 0 {
			cfg.maxAge = maxAge
		}
	}
}

// ReclaimHandler sweeps stale placeholders via the supplied reclaimer implementation.
type ReclaimHandler struct {
	reclaimer  StaleReclaimer
	logger     interfaces.Logger
	cronConfig command.HandlerConfig
	timeout    time.Duration
	maxAge     time.Duration
}

// NewReclaimHandler constructs a handler that delegates to the provided reclaimer instance.
func NewReclaimHandler(reclaimer StaleReclaimer, logger interfaces.Logger, opts ...ReclaimHandlerOption) *ReclaimHandler {
	cfg := reclaimHandlerConfig{
		cronConfig: command.HandlerConfig{
			Expression: "@hourly",
		},
		timeout: commands.DefaultCommandTimeout,
		maxAge:  DefaultReclaimMaxAge,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &ReclaimHandler{
		reclaimer:  reclaimer,
		logger:     commands.EnsureLogger(logger),
		cronConfig: cfg.cronConfig,
		timeout:    cfg.timeout,
		maxAge:     cfg.maxAge,
	}
}

// Execute satisfies command.Commander[ReclaimCommand].
func (h *ReclaimHandler) Execute(ctx context.Context, msg ReclaimCommand) error {
	if err := commands.WrapValidationError(command.ValidateMessage(msg)); err != nil {
		return err
	}
	ctx = commands.EnsureContext(ctx)
	ctx, cancel := commands.WithCommandTimeout(ctx, h.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return commands.WrapContextError(err)
	}

	maxAge := msg.MaxAge
	if maxAge <= 0 {
		maxAge = h.maxAge
	}

	logger := logging.WithFields(h.logger, map[string]any{
		"operation": "cache.reclaim",
		"max_age":   maxAge.String(),
	})

	if msg.DryRun {
		count, err := h.reclaimer.CountStale(ctx, maxAge)
		if err != nil {
			return commands.WrapExecuteError(err)
		}
		logging.WithFields(logger, map[string]any{
			"dry_run":    true,
			"candidates": count,
		}).Debug("translations.command.reclaim.dry_run")
		return nil
	}

	removed, err := h.reclaimer.ReclaimStale(ctx, maxAge)
	if err != nil {
		return commands.WrapExecuteError(err)
	}

	logging.WithFields(logger, map[string]any{
		"removed": removed,
	}).Debug("translations.command.reclaim.removed")
	return nil
}

// CronHandler satisfies command.CronCommand by binding reclaim execution to a cron runner.
func (h *ReclaimHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), ReclaimCommand{MaxAge: h.maxAge})
	}
}

// CronOptions satisfies command.CronCommand by returning the configured cron metadata.
func (h *ReclaimHandler) CronOptions() command.HandlerConfig {
	return h.cronConfig
}

// CLIHandler exposes the reclaim handler to CLI integrations.
func (h *ReclaimHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for placeholder reclaim.
func (h *ReclaimHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"cache", "reclaim"},
		Group:       "cache",
		Description: "Remove stale translation placeholders; supports dry-run",
	}
}
