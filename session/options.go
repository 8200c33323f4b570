package session

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/bd1/errs"
	"github.com/arloliu/bd1/internal/options"
	"github.com/arloliu/bd1/period"
	"github.com/arloliu/bd1/section"
)

type config struct {
	logger *slog.Logger
	widths section.Widths
}

// Option configures how a Session opens and reads its file.
type Option = options.Option[*config]

func newConfig(opts ...Option) (*config, error) {
	cfg := &config{
		logger: slog.New(slog.DiscardHandler),
		widths: section.DefaultWidths(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithLogger sets the logger. Sessions are silent by default.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithWidths overrides the descriptor field widths, for files written with
// non-default widths.
func WithWidths(w section.Widths) Option {
	return options.NoError(func(c *config) {
		c.widths = w
	})
}

type queryConfig struct {
	start, end period.YearMonth
	readValues bool
}

// QueryOption configures a single Query call.
type QueryOption = options.Option[*queryConfig]

// WithRange restricts values to [start, end]. Either bound may lie outside
// the file's period; months outside it are returned as missing.
func WithRange(start, end period.YearMonth) QueryOption {
	return options.New(func(c *queryConfig) error {
		if end.Before(start) {
			return fmt.Errorf("%w: end %s is before start %s", errs.ErrInvalidRange, end, start)
		}
		c.start, c.end = start, end

		return nil
	})
}

// WithStart sets the first requested month.
func WithStart(start period.YearMonth) QueryOption {
	return options.NoError(func(c *queryConfig) {
		c.start = start
	})
}

// WithEnd sets the last requested month.
func WithEnd(end period.YearMonth) QueryOption {
	return options.NoError(func(c *queryConfig) {
		c.end = end
	})
}

// WithoutValues returns metadata only.
func WithoutValues() QueryOption {
	return options.NoError(func(c *queryConfig) {
		c.readValues = false
	})
}
