// Package loader reads the wide GDP CSV from disk, reshapes it into an
// engine.Table and memoizes the result.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/spektr-org/gdpboard/cache"
	"github.com/spektr-org/gdpboard/engine"
	"github.com/spektr-org/gdpboard/helpers"
	"github.com/spektr-org/gdpboard/schema"
)

// DefaultTTL bounds how long a parsed table is reused.
const DefaultTTL = time.Hour

// errUnavailable keeps a missing or unreadable source out of the cache so the
// next Load retries it.
var errUnavailable = errors.New("loader: dataset unavailable")

// Loader loads GDP tables. It is safe for concurrent use.
type Loader struct {
	cache     *cache.Cache[*engine.Table]
	ttl       time.Duration
	idColumn  string
	delimiter rune
	logger    *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache shares a cache between loaders.
func WithCache(c *cache.Cache[*engine.Table]) Option {
	return func(l *Loader) { l.cache = c }
}

// WithTTL sets how long a loaded table is reused. Zero disables reuse.
func WithTTL(ttl time.Duration) Option {
	return func(l *Loader) { l.ttl = ttl }
}

// WithIDColumn sets the identifier column header.
func WithIDColumn(name string) Option {
	return func(l *Loader) { l.idColumn = name }
}

// WithDelimiter sets the field delimiter.
func WithDelimiter(r rune) Option {
	return func(l *Loader) { l.delimiter = r }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		ttl:      DefaultTTL,
		idColumn: schema.DefaultIDColumn,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.cache == nil {
		l.cache = cache.New[*engine.Table]()
	}
	return l
}

// Load returns the normalized table for path.
//
// A missing or unparseable file is not an error: it is logged and an empty
// table is returned, so callers see "loaded but empty". That empty table is not
// cached; the file is read again on the next call. A malformed layout
// (no identifier column, a non-year column label) is returned as an error
// wrapping one of the schema sentinels.
func (l *Loader) Load(ctx context.Context, path string) (*engine.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := cacheKey(path)
	table, err := l.cache.GetOrLoad(key, l.ttl, func() (*engine.Table, error) {
		return l.read(path)
	})
	if errors.Is(err, errUnavailable) {
		return engine.NewTable(nil), nil
	}
	return table, err
}

// Reload drops the cached table for path and loads it again.
func (l *Loader) Reload(ctx context.Context, path string) (*engine.Table, error) {
	l.cache.Invalidate(cacheKey(path))
	return l.Load(ctx, path)
}

func (l *Loader) read(path string) (*engine.Table, error) {
	start := time.Now()
	log := l.logger.With(zap.String("path", path))

	f, err := os.Open(path)
	if err != nil {
		log.Warn("dataset unavailable, continuing with an empty table", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", errUnavailable, err)
	}
	defer f.Close()

	obs, stats, err := helpers.ParseWideCSV(f, helpers.WideOptions{
		IDColumn:  l.idColumn,
		Delimiter: l.delimiter,
	})
	switch {
	case errors.Is(err, helpers.ErrUnreadable):
		log.Warn("dataset unreadable, continuing with an empty table", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", errUnavailable, err)
	case err != nil:
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	table := engine.NewTable(obs)
	log.Info("dataset loaded",
		zap.Int("rows", stats.Rows),
		zap.Int("observations", table.Len()),
		zap.Int("dropped_cells", stats.Dropped),
		zap.Int("skipped_rows", stats.SkippedRows),
		zap.Duration("elapsed", time.Since(start)),
	)
	return table, nil
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// IsConfigError reports whether err marks a malformed dataset layout.
func IsConfigError(err error) bool {
	return errors.Is(err, schema.ErrMissingIDColumn) ||
		errors.Is(err, schema.ErrInvalidYearColumn) ||
		errors.Is(err, schema.ErrDuplicateYearColumn) ||
		errors.Is(err, schema.ErrNoYearColumns)
}
