package engine

// ============================================================================
// ENGINE OPTIONS — Functional options for Build()
// ============================================================================

// DefaultCountryCount is how many countries the initial selection holds.
const DefaultCountryCount = 5

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Title            string
	CurrencySymbol   string
	DefaultCountries int
}

// WithTitle sets the dashboard title.
func WithTitle(title string) Option {
	return func(c *config) {
		c.Title = title
	}
}

// WithCurrencySymbol sets the prefix used when formatting GDP values.
func WithCurrencySymbol(symbol string) Option {
	return func(c *config) {
		c.CurrencySymbol = symbol
	}
}

// WithDefaultCountries sets how many countries DefaultSelection picks when
// Build is handed a selection-less request.
func WithDefaultCountries(n int) Option {
	return func(c *config) {
		c.DefaultCountries = n
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Title:            "Global GDP Dashboard",
		CurrencySymbol:   "$",
		DefaultCountries: DefaultCountryCount,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
