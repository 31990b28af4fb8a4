// Package output provides report formatters.
// This package produces human and machine-readable outputs.
package output

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"recipe-cost/core/engine"
	"recipe-cost/core/shopping"
	"recipe-cost/core/types"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"

	// FormatMsgpack is a compact binary report
	FormatMsgpack Format = "msgpack"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Report is everything a command can print
type Report struct {
	// Recipes holds costed recipes in request order
	Recipes []*engine.RecipeReport `json:"recipes,omitempty"`

	// Shopping is a purchase plan, when one was requested
	Shopping *shopping.List `json:"shopping,omitempty"`

	// Metadata contains execution context
	Metadata Metadata `json:"metadata"`
}

// Metadata contains execution context
type Metadata struct {
	// Timestamp is when the report was produced
	Timestamp string `json:"timestamp"`

	// Source is the recipe book or request the report came from
	Source string `json:"source,omitempty"`

	// InputHash fingerprints the source
	InputHash string `json:"input_hash,omitempty"`

	// Version is the tool version
	Version string `json:"version"`

	// Currency labels every amount in the report
	Currency types.Currency `json:"currency"`
}

// Options controls rounding and styling shared by formatters
type Options struct {
	// MoneyPlaces rounds totals and prices
	MoneyPlaces int32

	// UnitCostPlaces rounds per-unit costs
	UnitCostPlaces int32

	// NoColor disables ANSI colors in CLI output
	NoColor bool
}

// DefaultOptions returns 2 places for money and 4 for unit costs
func DefaultOptions() Options {
	return Options{MoneyPlaces: 2, UnitCostPlaces: 4}
}

func (o Options) money(c types.Currency, v decimal.Decimal) string {
	return c.Symbol() + v.StringFixed(o.MoneyPlaces)
}

func (o Options) unitCost(c types.Currency, v decimal.Decimal) string {
	return c.Symbol() + v.StringFixed(o.UnitCostPlaces)
}

func percent(v *decimal.Decimal) string {
	if v == nil {
		return "n/a"
	}
	return v.StringFixed(1) + "%"
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates a registry holding every built-in formatter
func NewRegistry(opts Options) *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	for _, f := range []Formatter{
		NewCLIFormatter(opts),
		NewJSONFormatter(),
		NewMarkdownFormatter(opts),
		NewMsgpackFormatter(),
	} {
		_ = r.Register(f)
	}
	return r
}

// Register adds a formatter to the registry
func (r *Registry) Register(f Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.formatters[f.Format()]; exists {
		return fmt.Errorf("formatter already registered: %s", f.Format())
	}
	r.formatters[f.Format()] = f
	return nil
}

// Get returns a formatter for a format type
func (r *Registry) Get(format Format) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[format]
	return f, ok
}

// Formats returns the registered formats, sorted
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]Format, 0, len(r.formatters))
	for f := range r.formatters {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
