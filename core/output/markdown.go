package output

import (
	"fmt"
	"io"
	"strings"

	"recipe-cost/core/engine"
	"recipe-cost/core/shopping"
	"recipe-cost/core/types"
)

// MarkdownFormatter renders a markdown document
type MarkdownFormatter struct {
	opts Options
}

// NewMarkdownFormatter creates a markdown formatter
func NewMarkdownFormatter(opts Options) *MarkdownFormatter {
	return &MarkdownFormatter{opts: opts}
}

// Format returns FormatMarkdown
func (f *MarkdownFormatter) Format() Format {
	return FormatMarkdown
}

// Render writes the report
func (f *MarkdownFormatter) Render(w io.Writer, report *Report) error {
	var sb strings.Builder
	currency := report.Metadata.Currency

	sb.WriteString("# Recipe Cost Report\n\n")
	if report.Metadata.Source != "" {
		fmt.Fprintf(&sb, "Source: `%s`  \n", report.Metadata.Source)
	}
	if report.Metadata.InputHash != "" {
		fmt.Fprintf(&sb, "Input hash: `%s`  \n", report.Metadata.InputHash)
	}
	fmt.Fprintf(&sb, "Generated: %s  \nCurrency: %s\n\n", report.Metadata.Timestamp, currency)

	for _, r := range report.Recipes {
		f.writeRecipe(&sb, currency, r)
	}
	if report.Shopping != nil {
		f.writeShopping(&sb, currency, report.Shopping)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (f *MarkdownFormatter) writeRecipe(sb *strings.Builder, currency types.Currency, r *engine.RecipeReport) {
	fmt.Fprintf(sb, "## %s\n\n", r.Cost.Recipe)
	sb.WriteString("| Section | Ingredient | Quantity | Cost |\n")
	sb.WriteString("|---------|------------|----------|------|\n")
	for _, item := range r.Cost.Items {
		fmt.Fprintf(sb, "| %s | %s | %s %s | %s |\n",
			item.Section, item.Ingredient, item.Quantity, item.Unit, f.opts.unitCost(currency, item.Cost))
	}
	sb.WriteString("\n")

	for _, s := range r.Cost.Sections {
		fmt.Fprintf(sb, "- Section **%s**: %s\n", s.Name, f.opts.money(currency, s.Subtotal))
	}
	fmt.Fprintf(sb, "- **Total cost**: %s\n", f.opts.money(currency, r.Cost.TotalCost))
	fmt.Fprintf(sb, "- **Cost per %s**: %s\n", yieldLabel(r.Cost), f.opts.unitCost(currency, r.Cost.CostPerYieldUnit))
	fmt.Fprintf(sb, "- **Suggested price**: %s at %s%%\n", f.opts.money(currency, r.Margin.SuggestedPrice), r.Margin.TargetMargin)
	if r.Margin.CurrentPrice != nil {
		fmt.Fprintf(sb, "- **Current price**: %s\n", f.opts.money(currency, *r.Margin.CurrentPrice))
		fmt.Fprintf(sb, "- **Actual margin**: %s\n", percent(r.Margin.ActualMargin))
	}
	fmt.Fprintf(sb, "- **Status**: `%s`\n\n", r.Margin.Status)
}

func (f *MarkdownFormatter) writeShopping(sb *strings.Builder, currency types.Currency, list *shopping.List) {
	sb.WriteString("## Shopping list\n\n")
	sb.WriteString("| Ingredient | Needed | Pack | Packs | Source | Cost |\n")
	sb.WriteString("|------------|--------|------|-------|--------|------|\n")
	for _, line := range list.Lines {
		p := line.Purchase
		fmt.Fprintf(sb, "| %s | %s %s | %s %s @ %s | %s | %s | %s |\n",
			line.Ingredient,
			line.Needed.Round(3), line.Unit,
			p.PackQuantity, line.Unit, f.opts.money(currency, p.PackPrice),
			p.PacksNeeded,
			p.Source,
			f.opts.money(currency, p.TotalCost))
	}
	fmt.Fprintf(sb, "\n**Total**: %s\n", f.opts.money(currency, list.TotalCost))
}
