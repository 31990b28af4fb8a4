package output

import (
	"io"

	"recipe-cost/core/engine"
	"recipe-cost/core/shopping"
	"recipe-cost/core/types"
	"recipe-cost/core/ui"
)

// CLIFormatter renders terminal tables
type CLIFormatter struct {
	opts Options
}

// NewCLIFormatter creates a CLI formatter
func NewCLIFormatter(opts Options) *CLIFormatter {
	return &CLIFormatter{opts: opts}
}

// Format returns FormatCLI
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

// Render prints each recipe, then the shopping list
func (f *CLIFormatter) Render(w io.Writer, report *Report) error {
	out := ui.NewWriter(w, f.opts.NoColor)
	currency := report.Metadata.Currency

	for _, r := range report.Recipes {
		f.renderRecipe(out, currency, r)
	}
	if report.Shopping != nil {
		f.renderShopping(out, currency, report.Shopping)
	}
	return nil
}

func (f *CLIFormatter) renderRecipe(out *ui.Writer, currency types.Currency, r *engine.RecipeReport) {
	out.Header(r.Cost.Recipe)

	table := out.NewTable("Section", "Ingredient", "Quantity", "Cost")
	for _, item := range r.Cost.Items {
		table.AddRow(item.Section, item.Ingredient, item.Quantity.String()+" "+item.Unit, f.opts.unitCost(currency, item.Cost))
	}
	table.Render()
	out.Println("")

	for _, s := range r.Cost.Sections {
		out.KeyValue("Section "+s.Name, f.opts.money(currency, s.Subtotal))
	}
	out.KeyValue("Total cost", f.opts.money(currency, r.Cost.TotalCost))
	out.KeyValue("Cost per "+yieldLabel(r.Cost), f.opts.unitCost(currency, r.Cost.CostPerYieldUnit))
	out.KeyValue("Suggested price", f.opts.money(currency, r.Margin.SuggestedPrice)+" at "+r.Margin.TargetMargin.String()+"%")
	if r.Margin.CurrentPrice != nil {
		out.KeyValue("Current price", f.opts.money(currency, *r.Margin.CurrentPrice))
		out.KeyValue("Actual margin", percent(r.Margin.ActualMargin))
	}
	out.Badge("Margin", string(r.Margin.Status))
}

func (f *CLIFormatter) renderShopping(out *ui.Writer, currency types.Currency, list *shopping.List) {
	out.Header("Shopping list")

	table := out.NewTable("Ingredient", "Needed", "Pack", "Packs", "Source", "Cost")
	for _, line := range list.Lines {
		p := line.Purchase
		table.AddRow(
			line.Ingredient,
			line.Needed.Round(3).String()+" "+line.Unit,
			p.PackQuantity.String()+" "+line.Unit+" @ "+f.opts.money(currency, p.PackPrice),
			p.PacksNeeded.String(),
			string(p.Source),
			f.opts.money(currency, p.TotalCost),
		)
	}
	table.Render()
	out.Println("")
	out.KeyValue("Total", f.opts.money(currency, list.TotalCost))
}

func yieldLabel(c *types.RecipeCost) string {
	if c.YieldUnit == "" {
		return "yield unit"
	}
	return c.YieldUnit
}
