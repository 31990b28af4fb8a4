package output

import (
	"io"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackFormatter renders a compact binary report for other tools.
// Amounts travel as decimal strings so no precision is lost.
type MsgpackFormatter struct{}

// NewMsgpackFormatter creates a msgpack formatter
func NewMsgpackFormatter() *MsgpackFormatter {
	return &MsgpackFormatter{}
}

// Format returns FormatMsgpack
func (f *MsgpackFormatter) Format() Format {
	return FormatMsgpack
}

// Render writes the report
func (f *MsgpackFormatter) Render(w io.Writer, report *Report) error {
	return msgpack.NewEncoder(w).Encode(NewWireReport(report))
}

// WireReport is the msgpack layout of a Report
type WireReport struct {
	Timestamp string       `msgpack:"timestamp,omitempty"`
	Source    string       `msgpack:"source,omitempty"`
	InputHash string       `msgpack:"input_hash,omitempty"`
	Version   string       `msgpack:"version,omitempty"`
	Currency  string       `msgpack:"currency,omitempty"`
	Recipes   []WireRecipe `msgpack:"recipes,omitempty"`
	Shopping  []WireLine   `msgpack:"shopping,omitempty"`
	Total     string       `msgpack:"shopping_total,omitempty"`
}

// WireRecipe is one costed recipe with its margin
type WireRecipe struct {
	Name             string     `msgpack:"name,omitempty"`
	Items            []WireItem `msgpack:"items,omitempty"`
	TotalCost        string     `msgpack:"total_cost,omitempty"`
	CostPerYieldUnit string     `msgpack:"cost_per_yield_unit,omitempty"`
	YieldQuantity    string     `msgpack:"yield_quantity,omitempty"`
	YieldUnit        string     `msgpack:"yield_unit,omitempty"`
	SuggestedPrice   string     `msgpack:"suggested_price,omitempty"`
	CurrentPrice     string     `msgpack:"current_price,omitempty"`
	ActualMargin     string     `msgpack:"actual_margin,omitempty"`
	Status           string     `msgpack:"status,omitempty"`
}

// WireItem is one costed recipe item
type WireItem struct {
	Section    string `msgpack:"section,omitempty"`
	Ingredient string `msgpack:"ingredient,omitempty"`
	Quantity   string `msgpack:"quantity,omitempty"`
	Unit       string `msgpack:"unit,omitempty"`
	Cost       string `msgpack:"cost,omitempty"`
}

// WireLine is one shopping list line
type WireLine struct {
	Ingredient   string `msgpack:"ingredient,omitempty"`
	Needed       string `msgpack:"needed,omitempty"`
	Unit         string `msgpack:"unit,omitempty"`
	PackQuantity string `msgpack:"pack_quantity,omitempty"`
	PackPrice    string `msgpack:"pack_price,omitempty"`
	PacksNeeded  string `msgpack:"packs_needed,omitempty"`
	Source       string `msgpack:"source,omitempty"`
	TotalCost    string `msgpack:"total_cost,omitempty"`
}

// NewWireReport flattens a report into its msgpack layout
func NewWireReport(report *Report) WireReport {
	wr := WireReport{
		Timestamp: report.Metadata.Timestamp,
		Source:    report.Metadata.Source,
		InputHash: report.Metadata.InputHash,
		Version:   report.Metadata.Version,
		Currency:  report.Metadata.Currency.String(),
	}

	for _, r := range report.Recipes {
		rec := WireRecipe{
			Name:             r.Cost.Recipe,
			TotalCost:        r.Cost.TotalCost.String(),
			CostPerYieldUnit: r.Cost.CostPerYieldUnit.String(),
			YieldQuantity:    r.Cost.YieldQuantity.String(),
			YieldUnit:        r.Cost.YieldUnit,
			SuggestedPrice:   r.Margin.SuggestedPrice.String(),
			CurrentPrice:     optional(r.Margin.CurrentPrice),
			ActualMargin:     optional(r.Margin.ActualMargin),
			Status:           string(r.Margin.Status),
		}
		for _, item := range r.Cost.Items {
			rec.Items = append(rec.Items, WireItem{
				Section:    item.Section,
				Ingredient: item.Ingredient,
				Quantity:   item.Quantity.String(),
				Unit:       item.Unit,
				Cost:       item.Cost.String(),
			})
		}
		wr.Recipes = append(wr.Recipes, rec)
	}

	if report.Shopping != nil {
		for _, line := range report.Shopping.Lines {
			p := line.Purchase
			wr.Shopping = append(wr.Shopping, WireLine{
				Ingredient:   line.Ingredient,
				Needed:       line.Needed.String(),
				Unit:         line.Unit,
				PackQuantity: p.PackQuantity.String(),
				PackPrice:    p.PackPrice.String(),
				PacksNeeded:  p.PacksNeeded.String(),
				Source:       string(p.Source),
				TotalCost:    p.TotalCost.String(),
			})
		}
		wr.Total = report.Shopping.TotalCost.String()
	}

	return wr
}

func optional(v *decimal.Decimal) string {
	if v == nil {
		return ""
	}
	return v.String()
}
