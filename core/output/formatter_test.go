package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"

	"recipe-cost/core/engine"
	"recipe-cost/core/shopping"
	"recipe-cost/core/types"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleReport(t *testing.T) *Report {
	t.Helper()

	butter := &types.Ingredient{
		Name: "butter",
		Pack: types.PackSpec{PackQuantity: d("250"), PackUnit: "g", PackPrice: d("2.50")},
	}
	price := d("1.00")
	recipe := &types.Recipe{
		Name:          "shortbread",
		YieldQuantity: d("10"),
		YieldUnit:     "biscuits",
		SellingPrice:  &price,
		Sections: []types.Section{
			{Name: "dough", Items: []types.RecipeItem{{Ingredient: butter, Quantity: d("100"), Unit: "g"}}},
		},
	}

	eng := engine.New(engine.Config{
		Currency: types.CurrencyGBP,
		Policy:   types.MarginPolicy{TargetMarginPercent: d("65"), MinMarginPercent: d("55")},
	})
	rep, err := eng.CostRecipe(recipe, nil)
	if err != nil {
		t.Fatalf("cost recipe: %v", err)
	}
	list, err := shopping.Build(nil, []shopping.Request{{Recipe: recipe, Batches: d("3")}})
	if err != nil {
		t.Fatalf("build shopping list: %v", err)
	}

	return &Report{
		Recipes:  []*engine.RecipeReport{rep},
		Shopping: list,
		Metadata: Metadata{Timestamp: "2026-01-01T00:00:00Z", Source: "book.hcl", Version: "test", Currency: types.CurrencyGBP},
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry(DefaultOptions())

	formats := reg.Formats()
	want := []Format{FormatCLI, FormatJSON, FormatMarkdown, FormatMsgpack}
	if len(formats) != len(want) {
		t.Fatalf("expected %d formats, got %v", len(want), formats)
	}
	for i := range want {
		if formats[i] != want[i] {
			t.Errorf("format %d: expected %s, got %s", i, want[i], formats[i])
		}
	}

	if err := reg.Register(NewJSONFormatter()); err == nil {
		t.Error("expected duplicate registration to fail")
	}
	if _, ok := reg.Get("yaml"); ok {
		t.Error("expected unknown format to be missing")
	}
}

func TestCLIFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewCLIFormatter(Options{MoneyPlaces: 2, UnitCostPlaces: 4, NoColor: true})
	if err := f.Render(&buf, sampleReport(t)); err != nil {
		t.Fatalf("render: %v", err)
	}

	out := buf.String()
	// 3 batches need 300g: two 250g packs
	for _, want := range []string{
		"shortbread",
		"butter",
		"£1.00",
		"£0.1000",
		"Cost per biscuits",
		"Margin: good",
		"Shopping list",
		"250 g @ £2.50",
		"£5.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("expected no ANSI codes with NoColor")
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter().Render(&buf, sampleReport(t)); err != nil {
		t.Fatalf("render: %v", err)
	}

	var decoded struct {
		Recipes []struct {
			Cost struct {
				TotalCost string `json:"total_cost"`
			} `json:"cost"`
			Margin struct {
				Status string `json:"status"`
			} `json:"margin"`
		} `json:"recipes"`
		Shopping struct {
			TotalCost string `json:"total_cost"`
		} `json:"shopping"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded.Recipes) != 1 || decoded.Recipes[0].Cost.TotalCost != "1" {
		t.Errorf("unexpected recipes: %+v", decoded.Recipes)
	}
	if decoded.Recipes[0].Margin.Status != "good" {
		t.Errorf("expected good, got %s", decoded.Recipes[0].Margin.Status)
	}
	if decoded.Shopping.TotalCost != "5" {
		t.Errorf("expected shopping total 5, got %s", decoded.Shopping.TotalCost)
	}
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMarkdownFormatter(DefaultOptions()).Render(&buf, sampleReport(t)); err != nil {
		t.Fatalf("render: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"# Recipe Cost Report", "## shortbread", "| dough | butter | 100 g | £1.0000 |", "## Shopping list", "**Total**: £5.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected markdown to contain %q\n%s", want, out)
		}
	}
}

func TestMsgpackFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMsgpackFormatter().Render(&buf, sampleReport(t)); err != nil {
		t.Fatalf("render: %v", err)
	}

	var wr WireReport
	if err := msgpack.Unmarshal(buf.Bytes(), &wr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if wr.Currency != "GBP" || wr.Source != "book.hcl" {
		t.Errorf("unexpected metadata: %+v", wr)
	}
	if len(wr.Recipes) != 1 || wr.Recipes[0].CostPerYieldUnit != "0.1" || wr.Recipes[0].Status != "good" {
		t.Errorf("unexpected recipe: %+v", wr.Recipes)
	}
	if len(wr.Shopping) != 1 || wr.Shopping[0].PacksNeeded != "2" || wr.Total != "5" {
		t.Errorf("unexpected shopping: %+v total %s", wr.Shopping, wr.Total)
	}
}
