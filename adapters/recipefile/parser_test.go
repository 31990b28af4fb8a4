package recipefile

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	apperrors "recipe-cost/internal/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLoadBakery(t *testing.T) {
	book, err := Load(filepath.Join("testdata", "bakery.hcl"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(book.Hash.Hex()) != 64 || !strings.HasPrefix(book.Hash.Hex(), book.Hash.Short()) {
		t.Errorf("unexpected hash %s", book.Hash.Hex())
	}

	if book.Margin == nil || !book.Margin.TargetMarginPercent.Equal(d("65")) || !book.Margin.MinMarginPercent.Equal(d("55")) {
		t.Errorf("unexpected margin: %+v", book.Margin)
	}

	names := make([]string, 0, len(book.Ingredients))
	for _, ing := range book.Ingredients {
		names = append(names, ing.Name)
	}
	if got := strings.Join(names, ","); got != "flour,butter,sugar,eggs" {
		t.Errorf("expected declaration order, got %s", got)
	}

	flour, err := book.Ingredient("flour")
	if err != nil {
		t.Fatalf("flour: %v", err)
	}
	if !flour.Pack.PackQuantity.Equal(d("1.5")) || flour.Pack.PackUnit != "kg" || !flour.Pack.PackPrice.Equal(d("1.2")) {
		t.Errorf("unexpected flour pack: %+v", flour.Pack)
	}
	if flour.Pack.Density == nil || flour.Pack.Density.String() != "0.593" {
		t.Errorf("expected exact density 0.593, got %v", flour.Pack.Density)
	}
	if len(flour.Tiers) != 1 || !flour.Tiers[0].PackQuantity.Equal(d("16")) {
		t.Errorf("unexpected flour tiers: %+v", flour.Tiers)
	}

	if len(book.Recipes) != 2 || book.Recipes[0].Name != "shortbread" || book.Recipes[1].Name != "victoria sponge" {
		t.Fatalf("unexpected recipes: %d", len(book.Recipes))
	}

	shortbread := book.Recipes[0]
	if shortbread.HasSections() || len(shortbread.Items) != 3 {
		t.Errorf("expected 3 flat items, got %+v", shortbread.Items)
	}
	if shortbread.SellingPrice == nil || !shortbread.SellingPrice.Equal(d("0.6")) {
		t.Errorf("unexpected selling price: %v", shortbread.SellingPrice)
	}
	if shortbread.Items[0].Ingredient != flour {
		t.Error("expected items to share the declared ingredient")
	}

	sponge, err := book.Recipe("victoria sponge")
	if err != nil {
		t.Fatalf("sponge: %v", err)
	}
	if !sponge.HasSections() || len(sponge.Sections) != 2 || sponge.Sections[1].Name != "filling" {
		t.Errorf("unexpected sections: %+v", sponge.Sections)
	}
	if sponge.SellingPrice != nil {
		t.Error("expected unpriced recipe")
	}

	if _, err := book.Recipe("scones"); !apperrors.IsType(err, apperrors.TypeNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestParseIngredientsAfterRecipes(t *testing.T) {
	src := `
recipe "toast" {
  yield_quantity = 2

  item "bread" {
    quantity = 2
    unit     = "slices"
  }
}

ingredient "bread" {
  pack_quantity = 20
  pack_unit     = "slices"
  pack_price    = "1.40"
}
`
	book, err := Parse([]byte(src), "toast.hcl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if book.Margin != nil {
		t.Error("expected no margin block")
	}
	if book.Recipes[0].Items[0].Ingredient.Name != "bread" {
		t.Errorf("unexpected item: %+v", book.Recipes[0].Items[0])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantType apperrors.Type
		wantLine int
	}{
		{
			name:     "syntax error",
			src:      "ingredient \"flour\" {\n  pack_quantity = \n}\n",
			wantType: apperrors.TypeParsing,
		},
		{
			name: "unknown ingredient",
			src: `recipe "r" {
  yield_quantity = 1
  item "saffron" {
    quantity = 1
    unit     = "g"
  }
}`,
			wantType: apperrors.TypeNotFound,
			wantLine: 3,
		},
		{
			name: "unknown unit",
			src: `ingredient "flour" {
  pack_quantity = 1
  pack_unit     = "stone"
  pack_price    = 1
}`,
			wantType: apperrors.TypeUnit,
			wantLine: 3,
		},
		{
			name: "missing required attribute",
			src: `ingredient "flour" {
  pack_quantity = 1
  pack_unit     = "kg"
}`,
			wantType: apperrors.TypeParsing,
		},
		{
			name: "unsupported attribute",
			src: `ingredient "flour" {
  pack_quantity = 1
  pack_unit     = "kg"
  pack_price    = 1
  brand         = "acme"
}`,
			wantType: apperrors.TypeParsing,
			wantLine: 5,
		},
		{
			name: "non-numeric string",
			src: `ingredient "flour" {
  pack_quantity = 1
  pack_unit     = "kg"
  pack_price    = "cheap"
}`,
			wantType: apperrors.TypeParsing,
			wantLine: 4,
		},
		{
			name: "duplicate ingredient",
			src: `ingredient "flour" {
  pack_quantity = 1
  pack_unit     = "kg"
  pack_price    = 1
}
ingredient "flour" {
  pack_quantity = 1
  pack_unit     = "kg"
  pack_price    = 1
}`,
			wantType: apperrors.TypeParsing,
			wantLine: 6,
		},
		{
			name: "zero pack quantity",
			src: `ingredient "flour" {
  pack_quantity = 0
  pack_unit     = "kg"
  pack_price    = 1
}`,
			wantType: apperrors.TypeValidation,
			wantLine: 1,
		},
		{
			name:     "zero yield",
			src:      "recipe \"r\" {\n  yield_quantity = 0\n}\n",
			wantType: apperrors.TypeValidation,
			wantLine: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "book.hcl")
			if err == nil {
				t.Fatal("expected error")
			}
			if !apperrors.IsType(err, tt.wantType) {
				t.Fatalf("expected %s, got %v", tt.wantType, err)
			}
			e := err.(*apperrors.Error)
			if tt.wantType == apperrors.TypeParsing && !strings.HasPrefix(e.Message, "book.hcl:") {
				t.Errorf("expected a file:line position, got %q", e.Message)
			}
			if tt.wantLine == 0 {
				return
			}
			if line, _ := e.Context["line"].(int); line != tt.wantLine {
				t.Errorf("expected line %d, got %v (%v)", tt.wantLine, e.Context["line"], err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.hcl"))
	if !apperrors.IsType(err, apperrors.TypeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
