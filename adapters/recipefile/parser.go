// Package recipefile parses HCL recipe books into typed ingredients and recipes.
package recipefile

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"recipe-cost/core/determinism"
	"recipe-cost/core/types"
	"recipe-cost/core/units"
	apperrors "recipe-cost/internal/errors"
	"recipe-cost/internal/logging"
)

// Book is a parsed recipe book. Ingredients and recipes keep declaration order.
type Book struct {
	// Path is the file the book was read from
	Path string

	// Hash fingerprints the source text
	Hash determinism.ContentHash

	// Margin is the book's margin policy; nil when the file has no margin block
	Margin *types.MarginPolicy

	Ingredients []*types.Ingredient
	Recipes     []*types.Recipe
}

// Ingredient returns the named ingredient
func (b *Book) Ingredient(name string) (*types.Ingredient, error) {
	for _, ing := range b.Ingredients {
		if ing.Name == name {
			return ing, nil
		}
	}
	return nil, apperrors.NotFound("ingredient", name)
}

// Recipe returns the named recipe
func (b *Book) Recipe(name string) (*types.Recipe, error) {
	for _, r := range b.Recipes {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, apperrors.NotFound("recipe", name)
}

var (
	rootSchema = &hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "margin"},
			{Type: "ingredient", LabelNames: []string{"name"}},
			{Type: "recipe", LabelNames: []string{"name"}},
		},
	}

	marginSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: "target", Required: true},
			{Name: "min", Required: true},
		},
	}

	ingredientSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: "pack_quantity", Required: true},
			{Name: "pack_unit", Required: true},
			{Name: "pack_price", Required: true},
			{Name: "density"},
		},
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "tier"},
		},
	}

	tierSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: "pack_quantity", Required: true},
			{Name: "pack_price", Required: true},
		},
	}

	recipeSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: "yield_quantity", Required: true},
			{Name: "yield_unit"},
			{Name: "selling_price"},
		},
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "item", LabelNames: []string{"ingredient"}},
			{Type: "section", LabelNames: []string{"name"}},
		},
	}

	sectionSchema = &hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "item", LabelNames: []string{"ingredient"}},
		},
	}

	itemSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: "quantity", Required: true},
			{Name: "unit", Required: true},
		},
	}
)

// Load reads and parses a recipe book file
func Load(path string) (*Book, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NotFound("recipe book", path)
		}
		return nil, apperrors.Internal("failed to read recipe book", err).WithContext("file", path)
	}

	book, err := Parse(src, path)
	if err != nil {
		logging.Debug("recipe book rejected", zap.String("file", path), zap.Error(err))
		return nil, err
	}

	logging.Debug("loaded recipe book",
		zap.String("file", path),
		zap.String("hash", book.Hash.Short()),
		zap.Int("ingredients", len(book.Ingredients)),
		zap.Int("recipes", len(book.Recipes)),
	)
	return book, nil
}

// Parse parses recipe book source. filename is used in error positions only.
// Ingredients may be declared after the recipes that use them.
func Parse(src []byte, filename string) (*Book, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}

	content, diags := file.Body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}

	d := &decoder{units: units.Default()}
	book := &Book{Path: filename, Hash: determinism.ComputeHash(src)}
	byName := make(map[string]*types.Ingredient)

	var recipeBlocks []*hcl.Block
	for _, block := range content.Blocks {
		switch block.Type {
		case "margin":
			if book.Margin != nil {
				return nil, errorAt(block.DefRange, "duplicate margin block")
			}
			policy, err := d.margin(block)
			if err != nil {
				return nil, err
			}
			book.Margin = policy

		case "ingredient":
			name := block.Labels[0]
			if _, exists := byName[name]; exists {
				return nil, errorAt(block.DefRange, fmt.Sprintf("duplicate ingredient %q", name))
			}
			ing, err := d.ingredient(block)
			if err != nil {
				return nil, err
			}
			byName[name] = ing
			book.Ingredients = append(book.Ingredients, ing)

		case "recipe":
			recipeBlocks = append(recipeBlocks, block)
		}
	}

	seen := make(map[string]bool)
	for _, block := range recipeBlocks {
		name := block.Labels[0]
		if seen[name] {
			return nil, errorAt(block.DefRange, fmt.Sprintf("duplicate recipe %q", name))
		}
		seen[name] = true

		recipe, err := d.recipe(block, byName)
		if err != nil {
			return nil, err
		}
		book.Recipes = append(book.Recipes, recipe)
	}

	return book, nil
}

type decoder struct {
	units *units.Table
}

func (d *decoder) margin(block *hcl.Block) (*types.MarginPolicy, error) {
	content, diags := block.Body.Content(marginSchema)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}

	target, err := decimalAttr(content.Attributes["target"])
	if err != nil {
		return nil, err
	}
	minimum, err := decimalAttr(content.Attributes["min"])
	if err != nil {
		return nil, err
	}
	return &types.MarginPolicy{TargetMarginPercent: target, MinMarginPercent: minimum}, nil
}

func (d *decoder) ingredient(block *hcl.Block) (*types.Ingredient, error) {
	content, diags := block.Body.Content(ingredientSchema)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}

	ing := &types.Ingredient{Name: block.Labels[0]}
	var err error

	if ing.Pack.PackQuantity, err = decimalAttr(content.Attributes["pack_quantity"]); err != nil {
		return nil, err
	}
	if ing.Pack.PackPrice, err = decimalAttr(content.Attributes["pack_price"]); err != nil {
		return nil, err
	}
	if ing.Pack.PackUnit, err = d.unitAttr(content.Attributes["pack_unit"]); err != nil {
		return nil, err
	}
	if attr, ok := content.Attributes["density"]; ok {
		density, err := decimalAttr(attr)
		if err != nil {
			return nil, err
		}
		ing.Pack.Density = &density
	}

	for _, tb := range content.Blocks {
		tier, err := d.tier(tb)
		if err != nil {
			return nil, err
		}
		ing.Tiers = append(ing.Tiers, tier)
	}

	if err := ing.Pack.Validate(); err != nil {
		return nil, withRange(err, block.DefRange).WithContext("ingredient", ing.Name)
	}
	return ing, nil
}

func (d *decoder) tier(block *hcl.Block) (types.BatchPricingTier, error) {
	content, diags := block.Body.Content(tierSchema)
	if diags.HasErrors() {
		return types.BatchPricingTier{}, diagError(diags)
	}

	qty, err := decimalAttr(content.Attributes["pack_quantity"])
	if err != nil {
		return types.BatchPricingTier{}, err
	}
	price, err := decimalAttr(content.Attributes["pack_price"])
	if err != nil {
		return types.BatchPricingTier{}, err
	}
	return types.BatchPricingTier{PackQuantity: qty, PackPrice: price}, nil
}

func (d *decoder) recipe(block *hcl.Block, ingredients map[string]*types.Ingredient) (*types.Recipe, error) {
	content, diags := block.Body.Content(recipeSchema)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}

	recipe := &types.Recipe{Name: block.Labels[0]}
	var err error

	if recipe.YieldQuantity, err = decimalAttr(content.Attributes["yield_quantity"]); err != nil {
		return nil, err
	}
	if attr, ok := content.Attributes["yield_unit"]; ok {
		if recipe.YieldUnit, err = stringAttr(attr); err != nil {
			return nil, err
		}
	}
	if attr, ok := content.Attributes["selling_price"]; ok {
		price, err := decimalAttr(attr)
		if err != nil {
			return nil, err
		}
		recipe.SellingPrice = &price
	}

	for _, b := range content.Blocks {
		switch b.Type {
		case "item":
			item, err := d.item(b, ingredients)
			if err != nil {
				return nil, withRecipe(err, recipe.Name)
			}
			recipe.Items = append(recipe.Items, item)

		case "section":
			section, err := d.section(b, ingredients)
			if err != nil {
				return nil, withRecipe(err, recipe.Name)
			}
			recipe.Sections = append(recipe.Sections, section)
		}
	}

	if err := recipe.Validate(); err != nil {
		return nil, withRange(err, block.DefRange)
	}
	return recipe, nil
}

func (d *decoder) section(block *hcl.Block, ingredients map[string]*types.Ingredient) (types.Section, error) {
	content, diags := block.Body.Content(sectionSchema)
	if diags.HasErrors() {
		return types.Section{}, diagError(diags)
	}

	section := types.Section{Name: block.Labels[0]}
	for _, b := range content.Blocks {
		item, err := d.item(b, ingredients)
		if err != nil {
			return types.Section{}, err
		}
		section.Items = append(section.Items, item)
	}
	return section, nil
}

func (d *decoder) item(block *hcl.Block, ingredients map[string]*types.Ingredient) (types.RecipeItem, error) {
	name := block.Labels[0]
	ing, ok := ingredients[name]
	if !ok {
		return types.RecipeItem{}, withRange(apperrors.NotFound("ingredient", name), block.LabelRanges[0])
	}

	content, diags := block.Body.Content(itemSchema)
	if diags.HasErrors() {
		return types.RecipeItem{}, diagError(diags)
	}

	qty, err := decimalAttr(content.Attributes["quantity"])
	if err != nil {
		return types.RecipeItem{}, err
	}
	unit, err := d.unitAttr(content.Attributes["unit"])
	if err != nil {
		return types.RecipeItem{}, err
	}
	return types.RecipeItem{Ingredient: ing, Quantity: qty, Unit: unit}, nil
}

// unitAttr reads a unit name and rejects names outside the vocabulary
func (d *decoder) unitAttr(attr *hcl.Attribute) (string, error) {
	unit, err := stringAttr(attr)
	if err != nil {
		return "", err
	}
	if _, err := d.units.Lookup(unit); err != nil {
		return "", withRange(err, attr.Expr.Range())
	}
	return unit, nil
}

func decimalAttr(attr *hcl.Attribute) (decimal.Decimal, error) {
	val, diags := evaluate(attr)
	if diags.HasErrors() {
		return decimal.Zero, diagError(diags)
	}
	d, err := ctyDecimal(val)
	if err != nil {
		return decimal.Zero, errorAt(attr.Expr.Range(), fmt.Sprintf("%s: %v", attr.Name, err))
	}
	return d, nil
}

func stringAttr(attr *hcl.Attribute) (string, error) {
	val, diags := evaluate(attr)
	if diags.HasErrors() {
		return "", diagError(diags)
	}
	s, err := ctyString(val)
	if err != nil {
		return "", errorAt(attr.Expr.Range(), fmt.Sprintf("%s: %v", attr.Name, err))
	}
	return s, nil
}

// diagError converts the first error diagnostic into a parsing error
func diagError(diags hcl.Diagnostics) error {
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		msg := diag.Summary
		if diag.Detail != "" {
			msg += ": " + diag.Detail
		}
		if diag.Subject != nil {
			return errorAt(*diag.Subject, msg)
		}
		return apperrors.Parsing(msg, nil)
	}
	return apperrors.Parsing(diags.Error(), nil)
}

func errorAt(rng hcl.Range, msg string) *apperrors.Error {
	return apperrors.Parsing(fmt.Sprintf("%s:%d: %s", rng.Filename, rng.Start.Line, msg), nil).
		WithContext("file", rng.Filename).
		WithContext("line", rng.Start.Line)
}

// withRange attaches a source position to an engine error, keeping its type
func withRange(err error, rng hcl.Range) *apperrors.Error {
	e, ok := err.(*apperrors.Error)
	if !ok {
		e = apperrors.Parsing(err.Error(), err)
	}
	return e.WithContext("file", rng.Filename).WithContext("line", rng.Start.Line)
}

func withRecipe(err error, name string) error {
	if e, ok := err.(*apperrors.Error); ok {
		return e.WithContext("recipe", name)
	}
	return err
}
