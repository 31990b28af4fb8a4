// Package catalog provides the persistent ingredient catalog.
// Supports two database/sql backends: embedded SQLite and PostgreSQL via pgx.
package catalog

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"recipe-cost/core/types"
	apperrors "recipe-cost/internal/errors"
	"recipe-cost/internal/logging"
)

// Driver is a database/sql driver name
type Driver string

const (
	DriverSQLite   Driver = "sqlite3"
	DriverPostgres Driver = "pgx"
)

// Store is an ingredient catalog backed by SQL. Decimals are stored as TEXT.
type Store struct {
	db     *sql.DB
	driver Driver
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ingredients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		pack_quantity TEXT NOT NULL,
		pack_unit TEXT NOT NULL,
		pack_price TEXT NOT NULL,
		density TEXT,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS ingredient_tiers (
		ingredient_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		pack_quantity TEXT NOT NULL,
		pack_price TEXT NOT NULL,
		PRIMARY KEY (ingredient_id, position)
	)`,
}

// Open connects to the catalog and creates its tables.
// "postgres" is accepted as an alias for the pgx driver.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d := Driver(driver)
	if driver == "postgres" {
		d = DriverPostgres
	}

	switch d {
	case DriverSQLite:
		if err := ensureDir(dsn); err != nil {
			return nil, apperrors.Config("failed to create catalog directory", err)
		}
	case DriverPostgres:
	default:
		return nil, apperrors.Newf(apperrors.TypeConfig, "unsupported catalog driver %q", driver)
	}

	db, err := sql.Open(string(d), dsn)
	if err != nil {
		return nil, apperrors.Config("failed to open catalog", err)
	}
	if d == DriverSQLite {
		// an in-memory database lives only as long as its connection
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.Config("failed to connect to catalog", err)
	}

	s := &Store{db: db, driver: d}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logging.Debug("catalog opened", zap.String("driver", string(d)))
	return s, nil
}

func ensureDir(dsn string) error {
	if dsn == "" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	return os.MkdirAll(filepath.Dir(dsn), 0755)
}

func (s *Store) migrate(ctx context.Context) error {
	for _, q := range schema {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return apperrors.Internal("failed to create catalog schema", err)
		}
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for postgres
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Save inserts or replaces ingredients by name, together with their tiers.
// Ingredients without an ID are given a new one once the transaction commits; an existing row keeps its ID.
func (s *Store) Save(ctx context.Context, ingredients ...*types.Ingredient) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	ids := make([]string, len(ingredients))
	for n, ing := range ingredients {
		if err := ing.Pack.Validate(); err != nil {
			if e, ok := err.(*apperrors.Error); ok {
				e.WithContext("ingredient", ing.Name)
			}
			return err
		}
		id := ing.ID
		if id == "" {
			id = uuid.New().String()
		}

		err := tx.QueryRowContext(ctx, s.rebind(`
			INSERT INTO ingredients (id, name, pack_quantity, pack_unit, pack_price, density, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (name) DO UPDATE SET
				pack_quantity = excluded.pack_quantity,
				pack_unit = excluded.pack_unit,
				pack_price = excluded.pack_price,
				density = excluded.density,
				updated_at = excluded.updated_at
			RETURNING id`),
			id, ing.Name, ing.Pack.PackQuantity.String(), ing.Pack.PackUnit, ing.Pack.PackPrice.String(),
			nullDecimal(ing.Pack.Density), now,
		).Scan(&id)
		if err != nil {
			return apperrors.Internal("failed to save ingredient", err).WithContext("ingredient", ing.Name)
		}
		ids[n] = id

		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM ingredient_tiers WHERE ingredient_id = ?`), id); err != nil {
			return apperrors.Internal("failed to replace tiers", err).WithContext("ingredient", ing.Name)
		}
		for i, tier := range ing.Tiers {
			_, err := tx.ExecContext(ctx, s.rebind(`
				INSERT INTO ingredient_tiers (ingredient_id, position, pack_quantity, pack_price)
				VALUES (?, ?, ?, ?)`),
				id, i, tier.PackQuantity.String(), tier.PackPrice.String(),
			)
			if err != nil {
				return apperrors.Internal("failed to save tier", err).WithContext("ingredient", ing.Name)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Internal("failed to commit catalog", err)
	}
	for n, ing := range ingredients {
		ing.ID = ids[n]
	}
	logging.Debug("catalog saved", zap.Int("ingredients", len(ingredients)))
	return nil
}

// Get returns the named ingredient
func (s *Store) Get(ctx context.Context, name string) (*types.Ingredient, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, name, pack_quantity, pack_unit, pack_price, density
		FROM ingredients WHERE name = ?`), name)

	ing, err := scanIngredient(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("ingredient", name)
	}
	if err != nil {
		return nil, err
	}

	tiers, err := s.tiers(ctx, `WHERE ingredient_id = ?`, ing.ID)
	if err != nil {
		return nil, err
	}
	ing.Tiers = tiers[ing.ID]
	return ing, nil
}

// List returns every ingredient ordered by name
func (s *Store) List(ctx context.Context) ([]*types.Ingredient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, pack_quantity, pack_unit, pack_price, density
		FROM ingredients ORDER BY name`)
	if err != nil {
		return nil, apperrors.Internal("failed to list ingredients", err)
	}
	defer rows.Close()

	var ingredients []*types.Ingredient
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("failed to list ingredients", err)
	}

	tiers, err := s.tiers(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, ing := range ingredients {
		ing.Tiers = tiers[ing.ID]
	}
	return ingredients, nil
}

// Delete removes the named ingredient and its tiers
func (s *Store) Delete(ctx context.Context, name string) error {
	ing, err := s.Get(ctx, name)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM ingredient_tiers WHERE ingredient_id = ?`), ing.ID); err != nil {
		return apperrors.Internal("failed to delete tiers", err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM ingredients WHERE id = ?`), ing.ID); err != nil {
		return apperrors.Internal("failed to delete ingredient", err)
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Internal("failed to commit catalog", err)
	}
	return nil
}

func (s *Store) tiers(ctx context.Context, where string, args ...interface{}) (map[string][]types.BatchPricingTier, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT ingredient_id, pack_quantity, pack_price
		FROM ingredient_tiers `+where+`
		ORDER BY ingredient_id, position`), args...)
	if err != nil {
		return nil, apperrors.Internal("failed to load tiers", err)
	}
	defer rows.Close()

	tiers := make(map[string][]types.BatchPricingTier)
	for rows.Next() {
		var id, qty, price string
		if err := rows.Scan(&id, &qty, &price); err != nil {
			return nil, apperrors.Internal("failed to scan tier", err)
		}
		tier := types.BatchPricingTier{}
		if tier.PackQuantity, err = parseDecimal(qty); err != nil {
			return nil, err
		}
		if tier.PackPrice, err = parseDecimal(price); err != nil {
			return nil, err
		}
		tiers[id] = append(tiers[id], tier)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("failed to load tiers", err)
	}
	return tiers, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanIngredient(row scanner) (*types.Ingredient, error) {
	var (
		ing        types.Ingredient
		qty, price string
		density    sql.NullString
	)
	if err := row.Scan(&ing.ID, &ing.Name, &qty, &ing.Pack.PackUnit, &price, &density); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, apperrors.Internal("failed to scan ingredient", err)
	}

	var err error
	if ing.Pack.PackQuantity, err = parseDecimal(qty); err != nil {
		return nil, err
	}
	if ing.Pack.PackPrice, err = parseDecimal(price); err != nil {
		return nil, err
	}
	if density.Valid {
		d, err := parseDecimal(density.String)
		if err != nil {
			return nil, err
		}
		ing.Pack.Density = &d
	}
	return &ing, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperrors.Internal("corrupt decimal in catalog", err).WithContext("value", s)
	}
	return d, nil
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
