package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"desideri-go/internal/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

type CatalogItem struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Price       string `yaml:"price"`
	Available   *bool  `yaml:"available"`
	Description string `yaml:"description"`
}

// Catalog is the seedable restaurant setup: the menu and the floor plan.
type Catalog struct {
	Menu  []CatalogItem    `yaml:"menu"`
	Floor domain.FloorPlan `yaml:"floor"`
}

// LoadCatalog reads a catalog file, or the embedded default when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	raw := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		raw = b
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Floor.Zones) == 0 {
		c.Floor = domain.DefaultFloorPlan()
	}
	for i, it := range c.Menu {
		if strings.TrimSpace(it.Name) == "" || strings.TrimSpace(it.Category) == "" {
			return nil, fmt.Errorf("catalog item %d: name and category are required", i)
		}
		if _, err := decimal.NewFromString(it.Price); err != nil {
			return nil, fmt.Errorf("catalog item %q: price: %w", it.Name, err)
		}
	}
	return &c, nil
}

func (s *Store) IsCatalogEmpty(ctx context.Context) (bool, error) {
	n, err := s.Q.CountMenu(ctx)
	return n == 0, err
}

// SeedCatalog upserts every menu item by name. Prices and categories of
// existing items are refreshed; ids are preserved.
func (s *Store) SeedCatalog(ctx context.Context, c *Catalog) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, it := range c.Menu {
		if err := s.Q.upsertMenuItem(ctx, tx, it); err != nil {
			return fmt.Errorf("seed %q: %w", it.Name, err)
		}
	}
	return tx.Commit()
}

func (q *Queries) upsertMenuItem(ctx context.Context, tx *sql.Tx, it CatalogItem) error {
	price, err := decimal.NewFromString(it.Price)
	if err != nil {
		return err
	}
	avail := true
	if it.Available != nil {
		avail = *it.Available
	}
	_, err = q.exec(ctx, tx, `
		INSERT INTO menu(name,category,price,available,description,created_at,updated_at)
		VALUES(?,?,?,?,?,?,?)
		ON CONFLICT(name) DO UPDATE SET
			category=excluded.category,
			price=excluded.price,
			available=excluded.available,
			description=excluded.description,
			updated_at=excluded.updated_at`,
		strings.TrimSpace(it.Name), strings.TrimSpace(it.Category), price, b2i(avail), it.Description, unixNow(), unixNow())
	return err
}
