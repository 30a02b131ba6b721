package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Simplici0/costline/internal/catalog"
	"github.com/Simplici0/costline/internal/store"
)

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
	// CatalogFile optionally names a YAML fixture loaded into the admin's catalog.
	CatalogFile string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Skipped int
}

// Fixture rows are matched by name within each of these tables.
const (
	kindSupplier = "supplier"
	kindItem     = "inventory item"
	kindRecipe   = "recipe"
	kindDish     = "dish"
)

type seeder struct {
	ctx     context.Context
	store   *store.Store
	ownerID string
	ids     map[string]map[string]string
	stats   Stats
}

// Run executes the startup seed in an idempotent way. Rows are matched by
// email or by name, so running it again inserts nothing.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return Stats{}, nil
	}

	var fixture *Fixture
	if cfg.CatalogFile != "" {
		f, err := LoadFixture(cfg.CatalogFile)
		if err != nil {
			return Stats{}, err
		}
		fixture = f
	}

	ctx := context.Background()
	var stats Stats
	err := store.New(db).WithTx(ctx, func(tx *store.Store) error {
		s := &seeder{ctx: ctx, store: tx}
		if err := s.admin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
		if fixture != nil {
			if err := s.catalog(fixture); err != nil {
				return err
			}
		}
		stats = s.stats
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("seed: %w", err)
	}
	return stats, nil
}

func (s *seeder) admin(email, password string) error {
	user, err := s.store.UserByEmail(s.ctx, email)
	if err == nil {
		s.ownerID = user.ID
		s.stats.Skipped++
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("check admin user existence: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user, err = s.store.CreateUser(s.ctx, email, string(hash))
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	s.ownerID = user.ID
	s.stats.Inserts++
	return nil
}

func (s *seeder) catalog(f *Fixture) error {
	if err := s.loadNames(); err != nil {
		return err
	}
	for _, sup := range f.Suppliers {
		if err := s.ensureSupplier(sup); err != nil {
			return err
		}
	}
	for _, item := range f.Inventory {
		if err := s.ensureInventoryItem(item); err != nil {
			return err
		}
	}
	for _, r := range f.Recipes {
		if err := s.ensureRecipe(r); err != nil {
			return err
		}
	}
	for _, d := range f.Dishes {
		if err := s.ensureDish(d); err != nil {
			return err
		}
	}
	return nil
}

// loadNames indexes the owner's existing rows by name.
func (s *seeder) loadNames() error {
	s.ids = map[string]map[string]string{
		kindSupplier: {},
		kindItem:     {},
		kindRecipe:   {},
		kindDish:     {},
	}

	suppliers, err := s.store.ListSuppliers(s.ctx, s.ownerID)
	if err != nil {
		return err
	}
	for _, sup := range suppliers {
		s.ids[kindSupplier][sup.Name] = sup.ID
	}
	items, err := s.store.ListInventory(s.ctx, s.ownerID, store.InventoryFilter{})
	if err != nil {
		return err
	}
	for _, item := range items {
		s.ids[kindItem][item.Name] = item.ID
	}
	recipes, err := s.store.ListRecipes(s.ctx, s.ownerID)
	if err != nil {
		return err
	}
	for _, r := range recipes {
		s.ids[kindRecipe][r.Name] = r.ID
	}
	dishes, err := s.store.ListDishes(s.ctx, s.ownerID)
	if err != nil {
		return err
	}
	for _, d := range dishes {
		s.ids[kindDish][d.Name] = d.ID
	}
	return nil
}

// exists records a skip when the owner already has a row called name.
func (s *seeder) exists(kind, name string) bool {
	if _, ok := s.ids[kind][name]; ok {
		s.stats.Skipped++
		return true
	}
	return false
}

func (s *seeder) inserted(kind, name, id string) {
	s.ids[kind][name] = id
	s.stats.Inserts++
}

func (s *seeder) mustLookup(kind, name string) (string, error) {
	id, ok := s.ids[kind][name]
	if !ok {
		return "", fmt.Errorf("seed references unknown %s %q", kind, name)
	}
	return id, nil
}

func (s *seeder) ensureSupplier(in FixtureSupplier) error {
	sup, err := catalog.ValidateSupplier(catalog.SupplierInput{
		Name:    in.Name,
		Contact: in.Contact,
		Email:   in.Email,
		Phone:   in.Phone,
	})
	if err != nil {
		return fmt.Errorf("seed supplier %q: %w", in.Name, err)
	}
	if s.exists(kindSupplier, sup.Name) {
		return nil
	}
	created, err := s.store.CreateSupplier(s.ctx, s.ownerID, sup)
	if err != nil {
		return fmt.Errorf("insert seed supplier %q: %w", sup.Name, err)
	}
	s.inserted(kindSupplier, created.Name, created.ID)
	return nil
}

func (s *seeder) ensureInventoryItem(in FixtureItem) error {
	input := catalog.InventoryItemInput{
		Name:         in.Name,
		Category:     catalog.Category(in.Category),
		Quantity:     catalog.ParseAmount(in.Quantity),
		Size:         catalog.ParseAmount(in.Size),
		Unit:         in.Unit,
		PricePerUnit: catalog.ParseAmount(in.PricePerUnit),
		PricePerPack: catalog.ParseAmount(in.PricePerPack),
	}
	if in.Supplier != "" {
		id, err := s.mustLookup(kindSupplier, in.Supplier)
		if err != nil {
			return err
		}
		input.SupplierID = id
	}
	item, err := catalog.ValidateInventoryItem(input)
	if err != nil {
		return fmt.Errorf("seed inventory item %q: %w", in.Name, err)
	}
	if s.exists(kindItem, item.Name) {
		return nil
	}
	created, err := s.store.CreateInventoryItem(s.ctx, s.ownerID, item)
	if err != nil {
		return fmt.Errorf("insert seed inventory item %q: %w", item.Name, err)
	}
	s.inserted(kindItem, created.Name, created.ID)
	return nil
}

func (s *seeder) ensureRecipe(in FixtureRecipe) error {
	input := catalog.RecipeInput{
		Name:      in.Name,
		BatchSize: catalog.ParseAmount(in.BatchSize),
		BatchUnit: in.BatchUnit,
		Units:     in.Units,
	}
	for _, line := range in.Ingredients {
		itemID, err := s.mustLookup(kindItem, line.Item)
		if err != nil {
			return err
		}
		input.Ingredients = append(input.Ingredients, catalog.RecipeIngredientInput{
			InventoryID: itemID,
			Quantity:    catalog.ParseAmount(line.Quantity),
			Unit:        line.Unit,
		})
	}
	r, err := catalog.ValidateRecipe(input)
	if err != nil {
		return fmt.Errorf("seed recipe %q: %w", in.Name, err)
	}
	if s.exists(kindRecipe, r.Name) {
		return nil
	}
	created, err := s.store.CreateRecipe(s.ctx, s.ownerID, r)
	if err != nil {
		return fmt.Errorf("insert seed recipe %q: %w", r.Name, err)
	}
	s.inserted(kindRecipe, created.Name, created.ID)
	return nil
}

func (s *seeder) ensureDish(in FixtureDish) error {
	input := catalog.DishInput{Name: in.Name, SellPrice: catalog.ParseAmount(in.SellPrice)}
	for _, line := range in.Ingredients {
		ref := catalog.DishIngredientInput{Quantity: catalog.ParseAmount(line.Quantity), Unit: line.Unit}
		if line.Item != "" {
			id, err := s.mustLookup(kindItem, line.Item)
			if err != nil {
				return err
			}
			ref.InventoryID = id
		}
		if line.Recipe != "" {
			id, err := s.mustLookup(kindRecipe, line.Recipe)
			if err != nil {
				return err
			}
			ref.RecipeID = id
		}
		input.Ingredients = append(input.Ingredients, ref)
	}
	d, err := catalog.ValidateDish(input)
	if err != nil {
		return fmt.Errorf("seed dish %q: %w", in.Name, err)
	}
	if s.exists(kindDish, d.Name) {
		return nil
	}
	created, err := s.store.CreateDish(s.ctx, s.ownerID, d)
	if err != nil {
		return fmt.Errorf("insert seed dish %q: %w", d.Name, err)
	}
	s.inserted(kindDish, created.Name, created.ID)
	return nil
}
