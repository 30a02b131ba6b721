package store

import (
	"context"

	"github.com/Simplici0/costline/internal/costing"
)

// Catalog loads the owner's inventory and recipes as one costing snapshot.
func (s *Store) Catalog(ctx context.Context, ownerID string) (*costing.Catalog, error) {
	items, err := s.ListInventory(ctx, ownerID, InventoryFilter{})
	if err != nil {
		return nil, err
	}
	recipes, err := s.ListRecipes(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return costing.NewCatalog(items, recipes), nil
}
