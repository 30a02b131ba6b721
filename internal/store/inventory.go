package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Simplici0/costline/internal/catalog"
)

// InventoryFilter narrows ListInventory. Zero values match everything.
type InventoryFilter struct {
	Category catalog.Category
	Query    string
}

const inventoryColumns = `id, name, category, quantity, size, unit, price_per_unit, price_per_pack, supplier_id, created_at, updated_at`

// ListInventory returns the owner's inventory ordered by name. Query matches
// a case-insensitive substring of the item name.
func (s *Store) ListInventory(ctx context.Context, ownerID string, f InventoryFilter) ([]catalog.InventoryItem, error) {
	query := strings.TrimSpace(f.Query)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE owner_id = ?
			AND (? = '' OR category = ?)
			AND (? = '' OR instr(lower(name), lower(?)) > 0)
		ORDER BY name COLLATE NOCASE, id
	`, ownerID, string(f.Category), string(f.Category), query, query)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	items := make([]catalog.InventoryItem, 0)
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		item.OwnerID = ownerID
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}
	return items, nil
}

// GetInventoryItem returns one inventory item.
func (s *Store) GetInventoryItem(ctx context.Context, ownerID, id string) (catalog.InventoryItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+inventoryColumns+` FROM inventory_items WHERE id = ? AND owner_id = ?
	`, id, ownerID)
	item, err := scanInventoryItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.InventoryItem{}, ErrNotFound
	}
	if err != nil {
		return catalog.InventoryItem{}, err
	}
	item.OwnerID = ownerID
	return item, nil
}

// CreateInventoryItem inserts item for the owner. A supplier id must name one
// of the owner's suppliers.
func (s *Store) CreateInventoryItem(ctx context.Context, ownerID string, item catalog.InventoryItem) (catalog.InventoryItem, error) {
	item.ID = s.newID()
	ts := s.timestamp()
	err := s.withTx(ctx, func(tx queryer) error {
		if item.SupplierID != "" {
			if err := ensureOwned(ctx, tx, "suppliers", ownerID, item.SupplierID); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO inventory_items (
				id, owner_id, name, category, quantity, size, unit,
				price_per_unit, price_per_pack, supplier_id, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			item.ID, ownerID, item.Name, string(item.Category),
			amountArg(item.Quantity), amountArg(item.Size), item.Unit,
			amountArg(item.PricePerUnit), amountArg(item.PricePerPack),
			textArg(item.SupplierID), ts, ts,
		); err != nil {
			return fmt.Errorf("insert inventory item: %w", err)
		}
		return nil
	})
	if err != nil {
		return catalog.InventoryItem{}, err
	}
	return s.GetInventoryItem(ctx, ownerID, item.ID)
}

// UpdateInventoryItem overwrites every field of the item.
func (s *Store) UpdateInventoryItem(ctx context.Context, ownerID, id string, item catalog.InventoryItem) (catalog.InventoryItem, error) {
	err := s.withTx(ctx, func(tx queryer) error {
		if item.SupplierID != "" {
			if err := ensureOwned(ctx, tx, "suppliers", ownerID, item.SupplierID); err != nil {
				return err
			}
		}
		result, err := tx.ExecContext(ctx, `
			UPDATE inventory_items
			SET
				name = ?,
				category = ?,
				quantity = ?,
				size = ?,
				unit = ?,
				price_per_unit = ?,
				price_per_pack = ?,
				supplier_id = ?,
				updated_at = ?
			WHERE id = ? AND owner_id = ?
		`,
			item.Name, string(item.Category),
			amountArg(item.Quantity), amountArg(item.Size), item.Unit,
			amountArg(item.PricePerUnit), amountArg(item.PricePerPack),
			textArg(item.SupplierID), s.timestamp(), id, ownerID,
		)
		if err != nil {
			return fmt.Errorf("update inventory item: %w", err)
		}
		return affectedOrNotFound(result)
	})
	if err != nil {
		return catalog.InventoryItem{}, err
	}
	return s.GetInventoryItem(ctx, ownerID, id)
}

// DeleteInventoryItem removes an item that no recipe or dish uses.
func (s *Store) DeleteInventoryItem(ctx context.Context, ownerID, id string) error {
	return s.withTx(ctx, func(tx queryer) error {
		if err := ensureExists(ctx, tx, "inventory_items", ownerID, id); err != nil {
			return err
		}
		used, err := exists(ctx, tx, `
			SELECT EXISTS(SELECT 1 FROM recipe_ingredients WHERE inventory_item_id = ?)
				OR EXISTS(SELECT 1 FROM dish_ingredients WHERE inventory_item_id = ?)
		`, id, id)
		if err != nil {
			return fmt.Errorf("check inventory usage: %w", err)
		}
		if used {
			return ErrInUse
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM inventory_items WHERE id = ? AND owner_id = ?`, id, ownerID)
		if err != nil {
			return fmt.Errorf("delete inventory item: %w", err)
		}
		return affectedOrNotFound(result)
	})
}

func scanInventoryItem(row scanner) (catalog.InventoryItem, error) {
	var (
		item                                  catalog.InventoryItem
		category                              string
		quantity, size, perUnit, perPack, sup sql.NullString
		created, updated                      string
	)
	if err := row.Scan(
		&item.ID, &item.Name, &category, &quantity, &size, &item.Unit,
		&perUnit, &perPack, &sup, &created, &updated,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.InventoryItem{}, err
		}
		return catalog.InventoryItem{}, fmt.Errorf("scan inventory item: %w", err)
	}
	item.Category = catalog.Category(category)
	item.Quantity = amountFrom(quantity)
	item.Size = amountFrom(size)
	item.PricePerUnit = amountFrom(perUnit)
	item.PricePerPack = amountFrom(perPack)
	item.SupplierID = sup.String
	item.CreatedAt = parseTime(created)
	item.UpdatedAt = parseTime(updated)
	return item, nil
}
