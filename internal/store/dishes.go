package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/costline/internal/catalog"
)

// ListDishes returns the owner's dishes with their ingredient lines.
func (s *Store) ListDishes(ctx context.Context, ownerID string) ([]catalog.Dish, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, sell_price, created_at, updated_at
		FROM dishes
		WHERE owner_id = ?
		ORDER BY name COLLATE NOCASE, id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query dishes: %w", err)
	}
	defer rows.Close()

	dishes := make([]catalog.Dish, 0)
	index := make(map[string]int)
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, err
		}
		d.OwnerID = ownerID
		index[d.ID] = len(dishes)
		dishes = append(dishes, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dishes: %w", err)
	}

	lineRows, err := s.db.QueryContext(ctx, `
		SELECT di.dish_id, di.inventory_item_id, di.recipe_id, di.quantity, di.unit
		FROM dish_ingredients di
		JOIN dishes d ON d.id = di.dish_id
		WHERE d.owner_id = ?
		ORDER BY di.dish_id, di.position
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query dish ingredients: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var dishID string
		line, err := scanDishIngredient(lineRows, &dishID)
		if err != nil {
			return nil, err
		}
		if i, ok := index[dishID]; ok {
			dishes[i].Ingredients = append(dishes[i].Ingredients, line)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dish ingredients: %w", err)
	}
	return dishes, nil
}

// GetDish returns one dish with its ingredient lines in stored order.
func (s *Store) GetDish(ctx context.Context, ownerID, id string) (catalog.Dish, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, sell_price, created_at, updated_at
		FROM dishes
		WHERE id = ? AND owner_id = ?
	`, id, ownerID)
	d, err := scanDish(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Dish{}, ErrNotFound
	}
	if err != nil {
		return catalog.Dish{}, err
	}
	d.OwnerID = ownerID

	rows, err := s.db.QueryContext(ctx, `
		SELECT dish_id, inventory_item_id, recipe_id, quantity, unit
		FROM dish_ingredients
		WHERE dish_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return catalog.Dish{}, fmt.Errorf("query dish ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dishID string
		line, err := scanDishIngredient(rows, &dishID)
		if err != nil {
			return catalog.Dish{}, err
		}
		d.Ingredients = append(d.Ingredients, line)
	}
	if err := rows.Err(); err != nil {
		return catalog.Dish{}, fmt.Errorf("iterate dish ingredients: %w", err)
	}
	return d, nil
}

// CreateDish inserts the dish and its lines in one transaction.
func (s *Store) CreateDish(ctx context.Context, ownerID string, d catalog.Dish) (catalog.Dish, error) {
	d.ID = s.newID()
	ts := s.timestamp()
	err := s.withTx(ctx, func(tx queryer) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO dishes (id, owner_id, name, sell_price, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, d.ID, ownerID, d.Name, amountArg(d.SellPrice), ts, ts); err != nil {
			return fmt.Errorf("insert dish: %w", err)
		}
		return insertDishIngredients(ctx, tx, ownerID, d.ID, d.Ingredients)
	})
	if err != nil {
		return catalog.Dish{}, err
	}
	return s.GetDish(ctx, ownerID, d.ID)
}

// UpdateDish overwrites the dish and replaces its full ingredient list.
func (s *Store) UpdateDish(ctx context.Context, ownerID, id string, d catalog.Dish) (catalog.Dish, error) {
	err := s.withTx(ctx, func(tx queryer) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE dishes
			SET
				name = ?,
				sell_price = ?,
				updated_at = ?
			WHERE id = ? AND owner_id = ?
		`, d.Name, amountArg(d.SellPrice), s.timestamp(), id, ownerID)
		if err != nil {
			return fmt.Errorf("update dish: %w", err)
		}
		if err := affectedOrNotFound(result); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM dish_ingredients WHERE dish_id = ?`, id); err != nil {
			return fmt.Errorf("clear dish ingredients: %w", err)
		}
		return insertDishIngredients(ctx, tx, ownerID, id, d.Ingredients)
	})
	if err != nil {
		return catalog.Dish{}, err
	}
	return s.GetDish(ctx, ownerID, id)
}

// DeleteDish removes the dish and its lines.
func (s *Store) DeleteDish(ctx context.Context, ownerID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM dishes WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete dish: %w", err)
	}
	return affectedOrNotFound(result)
}

func insertDishIngredients(ctx context.Context, tx queryer, ownerID, dishID string, lines []catalog.DishIngredient) error {
	for i, line := range lines {
		var itemID, recipeID any
		switch line.Ref.Kind() {
		case catalog.RefInventory:
			if err := ensureOwned(ctx, tx, "inventory_items", ownerID, line.Ref.ID()); err != nil {
				return err
			}
			itemID = line.Ref.ID()
		case catalog.RefRecipe:
			if err := ensureOwned(ctx, tx, "recipes", ownerID, line.Ref.ID()); err != nil {
				return err
			}
			recipeID = line.Ref.ID()
		default:
			return fmt.Errorf("%w: dish ingredient %d has no reference", ErrUnknownReference, i)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO dish_ingredients (dish_id, position, inventory_item_id, recipe_id, quantity, unit)
			VALUES (?, ?, ?, ?, ?, ?)
		`, dishID, i, itemID, recipeID, line.Quantity.String(), line.Unit); err != nil {
			return fmt.Errorf("insert dish ingredient: %w", err)
		}
	}
	return nil
}

func scanDish(row scanner) (catalog.Dish, error) {
	var (
		d                catalog.Dish
		sellPrice        sql.NullString
		created, updated string
	)
	if err := row.Scan(&d.ID, &d.Name, &sellPrice, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Dish{}, err
		}
		return catalog.Dish{}, fmt.Errorf("scan dish: %w", err)
	}
	d.SellPrice = amountFrom(sellPrice)
	d.Ingredients = []catalog.DishIngredient{}
	d.CreatedAt = parseTime(created)
	d.UpdatedAt = parseTime(updated)
	return d, nil
}

func scanDishIngredient(row scanner, dishID *string) (catalog.DishIngredient, error) {
	var (
		line             catalog.DishIngredient
		itemID, recipeID sql.NullString
		quantity         string
	)
	if err := row.Scan(dishID, &itemID, &recipeID, &quantity, &line.Unit); err != nil {
		return catalog.DishIngredient{}, fmt.Errorf("scan dish ingredient: %w", err)
	}
	switch {
	case itemID.Valid:
		line.Ref = catalog.InventoryRef(itemID.String)
	case recipeID.Valid:
		line.Ref = catalog.RecipeRef(recipeID.String)
	}
	line.Quantity = catalog.OrZero(catalog.ParseAmount(quantity))
	return line, nil
}
