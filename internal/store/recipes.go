package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/costline/internal/catalog"
)

// ListRecipes returns the owner's recipes with their ingredient lines.
func (s *Store) ListRecipes(ctx context.Context, ownerID string) ([]catalog.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, batch_size, batch_unit, units, created_at, updated_at
		FROM recipes
		WHERE owner_id = ?
		ORDER BY name COLLATE NOCASE, id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	recipes := make([]catalog.Recipe, 0)
	index := make(map[string]int)
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		r.OwnerID = ownerID
		index[r.ID] = len(recipes)
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}

	lineRows, err := s.db.QueryContext(ctx, `
		SELECT ri.recipe_id, ri.inventory_item_id, ri.quantity, ri.unit
		FROM recipe_ingredients ri
		JOIN recipes r ON r.id = ri.recipe_id
		WHERE r.owner_id = ?
		ORDER BY ri.recipe_id, ri.position
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query recipe ingredients: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var recipeID string
		line, err := scanRecipeIngredient(lineRows, &recipeID)
		if err != nil {
			return nil, err
		}
		if i, ok := index[recipeID]; ok {
			recipes[i].Ingredients = append(recipes[i].Ingredients, line)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipe ingredients: %w", err)
	}
	return recipes, nil
}

// GetRecipe returns one recipe with its ingredient lines in stored order.
func (s *Store) GetRecipe(ctx context.Context, ownerID, id string) (catalog.Recipe, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, batch_size, batch_unit, units, created_at, updated_at
		FROM recipes
		WHERE id = ? AND owner_id = ?
	`, id, ownerID)
	r, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Recipe{}, ErrNotFound
	}
	if err != nil {
		return catalog.Recipe{}, err
	}
	r.OwnerID = ownerID

	rows, err := s.db.QueryContext(ctx, `
		SELECT recipe_id, inventory_item_id, quantity, unit
		FROM recipe_ingredients
		WHERE recipe_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return catalog.Recipe{}, fmt.Errorf("query recipe ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var recipeID string
		line, err := scanRecipeIngredient(rows, &recipeID)
		if err != nil {
			return catalog.Recipe{}, err
		}
		r.Ingredients = append(r.Ingredients, line)
	}
	if err := rows.Err(); err != nil {
		return catalog.Recipe{}, fmt.Errorf("iterate recipe ingredients: %w", err)
	}
	return r, nil
}

// CreateRecipe inserts the recipe and its lines in one transaction.
func (s *Store) CreateRecipe(ctx context.Context, ownerID string, r catalog.Recipe) (catalog.Recipe, error) {
	r.ID = s.newID()
	ts := s.timestamp()
	err := s.withTx(ctx, func(tx queryer) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recipes (id, owner_id, name, batch_size, batch_unit, units, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, ownerID, r.Name, amountArg(r.BatchSize), r.BatchUnit, unitsArg(r.Units), ts, ts); err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}
		return insertRecipeIngredients(ctx, tx, ownerID, r.ID, r.Ingredients)
	})
	if err != nil {
		return catalog.Recipe{}, err
	}
	return s.GetRecipe(ctx, ownerID, r.ID)
}

// UpdateRecipe overwrites the recipe and replaces its full ingredient list.
func (s *Store) UpdateRecipe(ctx context.Context, ownerID, id string, r catalog.Recipe) (catalog.Recipe, error) {
	err := s.withTx(ctx, func(tx queryer) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE recipes
			SET
				name = ?,
				batch_size = ?,
				batch_unit = ?,
				units = ?,
				updated_at = ?
			WHERE id = ? AND owner_id = ?
		`, r.Name, amountArg(r.BatchSize), r.BatchUnit, unitsArg(r.Units), s.timestamp(), id, ownerID)
		if err != nil {
			return fmt.Errorf("update recipe: %w", err)
		}
		if err := affectedOrNotFound(result); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = ?`, id); err != nil {
			return fmt.Errorf("clear recipe ingredients: %w", err)
		}
		return insertRecipeIngredients(ctx, tx, ownerID, id, r.Ingredients)
	})
	if err != nil {
		return catalog.Recipe{}, err
	}
	return s.GetRecipe(ctx, ownerID, id)
}

// DeleteRecipe removes a recipe that no dish uses.
func (s *Store) DeleteRecipe(ctx context.Context, ownerID, id string) error {
	return s.withTx(ctx, func(tx queryer) error {
		if err := ensureExists(ctx, tx, "recipes", ownerID, id); err != nil {
			return err
		}
		used, err := exists(ctx, tx, `SELECT EXISTS(SELECT 1 FROM dish_ingredients WHERE recipe_id = ?)`, id)
		if err != nil {
			return fmt.Errorf("check recipe usage: %w", err)
		}
		if used {
			return ErrInUse
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM recipes WHERE id = ? AND owner_id = ?`, id, ownerID)
		if err != nil {
			return fmt.Errorf("delete recipe: %w", err)
		}
		return affectedOrNotFound(result)
	})
}

func insertRecipeIngredients(ctx context.Context, tx queryer, ownerID, recipeID string, lines []catalog.RecipeIngredient) error {
	for i, line := range lines {
		if err := ensureOwned(ctx, tx, "inventory_items", ownerID, line.InventoryItemID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, position, inventory_item_id, quantity, unit)
			VALUES (?, ?, ?, ?, ?)
		`, recipeID, i, line.InventoryItemID, line.Quantity.String(), line.Unit); err != nil {
			return fmt.Errorf("insert recipe ingredient: %w", err)
		}
	}
	return nil
}

func unitsArg(units *int) any {
	if units == nil {
		return nil
	}
	return *units
}

func scanRecipe(row scanner) (catalog.Recipe, error) {
	var (
		r                catalog.Recipe
		batchSize        sql.NullString
		units            sql.NullInt64
		created, updated string
	)
	if err := row.Scan(&r.ID, &r.Name, &batchSize, &r.BatchUnit, &units, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Recipe{}, err
		}
		return catalog.Recipe{}, fmt.Errorf("scan recipe: %w", err)
	}
	r.BatchSize = amountFrom(batchSize)
	if units.Valid {
		n := int(units.Int64)
		r.Units = &n
	}
	r.Ingredients = []catalog.RecipeIngredient{}
	r.CreatedAt = parseTime(created)
	r.UpdatedAt = parseTime(updated)
	return r, nil
}

func scanRecipeIngredient(row scanner, recipeID *string) (catalog.RecipeIngredient, error) {
	var (
		line     catalog.RecipeIngredient
		quantity string
	)
	if err := row.Scan(recipeID, &line.InventoryItemID, &quantity, &line.Unit); err != nil {
		return catalog.RecipeIngredient{}, fmt.Errorf("scan recipe ingredient: %w", err)
	}
	line.Quantity = catalog.OrZero(catalog.ParseAmount(quantity))
	return line, nil
}
