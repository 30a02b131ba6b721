package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/costline/internal/catalog"
)

const supplierColumns = `id, name, contact, email, phone, notes, created_at, updated_at`

// ListSuppliers returns the owner's suppliers ordered by name.
func (s *Store) ListSuppliers(ctx context.Context, ownerID string) ([]catalog.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+supplierColumns+`
		FROM suppliers
		WHERE owner_id = ?
		ORDER BY name COLLATE NOCASE, id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := make([]catalog.Supplier, 0)
	for rows.Next() {
		sup, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		sup.OwnerID = ownerID
		suppliers = append(suppliers, sup)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suppliers: %w", err)
	}
	return suppliers, nil
}

// GetSupplier returns one supplier.
func (s *Store) GetSupplier(ctx context.Context, ownerID, id string) (catalog.Supplier, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+supplierColumns+` FROM suppliers WHERE id = ? AND owner_id = ?
	`, id, ownerID)
	sup, err := scanSupplier(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Supplier{}, ErrNotFound
	}
	if err != nil {
		return catalog.Supplier{}, err
	}
	sup.OwnerID = ownerID
	return sup, nil
}

// CreateSupplier inserts sup for the owner.
func (s *Store) CreateSupplier(ctx context.Context, ownerID string, sup catalog.Supplier) (catalog.Supplier, error) {
	sup.ID = s.newID()
	ts := s.timestamp()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliers (id, owner_id, name, contact, email, phone, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sup.ID, ownerID, sup.Name, sup.Contact, sup.Email, sup.Phone, sup.Notes, ts, ts); err != nil {
		return catalog.Supplier{}, fmt.Errorf("insert supplier: %w", err)
	}
	return s.GetSupplier(ctx, ownerID, sup.ID)
}

// UpdateSupplier overwrites the supplier's fields.
func (s *Store) UpdateSupplier(ctx context.Context, ownerID, id string, sup catalog.Supplier) (catalog.Supplier, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE suppliers
		SET
			name = ?,
			contact = ?,
			email = ?,
			phone = ?,
			notes = ?,
			updated_at = ?
		WHERE id = ? AND owner_id = ?
	`, sup.Name, sup.Contact, sup.Email, sup.Phone, sup.Notes, s.timestamp(), id, ownerID)
	if err != nil {
		return catalog.Supplier{}, fmt.Errorf("update supplier: %w", err)
	}
	if err := affectedOrNotFound(result); err != nil {
		return catalog.Supplier{}, err
	}
	return s.GetSupplier(ctx, ownerID, id)
}

// DeleteSupplier removes the supplier; items that referenced it keep no supplier.
func (s *Store) DeleteSupplier(ctx context.Context, ownerID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete supplier: %w", err)
	}
	return affectedOrNotFound(result)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSupplier(row scanner) (catalog.Supplier, error) {
	var sup catalog.Supplier
	var created, updated string
	if err := row.Scan(&sup.ID, &sup.Name, &sup.Contact, &sup.Email, &sup.Phone, &sup.Notes, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Supplier{}, err
		}
		return catalog.Supplier{}, fmt.Errorf("scan supplier: %w", err)
	}
	sup.CreatedAt = parseTime(created)
	sup.UpdatedAt = parseTime(updated)
	return sup, nil
}
