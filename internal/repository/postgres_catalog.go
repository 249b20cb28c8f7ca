package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sharyyoru/medical-crm/pkg/models"
)

// ListCategories returns service categories ordered by sort order, then name.
func (s *PostgresStore) ListCategories(ctx context.Context) ([]*models.ServiceCategory, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, description, sort_order FROM service_categories
		 ORDER BY sort_order ASC, name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.ServiceCategory
	for rows.Next() {
		var c models.ServiceCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

// CreateCategory inserts a category row. A missing ID is generated.
func (s *PostgresStore) CreateCategory(ctx context.Context, c *models.ServiceCategory) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO service_categories (id, name, description, sort_order) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.Description, c.SortOrder)
	return err
}

// UpdateCategory updates name and description of an existing category.
func (s *PostgresStore) UpdateCategory(ctx context.Context, c *models.ServiceCategory) error {
	err := s.db.QueryRow(ctx,
		`UPDATE service_categories SET name = $1, description = $2 WHERE id = $3
		 RETURNING sort_order`,
		c.Name, c.Description, c.ID,
	).Scan(&c.SortOrder)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// DeleteCategory removes a category. The service check and the delete run in
// one transaction so a concurrent service insert cannot orphan itself.
func (s *PostgresStore) DeleteCategory(ctx context.Context, id string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var count int
	if err := tx.QueryRow(ctx, "SELECT count(*) FROM services WHERE category_id = $1", id).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	tag, err := tx.Exec(ctx, "DELETE FROM service_categories WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// NextCategorySortOrder returns max(sort_order)+1, or 1 for an empty catalog.
func (s *PostgresStore) NextCategorySortOrder(ctx context.Context) (int, error) {
	var next int
	err := s.db.QueryRow(ctx, "SELECT coalesce(max(sort_order), 0) + 1 FROM service_categories").Scan(&next)
	return next, err
}

// ListServices returns all services ordered by creation time ascending.
func (s *PostgresStore) ListServices(ctx context.Context) ([]*models.Service, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, category_id, name, description, is_active, base_price, created_at
		 FROM services ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []*models.Service
	for rows.Next() {
		var svc models.Service
		if err := rows.Scan(&svc.ID, &svc.CategoryID, &svc.Name, &svc.Description, &svc.IsActive, &svc.BasePrice, &svc.CreatedAt); err != nil {
			return nil, err
		}
		services = append(services, &svc)
	}
	return services, rows.Err()
}

// CreateService inserts a service row. A missing ID is generated.
func (s *PostgresStore) CreateService(ctx context.Context, svc *models.Service) error {
	if svc.ID == "" {
		svc.ID = uuid.New().String()
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO services (id, category_id, name, description, is_active, base_price)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		svc.ID, svc.CategoryID, svc.Name, svc.Description, svc.IsActive, svc.BasePrice,
	).Scan(&svc.CreatedAt)
}

// UpdateService updates a service row.
func (s *PostgresStore) UpdateService(ctx context.Context, svc *models.Service) error {
	err := s.db.QueryRow(ctx,
		`UPDATE services SET name = $1, description = $2, is_active = $3, base_price = $4
		 WHERE id = $5
		 RETURNING created_at`,
		svc.Name, svc.Description, svc.IsActive, svc.BasePrice, svc.ID,
	).Scan(&svc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// DeleteService removes a service row.
func (s *PostgresStore) DeleteService(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM services WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
