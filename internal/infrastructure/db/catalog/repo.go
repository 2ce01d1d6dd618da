package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baechuer/tracking-service/internal/domain"
)

// CategoryRepo reads the catalog's category tree. It never writes.
type CategoryRepo struct {
	pool *pgxpool.Pool
}

func NewCategoryRepo(pool *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

func (r *CategoryRepo) Children(ctx context.Context, parentID string) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, COALESCE(parent_id, ''), is_leaf FROM categories
		WHERE parent_id = $1 AND is_active
		ORDER BY id
	`, parentID)
	if err != nil {
		return nil, domain.ErrUnavailable("catalog: child categories", err)
	}
	defer rows.Close()

	out := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.ParentID, &c.IsLeaf); err != nil {
			return nil, domain.ErrUnavailable("catalog: child categories", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrUnavailable("catalog: child categories", err)
	}
	return out, nil
}

func (r *CategoryRepo) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1 AND is_active)`, id).Scan(&ok)
	if err != nil {
		return false, domain.ErrUnavailable("catalog: category lookup", err)
	}
	return ok, nil
}
