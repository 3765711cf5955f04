package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
	"github.com/oksasatya/go-blog-graph/internal/domain/repository"
)

type BadgeRepository struct {
	pool *pgxpool.Pool
}

func NewBadgeRepository(pool *pgxpool.Pool) *BadgeRepository {
	return &BadgeRepository{pool: pool}
}

func (r *BadgeRepository) Create(ctx context.Context, b *entity.Badge) error {
	row := r.pool.QueryRow(ctx, `INSERT INTO badges (name) VALUES ($1) RETURNING id`, b.Name)
	return mapErr(row.Scan(&b.ID))
}

func (r *BadgeRepository) GetByName(ctx context.Context, name string) (*entity.Badge, error) {
	b := &entity.Badge{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name FROM badges WHERE lower(name) = lower($1) ORDER BY id LIMIT 1
	`, name).Scan(&b.ID, &b.Name)
	if err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

func (r *BadgeRepository) List(ctx context.Context, name string) ([]entity.Badge, error) {
	w := &whereBuilder{}
	if name != "" {
		w.add(`name ILIKE ` + w.arg(containsPattern(name)))
	}
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM badges`+w.String()+` ORDER BY name`, w.args...)
	if err != nil {
		return nil, mapErr(err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Badge, error) {
		var b entity.Badge
		err := row.Scan(&b.ID, &b.Name)
		return b, err
	})
	return out, mapErr(err)
}

func (r *BadgeRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM badges WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.BadgeRepository = (*BadgeRepository)(nil)
