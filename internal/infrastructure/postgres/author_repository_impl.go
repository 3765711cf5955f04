package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
	"github.com/oksasatya/go-blog-graph/internal/domain/repository"
)

type AuthorRepository struct {
	pool *pgxpool.Pool
}

func NewAuthorRepository(pool *pgxpool.Pool) *AuthorRepository {
	return &AuthorRepository{pool: pool}
}

const authorSelect = `
	SELECT a.id, a.user_id, a.bio, a.age, COALESCE(a.image, ''),
	       u.id, u.username, u.first_name, u.last_name, u.created_at, u.updated_at
	FROM author_profiles a
	JOIN users u ON u.id = a.user_id`

// authorScanTargets lists scan destinations in authorSelect column order.
func authorScanTargets(a *entity.AuthorProfile) []any {
	return []any{&a.ID, &a.UserID, &a.Bio, &a.Age, &a.Image,
		&a.User.ID, &a.User.Username, &a.User.FirstName, &a.User.LastName, &a.User.CreatedAt, &a.User.UpdatedAt}
}

func (r *AuthorRepository) Create(ctx context.Context, a *entity.AuthorProfile) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO author_profiles (user_id, bio, age, image)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id
	`, a.UserID, a.Bio, a.Age, a.Image)
	return mapErr(row.Scan(&a.ID))
}

func (r *AuthorRepository) GetByID(ctx context.Context, id int64) (*entity.AuthorProfile, error) {
	return r.getOne(ctx, authorSelect+` WHERE a.id = $1`, id)
}

func (r *AuthorRepository) GetByUserID(ctx context.Context, userID int64) (*entity.AuthorProfile, error) {
	return r.getOne(ctx, authorSelect+` WHERE a.user_id = $1`, userID)
}

func (r *AuthorRepository) GetByUsername(ctx context.Context, username string) (*entity.AuthorProfile, error) {
	return r.getOne(ctx, authorSelect+` WHERE u.username = $1`, username)
}

func (r *AuthorRepository) getOne(ctx context.Context, sql string, arg any) (*entity.AuthorProfile, error) {
	a := &entity.AuthorProfile{}
	if err := r.pool.QueryRow(ctx, sql, arg).Scan(authorScanTargets(a)...); err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (r *AuthorRepository) List(ctx context.Context, f repository.AuthorFilter) ([]entity.AuthorProfile, error) {
	w := &whereBuilder{}
	if f.Name != "" {
		p := w.arg(containsPattern(f.Name))
		w.add(`(u.first_name ILIKE ` + p + ` OR u.last_name ILIKE ` + p + `)`)
	}
	return r.list(ctx, authorSelect+w.String()+` ORDER BY a.id`, w.args...)
}

func (r *AuthorRepository) ListByPostCount(ctx context.Context, n int) ([]entity.AuthorProfile, error) {
	return r.list(ctx, authorSelect+`
		LEFT JOIN posts p ON p.author_id = a.id
		GROUP BY a.id, u.id
		HAVING COUNT(p.id) = $1
		ORDER BY a.id`, n)
}

func (r *AuthorRepository) ListByPostBadge(ctx context.Context, badgeName string) ([]entity.AuthorProfile, error) {
	return r.list(ctx, authorSelect+`
		WHERE EXISTS (
			SELECT 1
			FROM posts p
			JOIN post_badges pb ON pb.post_id = p.id
			JOIN badges b ON b.id = pb.badge_id
			WHERE p.author_id = a.id AND b.name = $1
		)
		ORDER BY a.id`, badgeName)
}

func (r *AuthorRepository) list(ctx context.Context, sql string, args ...any) ([]entity.AuthorProfile, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.AuthorProfile, error) {
		var a entity.AuthorProfile
		err := row.Scan(authorScanTargets(&a)...)
		return a, err
	})
	return out, mapErr(err)
}

func (r *AuthorRepository) Update(ctx context.Context, a *entity.AuthorProfile) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE author_profiles
		SET bio = $1, age = $2, image = NULLIF($3, '')
		WHERE id = $4
	`, a.Bio, a.Age, a.Image, a.ID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.AuthorRepository = (*AuthorRepository)(nil)
