package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
	"github.com/oksasatya/go-blog-graph/internal/domain/repository"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

const postSelect = `
	SELECT p.id, p.title, p.content, p.author_id, p.publish_status, p.created_on, p.updated_on,
	       p.publish_date, COALESCE(p.image, ''),
	       a.id, a.user_id, a.bio, a.age, COALESCE(a.image, ''),
	       u.id, u.username, u.first_name, u.last_name, u.created_at, u.updated_at
	FROM posts p
	JOIN author_profiles a ON a.id = p.author_id
	JOIN users u ON u.id = a.user_id`

func scanPost(row pgx.Row) (entity.Post, error) {
	var (
		p      entity.Post
		status string
	)
	targets := append([]any{&p.ID, &p.Title, &p.Content, &p.AuthorID, &status, &p.CreatedOn, &p.UpdatedOn,
		&p.PublishDate, &p.Image}, authorScanTargets(&p.Author)...)
	if err := row.Scan(targets...); err != nil {
		return entity.Post{}, err
	}
	p.PublishStatus = entity.PublishStatus(status)
	return p, nil
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post, badgeIDs []int64) error {
	if p.PublishStatus == "" {
		p.PublishStatus = entity.StatusDraft
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO posts (title, content, author_id, publish_status, publish_date, image)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
			RETURNING id, created_on, updated_on
		`, p.Title, p.Content, p.AuthorID, string(p.PublishStatus), p.PublishDate, p.Image)
		if err := row.Scan(&p.ID, &p.CreatedOn, &p.UpdatedOn); err != nil {
			return err
		}
		return setBadges(ctx, tx, p.ID, badgeIDs)
	})
	return mapErr(err)
}

func (r *PostRepository) GetByID(ctx context.Context, id int64) (*entity.Post, error) {
	p, err := scanPost(r.pool.QueryRow(ctx, postSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	posts := []entity.Post{p}
	if err := loadRelations(ctx, r.pool, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (r *PostRepository) List(ctx context.Context, f repository.PostFilter) ([]entity.Post, error) {
	w := &whereBuilder{}
	if f.PublishedAt != nil {
		w.add(`p.publish_status = 'P' AND p.publish_date <= ` + w.arg(entity.DateOf(*f.PublishedAt)) + `::date`)
	}
	if f.Title != "" {
		w.add(`p.title ILIKE ` + w.arg(containsPattern(f.Title)))
	}
	if f.Content != "" {
		w.add(`p.content ILIKE ` + w.arg(containsPattern(f.Content)))
	}
	if f.AuthorName != "" {
		n := w.arg(containsPattern(f.AuthorName))
		w.add(`(u.username ILIKE ` + n + ` OR u.first_name ILIKE ` + n + ` OR u.last_name ILIKE ` + n + `)`)
	}
	if f.AuthorID != 0 {
		w.add(`p.author_id = ` + w.arg(f.AuthorID))
	}
	if f.PublishDate != nil {
		w.add(`p.publish_date = ` + w.arg(entity.DateOf(*f.PublishDate)) + `::date`)
	}
	if f.IDs != nil {
		w.add(`p.id = ANY(` + w.arg(f.IDs) + `)`)
	}
	return r.list(ctx, postSelect+w.String()+` ORDER BY p.id`, w.args...)
}

func (r *PostRepository) ListByBadge(ctx context.Context, badgeName string) ([]entity.Post, error) {
	return r.list(ctx, postSelect+`
		WHERE EXISTS (
			SELECT 1 FROM post_badges pb
			JOIN badges b ON b.id = pb.badge_id
			WHERE pb.post_id = p.id AND b.name = $1
		)
		ORDER BY p.id`, badgeName)
}

func (r *PostRepository) list(ctx context.Context, sql string, args ...any) ([]entity.Post, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Post, error) {
		return scanPost(row)
	})
	if err != nil {
		return nil, mapErr(err)
	}
	if err := loadRelations(ctx, r.pool, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) Update(ctx context.Context, p *entity.Post, badgeIDs []int64) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return updatePost(ctx, tx, p, badgeIDs)
	})
	return mapErr(err)
}

func (r *PostRepository) UpdateWithOwner(ctx context.Context, p *entity.Post, badgeIDs []int64, username string) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		res, err := tx.Exec(ctx, `
			UPDATE users u
			SET username = $1, updated_at = now()
			FROM author_profiles a
			WHERE a.id = $2 AND u.id = a.user_id
		`, username, p.AuthorID)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return updatePost(ctx, tx, p, badgeIDs)
	})
	return mapErr(err)
}

func updatePost(ctx context.Context, q querier, p *entity.Post, badgeIDs []int64) error {
	row := q.QueryRow(ctx, `
		UPDATE posts
		SET title = $1, content = $2, publish_status = $3, publish_date = $4, image = NULLIF($5, '')
		WHERE id = $6
		RETURNING created_on, updated_on
	`, p.Title, p.Content, string(p.PublishStatus), p.PublishDate, p.Image, p.ID)
	if err := row.Scan(&p.CreatedOn, &p.UpdatedOn); err != nil {
		return err
	}
	if badgeIDs == nil {
		return nil
	}
	return setBadges(ctx, q, p.ID, badgeIDs)
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PostRepository) AddImage(ctx context.Context, img *entity.Image) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO post_images (post_id, image) VALUES ($1, $2) RETURNING id
	`, img.PostID, img.Image)
	return mapErr(row.Scan(&img.ID))
}

func setBadges(ctx context.Context, q querier, postID int64, badgeIDs []int64) error {
	if _, err := q.Exec(ctx, `DELETE FROM post_badges WHERE post_id = $1`, postID); err != nil {
		return err
	}
	if len(badgeIDs) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, `
		INSERT INTO post_badges (post_id, badge_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`, postID, badgeIDs)
	return err
}

// loadRelations fills Badges and Gallery for posts in two round trips.
func loadRelations(ctx context.Context, q querier, posts []entity.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]int64, len(posts))
	index := make(map[int64]int, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		index[posts[i].ID] = i
		posts[i].Badges = []entity.Badge{}
		posts[i].Gallery = []entity.Image{}
	}

	rows, err := q.Query(ctx, `
		SELECT pb.post_id, b.id, b.name
		FROM post_badges pb
		JOIN badges b ON b.id = pb.badge_id
		WHERE pb.post_id = ANY($1)
		ORDER BY b.name
	`, ids)
	if err != nil {
		return mapErr(err)
	}
	var (
		postID int64
		b      entity.Badge
	)
	_, err = pgx.ForEachRow(rows, []any{&postID, &b.ID, &b.Name}, func() error {
		i := index[postID]
		posts[i].Badges = append(posts[i].Badges, b)
		return nil
	})
	if err != nil {
		return mapErr(err)
	}

	rows, err = q.Query(ctx, `
		SELECT id, post_id, image FROM post_images WHERE post_id = ANY($1) ORDER BY id
	`, ids)
	if err != nil {
		return mapErr(err)
	}
	var img entity.Image
	_, err = pgx.ForEachRow(rows, []any{&img.ID, &img.PostID, &img.Image}, func() error {
		i := index[img.PostID]
		posts[i].Gallery = append(posts[i].Gallery, img)
		return nil
	})
	return mapErr(err)
}

var _ repository.PostRepository = (*PostRepository)(nil)
