package memory

import (
	"context"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
	"github.com/oksasatya/go-blog-graph/internal/domain/repository"
)

type PostRepository struct{ s *Store }

func (r *PostRepository) Create(_ context.Context, p *entity.Post, badgeIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.authors[p.AuthorID]; !ok {
		return repository.ErrReferenced
	}
	set, err := r.badgeSet(badgeIDs)
	if err != nil {
		return err
	}
	if p.PublishStatus == "" {
		p.PublishStatus = entity.StatusDraft
	}
	p.ID = r.s.nextID()
	p.CreatedOn = r.s.now()
	p.UpdatedOn = p.CreatedOn
	row := &postRow{post: *p, badgeIDs: set}
	row.post.PublishDate = clonePtr(p.PublishDate)
	r.s.posts[p.ID] = row
	return nil
}

// badgeSet validates ids like the post_badges foreign key; caller holds the lock.
func (r *PostRepository) badgeSet(ids []int64) (map[int64]struct{}, error) {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := r.s.badges[id]; !ok {
			return nil, repository.ErrReferenced
		}
		set[id] = struct{}{}
	}
	return set, nil
}

func (r *PostRepository) GetByID(_ context.Context, id int64) (*entity.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.posts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := r.s.hydrate(row)
	return &p, nil
}

func (r *PostRepository) List(_ context.Context, f repository.PostFilter) ([]entity.Post, error) {
	var ids map[int64]bool
	if f.IDs != nil {
		ids = make(map[int64]bool, len(f.IDs))
		for _, id := range f.IDs {
			ids[id] = true
		}
	}
	return r.filter(func(p *entity.Post) bool {
		switch {
		case f.PublishedAt != nil && !p.IsPublished(*f.PublishedAt):
			return false
		case f.Title != "" && !containsFold(p.Title, f.Title):
			return false
		case f.Content != "" && !containsFold(p.Content, f.Content):
			return false
		case f.AuthorName != "" && !containsFold(p.Author.User.Username, f.AuthorName) &&
			!containsFold(p.Author.User.FirstName, f.AuthorName) && !containsFold(p.Author.User.LastName, f.AuthorName):
			return false
		case f.AuthorID != 0 && p.AuthorID != f.AuthorID:
			return false
		case f.PublishDate != nil && (p.PublishDate == nil || !entity.DateOf(*p.PublishDate).Equal(entity.DateOf(*f.PublishDate))):
			return false
		case ids != nil && !ids[p.ID]:
			return false
		}
		return true
	}), nil
}

func (r *PostRepository) ListByBadge(_ context.Context, badgeName string) ([]entity.Post, error) {
	return r.filter(func(p *entity.Post) bool { return p.HasBadge(badgeName) }), nil
}

func (r *PostRepository) filter(match func(*entity.Post) bool) []entity.Post {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.Post{}
	for _, id := range sortedKeys(r.s.posts) {
		p := r.s.hydrate(r.s.posts[id])
		if match(&p) {
			out = append(out, p)
		}
	}
	return out
}

func (r *PostRepository) Update(_ context.Context, p *entity.Post, badgeIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.update(p, badgeIDs)
}

func (r *PostRepository) UpdateWithOwner(_ context.Context, p *entity.Post, badgeIDs []int64, username string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.authors[p.AuthorID]
	if !ok {
		return repository.ErrNotFound
	}
	u, ok := r.s.users[a.UserID]
	if !ok {
		return repository.ErrNotFound
	}
	for id, other := range r.s.users {
		if id != u.ID && other.Username == username {
			return repository.ErrDuplicate
		}
	}
	if err := r.update(p, badgeIDs); err != nil {
		return err
	}
	u.Username = username
	u.UpdatedAt = r.s.now()
	r.s.users[u.ID] = u
	return nil
}

// update validates everything before touching the row; caller holds the lock.
func (r *PostRepository) update(p *entity.Post, badgeIDs []int64) error {
	row, ok := r.s.posts[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if badgeIDs != nil {
		set, err := r.badgeSet(badgeIDs)
		if err != nil {
			return err
		}
		row.badgeIDs = set
	}
	row.post.Title = p.Title
	row.post.Content = p.Content
	row.post.PublishStatus = p.PublishStatus
	row.post.PublishDate = clonePtr(p.PublishDate)
	row.post.Image = p.Image
	row.post.UpdatedOn = r.s.now()
	p.CreatedOn = row.post.CreatedOn
	p.UpdatedOn = row.post.UpdatedOn
	return nil
}

func (r *PostRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.posts, id)
	for imgID, img := range r.s.images {
		if img.PostID == id {
			delete(r.s.images, imgID)
		}
	}
	return nil
}

func (r *PostRepository) AddImage(_ context.Context, img *entity.Image) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[img.PostID]; !ok {
		return repository.ErrReferenced
	}
	img.ID = r.s.nextID()
	r.s.images[img.ID] = *img
	return nil
}

// ImageCount reports the gallery rows stored for a post, including orphans.
func (r *PostRepository) ImageCount(postID int64) int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, img := range r.s.images {
		if img.PostID == postID {
			n++
		}
	}
	return n
}

var _ repository.PostRepository = (*PostRepository)(nil)
