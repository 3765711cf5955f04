package memory

import (
	"context"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
	"github.com/oksasatya/go-blog-graph/internal/domain/repository"
)

type AuthorRepository struct{ s *Store }

func (r *AuthorRepository) Create(_ context.Context, a *entity.AuthorProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[a.UserID]; !ok {
		return repository.ErrReferenced
	}
	for _, other := range r.s.authors {
		if other.UserID == a.UserID {
			return repository.ErrDuplicate
		}
	}
	a.ID = r.s.nextID()
	stored := *a
	stored.User = entity.User{}
	stored.Bio = clonePtr(a.Bio)
	stored.Age = clonePtr(a.Age)
	r.s.authors[a.ID] = stored
	a.User, _ = r.s.users[a.UserID]
	a.User.Password = ""
	return nil
}

func (r *AuthorRepository) GetByID(_ context.Context, id int64) (*entity.AuthorProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.author(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *AuthorRepository) GetByUserID(_ context.Context, userID int64) (*entity.AuthorProfile, error) {
	return r.find(func(a entity.AuthorProfile) bool { return a.UserID == userID })
}

func (r *AuthorRepository) GetByUsername(_ context.Context, username string) (*entity.AuthorProfile, error) {
	return r.find(func(a entity.AuthorProfile) bool { return a.User.Username == username })
}

func (r *AuthorRepository) find(match func(entity.AuthorProfile) bool) (*entity.AuthorProfile, error) {
	out := r.filter(match)
	if len(out) == 0 {
		return nil, repository.ErrNotFound
	}
	return &out[0], nil
}

func (r *AuthorRepository) List(_ context.Context, f repository.AuthorFilter) ([]entity.AuthorProfile, error) {
	return r.filter(func(a entity.AuthorProfile) bool {
		return f.Name == "" || containsFold(a.User.FirstName, f.Name) || containsFold(a.User.LastName, f.Name)
	}), nil
}

func (r *AuthorRepository) ListByPostCount(_ context.Context, n int) ([]entity.AuthorProfile, error) {
	r.s.mu.RLock()
	counts := map[int64]int{}
	for _, row := range r.s.posts {
		counts[row.post.AuthorID]++
	}
	r.s.mu.RUnlock()
	return r.filter(func(a entity.AuthorProfile) bool { return counts[a.ID] == n }), nil
}

func (r *AuthorRepository) ListByPostBadge(_ context.Context, badgeName string) ([]entity.AuthorProfile, error) {
	r.s.mu.RLock()
	tagged := map[int64]bool{}
	for _, row := range r.s.posts {
		for id := range row.badgeIDs {
			if r.s.badges[id].Name == badgeName {
				tagged[row.post.AuthorID] = true
			}
		}
	}
	r.s.mu.RUnlock()
	return r.filter(func(a entity.AuthorProfile) bool { return tagged[a.ID] }), nil
}

func (r *AuthorRepository) filter(match func(entity.AuthorProfile) bool) []entity.AuthorProfile {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.AuthorProfile{}
	for _, id := range sortedKeys(r.s.authors) {
		a, _ := r.s.author(id)
		if match(a) {
			out = append(out, a)
		}
	}
	return out
}

func (r *AuthorRepository) Update(_ context.Context, a *entity.AuthorProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.authors[a.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Bio = clonePtr(a.Bio)
	stored.Age = clonePtr(a.Age)
	stored.Image = a.Image
	r.s.authors[a.ID] = stored
	return nil
}

var _ repository.AuthorRepository = (*AuthorRepository)(nil)
