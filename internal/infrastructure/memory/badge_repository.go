package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
	"github.com/oksasatya/go-blog-graph/internal/domain/repository"
)

type BadgeRepository struct{ s *Store }

func (r *BadgeRepository) Create(_ context.Context, b *entity.Badge) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.badges {
		if other.Name == b.Name {
			return repository.ErrDuplicate
		}
	}
	b.ID = r.s.nextID()
	r.s.badges[b.ID] = *b
	return nil
}

func (r *BadgeRepository) GetByName(_ context.Context, name string) (*entity.Badge, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, id := range sortedKeys(r.s.badges) {
		if b := r.s.badges[id]; strings.EqualFold(b.Name, name) {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *BadgeRepository) List(_ context.Context, name string) ([]entity.Badge, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.Badge{}
	for _, b := range r.s.badges {
		if name == "" || containsFold(b.Name, name) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *BadgeRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.badges[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.badges, id)
	for _, row := range r.s.posts {
		delete(row.badgeIDs, id)
	}
	return nil
}

var _ repository.BadgeRepository = (*BadgeRepository)(nil)
