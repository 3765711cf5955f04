// Package memory is a process-local implementation of the repository
// interfaces with the same constraint semantics as the Postgres schema.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
)

type postRow struct {
	post     entity.Post
	badgeIDs map[int64]struct{}
}

// Store holds every table. Repositories built from the same Store share state.
type Store struct {
	mu      sync.RWMutex
	now     func() time.Time
	seq     int64
	users   map[int64]entity.User
	authors map[int64]entity.AuthorProfile
	badges  map[int64]entity.Badge
	posts   map[int64]*postRow
	images  map[int64]entity.Image
}

func NewStore() *Store {
	return &Store{
		now:     time.Now,
		users:   map[int64]entity.User{},
		authors: map[int64]entity.AuthorProfile{},
		badges:  map[int64]entity.Badge{},
		posts:   map[int64]*postRow{},
		images:  map[int64]entity.Image{},
	}
}

// SetClock overrides the clock used for created/updated timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() *UserRepository     { return &UserRepository{s: s} }
func (s *Store) Authors() *AuthorRepository { return &AuthorRepository{s: s} }
func (s *Store) Posts() *PostRepository     { return &PostRepository{s: s} }
func (s *Store) Badges() *BadgeRepository   { return &BadgeRepository{s: s} }

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// author joins the profile with its user; caller holds the lock.
func (s *Store) author(id int64) (entity.AuthorProfile, bool) {
	a, ok := s.authors[id]
	if !ok {
		return entity.AuthorProfile{}, false
	}
	u := s.users[a.UserID]
	u.Password = ""
	a.User = u
	a.Bio = clonePtr(a.Bio)
	a.Age = clonePtr(a.Age)
	return a, true
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// hydrate copies a post row with author, badges and gallery; caller holds the lock.
func (s *Store) hydrate(row *postRow) entity.Post {
	p := row.post
	p.Author, _ = s.author(p.AuthorID)
	p.Badges = []entity.Badge{}
	for id := range row.badgeIDs {
		p.Badges = append(p.Badges, s.badges[id])
	}
	sort.Slice(p.Badges, func(i, j int) bool { return p.Badges[i].Name < p.Badges[j].Name })
	p.Gallery = []entity.Image{}
	for _, img := range s.images {
		if img.PostID == p.ID {
			p.Gallery = append(p.Gallery, img)
		}
	}
	sort.Slice(p.Gallery, func(i, j int) bool { return p.Gallery[i].ID < p.Gallery[j].ID })
	return p
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
