package application

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
	"github.com/oksasatya/go-blog-graph/internal/domain/repository"
	"github.com/oksasatya/go-blog-graph/internal/infrastructure/memory"
	"github.com/oksasatya/go-blog-graph/pkg/helpers"
)

var testToday = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

type fakeMedia struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *fakeMedia) Store(_ context.Context, data []byte, objectPath, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[objectPath] = data
	return "/media/" + objectPath, nil
}

func (m *fakeMedia) Delete(_ context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, objectPath)
	return nil
}

func (m *fakeMedia) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[int64]string
	removed []int64
	hits    []int64
}

func (x *fakeIndex) Index(_ context.Context, p *entity.Post) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.docs == nil {
		x.docs = map[int64]string{}
	}
	x.docs[p.ID] = p.Title
	return nil
}

func (x *fakeIndex) Remove(_ context.Context, id int64) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.docs, id)
	x.removed = append(x.removed, id)
	return nil
}

func (x *fakeIndex) Search(context.Context, string, int) ([]int64, error) {
	return x.hits, nil
}

var errNoSession = errors.New("no session")

type fakeSessions struct {
	mu   sync.Mutex
	seq  int
	live map[int64]string
}

func (s *fakeSessions) next() string {
	s.seq++
	return "sid-" + string(rune('a'+s.seq))
}

func (s *fakeSessions) Start(_ context.Context, userID int64, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live == nil {
		s.live = map[int64]string{}
	}
	sid := s.next()
	s.live[userID] = sid
	return sid, nil
}

func (s *fakeSessions) Check(_ context.Context, userID int64, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.live[userID]; !ok || cur != sid {
		return errNoSession
	}
	return nil
}

func (s *fakeSessions) Rotate(_ context.Context, userID int64, sid string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.live[userID]; !ok || cur != sid {
		return "", errNoSession
	}
	next := s.next()
	s.live[userID] = next
	return next, nil
}

func (s *fakeSessions) Revoke(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, userID)
	return nil
}

// racedUsers misses every username lookup, as if the name were taken by
// another request between the service's check and its write.
type racedUsers struct {
	repository.UserRepository
}

func (racedUsers) GetByUsername(context.Context, string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}

// failingAuthors fails every profile write.
type failingAuthors struct {
	repository.AuthorRepository
}

func (failingAuthors) Update(context.Context, *entity.AuthorProfile) error {
	return errors.New("connection reset")
}

// fixture wires every service over one in-memory store.
type fixture struct {
	t        *testing.T
	ctx      context.Context
	store    *memory.Store
	media    *fakeMedia
	index    *fakeIndex
	logs     *test.Hook
	authors  *AuthorService
	articles *ArticleService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.SetClock(func() time.Time { return testToday })
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	media := &fakeMedia{}
	index := &fakeIndex{}
	uploader := NewImageUploader(media, helpers.NewImageProcessor(1<<20, 64))

	articles := NewArticleService(store.Users(), store.Authors(), store.Posts(), store.Badges(), uploader, index, logger)
	articles.Now = func() time.Time { return testToday }

	return &fixture{
		t:        t,
		ctx:      context.Background(),
		store:    store,
		media:    media,
		index:    index,
		logs:     hook,
		authors:  NewAuthorService(store.Authors(), uploader, logger),
		articles: articles,
	}
}

// author creates a user with a profile and returns the caller identity for it.
func (f *fixture) author(username, first, last string) (*entity.AuthorProfile, *entity.Identity) {
	f.t.Helper()
	hash, err := helpers.HashPassword("secret-" + username)
	require.NoError(f.t, err)
	u := &entity.User{Username: username, FirstName: first, LastName: last, Password: hash}
	require.NoError(f.t, f.store.Users().Create(f.ctx, u))
	a := &entity.AuthorProfile{UserID: u.ID}
	require.NoError(f.t, f.store.Authors().Create(f.ctx, a))
	return a, &entity.Identity{UserID: u.ID, Username: username}
}

func (f *fixture) badge(name string) entity.Badge {
	f.t.Helper()
	b := &entity.Badge{Name: name}
	require.NoError(f.t, f.store.Badges().Create(f.ctx, b))
	return *b
}

// post stores a post directly. A nil day makes a draft without a date.
func (f *fixture) post(a *entity.AuthorProfile, title string, status entity.PublishStatus, day *time.Time, badges ...entity.Badge) *entity.Post {
	f.t.Helper()
	ids := make([]int64, 0, len(badges))
	for _, b := range badges {
		ids = append(ids, b.ID)
	}
	p := &entity.Post{Title: title, Content: "content of " + title, AuthorID: a.ID, PublishStatus: status, PublishDate: day}
	require.NoError(f.t, f.store.Posts().Create(f.ctx, p, ids))
	return p
}

func day(offset int) *time.Time {
	d := entity.DateOf(testToday).AddDate(0, 0, offset)
	return &d
}

func ptr[T any](v T) *T { return &v }

func pngUpload(t *testing.T, w, h int) *FileUpload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &FileUpload{Filename: "pic.png", ContentType: "image/png", Data: buf.Bytes()}
}

func titles(posts []entity.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func usernames(authors []entity.AuthorProfile) []string {
	out := make([]string, 0, len(authors))
	for _, a := range authors {
		out = append(out, a.User.Username)
	}
	return out
}
