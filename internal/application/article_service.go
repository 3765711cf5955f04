package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
	repo "github.com/oksasatya/go-blog-graph/internal/domain/repository"
	"github.com/oksasatya/go-blog-graph/pkg/helpers"
	"github.com/oksasatya/go-blog-graph/pkg/validation"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
)

// PostIndexer mirrors posts into a full-text index.
type PostIndexer interface {
	Index(ctx context.Context, p *entity.Post) error
	Remove(ctx context.Context, postID int64) error
	Search(ctx context.Context, q string, size int) ([]int64, error)
}

type ArticleService struct {
	UserRepo   repo.UserRepository
	AuthorRepo repo.AuthorRepository
	PostRepo   repo.PostRepository
	BadgeRepo  repo.BadgeRepository
	Uploader   *ImageUploader
	Index      PostIndexer
	Logger     logrus.FieldLogger
	Now        func() time.Time

	// CreateRequiresOwner rejects createPost for an author other than the caller.
	CreateRequiresOwner bool
}

func NewArticleService(users repo.UserRepository, authors repo.AuthorRepository, posts repo.PostRepository, badges repo.BadgeRepository, uploader *ImageUploader, index PostIndexer, logger logrus.FieldLogger) *ArticleService {
	return &ArticleService{
		UserRepo:   users,
		AuthorRepo: authors,
		PostRepo:   posts,
		BadgeRepo:  badges,
		Uploader:   uploader,
		Index:      index,
		Logger:     logger,
		Now:        time.Now,
	}
}

// PostInput is shared by create and update. Nil fields are left unchanged on
// update; a non-nil BadgeNames replaces the whole tag set, even when empty.
type PostInput struct {
	Title          *string               `json:"title" validate:"omitnil,min=1,max=150"`
	Content        *string               `json:"content"`
	AuthorUsername *string               `json:"authorUsername" validate:"omitnil,min=1,max=150"`
	PublishStatus  *entity.PublishStatus `json:"publishStatus" validate:"omitnil,oneof=D P"`
	PublishDate    *time.Time            `json:"publishDate"`
	BadgeNames     *[]string             `json:"badgeNames" validate:"omitnil,dive,badge"`
	Image          *FileUpload           `json:"image" validate:"-"`
}

func (s *ArticleService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *ArticleService) published(f repo.PostFilter) repo.PostFilter {
	now := s.now()
	f.PublishedAt = &now
	return f
}

// Badges lists badges whose name contains name, ordered by name.
func (s *ArticleService) Badges(ctx context.Context, name string) ([]entity.Badge, error) {
	return s.BadgeRepo.List(ctx, name)
}

// Posts lists published posts, optionally narrowed by title.
func (s *ArticleService) Posts(ctx context.Context, title string) ([]entity.Post, error) {
	return s.PostRepo.List(ctx, s.published(repo.PostFilter{Title: title}))
}

func (s *ArticleService) PostsByContent(ctx context.Context, content string) ([]entity.Post, error) {
	return s.PostRepo.List(ctx, s.published(repo.PostFilter{Content: content}))
}

func (s *ArticleService) PostsByPublishDate(ctx context.Context, day time.Time) ([]entity.Post, error) {
	return s.PostRepo.List(ctx, s.published(repo.PostFilter{PublishDate: &day}))
}

// PostsByAuthorName matches username, first name or last name.
func (s *ArticleService) PostsByAuthorName(ctx context.Context, name string) ([]entity.Post, error) {
	return s.PostRepo.List(ctx, s.published(repo.PostFilter{AuthorName: name}))
}

// PostsByAuthor lists the published posts of one author.
func (s *ArticleService) PostsByAuthor(ctx context.Context, authorID int64) ([]entity.Post, error) {
	return s.PostRepo.List(ctx, s.published(repo.PostFilter{AuthorID: authorID}))
}

// PostsByBadges returns posts of any status tagged with every name.
func (s *ArticleService) PostsByBadges(ctx context.Context, badgeNames []string) ([]entity.Post, error) {
	if len(badgeNames) == 0 {
		return nil, fmt.Errorf("%w: badgeNames must not be empty", ErrInvalidArgument)
	}
	var result []entity.Post
	for i, name := range badgeNames {
		posts, err := s.PostRepo.ListByBadge(ctx, name)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			result = posts
			continue
		}
		result = intersect(result, posts, func(p entity.Post) int64 { return p.ID })
		if len(result) == 0 {
			break
		}
	}
	return result, nil
}

// Search runs a full-text query over published posts. Without an index it
// returns nothing.
func (s *ArticleService) Search(ctx context.Context, q string, size int) ([]entity.Post, error) {
	if s.Index == nil {
		return []entity.Post{}, nil
	}
	if size <= 0 || size > maxSearchSize {
		size = defaultSearchSize
	}
	ids, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	if len(ids) == 0 {
		return []entity.Post{}, nil
	}
	posts, err := s.PostRepo.List(ctx, s.published(repo.PostFilter{IDs: ids}))
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]entity.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	out := make([]entity.Post, 0, len(posts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ArticleService) validate(in PostInput) error {
	if err := validation.Struct(in); err != nil {
		return invalid(err)
	}
	return nil
}

// badgeIDs resolves names case-insensitively. A nil names yields nil.
func (s *ArticleService) badgeIDs(ctx context.Context, names *[]string) ([]int64, error) {
	if names == nil {
		return nil, nil
	}
	ids := make([]int64, 0, len(*names))
	seen := map[int64]bool{}
	for _, name := range *names {
		b, err := s.BadgeRepo.GetByName(ctx, name)
		if err != nil {
			return nil, storeErr(err, fmt.Sprintf("badge %q", name))
		}
		if !seen[b.ID] {
			seen[b.ID] = true
			ids = append(ids, b.ID)
		}
	}
	return ids, nil
}

func (s *ArticleService) prepareImage(f *FileUpload) (*helpers.PreparedImage, error) {
	if f == nil {
		return nil, nil
	}
	return s.Uploader.Prepare(f)
}

func (s *ArticleService) storeImage(ctx context.Context, img *helpers.PreparedImage) (*StoredImage, error) {
	if img == nil {
		return nil, nil
	}
	return s.Uploader.Store(ctx, postImageDir, img)
}

func (s *ArticleService) reindex(ctx context.Context, p *entity.Post) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, p); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("post_id", p.ID).Warn("es index failed")
	}
}

// Create adds a post for in.AuthorUsername. Unknown authors or badges fail
// with ErrNotFound before anything is written.
func (s *ArticleService) Create(ctx context.Context, id *entity.Identity, in PostInput) (*entity.Post, bool, error) {
	if err := requireIdentity(id); err != nil {
		return nil, false, err
	}
	missing := map[string]string{}
	if in.Title == nil {
		missing["title"] = "is required"
	}
	if in.Content == nil {
		missing["content"] = "is required"
	}
	if in.AuthorUsername == nil {
		missing["authorUsername"] = "is required"
	}
	if len(missing) > 0 {
		return nil, false, &InputError{Fields: missing}
	}
	if err := s.validate(in); err != nil {
		return nil, false, err
	}

	author, err := s.AuthorRepo.GetByUsername(ctx, *in.AuthorUsername)
	if err != nil {
		return nil, false, storeErr(err, fmt.Sprintf("author %q", *in.AuthorUsername))
	}
	if !id.Owns(author.UserID) {
		if s.CreateRequiresOwner {
			return nil, false, nil
		}
		if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"user_id": id.UserID, "author_id": author.ID}).Warn("post created on behalf of another author")
		}
	}
	badgeIDs, err := s.badgeIDs(ctx, in.BadgeNames)
	if err != nil {
		return nil, false, err
	}
	img, err := s.prepareImage(in.Image)
	if err != nil {
		return nil, false, err
	}

	p := &entity.Post{
		Title:         *in.Title,
		Content:       *in.Content,
		AuthorID:      author.ID,
		PublishStatus: entity.StatusDraft,
	}
	if in.PublishStatus != nil {
		p.PublishStatus = *in.PublishStatus
	}
	if in.PublishDate != nil {
		d := entity.DateOf(*in.PublishDate)
		p.PublishDate = &d
	}
	stored, err := s.storeImage(ctx, img)
	if err != nil {
		return nil, false, err
	}
	if stored != nil {
		p.Image = stored.URL
	}
	if err := s.PostRepo.Create(ctx, p, badgeIDs); err != nil {
		s.Uploader.Discard(ctx, stored, s.Logger)
		return nil, false, storeErr(err, "post")
	}
	created, err := s.PostRepo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, false, storeErr(err, "post")
	}
	s.reindex(ctx, created)
	return created, true, nil
}

// Update applies the present fields of in when the caller owns the post.
// A non-owner gets the stored post back with ok=false, whatever the input.
func (s *ArticleService) Update(ctx context.Context, id *entity.Identity, postID int64, in PostInput) (*entity.Post, bool, error) {
	if err := requireIdentity(id); err != nil {
		return nil, false, err
	}
	p, err := s.PostRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, false, storeErr(err, "post")
	}
	if !id.Owns(p.Author.UserID) {
		return p, false, nil
	}
	if err := s.validate(in); err != nil {
		return nil, false, err
	}

	var rename string
	if in.AuthorUsername != nil && *in.AuthorUsername != p.Author.User.Username {
		if err := s.usernameFree(ctx, p.Author.UserID, *in.AuthorUsername); err != nil {
			return nil, false, err
		}
		rename = *in.AuthorUsername
	}
	badgeIDs, err := s.badgeIDs(ctx, in.BadgeNames)
	if err != nil {
		return nil, false, err
	}
	img, err := s.prepareImage(in.Image)
	if err != nil {
		return nil, false, err
	}

	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.PublishStatus != nil {
		p.PublishStatus = *in.PublishStatus
	}
	if in.PublishDate != nil {
		d := entity.DateOf(*in.PublishDate)
		p.PublishDate = &d
	}
	stored, err := s.storeImage(ctx, img)
	if err != nil {
		return nil, false, err
	}
	if stored != nil {
		p.Image = stored.URL
	}
	if rename == "" {
		err = storeErr(s.PostRepo.Update(ctx, p, badgeIDs), "post")
	} else {
		err = storeErr(s.PostRepo.UpdateWithOwner(ctx, p, badgeIDs, rename), fmt.Sprintf("username %q", rename))
	}
	if err != nil {
		s.Uploader.Discard(ctx, stored, s.Logger)
		return nil, false, err
	}
	updated, err := s.PostRepo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, false, storeErr(err, "post")
	}
	s.reindex(ctx, updated)
	return updated, true, nil
}

// usernameFree fails with ErrConflict when a user other than userID already
// has username. The write repeats the check atomically.
func (s *ArticleService) usernameFree(ctx context.Context, userID int64, username string) error {
	taken, err := s.UserRepo.GetByUsername(ctx, username)
	switch {
	case err == nil && taken.ID != userID:
		return fmt.Errorf("%w: username %q is taken", ErrConflict, username)
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		return err
	}
	return nil
}

// Delete removes a post owned by the caller and returns it as it was.
func (s *ArticleService) Delete(ctx context.Context, id *entity.Identity, postID int64) (*entity.Post, bool, error) {
	if err := requireIdentity(id); err != nil {
		return nil, false, err
	}
	p, err := s.PostRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, false, storeErr(err, "post")
	}
	if !id.Owns(p.Author.UserID) {
		return p, false, nil
	}
	if err := s.PostRepo.Delete(ctx, p.ID); err != nil {
		return nil, false, storeErr(err, "post")
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, p.ID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("post_id", p.ID).Warn("es delete failed")
		}
	}
	return p, true, nil
}

// AddImage appends a gallery picture to a post owned by the caller.
func (s *ArticleService) AddImage(ctx context.Context, id *entity.Identity, postID int64, f *FileUpload) (*entity.Image, bool, error) {
	if err := requireIdentity(id); err != nil {
		return nil, false, err
	}
	if f == nil {
		return nil, false, &InputError{Fields: map[string]string{"image": "is required"}}
	}
	p, err := s.PostRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, false, storeErr(err, "post")
	}
	if !id.Owns(p.Author.UserID) {
		return nil, false, nil
	}
	img, err := s.Uploader.Prepare(f)
	if err != nil {
		return nil, false, err
	}
	stored, err := s.Uploader.Store(ctx, postGalleryDir, img)
	if err != nil {
		return nil, false, err
	}
	row := &entity.Image{PostID: p.ID, Image: stored.URL}
	if err := s.PostRepo.AddImage(ctx, row); err != nil {
		s.Uploader.Discard(ctx, stored, s.Logger)
		return nil, false, storeErr(err, "post")
	}
	return row, true, nil
}
