package gql

import (
	"time"

	"github.com/oksasatya/go-blog-graph/internal/domain/entity"
)

// API-facing shapes. Only what is listed here is ever exposed.

type userView struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type authorView struct {
	ID    int64    `json:"id"`
	User  userView `json:"user"`
	Bio   *string  `json:"bio"`
	Age   *int     `json:"age"`
	Image *string  `json:"image"`
}

type badgeView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type imageView struct {
	ID     int64  `json:"id"`
	PostID int64  `json:"postId"`
	Image  string `json:"image"`
}

type postView struct {
	ID            int64                `json:"id"`
	Title         string               `json:"title"`
	Content       string               `json:"content"`
	Author        authorView           `json:"author"`
	PublishStatus entity.PublishStatus `json:"publishStatus"`
	CreatedOn     time.Time            `json:"createdOn"`
	UpdatedOn     time.Time            `json:"updatedOn"`
	PublishDate   *time.Time           `json:"publishDate"`
	Image         *string              `json:"image"`
	Badges        []badgeView          `json:"badges"`
	ImagesGallery []imageView          `json:"imagesGallery"`
}

type authorPayload struct {
	Author *authorView `json:"author"`
	Ok     bool        `json:"ok"`
}

type postPayload struct {
	Post *postView `json:"post"`
	Ok   bool      `json:"ok"`
}

type imagePayload struct {
	Image *imageView `json:"image"`
	Ok    bool       `json:"ok"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func viewUser(u entity.User) userView {
	return userView{ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}

func viewAuthor(a *entity.AuthorProfile) *authorView {
	if a == nil {
		return nil
	}
	return &authorView{ID: a.ID, User: viewUser(a.User), Bio: a.Bio, Age: a.Age, Image: optional(a.Image)}
}

func viewAuthors(in []entity.AuthorProfile) []*authorView {
	out := make([]*authorView, 0, len(in))
	for i := range in {
		out = append(out, viewAuthor(&in[i]))
	}
	return out
}

func viewImage(img *entity.Image) *imageView {
	if img == nil {
		return nil
	}
	return &imageView{ID: img.ID, PostID: img.PostID, Image: img.Image}
}

func viewPost(p *entity.Post) *postView {
	if p == nil {
		return nil
	}
	v := &postView{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		Author:        *viewAuthor(&p.Author),
		PublishStatus: p.PublishStatus,
		CreatedOn:     p.CreatedOn,
		UpdatedOn:     p.UpdatedOn,
		PublishDate:   p.PublishDate,
		Image:         optional(p.Image),
		Badges:        viewBadges(p.Badges),
		ImagesGallery: make([]imageView, 0, len(p.Gallery)),
	}
	for i := range p.Gallery {
		v.ImagesGallery = append(v.ImagesGallery, *viewImage(&p.Gallery[i]))
	}
	return v
}

func viewPosts(in []entity.Post) []*postView {
	out := make([]*postView, 0, len(in))
	for i := range in {
		out = append(out, viewPost(&in[i]))
	}
	return out
}

func viewBadges(in []entity.Badge) []badgeView {
	out := make([]badgeView, 0, len(in))
	for _, b := range in {
		out = append(out, badgeView{ID: b.ID, Name: b.Name})
	}
	return out
}
