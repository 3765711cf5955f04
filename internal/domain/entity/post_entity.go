package entity

import "time"

type PublishStatus string

const (
	StatusDraft   PublishStatus = "D"
	StatusPublish PublishStatus = "P"
)

func (s PublishStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublish
}

// Badge is a global tag; names are unique.
type Badge struct {
	ID   int64
	Name string
}

// Image is a gallery picture attached to a post. Rows go away with the post.
type Image struct {
	ID     int64
	PostID int64
	Image  string
}

type Post struct {
	ID            int64
	Title         string
	Content       string
	AuthorID      int64
	Author        AuthorProfile
	PublishStatus PublishStatus
	CreatedOn     time.Time
	UpdatedOn     time.Time
	PublishDate   *time.Time
	Image         string
	Badges        []Badge
	Gallery       []Image
}

// IsPublished reports whether the post is visible on the public read path at now:
// status Publish and a publish date that is not after now's calendar day.
func (p *Post) IsPublished(now time.Time) bool {
	if p.PublishStatus != StatusPublish || p.PublishDate == nil {
		return false
	}
	return !DateOf(*p.PublishDate).After(DateOf(now))
}

// HasBadge matches badge names exactly.
func (p *Post) HasBadge(name string) bool {
	for _, b := range p.Badges {
		if b.Name == name {
			return true
		}
	}
	return false
}

// DateOf truncates t to midnight UTC of its own calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
