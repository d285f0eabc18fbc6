// Package models holds the records exchanged with the content backend and
// the validation schema of each record type.
package models

import (
	"regexp"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func idString(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

type Article struct {
	ID          int64      `json:"id,omitempty"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug,omitempty"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Content     string     `json:"content"`
	Category    *int64     `json:"category,omitempty"`
	Tags        []int64    `json:"tags,omitempty"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Status      string     `json:"status,omitempty"`
	IsFeatured  bool       `json:"is_featured,omitempty"`
	Author      string     `json:"author,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func (a Article) EntityID() string { return idString(a.ID) }

func (a Article) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Title, validation.Required, validation.Length(3, 200)),
		validation.Field(&a.Slug, validation.Match(slugPattern)),
		validation.Field(&a.Content, validation.Required),
		validation.Field(&a.Excerpt, validation.Length(0, 500)),
		validation.Field(&a.Status, validation.In(StatusDraft, StatusPublished, StatusArchived)),
		validation.Field(&a.Tags, validation.Length(0, 12)),
	)
}

type Tag struct {
	ID        int64      `json:"id,omitempty"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func (t Tag) EntityID() string { return idString(t.ID) }

func (t Tag) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Name, validation.Required, validation.Length(1, 50)),
		validation.Field(&t.Slug, validation.Match(slugPattern)),
	)
}

type Category struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

func (c Category) EntityID() string { return idString(c.ID) }

func (c Category) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&c.Slug, validation.Match(slugPattern)),
	)
}
