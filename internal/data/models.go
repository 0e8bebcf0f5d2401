package data

import (
	"time"
)

// Section is the namespace configuration every article belongs to. The
// namespace partitions all aggregate queries; permalink_type is a string of
// flags drawn from "ymdis" (year, month, day, id, slug) controlling how
// article permalinks are composed.
type Section struct {
	ID            int64  `db:"id" json:"id"`
	Namespace     string `db:"namespace" json:"namespace"`
	AppTitle      string `db:"app_title" json:"app_title"`
	PermalinkType string `db:"permalink_type" json:"permalink_type"`
	CreateAuthors bool   `db:"create_authors" json:"create_authors"`
}

// Author is the display person an article is attributed to. It is distinct
// from the owner (the account that created the article) and may be
// auto-created from the owner when the section requests it.
type Author struct {
	ID          int64  `db:"id" json:"id"`
	UserSubject string `db:"user_subject" json:"user_subject"`
	Name        string `db:"name" json:"name"`
}

// Article is the central entity. Translatable fields live in
// ArticleTranslation; an article is externally visible only when
// is_published is set and publishing_date has passed.
type Article struct {
	ID             int64     `db:"id" json:"id"`
	SectionID      int64     `db:"section_id" json:"section_id"`
	AuthorID       *int64    `db:"author_id" json:"author_id,omitempty"`
	OwnerSubject   string    `db:"owner_subject" json:"owner_subject"`
	PublishingDate time.Time `db:"publishing_date" json:"publishing_date"`
	IsPublished    bool      `db:"is_published" json:"is_published"`
	IsFeatured     bool      `db:"is_featured" json:"is_featured"`
	FeaturedImage  *string   `db:"featured_image" json:"featured_image,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ArticleTranslation holds the per-language fields of an article. The slug is
// unique per (language, section); search_data is the denormalized search
// index string.
type ArticleTranslation struct {
	ID              int64  `db:"id" json:"id"`
	ArticleID       int64  `db:"article_id" json:"article_id"`
	LanguageCode    string `db:"language_code" json:"language_code"`
	Title           string `db:"title" json:"title"`
	Slug            string `db:"slug" json:"slug"`
	Lead            string `db:"lead" json:"lead"`
	MetaTitle       string `db:"meta_title" json:"meta_title"`
	MetaDescription string `db:"meta_description" json:"meta_description"`
	MetaKeywords    string `db:"meta_keywords" json:"meta_keywords"`
	SearchData      string `db:"search_data" json:"-"`
}

// Category classifies articles. Names are translated per language; the slug
// is the stable identifier.
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Slug string `db:"slug" json:"slug"`
}

// CategoryName pairs a category with its name resolved in one language.
type CategoryName struct {
	Category
	Name string `json:"name"`
}

// Tag is a free-form label attached to articles.
type Tag struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Slug string `db:"slug" json:"slug"`
}

// ContentBlock is one ordered piece of an article's body in a given
// language. Kind selects the renderer ("markdown" or "html").
type ContentBlock struct {
	ID           int64  `db:"id" json:"id"`
	ArticleID    int64  `db:"article_id" json:"article_id"`
	LanguageCode string `db:"language_code" json:"language_code"`
	Position     int    `db:"position" json:"position"`
	Kind         string `db:"kind" json:"kind"`
	Body         string `db:"body" json:"body"`
}

// MonthCount is one bucket of the archive histogram: the first day of a
// calendar month and how many visible articles were published in it.
type MonthCount struct {
	Month    time.Time `json:"month"`
	Articles int       `json:"articles"`
}

// AuthorCount pairs an author with the number of matching articles. Counted
// results are returned as explicit pairs instead of annotating the entity.
type AuthorCount struct {
	Author
	Articles int `db:"articles" json:"articles"`
}

// TagCount pairs a tag with its usage count among the matching articles.
type TagCount struct {
	Tag
	Articles int `db:"articles" json:"articles"`
}

// CategoryCount pairs a category with its article count. Name is the
// category's translated name in the requested language, falling back to the
// slug when no translation exists.
type CategoryCount struct {
	Category
	Name     string `db:"name" json:"name"`
	Articles int    `db:"articles" json:"articles"`
}
