package service

import (
	"time"

	"go-newsblog-app/internal/data"
)

// Visible decides whether an article may be shown to the current viewer.
// Editors in preview mode see everything, including unpublished and
// future-dated articles. Everyone else only sees articles that are published
// and whose publishing date has passed. Pure function of its arguments.
func Visible(a *data.Article, editor bool, now time.Time) bool {
	if editor {
		return true
	}
	return a.IsPublished && !a.PublishingDate.After(now)
}

// Future reports whether an article is published but scheduled for a later
// date.
func Future(a *data.Article, now time.Time) bool {
	return a.IsPublished && a.PublishingDate.After(now)
}
