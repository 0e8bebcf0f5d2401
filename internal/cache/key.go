package cache

import "fmt"

// Kind identifies which widget a cached aggregate belongs to. Keys built from
// distinct kinds can never collide, which is the point of funnelling every
// cache key through this builder instead of formatting ad hoc strings at the
// call sites.
type Kind string

const (
	KindArchive    Kind = "archive"
	KindAuthors    Kind = "authors"
	KindCategories Kind = "categories"
	KindTags       Kind = "tags"
)

// Key builds the cache key for a widget aggregate. Entries are partitioned by
// widget kind, section namespace, language and viewer mode; an editor preview
// must never be served a reader's cached result or vice versa.
func Key(kind Kind, namespace, language string, editor bool) string {
	mode := 0
	if editor {
		mode = 1
	}
	return fmt.Sprintf("nb:%s:%s:%s:%d", kind, namespace, language, mode)
}
