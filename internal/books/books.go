package books

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Book is one catalog entry together with every annotation recovered for it.
type Book struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Author      string       `json:"author,omitempty"`
	Path        string       `json:"path,omitempty"`
	CoverPath   string       `json:"cover_path,omitempty"`
	Annotations []Annotation `json:"annotations"`
}

// Annotation is a single highlight or note attached to a book. Quote, Note,
// and Chapter may all be empty; such records are preserved rather than
// dropped so annotation counts stay truthful across stores.
type Annotation struct {
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	Quote      string    `json:"quote,omitempty"`
	Note       string    `json:"note,omitempty"`
	Chapter    string    `json:"chapter,omitempty"`
	Style      Style     `json:"style"`
	ModifiedAt time.Time `json:"modified_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAnnotationID mints a session-local annotation identifier.
func NewAnnotationID() string {
	return uuid.NewString()
}

// Empty reports whether the annotation carries no displayable text.
func (a Annotation) Empty() bool {
	return strings.TrimSpace(a.Quote) == "" && strings.TrimSpace(a.Note) == ""
}

// Timestamp returns the annotation's modification time, falling back to its
// creation time, or the zero time when neither is known.
func (a Annotation) Timestamp() time.Time {
	if !a.ModifiedAt.IsZero() {
		return a.ModifiedAt
	}
	return a.CreatedAt
}

// LatestAnnotation returns the most recent annotation timestamp on the book,
// or the zero time when the book has no dated annotations.
func (b *Book) LatestAnnotation() time.Time {
	var latest time.Time
	for _, ann := range b.Annotations {
		if ts := ann.Timestamp(); ts.After(latest) {
			latest = ts
		}
	}
	return latest
}

// AnnotationCount returns the number of annotations attached to the book.
func (b *Book) AnnotationCount() int {
	return len(b.Annotations)
}
