package testsupport

import (
	"testing"
	"time"

	"howett.net/plist"
)

// PayloadAnnotation describes one entry in a generated sync payload. Zero
// times are omitted from the payload.
type PayloadAnnotation struct {
	SelectedText string
	Note         string
	Chapter      string
	Style        int
	Modification time.Time
	Creation     time.Time
}

// PlistPayload builds a binary plist payload in the shape the sync store
// carries: a document with an "annotations" list of entry dictionaries.
func PlistPayload(t testing.TB, entries []PayloadAnnotation) []byte {
	t.Helper()
	return plistPayload(t, entries, plist.BinaryFormat)
}

// XMLPlistPayload is PlistPayload in the XML encoding.
func XMLPlistPayload(t testing.TB, entries []PayloadAnnotation) []byte {
	t.Helper()
	return plistPayload(t, entries, plist.XMLFormat)
}

func plistPayload(t testing.TB, entries []PayloadAnnotation, format int) []byte {
	t.Helper()

	list := make([]any, 0, len(entries))
	for _, entry := range entries {
		item := map[string]any{}
		if entry.SelectedText != "" {
			item["selectedText"] = entry.SelectedText
		}
		if entry.Note != "" {
			item["note"] = entry.Note
		}
		if entry.Chapter != "" {
			item["chapter"] = entry.Chapter
		}
		item["style"] = entry.Style
		if !entry.Modification.IsZero() {
			item["modificationDate"] = entry.Modification
		}
		if !entry.Creation.IsZero() {
			item["creationDate"] = entry.Creation
		}
		list = append(list, item)
	}

	doc := map[string]any{"annotations": list}
	data, err := plist.Marshal(doc, format)
	if err != nil {
		t.Fatalf("marshal plist payload: %v", err)
	}
	return data
}

// ArchivePayload builds a minimal keyed-archive shaped plist. The decoder
// recognizes the shape and degrades to zero annotations.
func ArchivePayload(t testing.TB) []byte {
	t.Helper()

	doc := map[string]any{
		"$version":  100000,
		"$archiver": "NSKeyedArchiver",
		"$top":      map[string]any{"root": 1},
		"$objects":  []any{"$null"},
	}
	data, err := plist.Marshal(doc, plist.BinaryFormat)
	if err != nil {
		t.Fatalf("marshal archive payload: %v", err)
	}
	return data
}
