package annotations

import (
	"log/slog"
	"math"
	"time"

	"howett.net/plist"

	"marginalia/internal/books"
	"marginalia/internal/logging"
)

// DecodePayload expands one sync store payload into annotation records. It
// is total: any input that cannot be decoded yields an empty slice, never
// an error or a panic. Two payload shapes exist in the wild:
//
//   - a property list document (binary or XML) with an "annotations" list
//     of entry dictionaries, which decodes fully;
//   - a keyed-archive object graph, whose schema is not published. It is
//     recognized by its $archiver marker and degrades to zero records.
//
// Timestamps inside payloads are already standard epoch values: numbers
// are Unix seconds and plist dates carry their own absolute time. No
// Apple-epoch offset applies at this layer.
func DecodePayload(raw []byte, bookID string, logger *slog.Logger) []books.Annotation {
	if logger == nil {
		logger = logging.NewNop()
	}
	if len(raw) == 0 {
		return nil
	}

	var doc map[string]any
	if _, err := plist.Unmarshal(raw, &doc); err != nil {
		logger.Debug("undecodable sync payload",
			logging.String(logging.FieldBookID, bookID),
			logging.Error(err))
		return nil
	}

	if _, ok := doc["$archiver"]; ok {
		logger.Debug("keyed-archive sync payload skipped",
			logging.String(logging.FieldBookID, bookID))
		return nil
	}

	list, ok := doc["annotations"].([]any)
	if !ok {
		logger.Debug("sync payload has no annotations list",
			logging.String(logging.FieldBookID, bookID))
		return nil
	}

	out := make([]books.Annotation, 0, len(list))
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, books.Annotation{
			ID:         books.NewAnnotationID(),
			BookID:     bookID,
			Quote:      stringField(entry, "selectedText"),
			Note:       stringField(entry, "note"),
			Chapter:    stringField(entry, "chapter"),
			Style:      books.Style(intField(entry, "style")),
			ModifiedAt: timeField(entry, "modificationDate"),
			CreatedAt:  timeField(entry, "creationDate"),
		})
	}
	return out
}

func stringField(entry map[string]any, key string) string {
	if v, ok := entry[key].(string); ok {
		return v
	}
	return ""
}

func intField(entry map[string]any, key string) int64 {
	switch v := entry[key].(type) {
	case int64:
		return v
	case uint64:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func timeField(entry map[string]any, key string) time.Time {
	switch v := entry[key].(type) {
	case time.Time:
		return v.UTC()
	case float64:
		return unixTime(v)
	case int64:
		return unixTime(float64(v))
	case uint64:
		return unixTime(float64(v))
	case int:
		return unixTime(float64(v))
	}
	return time.Time{}
}

func unixTime(seconds float64) time.Time {
	if seconds == 0 || math.IsNaN(seconds) {
		return time.Time{}
	}
	sec, frac := math.Modf(seconds)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
}
