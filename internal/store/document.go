package store

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is a loosely-typed store record. Field access is best-effort:
// missing or mistyped fields yield zero values, never errors.
type Document bson.M

// ID returns the document _id in textual form.
func (d Document) ID() string {
	switch v := d["_id"].(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// String returns the string value at key, or "" when absent or not a string.
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Nested returns the sub-document at key, or nil.
func (d Document) Nested(key string) Document {
	switch v := d[key].(type) {
	case Document:
		return v
	case bson.M:
		return Document(v)
	case map[string]any:
		return Document(v)
	default:
		return nil
	}
}

// StringSlice returns the string elements of the array at key. Non-string
// elements are skipped.
func (d Document) StringSlice(key string) []string {
	var items []any
	switch v := d[key].(type) {
	case primitive.A:
		items = v
	case []any:
		items = v
	case []string:
		return v
	default:
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Docs returns the sub-document elements of the array at key.
func (d Document) Docs(key string) []Document {
	var items []any
	switch v := d[key].(type) {
	case primitive.A:
		items = v
	case []any:
		items = v
	default:
		return nil
	}

	out := make([]Document, 0, len(items))
	for _, item := range items {
		switch doc := item.(type) {
		case Document:
			out = append(out, doc)
		case bson.M:
			out = append(out, Document(doc))
		case map[string]any:
			out = append(out, Document(doc))
		}
	}
	return out
}

// Time returns the time value at key and whether one was present. BSON
// datetimes, Go times, and RFC 3339 strings are all accepted.
func (d Document) Time(key string) (time.Time, bool) {
	switch v := d[key].(type) {
	case primitive.DateTime:
		return v.Time(), true
	case time.Time:
		return v, true
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t, true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// Sanitize converts a decoded BSON value into a JSON-serializable one:
// ObjectIDs become hex strings, datetimes become RFC 3339 strings, and
// container types are converted recursively.
func Sanitize(v any) any {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case Document:
		return sanitizeMap(val)
	case bson.M:
		return sanitizeMap(val)
	case map[string]any:
		return sanitizeMap(val)
	case primitive.A:
		return sanitizeSlice(val)
	case []any:
		return sanitizeSlice(val)
	case []Document:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Sanitize(item)
		}
		return out
	default:
		return v
	}
}

func sanitizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Sanitize(v)
	}
	return out
}

func sanitizeSlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = Sanitize(v)
	}
	return out
}
