package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned when an update targets an id that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when an insert reuses an existing id.
	ErrConflict = errors.New("record already exists")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("store is closed")
	// ErrUnsupported is returned by Open for unknown DSN schemes.
	ErrUnsupported = errors.New("unsupported store")
)

// Record is one row of a collection. Field names follow the store's columns.
type Record map[string]any

// ID returns the record's "id" field as a string, whatever its JSON type.
func (r Record) ID() string {
	switch v := r["id"].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// Direction orders List results.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Query narrows a List call. The zero Query lists the whole collection in
// store order.
type Query struct {
	OrderBy   string
	Direction Direction
	// Where holds equality filters; values compare against the field's
	// textual form.
	Where map[string]string
	// Limit caps the number of rows; zero means no limit.
	Limit int
}

func (q Query) descending() bool {
	return strings.EqualFold(string(q.Direction), string(Descending))
}

// Error describes a failed store operation.
type Error struct {
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func opError(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return err
	}
	return &Error{Op: op, Collection: collection, Err: err}
}

// Encode converts a typed entity into a Record using its JSON tags.
func Encode(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return rec, nil
}

// Decode converts a Record into a typed entity using its JSON tags.
func Decode[T any](rec Record) (T, error) {
	var out T
	data, err := json.Marshal(rec)
	if err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}

// DecodeAll decodes every record, failing on the first bad one.
func DecodeAll[T any](recs []Record) ([]T, error) {
	out := make([]T, 0, len(recs))
	for i, rec := range recs {
		item, err := Decode[T](rec)
		if err != nil {
			return nil, fmt.Errorf("record %d (id %q): %w", i, rec.ID(), err)
		}
		out = append(out, item)
	}
	return out, nil
}

// timestampLayout matches shop.TimestampLayout: fixed width, so stored
// created_at values sort chronologically as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// textValue renders a field value the way equality filters compare it.
func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
