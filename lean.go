package docpager

import (
	"fmt"
	"reflect"
)

const (
	DefaultIDField = "_id"
	leanIDField    = "id"
)

// IDAssigner is implemented by lean documents that are not maps but still
// want the string identifier. RawID returns the stored identifier, nil when
// there is none.
type IDAssigner interface {
	RawID() any
	AssignID(id string)
}

// AttachStringIDs sets "id" on every document to the string form of the value
// stored under idField. Documents are modified in place: maps with string keys
// get a new entry, IDAssigner implementations receive it via AssignID, with
// pointer receivers honored for struct elements. Documents without an
// identifier are left untouched.
func AttachStringIDs[T any](docs []T, idField string) {
	for i := range docs {
		if a, ok := any(&docs[i]).(IDAssigner); ok {
			assignStringID(a)
			continue
		}
		attachStringID(any(docs[i]), idField)
	}
}

func assignStringID(a IDAssigner) {
	if raw := a.RawID(); raw != nil {
		a.AssignID(StringID(raw))
	}
}

func attachStringID(doc any, idField string) {
	if v := reflect.ValueOf(doc); v.Kind() == reflect.Pointer && v.IsNil() {
		return
	}

	switch d := doc.(type) {
	case nil:
		return
	case IDAssigner:
		assignStringID(d)
		return
	case Record:
		if raw, ok := d[idField]; ok && raw != nil {
			d[leanIDField] = StringID(raw)
		}
		return
	case map[string]any:
		if raw, ok := d[idField]; ok && raw != nil {
			d[leanIDField] = StringID(raw)
		}
		return
	}

	// Named map types from drivers (bson.M and friends).
	v := reflect.ValueOf(doc)
	if v.Kind() != reflect.Map || v.IsNil() || v.Type().Key().Kind() != reflect.String {
		return
	}
	raw := v.MapIndex(reflect.ValueOf(idField).Convert(v.Type().Key()))
	if !raw.IsValid() || (raw.Kind() == reflect.Interface && raw.IsNil()) {
		return
	}
	idValue := reflect.ValueOf(StringID(raw.Interface()))
	if !idValue.Type().AssignableTo(v.Type().Elem()) {
		return
	}
	v.SetMapIndex(reflect.ValueOf(leanIDField).Convert(v.Type().Key()), idValue)
}

// StringID renders an identifier the way a client expects to see it: object
// ids as hex, Stringers via String, everything else via fmt.
func StringID(raw any) string {
	switch id := raw.(type) {
	case string:
		return id
	case []byte:
		return string(id)
	case interface{ Hex() string }:
		return id.Hex()
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(raw)
	}
}
