package utils

import (
	"reflect"
	"strconv"
	"strings"
)

// UpdatesFromPtrDTO collects the non-nil pointer fields of a patch DTO into
// a column->value map for gorm Updates. Column names come from the json tag;
// renames maps a json name to a differently named column (e.g. "tin" to
// "tax_id") when the two diverge.
func UpdatesFromPtrDTO(dto any, renames map[string]string) map[string]any {
	updates := make(map[string]any)
	v := reflect.ValueOf(dto)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return updates
	}
	s := v.Elem()
	t := s.Type()
	for i := 0; i < t.NumField(); i++ {
		field := s.Field(i)
		if field.Kind() != reflect.Ptr || field.IsNil() {
			continue
		}
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		column, _, _ := strings.Cut(tag, ",")
		if alt, ok := renames[column]; ok && alt != "" {
			column = alt
		}
		updates[column] = field.Elem().Interface()
	}
	return updates
}

// ParseIntDefault reads a non-negative int from a query string, falling back
// to def on anything unparsable.
func ParseIntDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v >= 0 {
		return v
	}
	return def
}
