// Package reflect_util provides reflection helpers for the settings form.
package reflect_util

import "reflect"

// GetFields returns the exported struct fields of t that carry a json tag.
func GetFields(t reflect.Type) []reflect.StructField {
	num := t.NumField()
	fields := make([]reflect.StructField, 0, num)
	for i := 0; i < num; i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag := f.Tag.Get("json"); tag == "" || tag == "-" {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}
