package aassert

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// PatchOf asserts that patch can change every field of entity except keyField,
// and nothing else: for each json field of entity the patch has a field
// with the same json name and a pointer to the same type.
//
// Add a field to a record without adding it to its patch, and this fails.
func PatchOf(t *testing.T, entity any, patch any, keyField string, msgAndArgs ...any) bool {
	t.Helper()

	entityFields, ok := jsonFields(entity)
	if !ok {
		return assert.Fail(t, "invalid argument, entity has to be a struct", msgAndArgs...)
	}

	patchFields, ok := jsonFields(patch)
	if !ok {
		return assert.Fail(t, "invalid argument, patch has to be a struct", msgAndArgs...)
	}

	var problems []string

	for name, typ := range entityFields {
		if name == keyField {
			if _, ok := patchFields[name]; ok {
				problems = append(problems, fmt.Sprintf("patch can change the key %q", name))
			}

			continue
		}

		patchType, ok := patchFields[name]
		if !ok {
			problems = append(problems, fmt.Sprintf("patch misses field %q", name))

			continue
		}

		if patchType.Kind() != reflect.Ptr || patchType.Elem() != typ {
			problems = append(problems, fmt.Sprintf("field %q has to be *%s, is %s", name, typ, patchType))
		}
	}

	for name := range patchFields {
		if _, ok := entityFields[name]; !ok {
			problems = append(problems, fmt.Sprintf("patch has unknown field %q", name))
		}
	}

	if len(problems) > 0 {
		slices.Sort(problems)

		return assert.Fail(t, fmt.Sprintf("%T is no patch of %T:\n\t%s",
			patch, entity, strings.Join(problems, "\n\t")), msgAndArgs...)
	}

	return true
}

// jsonFields returns the exported fields of a struct by their json name.
func jsonFields(object any) (map[string]reflect.Type, bool) {
	if object == nil {
		return nil, false
	}

	typ := reflect.TypeOf(object)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	if typ.Kind() != reflect.Struct {
		return nil, false
	}

	fields := map[string]reflect.Type{}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}

		if name == "" {
			name = field.Name
		}

		fields[name] = field.Type
	}

	return fields, true
}
