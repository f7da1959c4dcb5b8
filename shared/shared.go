package shared

import (
	"reflect"
	"strconv"
	"strings"

	"todoapi/shared/constant"
	"todoapi/shared/dto"
	"todoapi/shared/timezone"

	"github.com/rs/zerolog/log"
)

func ConvertStringToInt(value string) (*int, error) {
	if value == "" {
		return nil, nil //nolint:nilnil
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Error().Err(err).Str("value", value).Msg("failed to convert string to int")

		return nil, err //nolint:wrapcheck
	}

	return &intValue, nil
}

// TransformFields converts the non-zero, db-tagged fields of a struct into a
// column map for an UPDATE. Pointer fields are dereferenced, so a pointer to a
// zero value is still written. updated_at is always stamped.
func TransformFields(data any) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	if val.Kind() == reflect.Pointer {
		val = val.Elem()
		typ = typ.Elem()
	}

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" || fieldName == "-" {
			continue
		}

		if field.Kind() == reflect.Pointer {
			field = field.Elem()
		}

		updatedFields[fieldName] = field.Interface()
	}

	updatedFields[constant.FieldUpdatedAt] = timezone.Now()

	return updatedFields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// BuildCacheKey joins non-empty parts with the cache key separator.
func BuildCacheKey(parts ...string) string {
	keys := make([]string, 0, len(parts))

	for _, part := range parts {
		if part != "" {
			keys = append(keys, part)
		}
	}

	return strings.Join(keys, constant.CacheKeySeparator)
}
