package audit

import (
	"database/sql/driver"
	"encoding/json"
	"reflect"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// stringify renders a column value the way it is stored in the change log.
// Nil values, nil pointers and NULL valuers are logged as NULL.
func stringify(v any) *string {
	if lo.IsNil(v) {
		return nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	v = rv.Interface()

	switch t := v.(type) {
	case time.Time:
		return lo.ToPtr(t.UTC().Format(time.RFC3339Nano))
	case driver.Valuer:
		value, err := t.Value()
		if err != nil {
			break
		}
		if value == nil {
			return nil
		}
		if b, ok := value.([]byte); ok {
			return lo.ToPtr(string(b))
		}
		return stringify(value)
	}

	if s, err := cast.ToStringE(v); err == nil {
		return &s
	}

	b, err := json.Marshal(v)
	if err != nil {
		return lo.ToPtr(rv.String())
	}

	return lo.ToPtr(string(b))
}
