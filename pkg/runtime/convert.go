package runtime

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// FormatValue renders a single field value in its wire string form, as
// used for path segments and header values.
func FormatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	case []byte:
		return base64.StdEncoding.EncodeToString(t)
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

// DecodeString parses a wire string back into a typed destination. dst
// must be a non-nil pointer to one of the primitive field types.
func DecodeString(raw string, dst any) error {
	switch t := dst.(type) {
	case *string:
		*t = raw
	case *int32:
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return err
		}
		*t = int32(n)
	case *int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		*t = n
	case *uint32:
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return err
		}
		*t = uint32(n)
	case *uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return err
		}
		*t = n
	case *float64:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		*t = n
	case *bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		*t = b
	case *time.Time:
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return err
		}
		*t = ts
	case *[]byte:
		b, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return err
		}
		*t = b
	default:
		return fmt.Errorf("unsupported destination type %T", dst)
	}
	return nil
}

// IsSet reports whether a non-pointer value differs from its zero value.
// Generated error-indicator accessors use it for required fields.
func IsSet(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return !rv.IsZero()
}

// JoinURL glues a base URL and a generated request path without doubling
// or dropping the separating slash.
func JoinURL(base, path string) string {
	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
