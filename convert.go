package pgbin

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"
)

// derefValue unwraps pointers until a concrete value is reached. It returns
// nil for a nil pointer.
func derefValue(value any) any {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

// isNilValue reports whether value represents SQL NULL: nil itself, or a
// typed nil pointer, slice, or map.
func isNilValue(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map:
		return rv.IsNil()
	}
	return false
}

func convertToBool(value any) (bool, error) {
	switch value := value.(type) {
	case bool:
		return value, nil
	default:
		return false, fmt.Errorf("cannot convert %v to bool", value)
	}
}

func convertToInt64(value any) (int64, error) {
	switch value := value.(type) {
	case int8:
		return int64(value), nil
	case uint8:
		return int64(value), nil
	case int16:
		return int64(value), nil
	case uint16:
		return int64(value), nil
	case int32:
		return int64(value), nil
	case uint32:
		return int64(value), nil
	case int64:
		return value, nil
	case uint64:
		if value > math.MaxInt64 {
			return 0, fmt.Errorf("%d is greater than maximum value for int64", value)
		}
		return int64(value), nil
	case int:
		return int64(value), nil
	case uint:
		if uint64(value) > math.MaxInt64 {
			return 0, fmt.Errorf("%d is greater than maximum value for int64", value)
		}
		return int64(value), nil
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u := rv.Uint()
			if u > math.MaxInt64 {
				return 0, fmt.Errorf("%d is greater than maximum value for int64", u)
			}
			return int64(u), nil
		}
		return 0, fmt.Errorf("cannot convert %v to int64", value)
	}
}

func convertToFloat64(value any) (float64, error) {
	switch value := value.(type) {
	case float32:
		return float64(value), nil
	case float64:
		return value, nil
	default:
		if n, err := convertToInt64(value); err == nil {
			return float64(n), nil
		}
		return 0, fmt.Errorf("cannot convert %v to float64", value)
	}
}

func convertToString(value any) (string, error) {
	switch value := value.(type) {
	case string:
		return value, nil
	case []byte:
		return string(value), nil
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.String {
			return rv.String(), nil
		}
		return "", fmt.Errorf("cannot convert %v to string", value)
	}
}

func convertToBytes(value any) ([]byte, error) {
	switch value := value.(type) {
	case []byte:
		return value, nil
	case string:
		return []byte(value), nil
	default:
		return nil, fmt.Errorf("cannot convert %v to []byte", value)
	}
}

// assignTo assigns a decoded value to *dst. dst must be a non-nil pointer. A
// nil src zeroes the destination; the NOT NULL check has already happened by
// the time assignTo runs.
func assignTo(dst any, src any) error {
	dp := reflect.ValueOf(dst)
	if dp.Kind() != reflect.Ptr || dp.IsNil() {
		return fmt.Errorf("destination must be a non-nil pointer, got %T", dst)
	}
	return assignValue(dp.Elem(), src)
}

func assignValue(dst reflect.Value, src any) error {
	if src == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	if dst.Kind() == reflect.Ptr {
		p := reflect.New(dst.Type().Elem())
		if err := assignValue(p.Elem(), src); err != nil {
			return err
		}
		dst.Set(p)
		return nil
	}

	sv := reflect.ValueOf(src)
	if sv.Type().AssignableTo(dst.Type()) {
		dst.Set(sv)
		return nil
	}

	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := convertToInt64(src)
		if err != nil {
			break
		}
		if dst.OverflowInt(n) {
			return fmt.Errorf("%d overflows %s", n, dst.Type())
		}
		dst.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := convertToInt64(src)
		if err != nil {
			break
		}
		if n < 0 || dst.OverflowUint(uint64(n)) {
			return fmt.Errorf("%d overflows %s", n, dst.Type())
		}
		dst.SetUint(uint64(n))
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := convertToFloat64(src)
		if err != nil {
			break
		}
		dst.SetFloat(f)
		return nil
	case reflect.String:
		if s, err := convertToString(src); err == nil {
			dst.SetString(s)
			return nil
		}
	}

	// An interval with no calendar components fits a time.Duration target.
	if iv, ok := src.(Interval); ok && dst.Type() == reflect.TypeOf(time.Duration(0)) {
		if iv.Days != 0 || iv.Months != 0 {
			return fmt.Errorf("interval with days or months cannot be assigned to time.Duration")
		}
		dst.Set(reflect.ValueOf(time.Duration(iv.Microseconds) * time.Microsecond))
		return nil
	}

	// A json/jsonb column maps onto any unmarshalable target shape.
	if raw, ok := src.(json.RawMessage); ok {
		if err := json.Unmarshal(raw, dst.Addr().Interface()); err != nil {
			return &MalformedJSONError{Err: err}
		}
		return nil
	}

	if sv.Type().ConvertibleTo(dst.Type()) && sv.Kind() == dst.Kind() {
		dst.Set(sv.Convert(dst.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", src, dst.Type())
}
