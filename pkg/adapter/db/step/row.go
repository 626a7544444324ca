// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package step

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/momeni/dbmigrate/pkg/core/cerr"
)

// Row is the current row of a result set. Its getters take 1-based
// column positions. Nullable getters return nil for an SQL NULL, while
// the other getters fail with a *cerr.NullColumnError.
type Row struct {
	columns []string
	values  []any
}

// String renders all columns of r, like [id=2, login=emmerik].
func (r *Row) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range r.values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(r.columns[i])
		sb.WriteByte('=')
		switch v := v.(type) {
		case nil:
			sb.WriteString("null")
		case []byte:
			sb.Write(v)
		default:
			fmt.Fprint(&sb, v)
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

// Len returns the number of columns.
func (r *Row) Len() int {
	return len(r.values)
}

func (r *Row) value(i int) (any, error) {
	if i < 1 || i > len(r.values) {
		return nil, fmt.Errorf(
			"column index %d is out of range [1, %d]", i, len(r.values),
		)
	}
	return r.values[i-1], nil
}

func (r *Row) nullColumn(i int) error {
	return &cerr.NullColumnError{
		Index: i, Name: r.columns[i-1], Row: r.String(),
	}
}

// notNull converts the i-th value with conv, failing if it is NULL.
func notNull[T any](r *Row, i int, conv func(any) (T, error)) (T, error) {
	var zero T
	v, err := r.value(i)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, r.nullColumn(i)
	}
	t, err := conv(v)
	if err != nil {
		return zero, fmt.Errorf("column #%d (%s): %w", i, r.columns[i-1], err)
	}
	return t, nil
}

// orNil converts the i-th value with conv, returning nil if it is NULL.
func orNil[T any](r *Row, i int, conv func(any) (T, error)) (*T, error) {
	v, err := r.value(i)
	if err != nil || v == nil {
		return nil, err
	}
	t, err := conv(v)
	if err != nil {
		return nil, fmt.Errorf("column #%d (%s): %w", i, r.columns[i-1], err)
	}
	return &t, nil
}

// GetLong returns the i-th column as an int64.
func (r *Row) GetLong(i int) (int64, error) {
	return notNull(r, i, toInt64)
}

// GetNullableLong returns the i-th column as an *int64.
func (r *Row) GetNullableLong(i int) (*int64, error) {
	return orNil(r, i, toInt64)
}

// GetInt returns the i-th column as an int.
func (r *Row) GetInt(i int) (int, error) {
	return notNull(r, i, toInt)
}

// GetNullableInt returns the i-th column as an *int.
func (r *Row) GetNullableInt(i int) (*int, error) {
	return orNil(r, i, toInt)
}

// GetString returns the i-th column as a string.
func (r *Row) GetString(i int) (string, error) {
	return notNull(r, i, toString)
}

// GetNullableString returns the i-th column as a *string.
func (r *Row) GetNullableString(i int) (*string, error) {
	return orNil(r, i, toString)
}

// GetBoolean returns the i-th column as a bool. Numeric columns are
// true when they are not zero.
func (r *Row) GetBoolean(i int) (bool, error) {
	return notNull(r, i, toBool)
}

// GetNullableBoolean returns the i-th column as a *bool.
func (r *Row) GetNullableBoolean(i int) (*bool, error) {
	return orNil(r, i, toBool)
}

// GetDate returns the i-th column as a time.Time.
func (r *Row) GetDate(i int) (time.Time, error) {
	return notNull(r, i, toTime)
}

// GetNullableDate returns the i-th column as a *time.Time.
func (r *Row) GetNullableDate(i int) (*time.Time, error) {
	return orNil(r, i, toTime)
}

// GetDouble returns the i-th column as a float64.
func (r *Row) GetDouble(i int) (float64, error) {
	return notNull(r, i, toFloat64)
}

// GetNullableDouble returns the i-th column as a *float64.
func (r *Row) GetNullableDouble(i int) (*float64, error) {
	return orNil(r, i, toFloat64)
}

// GetBytes returns the i-th column as a byte slice, or nil for NULL.
func (r *Row) GetBytes(i int) ([]byte, error) {
	v, err := r.value(i)
	if err != nil || v == nil {
		return nil, err
	}
	switch v := v.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("column #%d: cannot read %T as bytes", i, v)
	}
}

func toInt64(v any) (int64, error) {
	switch v := v.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case float32:
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("cannot read %T as an integer", v)
	}
}

func toInt(v any) (int, error) {
	n, err := toInt64(v)
	return int(n), err
}

func toString(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	default:
		return fmt.Sprint(v), nil
	}
}

func toBool(v any) (bool, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(v)
	case []byte:
		return strconv.ParseBool(string(v))
	default:
		n, err := toInt64(v)
		if err != nil {
			return false, fmt.Errorf("cannot read %T as a boolean", v)
		}
		return n != 0, nil
	}
}

// Layouts of the dates which are stored as strings, e.g., by SQLite.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func toTime(v any) (time.Time, error) {
	var s string
	switch v := v.(type) {
	case time.Time:
		return v, nil
	case int64:
		return time.UnixMilli(v), nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return time.Time{}, fmt.Errorf("cannot read %T as a date", v)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date", s)
}

func toFloat64(v any) (float64, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	case []byte:
		return strconv.ParseFloat(string(v), 64)
	default:
		n, err := toInt64(v)
		if err != nil {
			return 0, fmt.Errorf("cannot read %T as a double", v)
		}
		return float64(n), nil
	}
}
