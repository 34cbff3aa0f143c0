// Package typemap converts between host values and ClickHouse column
// types: type-string rendering, wire-value conversion in both
// directions, validity checks and best-effort type inference.
package typemap

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chorm-dev/chorm/internal/core/schema/domain"
)

// Canonical date/time layouts used on the wire.
const (
	DateLayout       = "2006-01-02"
	DateTimeLayout   = "2006-01-02 15:04:05"
	DateTime64Layout = "2006-01-02 15:04:05.000"
)

// RenderType produces the database-native type string for a column.
// Parameterized kinds render their parameters positionally; nullable
// columns are wrapped in Nullable(...) as the outermost layer.
func RenderType(col *domain.Column) (string, error) {
	base, err := renderBase(col)
	if err != nil {
		return "", err
	}
	if col.Nullable {
		return "Nullable(" + base + ")", nil
	}
	return base, nil
}

func renderBase(col *domain.Column) (string, error) {
	switch col.Type {
	case domain.TypeDecimal:
		if col.Precision <= 0 {
			return "", domain.NewTypeMappingError(col.Type, "precision is required")
		}
		if col.Scale < 0 || col.Scale > col.Precision {
			return "", domain.NewTypeMappingError(col.Type, "scale %d out of range for precision %d", col.Scale, col.Precision)
		}
		return fmt.Sprintf("Decimal(%d, %d)", col.Precision, col.Scale), nil
	case domain.TypeFixedString:
		if col.Length <= 0 {
			return "", domain.NewTypeMappingError(col.Type, "length is required")
		}
		return fmt.Sprintf("FixedString(%d)", col.Length), nil
	case domain.TypeDateTime64:
		precision := col.Precision
		if precision == 0 {
			precision = 3
		}
		return fmt.Sprintf("DateTime64(%d)", precision), nil
	case domain.TypeArray, domain.TypeLowCardinality:
		if col.ElementType == nil {
			return "", domain.NewTypeMappingError(col.Type, "element type is required")
		}
		elem, err := RenderType(col.ElementType)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", col.Type, elem), nil
	case domain.TypeEnum8, domain.TypeEnum16:
		if len(col.EnumValues) == 0 {
			return "", domain.NewTypeMappingError(col.Type, "enum values are required")
		}
		parts := make([]string, 0, len(col.EnumValues))
		for i, v := range col.EnumValues {
			parts = append(parts, fmt.Sprintf("'%s' = %d", escapeSingleQuotes(v), i+1))
		}
		return fmt.Sprintf("%s(%s)", col.Type, strings.Join(parts, ", ")), nil
	default:
		return string(col.Type), nil
	}
}

// ToWire converts a host value to its wire representation for a column
// kind. nil always maps to nil regardless of the declared kind.
func ToWire(value interface{}, col *domain.Column) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	switch col.Type {
	case domain.TypeUInt8, domain.TypeUInt16, domain.TypeUInt32,
		domain.TypeInt8, domain.TypeInt16, domain.TypeInt32:
		return toInt64(value, col.Type)
	case domain.TypeInt64, domain.TypeUInt64:
		return toBigInt(value, col.Type)
	case domain.TypeFloat32, domain.TypeFloat64, domain.TypeDecimal:
		return toFloat64(value, col.Type)
	case domain.TypeBool:
		b, ok := value.(bool)
		if !ok {
			return nil, domain.NewTypeMappingError(col.Type, "expected bool, got %T", value)
		}
		return b, nil
	case domain.TypeString, domain.TypeFixedString, domain.TypeEnum8,
		domain.TypeEnum16, domain.TypeIPv4, domain.TypeIPv6:
		return toString(value), nil
	case domain.TypeUUID:
		s := toString(value)
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, domain.NewTypeMappingError(col.Type, "invalid UUID %q", s)
		}
		return id.String(), nil
	case domain.TypeDate:
		t, err := toTime(value, col.Type)
		if err != nil {
			return nil, err
		}
		return t.Format(DateLayout), nil
	case domain.TypeDateTime:
		t, err := toTime(value, col.Type)
		if err != nil {
			return nil, err
		}
		return t.UTC().Format(DateTimeLayout), nil
	case domain.TypeDateTime64:
		t, err := toTime(value, col.Type)
		if err != nil {
			return nil, err
		}
		return t.UTC().Format(DateTime64Layout), nil
	case domain.TypeArray:
		items, ok := toSlice(value)
		if !ok {
			return nil, domain.NewTypeMappingError(col.Type, "expected array, got %T", value)
		}
		out := make([]interface{}, 0, len(items))
		for _, item := range items {
			if col.ElementType != nil {
				converted, err := ToWire(item, col.ElementType)
				if err != nil {
					return nil, err
				}
				out = append(out, converted)
				continue
			}
			out = append(out, item)
		}
		return out, nil
	case domain.TypeJSON, domain.TypeMap, domain.TypeTuple, domain.TypeNested:
		if _, ok := value.(string); ok {
			// Pre-serialized payloads pass through untouched.
			return value, nil
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, domain.NewTypeMappingError(col.Type, "cannot serialize %T: %v", value, err)
		}
		return string(data), nil
	case domain.TypeLowCardinality, domain.TypeNullable:
		if col.ElementType != nil {
			return ToWire(value, col.ElementType)
		}
		return toString(value), nil
	default:
		return value, nil
	}
}

// FromWire converts a wire value back to its host representation.
// 64-bit integers inside the int64 exact range come back as int64;
// larger magnitudes come back as *big.Int so no precision is lost.
func FromWire(value interface{}, col *domain.Column) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	switch col.Type {
	case domain.TypeUInt8, domain.TypeUInt16, domain.TypeUInt32,
		domain.TypeInt8, domain.TypeInt16, domain.TypeInt32:
		return toInt64(value, col.Type)
	case domain.TypeInt64, domain.TypeUInt64:
		big, err := toBigInt(value, col.Type)
		if err != nil {
			return nil, err
		}
		if big.IsInt64() {
			return big.Int64(), nil
		}
		return big, nil
	case domain.TypeFloat32, domain.TypeFloat64, domain.TypeDecimal:
		return toFloat64(value, col.Type)
	case domain.TypeBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case float64:
			return v != 0, nil
		case int:
			return v != 0, nil
		case int64:
			return v != 0, nil
		case uint8:
			return v != 0, nil
		}
		return nil, domain.NewTypeMappingError(col.Type, "expected bool, got %T", value)
	case domain.TypeDate:
		return parseTime(value, DateLayout, col.Type)
	case domain.TypeDateTime:
		return parseTime(value, DateTimeLayout, col.Type)
	case domain.TypeDateTime64:
		return parseTime(value, DateTime64Layout, col.Type)
	case domain.TypeJSON, domain.TypeMap, domain.TypeTuple, domain.TypeNested:
		s, ok := value.(string)
		if !ok {
			// Already structured.
			return value, nil
		}
		var parsed interface{}
		if err := json.Unmarshal([]byte(s), &parsed); err != nil {
			return nil, domain.NewTypeMappingError(col.Type, "cannot parse %q: %v", s, err)
		}
		return parsed, nil
	case domain.TypeArray:
		items, ok := toSlice(value)
		if !ok {
			return nil, domain.NewTypeMappingError(col.Type, "expected array, got %T", value)
		}
		out := make([]interface{}, 0, len(items))
		for _, item := range items {
			if col.ElementType != nil {
				converted, err := FromWire(item, col.ElementType)
				if err != nil {
					return nil, err
				}
				out = append(out, converted)
				continue
			}
			out = append(out, item)
		}
		return out, nil
	case domain.TypeLowCardinality, domain.TypeNullable:
		if col.ElementType != nil {
			return FromWire(value, col.ElementType)
		}
		return value, nil
	default:
		return value, nil
	}
}

// Infer makes a best-effort kind inference from a bare host value.
func Infer(value interface{}) domain.ColumnType {
	switch v := value.(type) {
	case nil:
		return domain.TypeNullable
	case bool:
		return domain.TypeBool
	case int, int8, int16, int32, uint8, uint16, uint32:
		return domain.TypeInt32
	case int64, uint, uint64:
		return domain.TypeInt64
	case *big.Int:
		return domain.TypeInt64
	case float32, float64:
		return domain.TypeFloat64
	case string:
		return domain.TypeString
	case time.Time:
		return domain.TypeDateTime
	default:
		if _, ok := toSlice(v); ok {
			return domain.TypeArray
		}
		return domain.TypeJSON
	}
}

// WireToken returns the placeholder type token for a bound parameter
// value, used in the {paramN:Type} placeholder syntax. Booleans travel
// as UInt8 and literal nils as a nullable string.
func WireToken(value interface{}) string {
	switch value.(type) {
	case nil:
		return "Nullable(String)"
	case bool:
		return "UInt8"
	case int, int8, int16, int32, uint8, uint16, uint32:
		return "Int32"
	case int64, uint, *big.Int:
		return "Int64"
	case uint64:
		return "UInt64"
	case float32, float64:
		return "Float64"
	case time.Time:
		return "DateTime"
	case string:
		return "String"
	default:
		if _, ok := toSlice(value); ok {
			return "Array(String)"
		}
		return "String"
	}
}

// DefaultFor returns the zero value for a column kind.
func DefaultFor(t domain.ColumnType) interface{} {
	switch {
	case t.IsInteger():
		return int64(0)
	case t == domain.TypeFloat32 || t == domain.TypeFloat64 || t == domain.TypeDecimal:
		return float64(0)
	case t == domain.TypeBool:
		return false
	case t.IsDateTime():
		return time.Unix(0, 0).UTC()
	case t == domain.TypeArray:
		return []interface{}{}
	case t == domain.TypeJSON || t == domain.TypeMap || t == domain.TypeTuple || t == domain.TypeNested:
		return map[string]interface{}{}
	default:
		return ""
	}
}

// Compatible reports whether two kinds belong to the same broad family:
// identical, both numeric, both string-like (excluding enums), or both
// date/time.
func Compatible(a, b domain.ColumnType) bool {
	if a == b {
		return true
	}
	switch {
	case a.IsNumeric() && b.IsNumeric():
		return true
	case a.IsStringLike() && b.IsStringLike():
		return true
	case a.IsDateTime() && b.IsDateTime():
		return true
	}
	return false
}

func escapeSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

func toString(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

func toSlice(value interface{}) ([]interface{}, bool) {
	switch v := value.(type) {
	case []interface{}:
		return v, true
	case []string:
		out := make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]interface{}, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []int64:
		out := make([]interface{}, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]interface{}, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	}
	return nil, false
}

func toInt64(value interface{}, t domain.ColumnType) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, domain.NewTypeMappingError(t, "value %d overflows int64", v)
		}
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, domain.NewTypeMappingError(t, "value %d overflows int64", v)
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, domain.NewTypeMappingError(t, "value %v is not an integer", v)
		}
		return int64(v), nil
	case float32:
		return toInt64(float64(v), t)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, domain.NewTypeMappingError(t, "cannot parse %q as integer", v)
		}
		return n, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, domain.NewTypeMappingError(t, "cannot parse %q as integer", v.String())
		}
		return n, nil
	}
	return 0, domain.NewTypeMappingError(t, "expected integer, got %T", value)
}

func toBigInt(value interface{}, t domain.ColumnType) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case string:
		n, ok := new(big.Int).SetString(v, 10)
		if !ok {
			return nil, domain.NewTypeMappingError(t, "cannot parse %q as integer", v)
		}
		return n, nil
	case json.Number:
		n, ok := new(big.Int).SetString(v.String(), 10)
		if !ok {
			return nil, domain.NewTypeMappingError(t, "cannot parse %q as integer", v.String())
		}
		return n, nil
	case float64:
		if v != math.Trunc(v) {
			return nil, domain.NewTypeMappingError(t, "value %v is not an integer", v)
		}
		return big.NewInt(int64(v)), nil
	}
	n, err := toInt64(value, t)
	if err != nil {
		return nil, err
	}
	return big.NewInt(n), nil
}

func toFloat64(value interface{}, t domain.ColumnType) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, domain.NewTypeMappingError(t, "cannot parse %q as number", v)
		}
		return f, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, domain.NewTypeMappingError(t, "cannot parse %q as number", v.String())
		}
		return f, nil
	}
	return 0, domain.NewTypeMappingError(t, "expected number, got %T", value)
}

func toTime(value interface{}, t domain.ColumnType) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, DateTime64Layout, DateTimeLayout, DateLayout} {
			if parsed, err := time.Parse(layout, v); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, domain.NewTypeMappingError(t, "cannot parse %q as time", v)
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case int:
		return time.Unix(int64(v), 0).UTC(), nil
	}
	return time.Time{}, domain.NewTypeMappingError(t, "expected time, got %T", value)
}

func parseTime(value interface{}, layout string, t domain.ColumnType) (time.Time, error) {
	if tv, ok := value.(time.Time); ok {
		return tv, nil
	}
	if s, ok := value.(string); ok {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, nil
		}
		return toTime(s, t)
	}
	return toTime(value, t)
}
