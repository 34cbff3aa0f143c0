package typemap

import (
	"math/big"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/chorm-dev/chorm/internal/core/schema/domain"
)

// IsValid checks a value against a column's declared type and
// constraints. Ordinary mismatches return false; the single raising case
// is a null value against a non-nullable column, which signals a caller
// contract violation rather than a data-quality issue.
func IsValid(value interface{}, col *domain.Column) (bool, error) {
	if value == nil {
		if !col.Nullable {
			return false, domain.ErrNotNullable
		}
		return true, nil
	}

	switch col.Type {
	case domain.TypeUInt8:
		return intInRange(value, 0, 255), nil
	case domain.TypeUInt16:
		return intInRange(value, 0, 65535), nil
	case domain.TypeUInt32:
		return intInRange(value, 0, 4294967295), nil
	case domain.TypeInt8:
		return intInRange(value, -128, 127), nil
	case domain.TypeInt16:
		return intInRange(value, -32768, 32767), nil
	case domain.TypeInt32:
		return intInRange(value, -2147483648, 2147483647), nil
	case domain.TypeInt64, domain.TypeUInt64:
		_, err := toBigInt(value, col.Type)
		return err == nil, nil
	case domain.TypeFloat32, domain.TypeFloat64, domain.TypeDecimal:
		_, err := toFloat64(value, col.Type)
		return err == nil, nil
	case domain.TypeBool:
		_, ok := value.(bool)
		return ok, nil
	case domain.TypeString:
		_, ok := value.(string)
		return ok, nil
	case domain.TypeFixedString:
		s, ok := value.(string)
		if !ok {
			return false, nil
		}
		return col.Length <= 0 || len(s) <= col.Length, nil
	case domain.TypeEnum8, domain.TypeEnum16:
		s, ok := value.(string)
		if !ok {
			return false, nil
		}
		if len(col.EnumValues) == 0 {
			return true, nil
		}
		for _, v := range col.EnumValues {
			if v == s {
				return true, nil
			}
		}
		return false, nil
	case domain.TypeUUID:
		s, ok := value.(string)
		if !ok {
			return false, nil
		}
		_, err := uuid.Parse(s)
		return err == nil, nil
	case domain.TypeIPv4:
		s, ok := value.(string)
		if !ok {
			return false, nil
		}
		ip := net.ParseIP(s)
		return ip != nil && ip.To4() != nil, nil
	case domain.TypeIPv6:
		s, ok := value.(string)
		if !ok {
			return false, nil
		}
		ip := net.ParseIP(s)
		return ip != nil && ip.To4() == nil, nil
	case domain.TypeDate, domain.TypeDateTime, domain.TypeDateTime64:
		switch value.(type) {
		case time.Time:
			return true, nil
		case string:
			_, err := toTime(value, col.Type)
			return err == nil, nil
		case int, int64:
			return true, nil
		}
		return false, nil
	case domain.TypeArray:
		items, ok := toSlice(value)
		if !ok {
			return false, nil
		}
		if col.ElementType == nil {
			return true, nil
		}
		for _, item := range items {
			valid, err := IsValid(item, col.ElementType)
			if err != nil || !valid {
				return false, err
			}
		}
		return true, nil
	case domain.TypeJSON, domain.TypeMap, domain.TypeTuple, domain.TypeNested:
		switch value.(type) {
		case map[string]interface{}, string:
			return true, nil
		}
		return false, nil
	case domain.TypeLowCardinality, domain.TypeNullable:
		if col.ElementType != nil {
			return IsValid(value, col.ElementType)
		}
		return true, nil
	default:
		return true, nil
	}
}

func intInRange(value interface{}, min, max int64) bool {
	switch v := value.(type) {
	case *big.Int:
		return v.IsInt64() && v.Int64() >= min && v.Int64() <= max
	}
	n, err := toInt64(value, domain.TypeInt64)
	if err != nil {
		return false
	}
	return n >= min && n <= max
}
