package command

import (
	"fmt"
	"strconv"
	"time"

	"github.com/luiz-simples/redix/internal/domain"
)

// Args converts Go values into wire arguments. Slices of strings or byte
// slices are flattened in place.
func Args(values ...any) (domain.Args, error) {
	args := make(domain.Args, 0, len(values))

	for index, value := range values {
		switch typed := value.(type) {
		case domain.Args:
			args = append(args, typed...)
		case []string:
			for _, item := range typed {
				args = append(args, []byte(item))
			}
		default:
			arg, err := toBytes(typed)
			if hasError(err) {
				return nil, fmt.Errorf("argument %d: %w", index, err)
			}
			args = append(args, arg)
		}
	}

	return args, nil
}

func toBytes(value any) ([]byte, error) {
	switch typed := value.(type) {
	case []byte:
		return typed, nil
	case string:
		return []byte(typed), nil
	case int:
		return strconv.AppendInt(nil, int64(typed), 10), nil
	case int32:
		return strconv.AppendInt(nil, int64(typed), 10), nil
	case int64:
		return strconv.AppendInt(nil, typed, 10), nil
	case uint:
		return strconv.AppendUint(nil, uint64(typed), 10), nil
	case uint32:
		return strconv.AppendUint(nil, uint64(typed), 10), nil
	case uint64:
		return strconv.AppendUint(nil, typed, 10), nil
	case float32:
		return strconv.AppendFloat(nil, float64(typed), 'f', -1, 32), nil
	case float64:
		return strconv.AppendFloat(nil, typed, 'f', -1, 64), nil
	case bool:
		if typed {
			return []byte("1"), nil
		}
		return []byte("0"), nil
	case time.Duration:
		return strconv.AppendInt(nil, typed.Milliseconds(), 10), nil
	case fmt.Stringer:
		return []byte(typed.String()), nil
	}

	return nil, fmt.Errorf("unsupported argument type %T", value)
}
