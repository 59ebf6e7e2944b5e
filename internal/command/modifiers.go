package command

import (
	"strconv"
	"time"

	"github.com/luiz-simples/redix/internal/domain"
)

type (
	// Modifier appends optional tokens to an argument list. Modifiers are
	// pure: they return a new list and leave their input untouched.
	Modifier func(domain.Args) domain.Args

	Condition string
)

const (
	NX Condition = "NX"
	XX Condition = "XX"
)

// Apply runs modifiers over a copy of base, in order.
func Apply(base domain.Args, modifiers ...Modifier) domain.Args {
	args := make(domain.Args, len(base), len(base)+len(modifiers)*2)
	copy(args, base)

	for _, modifier := range modifiers {
		args = modifier(args)
	}

	return args
}

// Flag appends name when enabled.
func Flag(name string, enabled bool) Modifier {
	return func(args domain.Args) domain.Args {
		if !enabled {
			return args
		}
		return append(args, []byte(name))
	}
}

// Option appends name and value when value is not empty.
func Option(name string, value string) Modifier {
	return func(args domain.Args) domain.Args {
		if isEmpty(value) {
			return args
		}
		return append(args, []byte(name), []byte(value))
	}
}

// Expire appends EX seconds, or PX milliseconds when ttl has a sub-second
// part. Non-positive durations add nothing.
func Expire(ttl time.Duration) Modifier {
	return func(args domain.Args) domain.Args {
		if ttl <= 0 {
			return args
		}

		if ttl%time.Second == 0 {
			return append(args, []byte("EX"), strconv.AppendInt(nil, int64(ttl/time.Second), 10))
		}

		return append(args, []byte("PX"), strconv.AppendInt(nil, ttl.Milliseconds(), 10))
	}
}

func (condition Condition) Modifier() Modifier {
	return Flag(string(condition), !isEmpty(string(condition)))
}

// WithCondition appends NX or XX.
func WithCondition(condition Condition) Modifier {
	return condition.Modifier()
}
