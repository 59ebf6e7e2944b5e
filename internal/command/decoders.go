package command

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/luiz-simples/redix/internal/domain"
)

var ErrUnexpectedReply = errors.New("unexpected reply type")

// DecoderFunc adapts a function to domain.Decoder.
type DecoderFunc func(*domain.Reply) (any, error)

func (decode DecoderFunc) Decode(reply *domain.Reply) (any, error) {
	if reply.IsError() {
		return nil, reply.Err
	}

	return decode(reply)
}

var (
	Raw = DecoderFunc(func(reply *domain.Reply) (any, error) {
		return reply, nil
	})

	Status = DecoderFunc(func(reply *domain.Reply) (any, error) {
		if reply.Kind != domain.KindStatus {
			return nil, unexpected("status", reply)
		}
		return reply.Str, nil
	})

	Integer = DecoderFunc(decodeInteger)

	Bulk = DecoderFunc(func(reply *domain.Reply) (any, error) {
		if reply.IsNil() {
			return nil, nil
		}
		if reply.Kind != domain.KindBulk && reply.Kind != domain.KindVerbatim && reply.Kind != domain.KindStatus {
			return nil, unexpected("bulk", reply)
		}
		if reply.Kind == domain.KindStatus {
			return []byte(reply.Str), nil
		}
		return reply.Bytes, nil
	})

	Text = DecoderFunc(func(reply *domain.Reply) (any, error) {
		if reply.IsNil() {
			return nil, nil
		}
		if reply.IsAggregate() || reply.Kind == domain.KindMap {
			return nil, unexpected("string", reply)
		}
		return reply.Text(), nil
	})

	Bool = DecoderFunc(func(reply *domain.Reply) (any, error) {
		switch reply.Kind {
		case domain.KindBoolean:
			return reply.Boolean, nil
		case domain.KindInteger:
			return reply.Integer != 0, nil
		case domain.KindStatus:
			return reply.IsOK(), nil
		case domain.KindNil:
			return false, nil
		}
		return nil, unexpected("boolean", reply)
	})

	Float = DecoderFunc(func(reply *domain.Reply) (any, error) {
		switch reply.Kind {
		case domain.KindNil:
			return nil, nil
		case domain.KindDouble:
			return reply.Double, nil
		case domain.KindInteger:
			return float64(reply.Integer), nil
		case domain.KindBulk, domain.KindStatus:
			value, err := strconv.ParseFloat(reply.Text(), 64)
			if hasError(err) {
				return nil, fmt.Errorf("%w: %q is not a float", ErrUnexpectedReply, reply.Text())
			}
			return value, nil
		}
		return nil, unexpected("float", reply)
	})

	Strings = DecoderFunc(func(reply *domain.Reply) (any, error) {
		if reply.IsNil() {
			return []string(nil), nil
		}
		if !reply.IsAggregate() {
			return nil, unexpected("array", reply)
		}

		values := make([]string, 0, len(reply.Elems))
		for _, elem := range reply.Elems {
			values = append(values, elem.Text())
		}
		return values, nil
	})

	// StringMap accepts both RESP3 maps and RESP2 flat key/value arrays.
	StringMap = DecoderFunc(func(reply *domain.Reply) (any, error) {
		switch {
		case reply.IsNil():
			return map[string]string{}, nil
		case reply.Kind == domain.KindMap:
			values := make(map[string]string, len(reply.Entries))
			for _, entry := range reply.Entries {
				values[entry.Key.Text()] = entry.Value.Text()
			}
			return values, nil
		case reply.IsAggregate() && len(reply.Elems)%2 == 0:
			values := make(map[string]string, len(reply.Elems)/2)
			for index := 0; index < len(reply.Elems); index += 2 {
				values[reply.Elems[index].Text()] = reply.Elems[index+1].Text()
			}
			return values, nil
		}
		return nil, unexpected("map", reply)
	})
)

func decodeInteger(reply *domain.Reply) (any, error) {
	switch reply.Kind {
	case domain.KindInteger:
		return reply.Integer, nil
	case domain.KindNil:
		return nil, nil
	case domain.KindBulk, domain.KindStatus:
		value, err := strconv.ParseInt(reply.Text(), 10, 64)
		if hasError(err) {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrUnexpectedReply, reply.Text())
		}
		return value, nil
	}

	return nil, unexpected("integer", reply)
}

func unexpected(expected string, reply *domain.Reply) error {
	return fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedReply, expected, reply.Kind)
}
