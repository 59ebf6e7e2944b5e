package protocol

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/luiz-simples/redix/internal/domain"
)

const verbatimFormatLen = 3

type resp3 struct{}

func (resp3) Version() int {
	return RESP3
}

func (parser resp3) Parse(reader Reader) (*domain.Reply, error) {
	return decode(reader, parser)
}

func (parser resp3) decodeExtended(prefix byte, payload []byte, reader Reader) (*domain.Reply, error) {
	switch prefix {
	case PrefixNull:
		return domain.NewNil(), nil
	case PrefixDouble:
		return decodeDouble(payload)
	case PrefixBoolean:
		return decodeBoolean(payload)
	case PrefixBigNumber:
		return decodeBigNumber(payload)
	case PrefixBlobError:
		data, err := readBulk(prefix, payload, reader)
		if hasError(err) {
			return nil, err
		}
		if data == nil {
			return nil, domain.NewProtocolError("null blob error")
		}
		return domain.NewError(string(data)), nil
	case PrefixVerbatim:
		return decodeVerbatim(prefix, payload, reader)
	case PrefixSet, PrefixPush:
		return parser.decodeCollection(prefix, payload, reader)
	case PrefixMap:
		entries, err := parser.decodeEntries(prefix, payload, reader)
		if hasError(err) {
			return nil, err
		}
		if entries == nil {
			return domain.NewNil(), nil
		}
		return &domain.Reply{Kind: domain.KindMap, Entries: entries}, nil
	case PrefixAttribute:
		return parser.decodeAttributed(prefix, payload, reader)
	}

	return nil, domain.NewProtocolError("unknown RESP3 type prefix %q", prefix)
}

func (parser resp3) decodeCollection(prefix byte, payload []byte, reader Reader) (*domain.Reply, error) {
	elems, err := decodeElements(prefix, payload, reader, parser)
	if hasError(err) {
		return nil, err
	}

	if elems == nil {
		return domain.NewNil(), nil
	}

	kind := domain.KindSet
	if prefix == PrefixPush {
		kind = domain.KindPush
	}

	return &domain.Reply{Kind: kind, Elems: elems}, nil
}

// decodeEntries reads count key/value pairs, that is 2*count replies.
func (parser resp3) decodeEntries(prefix byte, payload []byte, reader Reader) ([]domain.MapEntry, error) {
	count, err := parseAggregateLength(prefix, payload)
	if hasError(err) {
		return nil, err
	}

	if isNullLength(count) {
		return nil, nil
	}

	entries := make([]domain.MapEntry, 0, min(count, preallocLimit))

	for range count {
		key, err := decode(reader, parser)
		if hasError(err) {
			return nil, err
		}

		value, err := decode(reader, parser)
		if hasError(err) {
			return nil, err
		}

		entries = append(entries, domain.MapEntry{Key: key, Value: value})
	}

	return entries, nil
}

// decodeAttributed attaches an attribute map to the reply that follows it.
func (parser resp3) decodeAttributed(prefix byte, payload []byte, reader Reader) (*domain.Reply, error) {
	attributes, err := parser.decodeEntries(prefix, payload, reader)
	if hasError(err) {
		return nil, err
	}

	reply, err := decode(reader, parser)
	if hasError(err) {
		return nil, err
	}

	reply.Attributes = attributes
	return reply, nil
}

func decodeDouble(payload []byte) (*domain.Reply, error) {
	text := strings.ToLower(string(payload))

	var value float64
	var err error

	switch text {
	case "inf", "+inf":
		value = math.Inf(1)
	case "-inf":
		value = math.Inf(-1)
	case "nan", "-nan":
		value = math.NaN()
	default:
		value, err = strconv.ParseFloat(text, 64)
	}

	if hasError(err) {
		return nil, domain.NewProtocolError("invalid double %q", payload)
	}

	return &domain.Reply{Kind: domain.KindDouble, Double: value}, nil
}

func decodeBoolean(payload []byte) (*domain.Reply, error) {
	switch string(payload) {
	case "t":
		return &domain.Reply{Kind: domain.KindBoolean, Boolean: true}, nil
	case "f":
		return &domain.Reply{Kind: domain.KindBoolean, Boolean: false}, nil
	}

	return nil, domain.NewProtocolError("invalid boolean %q", payload)
}

func decodeBigNumber(payload []byte) (*domain.Reply, error) {
	value, ok := new(big.Int).SetString(string(payload), 10)
	if !ok {
		return nil, domain.NewProtocolError("invalid big number %q", payload)
	}

	return &domain.Reply{Kind: domain.KindBigNumber, Str: string(payload), Big: value}, nil
}

func decodeVerbatim(prefix byte, payload []byte, reader Reader) (*domain.Reply, error) {
	data, err := readBulk(prefix, payload, reader)
	if hasError(err) {
		return nil, err
	}

	if data == nil || len(data) < verbatimFormatLen+1 || data[verbatimFormatLen] != ':' {
		return nil, domain.NewProtocolError("verbatim string without format prefix")
	}

	return &domain.Reply{
		Kind:   domain.KindVerbatim,
		Format: string(data[:verbatimFormatLen]),
		Bytes:  data[verbatimFormatLen+1:],
	}, nil
}
