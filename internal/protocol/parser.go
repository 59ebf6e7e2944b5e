package protocol

import (
	"fmt"
	"strconv"

	"github.com/luiz-simples/redix/internal/domain"
)

const (
	PrefixStatus    = '+'
	PrefixError     = '-'
	PrefixInteger   = ':'
	PrefixBulk      = '$'
	PrefixArray     = '*'
	PrefixNull      = '_'
	PrefixDouble    = ','
	PrefixBoolean   = '#'
	PrefixBlobError = '!'
	PrefixVerbatim  = '='
	PrefixBigNumber = '('
	PrefixMap       = '%'
	PrefixSet       = '~'
	PrefixAttribute = '|'
	PrefixPush      = '>'

	RESP2 = 2
	RESP3 = 3
)

var legacyNil = []byte("nil")

type (
	// Parser decodes exactly one reply per call. Implementations are stateless
	// and safe for reuse across connections.
	Parser interface {
		Version() int
		Parse(Reader) (*domain.Reply, error)
	}

	// strategy plugs the version-specific prefixes into the shared decoder.
	strategy interface {
		Parser
		decodeExtended(prefix byte, payload []byte, reader Reader) (*domain.Reply, error)
	}
)

func NewParser(version int) (Parser, error) {
	switch version {
	case RESP2:
		return resp2{}, nil
	case RESP3:
		return resp3{}, nil
	}

	return nil, fmt.Errorf("unsupported protocol version %d", version)
}

// ParseBytes decodes the first reply found in data.
func ParseBytes(data []byte, version int) (*domain.Reply, error) {
	parser, err := NewParser(version)
	if hasError(err) {
		return nil, err
	}

	return parser.Parse(NewBytesReader(data))
}

func decode(reader Reader, parser strategy) (*domain.Reply, error) {
	line, err := reader.ReadLine()
	if hasError(err) {
		return nil, err
	}

	if len(line) == 0 {
		return nil, domain.NewProtocolError("empty reply line")
	}

	prefix, payload := line[0], line[1:]

	switch prefix {
	case PrefixStatus:
		return domain.NewStatus(string(payload)), nil
	case PrefixError:
		return domain.NewError(string(payload)), nil
	case PrefixInteger:
		return decodeInteger(payload)
	case PrefixBulk:
		data, err := readBulk(prefix, payload, reader)
		if hasError(err) {
			return nil, err
		}
		return domain.NewBulk(data), nil
	case PrefixArray:
		elems, err := decodeElements(prefix, payload, reader, parser)
		if hasError(err) {
			return nil, err
		}
		if elems == nil {
			return domain.NewNil(), nil
		}
		return domain.NewArray(elems...), nil
	}

	return parser.decodeExtended(prefix, payload, reader)
}

func decodeInteger(payload []byte) (*domain.Reply, error) {
	if string(payload) == string(legacyNil) {
		return domain.NewNil(), nil
	}

	value, err := strconv.ParseInt(string(payload), 10, 64)
	if hasError(err) {
		return nil, domain.NewProtocolError("invalid integer %q", payload)
	}

	return domain.NewInteger(value), nil
}

// readBulk returns nil for a null bulk and a non-nil slice otherwise.
func readBulk(prefix byte, payload []byte, reader Reader) ([]byte, error) {
	length, err := parseLength(prefix, payload)
	if hasError(err) {
		return nil, err
	}

	if isNullLength(length) {
		return nil, nil
	}

	if length > MaxBulkLength {
		return nil, domain.NewProtocolError("bulk length %d exceeds %d", length, MaxBulkLength)
	}

	data, err := reader.ReadN(length + trailerLen)
	if hasError(err) {
		return nil, err
	}

	if data[length] != '\r' || data[length+1] != '\n' {
		return nil, domain.NewProtocolError("bulk payload is not terminated by CRLF")
	}

	return data[:length:length], nil
}

// decodeElements returns nil for a null aggregate.
func decodeElements(prefix byte, payload []byte, reader Reader, parser strategy) ([]*domain.Reply, error) {
	count, err := parseAggregateLength(prefix, payload)
	if hasError(err) {
		return nil, err
	}

	if isNullLength(count) {
		return nil, nil
	}

	elems := make([]*domain.Reply, 0, min(count, preallocLimit))

	for range count {
		elem, err := decode(reader, parser)
		if hasError(err) {
			return nil, err
		}
		elems = append(elems, elem)
	}

	return elems, nil
}
