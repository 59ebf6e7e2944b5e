package protocol

import (
	"math"
	"strconv"

	"github.com/tidwall/redcon"

	"github.com/luiz-simples/redix/internal/domain"
)

// AppendReply encodes reply for the given protocol version. RESP3-only kinds
// are downgraded the way servers do for RESP2 clients.
func AppendReply(dst []byte, reply *domain.Reply, version int) []byte {
	if version == RESP3 && len(reply.Attributes) > 0 {
		dst = appendHeader(dst, PrefixAttribute, len(reply.Attributes))
		dst = appendEntries(dst, reply.Attributes, version)
	}

	switch reply.Kind {
	case domain.KindStatus:
		return redcon.AppendString(dst, reply.Str)
	case domain.KindError:
		return redcon.AppendError(dst, reply.Err.Message)
	case domain.KindInteger:
		return redcon.AppendInt(dst, reply.Integer)
	case domain.KindBulk:
		return redcon.AppendBulk(dst, reply.Bytes)
	case domain.KindArray:
		return appendElements(dst, PrefixArray, reply.Elems, version)
	}

	if version == RESP3 {
		return appendRESP3(dst, reply)
	}

	return appendDowngraded(dst, reply)
}

func EncodeReply(reply *domain.Reply, version int) []byte {
	return AppendReply(nil, reply, version)
}

func appendRESP3(dst []byte, reply *domain.Reply) []byte {
	switch reply.Kind {
	case domain.KindDouble:
		dst = append(dst, PrefixDouble)
		dst = append(dst, formatDouble(reply.Double)...)
		return append(dst, crlf...)
	case domain.KindBoolean:
		if reply.Boolean {
			return append(dst, "#t\r\n"...)
		}
		return append(dst, "#f\r\n"...)
	case domain.KindBigNumber:
		dst = append(dst, PrefixBigNumber)
		dst = append(dst, reply.Str...)
		return append(dst, crlf...)
	case domain.KindVerbatim:
		payload := append([]byte(reply.Format+":"), reply.Bytes...)
		dst = appendHeader(dst, PrefixVerbatim, len(payload))
		dst = append(dst, payload...)
		return append(dst, crlf...)
	case domain.KindMap:
		dst = appendHeader(dst, PrefixMap, len(reply.Entries))
		return appendEntries(dst, reply.Entries, RESP3)
	case domain.KindSet:
		return appendElements(dst, PrefixSet, reply.Elems, RESP3)
	case domain.KindPush:
		return appendElements(dst, PrefixPush, reply.Elems, RESP3)
	}

	return append(dst, "_\r\n"...)
}

func appendDowngraded(dst []byte, reply *domain.Reply) []byte {
	switch reply.Kind {
	case domain.KindDouble:
		return redcon.AppendBulkString(dst, formatDouble(reply.Double))
	case domain.KindBoolean:
		if reply.Boolean {
			return redcon.AppendInt(dst, 1)
		}
		return redcon.AppendInt(dst, 0)
	case domain.KindBigNumber:
		return redcon.AppendBulkString(dst, reply.Str)
	case domain.KindVerbatim:
		return redcon.AppendBulk(dst, reply.Bytes)
	case domain.KindMap:
		dst = redcon.AppendArray(dst, len(reply.Entries)*2)
		return appendEntries(dst, reply.Entries, RESP2)
	case domain.KindSet, domain.KindPush:
		return appendElements(dst, PrefixArray, reply.Elems, RESP2)
	}

	return redcon.AppendNull(dst)
}

func appendHeader(dst []byte, prefix byte, length int) []byte {
	dst = append(dst, prefix)
	dst = strconv.AppendInt(dst, int64(length), 10)
	return append(dst, crlf...)
}

func appendElements(dst []byte, prefix byte, elems []*domain.Reply, version int) []byte {
	dst = appendHeader(dst, prefix, len(elems))

	for _, elem := range elems {
		dst = AppendReply(dst, elem, version)
	}

	return dst
}

func appendEntries(dst []byte, entries []domain.MapEntry, version int) []byte {
	for _, entry := range entries {
		dst = AppendReply(dst, entry.Key, version)
		dst = AppendReply(dst, entry.Value, version)
	}

	return dst
}

func formatDouble(value float64) string {
	switch {
	case math.IsInf(value, 1):
		return "inf"
	case math.IsInf(value, -1):
		return "-inf"
	case math.IsNaN(value):
		return "nan"
	}

	return strconv.FormatFloat(value, 'g', -1, 64)
}
