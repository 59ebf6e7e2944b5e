package domain

import (
	"strconv"
	"strings"
)

func NewNil() *Reply {
	return &Reply{Kind: KindNil}
}

func NewStatus(status string) *Reply {
	return &Reply{Kind: KindStatus, Str: status}
}

func NewError(message string) *Reply {
	return &Reply{Kind: KindError, Err: NewServerError(message)}
}

func NewInteger(value int64) *Reply {
	return &Reply{Kind: KindInteger, Integer: value}
}

func NewBulk(value []byte) *Reply {
	if value == nil {
		return NewNil()
	}

	return &Reply{Kind: KindBulk, Bytes: value}
}

func NewArray(elems ...*Reply) *Reply {
	if elems == nil {
		elems = []*Reply{}
	}

	return &Reply{Kind: KindArray, Elems: elems}
}

func (reply *Reply) IsNil() bool {
	return reply == nil || reply.Kind == KindNil
}

func (reply *Reply) IsError() bool {
	return reply != nil && reply.Kind == KindError
}

func (reply *Reply) IsStatus(status string) bool {
	return reply != nil && reply.Kind == KindStatus && reply.Str == status
}

func (reply *Reply) IsOK() bool {
	return reply.IsStatus(StatusOK)
}

func (reply *Reply) IsQueued() bool {
	return reply.IsStatus(StatusQueued)
}

// IsAggregate reports whether the reply carries child elements in Elems.
func (reply *Reply) IsAggregate() bool {
	if reply == nil {
		return false
	}

	switch reply.Kind {
	case KindArray, KindSet, KindPush:
		return true
	}

	return false
}

// Text returns the textual payload of scalar replies.
func (reply *Reply) Text() string {
	if reply == nil {
		return ""
	}

	switch reply.Kind {
	case KindStatus, KindBigNumber:
		return reply.Str
	case KindBulk, KindVerbatim:
		return string(reply.Bytes)
	case KindInteger:
		return strconv.FormatInt(reply.Integer, 10)
	case KindDouble:
		return strconv.FormatFloat(reply.Double, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(reply.Boolean)
	case KindError:
		return reply.Err.Error()
	}

	return ""
}

func (reply *Reply) String() string {
	if reply.IsNil() {
		return "(nil)"
	}

	if reply.Kind == KindMap {
		parts := make([]string, 0, len(reply.Entries))
		for _, entry := range reply.Entries {
			parts = append(parts, entry.Key.String()+" => "+entry.Value.String())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}

	if reply.IsAggregate() {
		parts := make([]string, 0, len(reply.Elems))
		for _, elem := range reply.Elems {
			parts = append(parts, elem.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}

	if reply.Kind == KindError {
		return "(error) " + reply.Err.Error()
	}

	return reply.Text()
}
