package domain

//go:generate mockgen -destination=mocks/connection.go -package=mocks github.com/luiz-simples/redix/internal/domain Connection

import (
	"context"
	"math/big"
)

type (
	Args = [][]byte

	Kind uint8

	Command interface {
		ID() string
		Arguments() Args
	}

	KeyedCommand interface {
		Command
		Keys() Args
	}

	Decoder interface {
		Decode(*Reply) (any, error)
	}

	Executor interface {
		ExecuteCommand(context.Context, Command) (*Reply, error)
	}

	Connection interface {
		Executor

		Parameters() *Parameters
		Protocol() int

		Connect(context.Context) error
		Disconnect() error
		IsConnected() bool

		WriteRequest(context.Context, Command) error
		ReadResponse(context.Context) (*Reply, error)
	}

	ConnectionFactory func(*Parameters) Connection

	MapEntry struct {
		Key   *Reply
		Value *Reply
	}

	Reply struct {
		Kind Kind

		Str     string
		Bytes   []byte
		Integer int64
		Double  float64
		Boolean bool
		Big     *big.Int
		Format  string

		Elems   []*Reply
		Entries []MapEntry

		Err        *ServerError
		Attributes []MapEntry
	}
)

const (
	KindNil Kind = iota
	KindStatus
	KindError
	KindInteger
	KindBulk
	KindArray
	KindDouble
	KindBoolean
	KindBigNumber
	KindVerbatim
	KindMap
	KindSet
	KindPush
)

const (
	StatusOK     = "OK"
	StatusQueued = "QUEUED"
)

var kindNames = map[Kind]string{
	KindNil:       "nil",
	KindStatus:    "status",
	KindError:     "error",
	KindInteger:   "integer",
	KindBulk:      "bulk",
	KindArray:     "array",
	KindDouble:    "double",
	KindBoolean:   "boolean",
	KindBigNumber: "big-number",
	KindVerbatim:  "verbatim",
	KindMap:       "map",
	KindSet:       "set",
	KindPush:      "push",
}

func (kind Kind) String() string {
	if name, exists := kindNames[kind]; exists {
		return name
	}

	return "unknown"
}
