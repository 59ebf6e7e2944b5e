package command

import (
	"bytes"
	"strconv"

	"github.com/luiz-simples/redix/internal/domain"
)

// KeyRule locates key arguments. The set is closed: every command in the
// profiles maps to one of these rules.
type KeyRule uint8

const (
	NoKeys KeyRule = iota
	// FirstKey: GET key
	FirstKey
	// AllKeys: DEL key [key ...]
	AllKeys
	// InterleavedKeys: MSET key value [key value ...]
	InterleavedKeys
	// AllButLastKeys: BLPOP key [key ...] timeout
	AllButLastKeys
	// AllButFirstKeys: BITOP operation destkey key [key ...]
	AllButFirstKeys
	// ScriptKeys: EVAL script numkeys key [key ...] arg [arg ...]
	ScriptKeys
	// NumKeysFirst: SINTERCARD numkeys key [key ...]
	NumKeysFirst
	// DestinationNumKeys: ZUNIONSTORE destination numkeys key [key ...]
	DestinationNumKeys
	// StreamKeys: XREAD [COUNT n] STREAMS key [key ...] id [id ...]
	StreamKeys
)

var keyRuleNames = map[KeyRule]string{
	NoKeys:             "none",
	FirstKey:           "first",
	AllKeys:            "all",
	InterleavedKeys:    "interleaved",
	AllButLastKeys:     "all-but-last",
	AllButFirstKeys:    "all-but-first",
	ScriptKeys:         "script",
	NumKeysFirst:       "numkeys",
	DestinationNumKeys: "destination-numkeys",
	StreamKeys:         "streams",
}

var streamsToken = []byte("STREAMS")

func (rule KeyRule) String() string {
	if name, exists := keyRuleNames[rule]; exists {
		return name
	}
	return "unknown"
}

// Positions returns the indexes of the key arguments in args, which exclude
// the command identifier. Malformed argument lists yield the keys that can be
// located and nothing more.
func (rule KeyRule) Positions(args domain.Args) []int {
	switch rule {
	case FirstKey:
		return span(0, min(1, len(args)))
	case AllKeys:
		return span(0, len(args))
	case InterleavedKeys:
		positions := make([]int, 0, len(args)/2)
		for index := 0; index < len(args); index += 2 {
			positions = append(positions, index)
		}
		return positions
	case AllButLastKeys:
		return span(0, len(args)-1)
	case AllButFirstKeys:
		return span(1, len(args))
	case ScriptKeys:
		return numKeys(args, 1)
	case NumKeysFirst:
		return numKeys(args, 0)
	case DestinationNumKeys:
		return append(span(0, min(1, len(args))), numKeys(args, 1)...)
	case StreamKeys:
		return streamKeys(args)
	}

	return nil
}

func span(from, to int) []int {
	if to <= from {
		return nil
	}

	positions := make([]int, 0, to-from)
	for index := from; index < to; index++ {
		positions = append(positions, index)
	}
	return positions
}

// numKeys reads the key count at countAt; keys follow it.
func numKeys(args domain.Args, countAt int) []int {
	if countAt >= len(args) {
		return nil
	}

	count, err := strconv.Atoi(string(args[countAt]))
	if hasError(err) || count <= 0 {
		return nil
	}

	first := countAt + 1
	return span(first, min(first+count, len(args)))
}

func streamKeys(args domain.Args) []int {
	for index, arg := range args {
		if !bytes.EqualFold(arg, streamsToken) {
			continue
		}

		remaining := len(args) - index - 1
		first := index + 1
		return span(first, first+remaining/2)
	}

	return nil
}
