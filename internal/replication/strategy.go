package replication

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"sync"

	"github.com/luiz-simples/redix/internal/domain"
)

const (
	Write Access = iota
	Read
)

const (
	geoRadiusPositional         = 5
	geoRadiusByMemberPositional = 4
)

type (
	Access uint8

	// Predicate decides read-only status from the arguments, which exclude
	// the command identifier.
	Predicate func(domain.Args) bool

	StrategyOption func(*Strategy)

	// Strategy classifies commands for a primary/replica topology.
	Strategy struct {
		mutex         sync.RWMutex
		readOnly      map[string]Predicate
		disallowed    map[string]bool
		scripts       map[string]bool
		scriptDefault bool
	}
)

var (
	alwaysReadOnly Predicate = func(domain.Args) bool { return true }

	setToken       = []byte("SET")
	incrByToken    = []byte("INCRBY")
	storeToken     = []byte("STORE")
	storeDistToken = []byte("STOREDIST")
)

// WithScriptDefault sets the access of EVAL/EVALSHA scripts that were never
// registered. The default is write.
func WithScriptDefault(readOnly bool) StrategyOption {
	return func(strategy *Strategy) {
		strategy.scriptDefault = readOnly
	}
}

func NewStrategy(opts ...StrategyOption) *Strategy {
	strategy := &Strategy{
		readOnly:   make(map[string]Predicate),
		disallowed: make(map[string]bool),
		scripts:    make(map[string]bool),
	}

	for _, id := range readOnlyCommands {
		strategy.readOnly[id] = alwaysReadOnly
	}

	strategy.readOnly["BITFIELD"] = isBitfieldReadOnly
	strategy.readOnly["GEORADIUS"] = geoRadiusReadOnly(geoRadiusPositional)
	strategy.readOnly["GEORADIUSBYMEMBER"] = geoRadiusReadOnly(geoRadiusByMemberPositional)
	strategy.readOnly["SORT"] = isSortReadOnly
	strategy.readOnly["EVAL"] = strategy.isEvalReadOnly
	strategy.readOnly["EVALSHA"] = strategy.isEvalShaReadOnly

	for _, id := range disallowedCommands {
		strategy.disallowed[id] = true
	}

	for _, opt := range opts {
		opt(strategy)
	}

	return strategy
}

func (access Access) String() string {
	if access == Read {
		return "read"
	}
	return "write"
}

func (strategy *Strategy) Classify(cmd domain.Command) Access {
	if strategy.IsReadOperation(cmd) {
		return Read
	}
	return Write
}

func (strategy *Strategy) IsReadOperation(cmd domain.Command) bool {
	id := normalizeCommandName(cmd.ID())

	strategy.mutex.RLock()
	predicate, exists := strategy.readOnly[id]
	strategy.mutex.RUnlock()

	return exists && predicate(cmd.Arguments())
}

func (strategy *Strategy) IsDisallowed(cmd domain.Command) bool {
	strategy.mutex.RLock()
	defer strategy.mutex.RUnlock()

	return strategy.disallowed[normalizeCommandName(cmd.ID())]
}

// SetCommandReadOnly overrides the classification of id. A nil predicate
// with readOnly=false removes the command from the read-only table.
func (strategy *Strategy) SetCommandReadOnly(id string, readOnly bool) {
	if readOnly {
		strategy.SetCommandPredicate(id, alwaysReadOnly)
		return
	}

	strategy.SetCommandPredicate(id, nil)
}

func (strategy *Strategy) SetCommandPredicate(id string, predicate Predicate) {
	strategy.mutex.Lock()
	defer strategy.mutex.Unlock()

	id = normalizeCommandName(id)

	if predicate == nil {
		delete(strategy.readOnly, id)
		return
	}

	strategy.readOnly[id] = predicate
}

// SetScriptReadOnly registers a script body; EVAL and EVALSHA of that body
// then follow readOnly.
func (strategy *Strategy) SetScriptReadOnly(script string, readOnly bool) {
	strategy.SetScriptHashReadOnly(ScriptHash(script), readOnly)
}

func (strategy *Strategy) SetScriptHashReadOnly(hash string, readOnly bool) {
	strategy.mutex.Lock()
	defer strategy.mutex.Unlock()

	strategy.scripts[strings.ToLower(hash)] = readOnly
}

// ScriptHash is the SHA1 digest Redis uses to name scripts.
func ScriptHash(script string) string {
	sum := sha1.Sum([]byte(script))
	return hex.EncodeToString(sum[:])
}

func (strategy *Strategy) isEvalReadOnly(args domain.Args) bool {
	if len(args) == 0 {
		return false
	}
	return strategy.scriptAccess(ScriptHash(string(args[0])))
}

func (strategy *Strategy) isEvalShaReadOnly(args domain.Args) bool {
	if len(args) == 0 {
		return false
	}
	return strategy.scriptAccess(strings.ToLower(string(args[0])))
}

// scriptAccess is only called from predicates, which run without the lock.
func (strategy *Strategy) scriptAccess(hash string) bool {
	strategy.mutex.RLock()
	defer strategy.mutex.RUnlock()

	readOnly, registered := strategy.scripts[hash]
	if !registered {
		return strategy.scriptDefault
	}
	return readOnly
}

func isBitfieldReadOnly(args domain.Args) bool {
	for _, arg := range args[min(1, len(args)):] {
		if bytes.EqualFold(arg, setToken) || bytes.EqualFold(arg, incrByToken) {
			return false
		}
	}
	return true
}

func geoRadiusReadOnly(positional int) Predicate {
	return func(args domain.Args) bool {
		if len(args) <= positional {
			return true
		}

		for _, arg := range args[positional:] {
			if bytes.EqualFold(arg, storeToken) || bytes.EqualFold(arg, storeDistToken) {
				return false
			}
		}
		return true
	}
}

func isSortReadOnly(args domain.Args) bool {
	for _, arg := range args[min(1, len(args)):] {
		if bytes.EqualFold(arg, storeToken) {
			return false
		}
	}
	return true
}
