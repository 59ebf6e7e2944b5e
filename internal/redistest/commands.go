package redistest

import (
	"strconv"
	"strings"

	"github.com/luiz-simples/redix/internal/domain"
)

const (
	keysNone keyRule = iota
	keysFirst
	keysAll
)

type (
	keyRule uint8

	commandFunc func(*Session, domain.Args) *domain.Reply

	commandSpec struct {
		handler   commandFunc
		minArgs   int
		maxArgs   int
		keys      keyRule
		write     bool
		immediate bool
	}
)

func (spec *commandSpec) validArity(argCount int) bool {
	if argCount < spec.minArgs {
		return false
	}

	return spec.maxArgs < 0 || argCount <= spec.maxArgs
}

func (spec *commandSpec) keysOf(args domain.Args) domain.Args {
	switch spec.keys {
	case keysFirst:
		return args[firstArg : firstArg+1]
	case keysAll:
		return args[firstArg:]
	}

	return nil
}

func (server *Server) registerCommands() map[string]*commandSpec {
	return map[string]*commandSpec{
		"PING":   {handler: server.ping, minArgs: 1, maxArgs: 2},
		"ECHO":   {handler: server.echo, minArgs: 2, maxArgs: 2},
		"GET":    {handler: server.get, minArgs: 2, maxArgs: 2, keys: keysFirst},
		"MGET":   {handler: server.mget, minArgs: 2, maxArgs: -1, keys: keysAll},
		"SET":    {handler: server.set, minArgs: 3, maxArgs: -1, keys: keysFirst, write: true},
		"DEL":    {handler: server.del, minArgs: 2, maxArgs: -1, keys: keysAll, write: true},
		"INCR":   {handler: server.incr, minArgs: 2, maxArgs: 2, keys: keysFirst, write: true},
		"INCRBY": {handler: server.incrBy, minArgs: 3, maxArgs: 3, keys: keysFirst, write: true},
		"EXISTS": {handler: server.exists, minArgs: 2, maxArgs: -1, keys: keysAll},

		"WATCH":   {handler: server.watch, minArgs: 2, maxArgs: -1, keys: keysAll, immediate: true},
		"UNWATCH": {handler: server.unwatch, minArgs: 1, maxArgs: 1},

		"HELLO":    {handler: server.hello, minArgs: 1, maxArgs: -1, immediate: true},
		"SELECT":   {handler: server.selectDB, minArgs: 2, maxArgs: 2},
		"CLIENT":   {handler: server.client, minArgs: 2, maxArgs: -1},
		"FLUSHALL": {handler: server.flushAll, minArgs: 1, maxArgs: 2, write: true},

		"ROLE":    {handler: server.roleReply, minArgs: 1, maxArgs: 1},
		"INFO":    {handler: server.info, minArgs: 1, maxArgs: 2},
		"ASKING":  {handler: server.asking, minArgs: 1, maxArgs: 1, immediate: true},
		"CLUSTER": {handler: server.clusterCommand, minArgs: 2, maxArgs: -1},
	}
}

func (server *Server) ping(_ *Session, args domain.Args) *domain.Reply {
	if len(args) > firstArg {
		return domain.NewBulk(args[firstArg])
	}

	return domain.NewStatus("PONG")
}

func (server *Server) echo(_ *Session, args domain.Args) *domain.Reply {
	return domain.NewBulk(append([]byte(nil), args[firstArg]...))
}

func (server *Server) get(_ *Session, args domain.Args) *domain.Reply {
	value, exists := server.store.Get(string(args[firstArg]))
	if !exists {
		return domain.NewNil()
	}

	return domain.NewBulk(value)
}

func (server *Server) mget(_ *Session, args domain.Args) *domain.Reply {
	replies := make([]*domain.Reply, 0, len(args)-firstArg)

	for _, key := range keysOf(args[firstArg:]) {
		value, exists := server.store.Get(key)
		if !exists {
			replies = append(replies, domain.NewNil())
			continue
		}
		replies = append(replies, domain.NewBulk(value))
	}

	return domain.NewArray(replies...)
}

// set honours NX/XX and accepts EX/PX/KEEPTTL without tracking expiry.
func (server *Server) set(_ *Session, args domain.Args) *domain.Reply {
	var mustExist *bool

	for index := 3; index < len(args); index++ {
		switch strings.ToUpper(string(args[index])) {
		case "NX":
			mustExist = new(bool)
		case "XX":
			exists := true
			mustExist = &exists
		case "EX", "PX", "EXAT", "PXAT":
			index++
			if index >= len(args) {
				return errorReply(errSyntax)
			}
		case "KEEPTTL", "GET":
		default:
			return errorReply(errSyntax)
		}
	}

	if !server.store.SetIf(string(args[firstArg]), args[2], mustExist) {
		return domain.NewNil()
	}

	return domain.NewStatus(domain.StatusOK)
}

func (server *Server) del(_ *Session, args domain.Args) *domain.Reply {
	return domain.NewInteger(server.store.Del(keysOf(args[firstArg:])...))
}

func (server *Server) exists(_ *Session, args domain.Args) *domain.Reply {
	return domain.NewInteger(server.store.Exists(keysOf(args[firstArg:])...))
}

func (server *Server) incr(_ *Session, args domain.Args) *domain.Reply {
	return server.incrementBy(string(args[firstArg]), 1)
}

func (server *Server) incrBy(_ *Session, args domain.Args) *domain.Reply {
	delta, err := strconv.ParseInt(string(args[2]), 10, 64)
	if hasError(err) {
		return errorReply(errNotInteger)
	}

	return server.incrementBy(string(args[firstArg]), delta)
}

func (server *Server) incrementBy(key string, delta int64) *domain.Reply {
	value, err := server.store.IncrBy(key, delta)
	if hasError(err) {
		return errorReply(err)
	}

	return domain.NewInteger(value)
}

func (server *Server) flushAll(_ *Session, _ domain.Args) *domain.Reply {
	server.store.Flush()
	return domain.NewStatus(domain.StatusOK)
}

func (server *Server) hello(session *Session, args domain.Args) *domain.Reply {
	if len(args) > firstArg {
		version, err := strconv.Atoi(string(args[firstArg]))
		if hasError(err) || version < 2 || version > 3 {
			return domain.NewError("NOPROTO unsupported protocol version")
		}
		session.protocol = version
	}

	mode := "standalone"
	if server.isCluster() {
		mode = "cluster"
	}

	role := "master"
	if server.isReplica() {
		role = "replica"
	}

	return &domain.Reply{Kind: domain.KindMap, Entries: []domain.MapEntry{
		{Key: bulkString("server"), Value: bulkString("redis")},
		{Key: bulkString("version"), Value: bulkString("7.2.0")},
		{Key: bulkString("proto"), Value: domain.NewInteger(int64(session.protocol))},
		{Key: bulkString("id"), Value: domain.NewInteger(session.ID())},
		{Key: bulkString("mode"), Value: bulkString(mode)},
		{Key: bulkString("role"), Value: bulkString(role)},
		{Key: bulkString("modules"), Value: domain.NewArray()},
	}}
}

func (server *Server) selectDB(session *Session, args domain.Args) *domain.Reply {
	database, err := strconv.Atoi(string(args[firstArg]))
	if hasError(err) || database < 0 || database > 15 {
		return domain.NewError("ERR DB index is out of range")
	}

	session.database = database
	return domain.NewStatus(domain.StatusOK)
}

func (server *Server) client(session *Session, args domain.Args) *domain.Reply {
	if strings.EqualFold(string(args[firstArg]), "ID") {
		return domain.NewInteger(session.ID())
	}

	return domain.NewStatus(domain.StatusOK)
}

func bulkString(value string) *domain.Reply {
	return domain.NewBulk([]byte(value))
}
