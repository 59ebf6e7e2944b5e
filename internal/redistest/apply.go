package redistest

import (
	"github.com/luiz-simples/redix/internal/domain"
)

// nullArray marks the aborted EXEC reply, encoded as *-1 for RESP2 clients.
var nullArray = domain.NewNil()

// Apply runs one request for session and returns its reply.
func (server *Server) Apply(session *Session, args domain.Args) *domain.Reply {
	if emptyArgs(args) {
		return domain.NewError("ERR empty command")
	}

	cmdName := normalizeCommandName(string(args[0]))
	server.record(cmdName)

	switch cmdName {
	case "MULTI":
		return server.multi(session)
	case "EXEC":
		return server.exec(session)
	case "DISCARD":
		return server.discard(session)
	}

	spec, exists := server.commands[cmdName]
	if !exists || server.disabled[cmdName] {
		return server.reject(session, newUnknownCommandError(cmdName))
	}

	if !spec.validArity(len(args)) {
		return server.reject(session, newInvalidArgsError(cmdName))
	}

	if reply := server.checkRouting(session, spec, args); reply != nil {
		return server.reject(session, reply)
	}

	if spec.write && server.isReplica() {
		return server.reject(session, errorReply(errReadOnly))
	}

	if session.multi && !spec.immediate {
		session.queue = append(session.queue, copyArgs(args))
		return domain.NewStatus(domain.StatusQueued)
	}

	return spec.handler(session, args)
}

// reject flags an open MULTI block so the following EXEC aborts, like the
// real server does for errors detected while queuing.
func (server *Server) reject(session *Session, reply *domain.Reply) *domain.Reply {
	if session.multi {
		session.execAbort = true
	}

	return reply
}

func (server *Server) multi(session *Session) *domain.Reply {
	if session.multi {
		return domain.NewError("ERR MULTI calls can not be nested")
	}

	session.multi = true
	return domain.NewStatus(domain.StatusOK)
}

func (server *Server) discard(session *Session) *domain.Reply {
	if !session.multi {
		return domain.NewError("ERR DISCARD without MULTI")
	}

	session.resetTransaction()
	return domain.NewStatus(domain.StatusOK)
}

func (server *Server) exec(session *Session) *domain.Reply {
	if !session.multi {
		return domain.NewError("ERR EXEC without MULTI")
	}

	defer session.resetTransaction()

	if session.execAbort {
		return domain.NewError("EXECABORT Transaction discarded because of previous errors.")
	}

	if server.watchBroken(session) {
		return nullArray
	}

	replies := make([]*domain.Reply, 0, len(session.queue))

	for _, args := range session.queue {
		spec := server.commands[normalizeCommandName(string(args[0]))]
		replies = append(replies, spec.handler(session, args))
	}

	return domain.NewArray(replies...)
}

func (server *Server) watch(session *Session, args domain.Args) *domain.Reply {
	if session.multi {
		return domain.NewError("ERR WATCH inside MULTI is not allowed")
	}

	for _, key := range keysOf(args[firstArg:]) {
		if _, watched := session.watched[key]; !watched {
			session.watched[key] = server.store.Version(key)
		}
	}

	return domain.NewStatus(domain.StatusOK)
}

func (server *Server) unwatch(session *Session, _ domain.Args) *domain.Reply {
	clear(session.watched)
	return domain.NewStatus(domain.StatusOK)
}

func (server *Server) watchBroken(session *Session) bool {
	for key, version := range session.watched {
		if server.store.Version(key) != version {
			return true
		}
	}

	return false
}

func copyArgs(args domain.Args) domain.Args {
	copied := make(domain.Args, len(args))
	for index, arg := range args {
		copied[index] = append([]byte(nil), arg...)
	}
	return copied
}
