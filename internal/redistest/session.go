package redistest

import (
	"sync"

	"github.com/luiz-simples/redix/internal/domain"
	"github.com/luiz-simples/redix/internal/protocol"
)

type (
	// Session is the per-connection state: negotiated protocol, MULTI queue,
	// watched key versions and the one-shot ASKING flag.
	Session struct {
		id       int64
		protocol int
		database int

		multi     bool
		execAbort bool
		queue     []domain.Args
		watched   map[string]uint64

		asking bool
	}

	Pool struct {
		refs *sync.Pool
	}
)

func NewPool() *Pool {
	return &Pool{
		refs: &sync.Pool{
			New: func() any {
				return &Session{watched: make(map[string]uint64)}
			},
		},
	}
}

func (pool *Pool) Get(id int64) *Session {
	session, _ := pool.refs.Get().(*Session)
	session.id = id
	session.protocol = protocol.RESP2
	return session
}

func (pool *Pool) Free(session *Session) {
	session.Clear()
	pool.refs.Put(session)
}

func (session *Session) ID() int64 {
	return session.id
}

func (session *Session) Protocol() int {
	return session.protocol
}

func (session *Session) Clear() {
	session.database = 0
	session.asking = false
	session.resetTransaction()
}

func (session *Session) resetTransaction() {
	session.multi = false
	session.execAbort = false
	session.queue = session.queue[:0]
	clear(session.watched)
}
