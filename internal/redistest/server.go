package redistest

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/tidwall/redcon"

	"github.com/luiz-simples/redix/internal/domain"
	"github.com/luiz-simples/redix/internal/logger"
	"github.com/luiz-simples/redix/internal/protocol"
)

const listenAddress = "127.0.0.1:0"

type (
	Option func(*Server)

	// Server is an in-process RESP server. It speaks enough of the Redis
	// command set to exercise a client: strings, transactions, HELLO,
	// ROLE/INFO and cluster redirections.
	Server struct {
		rcon  *redcon.Server
		addr  string
		node  *snowflake.Node
		pool  *Pool
		store *Store

		commands map[string]*commandSpec
		disabled map[string]bool

		// serializes command execution across connections the way a single
		// threaded server does
		execMutex sync.Mutex

		mutex      sync.RWMutex
		sessions   map[int64]*Session
		calls      []string
		role       string
		primary    string
		replicas   []string
		slotRanges []SlotRange
		redirects  map[int]redirect
		importing  map[int]bool
	}
)

func WithStore(store *Store) Option {
	return func(server *Server) {
		server.store = store
	}
}

// AsReplicaOf makes the server report the replica role and reject writes.
func AsReplicaOf(primary string) Option {
	return func(server *Server) {
		server.role = domain.RoleReplica
		server.primary = primary
	}
}

func WithReplicas(endpoints ...string) Option {
	return func(server *Server) {
		server.replicas = append(server.replicas, endpoints...)
	}
}

func WithDisabledCommands(names ...string) Option {
	return func(server *Server) {
		for _, name := range names {
			server.disabled[normalizeCommandName(name)] = true
		}
	}
}

func Start(opts ...Option) (*Server, error) {
	node, err := snowflake.NewNode(1)
	if hasError(err) {
		return nil, err
	}

	server := &Server{
		node:      node,
		pool:      NewPool(),
		store:     NewStore(),
		disabled:  make(map[string]bool),
		sessions:  make(map[int64]*Session),
		role:      domain.RolePrimary,
		redirects: make(map[int]redirect),
		importing: make(map[int]bool),
	}

	server.commands = server.registerCommands()

	for _, opt := range opts {
		opt(server)
	}

	server.rcon = redcon.NewServer(listenAddress, server.OnHandler, server.OnAccept, server.OnClosed)

	signal := make(chan error, 1)
	go func() {
		if err := server.rcon.ListenServeAndSignal(signal); hasError(err) {
			logger.Debug("test server stopped", "error", err)
		}
	}()

	if err = <-signal; hasError(err) {
		return nil, err
	}

	server.addr = server.rcon.Addr().String()
	logger.Debug("test server listening", "endpoint", server.addr, "role", server.role)

	return server, nil
}

// Endpoint returns host:port.
func (server *Server) Endpoint() string {
	return server.addr
}

func (server *Server) URI(query string) string {
	uri := "tcp://" + server.addr
	if isEmpty(query) {
		return uri
	}
	return uri + "?" + query
}

func (server *Server) Store() *Store {
	return server.store
}

func (server *Server) OnAccept(conn redcon.Conn) bool {
	session := server.pool.Get(server.node.Generate().Int64())
	conn.SetContext(session)

	server.mutex.Lock()
	server.sessions[session.ID()] = session
	server.mutex.Unlock()

	return true
}

func (server *Server) OnClosed(conn redcon.Conn, err error) {
	session, ok := conn.Context().(*Session)
	if !ok {
		return
	}

	server.mutex.Lock()
	delete(server.sessions, session.ID())
	server.mutex.Unlock()

	server.pool.Free(session)
}

func (server *Server) OnHandler(conn redcon.Conn, cmd redcon.Command) {
	session, ok := conn.Context().(*Session)
	if !ok {
		conn.WriteError("ERR invalid connection context")
		return
	}

	server.execMutex.Lock()
	reply := server.Apply(session, cmd.Args)
	server.execMutex.Unlock()

	conn.WriteRaw(server.encode(session, reply))
}

// Connections returns the number of open client connections.
func (server *Server) Connections() int {
	server.mutex.RLock()
	defer server.mutex.RUnlock()

	return len(server.sessions)
}

// Calls returns the recorded command names, in arrival order.
func (server *Server) Calls() []string {
	server.mutex.RLock()
	defer server.mutex.RUnlock()

	return append([]string(nil), server.calls...)
}

func (server *Server) Count(name string) int {
	name = normalizeCommandName(name)
	count := 0

	for _, call := range server.Calls() {
		if call == name {
			count++
		}
	}

	return count
}

func (server *Server) ResetCalls() {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	server.calls = nil
}

func (server *Server) Close() error {
	if server.rcon == nil {
		return nil
	}

	err := server.rcon.Close()
	server.rcon = nil

	return err
}

func (server *Server) String() string {
	return fmt.Sprintf("redistest(%s, %s)", server.addr, server.role)
}

func (server *Server) record(name string) {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	server.calls = append(server.calls, name)
}

func (server *Server) encode(session *Session, reply *domain.Reply) []byte {
	if reply == nullArray && session.protocol == protocol.RESP2 {
		return []byte("*-1\r\n")
	}

	return protocol.EncodeReply(reply, session.protocol)
}
