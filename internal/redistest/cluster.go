package redistest

import (
	"strconv"
	"strings"

	"github.com/luiz-simples/redix/internal/cluster"
	"github.com/luiz-simples/redix/internal/domain"
)

const (
	redirectMoved = "MOVED"
	redirectAsk   = "ASK"
)

type (
	// SlotRange is one CLUSTER SLOTS entry, both bounds inclusive.
	SlotRange = cluster.SlotRange

	redirect struct {
		kind     string
		endpoint string
	}
)

// WithClusterSlots switches the server to cluster mode and sets the layout it
// reports through CLUSTER SLOTS.
func WithClusterSlots(ranges ...SlotRange) Option {
	return func(server *Server) {
		server.slotRanges = append(server.slotRanges, ranges...)
	}
}

func (server *Server) SetClusterSlots(ranges ...SlotRange) {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	server.slotRanges = append([]SlotRange(nil), ranges...)
}

// Move answers every keyed command on slot with -MOVED until cleared.
func (server *Server) Move(slot int, endpoint string) {
	server.setRedirect(slot, redirect{kind: redirectMoved, endpoint: endpoint})
}

// Ask answers every keyed command on slot with -ASK until cleared.
func (server *Server) Ask(slot int, endpoint string) {
	server.setRedirect(slot, redirect{kind: redirectAsk, endpoint: endpoint})
}

// Import makes slot reachable only for commands preceded by ASKING.
func (server *Server) Import(slot int) {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	server.importing[slot] = true
}

func (server *Server) ClearRedirects() {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	server.redirects = make(map[int]redirect)
	server.importing = make(map[int]bool)
}

func (server *Server) setRedirect(slot int, target redirect) {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	server.redirects[slot] = target
}

func (server *Server) isCluster() bool {
	server.mutex.RLock()
	defer server.mutex.RUnlock()

	return len(server.slotRanges) > 0
}

func (server *Server) checkRouting(session *Session, spec *commandSpec, args domain.Args) *domain.Reply {
	asking := session.asking
	session.asking = false

	keys := spec.keysOf(args)
	if len(keys) == 0 || !server.isCluster() {
		return nil
	}

	slot := cluster.Slot(keys[0])
	for _, key := range keys[firstArg:] {
		if cluster.Slot(key) != slot {
			return domain.NewError("CROSSSLOT Keys in request don't hash to the same slot")
		}
	}

	server.mutex.RLock()
	defer server.mutex.RUnlock()

	if server.importing[slot] {
		if asking {
			return nil
		}
		return server.ownerRedirect(slot)
	}

	target, redirected := server.redirects[slot]
	if !redirected {
		return nil
	}

	return domain.NewError(target.kind + " " + strconv.Itoa(slot) + " " + target.endpoint)
}

func (server *Server) ownerRedirect(slot int) *domain.Reply {
	for _, slotRange := range server.slotRanges {
		if slot >= slotRange.Start && slot <= slotRange.End && slotRange.Endpoint != server.addr {
			return domain.NewError(redirectMoved + " " + strconv.Itoa(slot) + " " + slotRange.Endpoint)
		}
	}

	return domain.NewError("CLUSTERDOWN Hash slot not served")
}

func (server *Server) asking(session *Session, _ domain.Args) *domain.Reply {
	session.asking = true
	return domain.NewStatus(domain.StatusOK)
}

func (server *Server) clusterCommand(_ *Session, args domain.Args) *domain.Reply {
	switch strings.ToUpper(string(args[firstArg])) {
	case "SLOTS":
		return server.clusterSlots()
	case "KEYSLOT":
		if len(args) != 3 {
			return newInvalidArgsError("CLUSTER KEYSLOT")
		}
		return domain.NewInteger(int64(cluster.Slot(args[2])))
	}

	return domain.NewError("ERR unknown subcommand '" + string(args[firstArg]) + "'")
}

func (server *Server) clusterSlots() *domain.Reply {
	if !server.isCluster() {
		return domain.NewError("ERR This instance has cluster support disabled")
	}

	server.mutex.RLock()
	defer server.mutex.RUnlock()

	entries := make([]*domain.Reply, 0, len(server.slotRanges))

	for _, slotRange := range server.slotRanges {
		host, port := splitEndpoint(slotRange.Endpoint)
		node := domain.NewArray(bulkString(host), domain.NewInteger(port), bulkString(slotRange.Endpoint))

		entries = append(entries, domain.NewArray(
			domain.NewInteger(int64(slotRange.Start)),
			domain.NewInteger(int64(slotRange.End)),
			node,
		))
	}

	return domain.NewArray(entries...)
}
