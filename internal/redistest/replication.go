package redistest

import (
	"strconv"
	"strings"

	"github.com/luiz-simples/redix/internal/domain"
)

const replicationOffset = 0

// Promote turns the server into a primary, as after a failover.
func (server *Server) Promote() {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	server.role = domain.RolePrimary
	server.primary = ""
}

// Demote turns the server into a replica of primary.
func (server *Server) Demote(primary string) {
	server.mutex.Lock()
	defer server.mutex.Unlock()

	server.role = domain.RoleReplica
	server.primary = primary
}

func (server *Server) isReplica() bool {
	server.mutex.RLock()
	defer server.mutex.RUnlock()

	return server.role == domain.RoleReplica
}

func (server *Server) roleReply(_ *Session, _ domain.Args) *domain.Reply {
	server.mutex.RLock()
	defer server.mutex.RUnlock()

	if server.role == domain.RoleReplica {
		host, port := splitEndpoint(server.primary)

		return domain.NewArray(
			bulkString(domain.RoleReplica),
			bulkString(host),
			domain.NewInteger(port),
			bulkString("connected"),
			domain.NewInteger(replicationOffset),
		)
	}

	replicas := make([]*domain.Reply, 0, len(server.replicas))
	for _, endpoint := range server.replicas {
		host, port := splitEndpoint(endpoint)
		replicas = append(replicas, domain.NewArray(
			bulkString(host),
			bulkString(strconv.FormatInt(port, 10)),
			bulkString(strconv.Itoa(replicationOffset)),
		))
	}

	return domain.NewArray(
		bulkString(domain.RolePrimary),
		domain.NewInteger(replicationOffset),
		domain.NewArray(replicas...),
	)
}

// info only knows the replication section.
func (server *Server) info(_ *Session, _ domain.Args) *domain.Reply {
	server.mutex.RLock()
	defer server.mutex.RUnlock()

	var builder strings.Builder

	builder.WriteString("# Replication\r\n")
	builder.WriteString("role:" + server.role + "\r\n")

	if server.role == domain.RoleReplica {
		host, port := splitEndpoint(server.primary)
		builder.WriteString("master_host:" + host + "\r\n")
		builder.WriteString("master_port:" + strconv.FormatInt(port, 10) + "\r\n")
		builder.WriteString("master_link_status:up\r\n")
	} else {
		builder.WriteString("connected_slaves:" + strconv.Itoa(len(server.replicas)) + "\r\n")
	}

	return bulkString(builder.String())
}
