package replication

import (
	"bufio"
	"context"
	"strings"

	"github.com/luiz-simples/redix/internal/command"
	"github.com/luiz-simples/redix/internal/domain"
)

// Role asks conn for its role with ROLE, falling back to INFO replication
// on servers that predate ROLE.
func Role(ctx context.Context, conn domain.Connection) (string, error) {
	reply, err := conn.ExecuteCommand(ctx, command.MustNew("ROLE"))
	if hasError(err) {
		return "", err
	}

	if !reply.IsError() && reply.IsAggregate() && len(reply.Elems) > 0 {
		return normalizeRole(reply.Elems[0].Text()), nil
	}

	reply, err = conn.ExecuteCommand(ctx, command.MustNew("INFO", "replication"))
	if hasError(err) {
		return "", err
	}

	if reply.IsError() {
		return "", reply.Err
	}

	return roleFromInfo(reply.Text())
}

// CheckRole returns a *domain.RoleError when conn does not report expected.
func (router *Router) CheckRole(ctx context.Context, conn domain.Connection, expected string) error {
	actual, err := Role(ctx, conn)
	if hasError(err) {
		return err
	}

	if actual != expected {
		router.log.Error("role mismatch", "endpoint", conn.Parameters().Endpoint(), "expected", expected, "actual", actual)
		return &domain.RoleError{Endpoint: conn.Parameters().Endpoint(), Expected: expected, Actual: actual}
	}

	return nil
}

// Refresh re-checks every node. Replicas answering as replicas return to
// rotation; a replica reporting primary while the configured primary reports
// replica is promoted in a new node set.
func (router *Router) Refresh(ctx context.Context) error {
	nodes := router.nodes.Load()

	primaryRole, primaryErr := Role(ctx, nodes.primary)
	var promoted domain.Connection

	for _, replica := range nodes.replicas {
		role, err := Role(ctx, replica)
		if hasError(err) {
			router.markUnhealthy(replica, err)
			continue
		}

		switch role {
		case domain.RoleReplica:
			router.unhealthy.Delete(replica.Parameters().Endpoint())
		case domain.RolePrimary:
			if promoted == nil {
				promoted = replica
			}
		}
	}

	if promoted == nil || (!hasError(primaryErr) && primaryRole == domain.RolePrimary) {
		return primaryErr
	}

	if hasError(primaryErr) {
		router.markUnhealthy(nodes.primary, primaryErr)
	}

	router.promote(nodes, promoted)
	return nil
}

func (router *Router) promote(current *topology, promoted domain.Connection) {
	next := &topology{primary: promoted}

	for _, replica := range current.replicas {
		if replica != promoted {
			next.replicas = append(next.replicas, replica)
		}
	}

	next.replicas = append(next.replicas, current.primary)

	router.unhealthy.Delete(promoted.Parameters().Endpoint())
	router.nodes.Store(next)
	router.verified.Store(true)

	router.log.Warn("primary switched", "from", current.primary.Parameters().Endpoint(), "to", promoted.Parameters().Endpoint())
}

func roleFromInfo(info string) (string, error) {
	scanner := bufio.NewScanner(strings.NewReader(info))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if value, found := strings.CutPrefix(line, "role:"); found {
			return normalizeRole(value), nil
		}
	}

	return "", domain.NewProtocolError("INFO replication reply has no role field")
}

func normalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "master", "primary":
		return domain.RolePrimary
	case "slave", "replica":
		return domain.RoleReplica
	}

	return strings.ToLower(role)
}
