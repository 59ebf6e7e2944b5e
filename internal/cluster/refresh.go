package cluster

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/luiz-simples/redix/internal/command"
	"github.com/luiz-simples/redix/internal/domain"
)

// RefreshSlots asks the known nodes, in turn, for CLUSTER SLOTS and swaps in
// the first layout received.
func (router *Router) RefreshSlots(ctx context.Context) error {
	slotsCmd := command.MustNew("CLUSTER", "SLOTS")
	var lastErr error = domain.ErrNoConnection

	for _, conn := range router.refreshCandidates() {
		reply, err := conn.ExecuteCommand(ctx, slotsCmd)
		if hasError(err) {
			lastErr = err
			continue
		}

		if reply.IsError() {
			lastErr = reply.Err
			continue
		}

		ranges, err := parseSlotRanges(reply)
		if hasError(err) {
			lastErr = err
			continue
		}

		router.slots.Replace(ranges)
		router.log.Info("slot map refreshed", "ranges", len(ranges), "source", conn.Parameters().Endpoint())

		for _, slotRange := range ranges {
			if _, err := router.ConnectionByEndpoint(slotRange.Endpoint); hasError(err) {
				router.log.Warn("invalid node endpoint", "endpoint", slotRange.Endpoint, "error", err)
			}
		}

		return nil
	}

	return lastErr
}

// Watch refreshes the slot map every interval until ctx is done.
func (router *Router) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := router.RefreshSlots(ctx); hasError(err) {
				router.log.Warn("periodic slot map refresh failed", "error", err)
			}
		}
	}
}

func (router *Router) refreshCandidates() []domain.Connection {
	conns := make([]domain.Connection, 0, len(router.seeds))
	seen := make(map[string]bool)

	for _, endpoint := range router.slots.Endpoints() {
		if conn, found := router.pool.Load(endpoint); found {
			conns = append(conns, conn)
			seen[endpoint] = true
		}
	}

	for _, conn := range router.Connections() {
		if !seen[conn.Parameters().Endpoint()] {
			conns = append(conns, conn)
		}
	}

	return conns
}

// parseSlotRanges reads [[start, end, [host, port, ...], replicas...], ...];
// only the primary of each range is used.
func parseSlotRanges(reply *domain.Reply) ([]SlotRange, error) {
	if !reply.IsAggregate() {
		return nil, domain.NewProtocolError("CLUSTER SLOTS returned %s", reply.Kind)
	}

	ranges := make([]SlotRange, 0, len(reply.Elems))

	for _, entry := range reply.Elems {
		if !entry.IsAggregate() || len(entry.Elems) < 3 {
			return nil, domain.NewProtocolError("malformed CLUSTER SLOTS entry %s", entry)
		}

		node := entry.Elems[2]
		if !node.IsAggregate() || len(node.Elems) < 2 {
			return nil, domain.NewProtocolError("malformed CLUSTER SLOTS node %s", node)
		}

		start, errStart := strconv.Atoi(entry.Elems[0].Text())
		end, errEnd := strconv.Atoi(entry.Elems[1].Text())
		if hasError(errStart) || hasError(errEnd) {
			return nil, domain.NewProtocolError("invalid CLUSTER SLOTS range %s", entry)
		}

		ranges = append(ranges, SlotRange{
			Start:    start,
			End:      end,
			Endpoint: net.JoinHostPort(node.Elems[0].Text(), node.Elems[1].Text()),
		})
	}

	if len(ranges) == 0 {
		return nil, fmt.Errorf("%w: CLUSTER SLOTS returned no ranges", domain.ErrNoConnection)
	}

	return ranges, nil
}
