package transaction

import (
	"context"
	"errors"

	"github.com/luiz-simples/redix/internal/cluster"
	"github.com/luiz-simples/redix/internal/domain"
)

const crossSlotMessage = "CROSSSLOT all commands in a cluster transaction should operate on the same hash slot"

// ClusterStrategy queues commands locally, pinning the transaction to the
// slot of the first keyed command, and replays MULTI, the queue and EXEC on
// a dedicated connection to the node owning that slot.
type ClusterStrategy struct {
	router *cluster.Router
	slot   int
	conn   domain.Connection
	queue  []domain.Command
}

func NewClusterStrategy(router *cluster.Router) *ClusterStrategy {
	return &ClusterStrategy{router: router, slot: cluster.NoSlot}
}

func (strategy *ClusterStrategy) Slot() int {
	return strategy.slot
}

func (strategy *ClusterStrategy) InitializeTransaction(context.Context) error {
	strategy.queue = strategy.queue[:0]
	return nil
}

// ExecuteCommand answers QUEUED locally; slot conflicts come back as error
// replies so the caller sees them the way a server refusal would look.
func (strategy *ClusterStrategy) ExecuteCommand(_ context.Context, cmd domain.Command) (*domain.Reply, error) {
	if reply := strategy.pinCommand(cmd); reply != nil {
		return reply, nil
	}

	strategy.queue = append(strategy.queue, cmd)
	return domain.NewStatus(domain.StatusQueued), nil
}

// ExecuteTransaction returns a nil reply when any step is refused, after a
// best effort DISCARD.
func (strategy *ClusterStrategy) ExecuteTransaction(ctx context.Context) (*domain.Reply, error) {
	queue := strategy.queue
	strategy.queue = nil
	defer strategy.release()

	conn, err := strategy.connection()
	if hasError(err) {
		return nil, err
	}

	reply, err := conn.ExecuteCommand(ctx, cmdMulti)
	if hasError(err) {
		return nil, err
	}
	if !reply.IsOK() {
		return nil, nil
	}

	for _, cmd := range queue {
		reply, err = conn.ExecuteCommand(ctx, cmd)
		if hasError(err) {
			return nil, err
		}
		if !reply.IsQueued() {
			_, _ = conn.ExecuteCommand(ctx, cmdDiscard)
			return nil, nil
		}
	}

	return conn.ExecuteCommand(ctx, cmdExec)
}

func (strategy *ClusterStrategy) Multi(context.Context) (*domain.Reply, error) {
	return domain.NewStatus(domain.StatusOK), nil
}

func (strategy *ClusterStrategy) Watch(ctx context.Context, keys domain.Args) (*domain.Reply, error) {
	for _, key := range keys {
		if reply := strategy.pin(cluster.Slot(key)); reply != nil {
			return reply, nil
		}
	}

	conn, err := strategy.connection()
	if hasError(err) {
		return nil, err
	}

	return conn.ExecuteCommand(ctx, watchCommand(keys))
}

func (strategy *ClusterStrategy) Unwatch(ctx context.Context) (*domain.Reply, error) {
	defer strategy.release()

	if strategy.conn == nil || !strategy.conn.IsConnected() {
		return domain.NewStatus(domain.StatusOK), nil
	}

	return strategy.conn.ExecuteCommand(ctx, cmdUnwatch)
}

// Discard drops the local queue; MULTI never reached the server.
func (strategy *ClusterStrategy) Discard(ctx context.Context) (*domain.Reply, error) {
	strategy.queue = nil
	return strategy.Unwatch(ctx)
}

func (strategy *ClusterStrategy) ExecuteDirect(ctx context.Context, cmd domain.Command) (*domain.Reply, error) {
	if reply := strategy.pinCommand(cmd); reply != nil {
		return reply, nil
	}

	conn, err := strategy.connection()
	if hasError(err) {
		return nil, err
	}

	return conn.ExecuteCommand(ctx, cmd)
}

func (strategy *ClusterStrategy) Disconnect() error {
	strategy.queue = nil
	strategy.slot = cluster.NoSlot

	if strategy.conn == nil {
		return nil
	}

	return strategy.conn.Disconnect()
}

func (strategy *ClusterStrategy) pinCommand(cmd domain.Command) *domain.Reply {
	slot, err := cluster.SlotFor(cmd)
	if errors.Is(err, domain.ErrCrossSlot) {
		return domain.NewError(crossSlotMessage)
	}

	return strategy.pin(slot)
}

func (strategy *ClusterStrategy) pin(slot int) *domain.Reply {
	if slot == cluster.NoSlot || slot == strategy.slot {
		return nil
	}

	if strategy.slot != cluster.NoSlot {
		return domain.NewError(crossSlotMessage)
	}

	strategy.slot = slot
	return nil
}

// release unpins the slot; the connection stays open for the next attempt.
func (strategy *ClusterStrategy) release() {
	if len(strategy.queue) == 0 {
		strategy.slot = cluster.NoSlot
	}
}

// connection reuses the open dedicated connection while it still points at
// the node serving the pinned slot.
func (strategy *ClusterStrategy) connection() (domain.Connection, error) {
	candidate, err := strategy.router.Dedicated(strategy.slot)
	if hasError(err) {
		return nil, err
	}

	if strategy.conn != nil {
		if strategy.conn.Parameters().Endpoint() == candidate.Parameters().Endpoint() {
			return strategy.conn, nil
		}
		_ = strategy.conn.Disconnect()
	}

	strategy.conn = candidate
	return candidate, nil
}
