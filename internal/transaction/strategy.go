package transaction

import (
	"context"
	"fmt"

	"github.com/luiz-simples/redix/internal/domain"
	"github.com/luiz-simples/redix/internal/replication"
)

type (
	// Strategy performs the wire side of a transaction for one topology.
	// MultiExec owns the state machine and never talks to connections itself.
	Strategy interface {
		InitializeTransaction(context.Context) error
		ExecuteCommand(context.Context, domain.Command) (*domain.Reply, error)
		ExecuteTransaction(context.Context) (*domain.Reply, error)
		Multi(context.Context) (*domain.Reply, error)
		Watch(context.Context, domain.Args) (*domain.Reply, error)
		Unwatch(context.Context) (*domain.Reply, error)
		Discard(context.Context) (*domain.Reply, error)
		ExecuteDirect(context.Context, domain.Command) (*domain.Reply, error)
		Disconnect() error
	}

	// NodeStrategy relays every step to a single connection.
	NodeStrategy struct {
		conn domain.Connection
	}

	// ReplicationStrategy runs the transaction on the primary resolved when
	// the strategy is created and refuses commands the replication router
	// would refuse.
	ReplicationStrategy struct {
		*NodeStrategy
		router *replication.Router
	}
)

func NewNodeStrategy(conn domain.Connection) *NodeStrategy {
	return &NodeStrategy{conn: conn}
}

func (strategy *NodeStrategy) Connection() domain.Connection {
	return strategy.conn
}

func (strategy *NodeStrategy) InitializeTransaction(ctx context.Context) error {
	reply, err := strategy.conn.ExecuteCommand(ctx, cmdMulti)
	if hasError(err) {
		return err
	}

	if err := replyError(reply); hasError(err) {
		return err
	}

	if !reply.IsOK() {
		return domain.NewProtocolError("unexpected reply to MULTI: %s", reply)
	}

	return nil
}

func (strategy *NodeStrategy) ExecuteCommand(ctx context.Context, cmd domain.Command) (*domain.Reply, error) {
	return strategy.conn.ExecuteCommand(ctx, cmd)
}

func (strategy *NodeStrategy) ExecuteTransaction(ctx context.Context) (*domain.Reply, error) {
	return strategy.conn.ExecuteCommand(ctx, cmdExec)
}

func (strategy *NodeStrategy) Multi(ctx context.Context) (*domain.Reply, error) {
	return strategy.conn.ExecuteCommand(ctx, cmdMulti)
}

func (strategy *NodeStrategy) Watch(ctx context.Context, keys domain.Args) (*domain.Reply, error) {
	return strategy.conn.ExecuteCommand(ctx, watchCommand(keys))
}

func (strategy *NodeStrategy) Unwatch(ctx context.Context) (*domain.Reply, error) {
	return strategy.conn.ExecuteCommand(ctx, cmdUnwatch)
}

func (strategy *NodeStrategy) Discard(ctx context.Context) (*domain.Reply, error) {
	return strategy.conn.ExecuteCommand(ctx, cmdDiscard)
}

func (strategy *NodeStrategy) ExecuteDirect(ctx context.Context, cmd domain.Command) (*domain.Reply, error) {
	return strategy.conn.ExecuteCommand(ctx, cmd)
}

func (strategy *NodeStrategy) Disconnect() error {
	return strategy.conn.Disconnect()
}

// NewReplicationStrategy opens a dedicated connection to the current primary
// so WATCH state is not shared with other callers of the router.
func NewReplicationStrategy(router *replication.Router) *ReplicationStrategy {
	return &ReplicationStrategy{
		NodeStrategy: NewNodeStrategy(router.Dedicated()),
		router:       router,
	}
}

func (strategy *ReplicationStrategy) ExecuteCommand(ctx context.Context, cmd domain.Command) (*domain.Reply, error) {
	if err := strategy.check(cmd); hasError(err) {
		return nil, err
	}

	return strategy.NodeStrategy.ExecuteCommand(ctx, cmd)
}

func (strategy *ReplicationStrategy) ExecuteDirect(ctx context.Context, cmd domain.Command) (*domain.Reply, error) {
	if err := strategy.check(cmd); hasError(err) {
		return nil, err
	}

	return strategy.NodeStrategy.ExecuteDirect(ctx, cmd)
}

func (strategy *ReplicationStrategy) check(cmd domain.Command) error {
	if strategy.router.Strategy().IsDisallowed(cmd) {
		return fmt.Errorf("%w: %s", domain.ErrNotSupportedInReplication, cmd.ID())
	}

	return nil
}
