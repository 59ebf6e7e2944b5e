package client

import (
	"context"

	"github.com/luiz-simples/redix/internal/domain"
	"github.com/luiz-simples/redix/internal/metrics"
)

// nodeBackend counts commands sent to a single node; routers count their own.
type nodeBackend struct {
	conn    domain.Connection
	metrics *metrics.Collector
}

func (node *nodeBackend) ExecuteCommand(ctx context.Context, cmd domain.Command) (*domain.Reply, error) {
	node.metrics.Command(metrics.TopologyNode)
	return node.conn.ExecuteCommand(ctx, cmd)
}

func (node *nodeBackend) Pipeline(ctx context.Context, cmds []domain.Command) ([]*domain.Reply, error) {
	pipe, ok := node.conn.(pipeliner)
	if !ok {
		replies := make([]*domain.Reply, 0, len(cmds))
		for _, cmd := range cmds {
			reply, err := node.ExecuteCommand(ctx, cmd)
			if hasError(err) {
				return replies, err
			}
			replies = append(replies, reply)
		}
		return replies, nil
	}

	for range cmds {
		node.metrics.Command(metrics.TopologyNode)
	}

	return pipe.Pipeline(ctx, cmds)
}

func (node *nodeBackend) Disconnect() error {
	return node.conn.Disconnect()
}
