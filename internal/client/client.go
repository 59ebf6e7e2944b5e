package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/luiz-simples/redix/internal/cluster"
	"github.com/luiz-simples/redix/internal/command"
	"github.com/luiz-simples/redix/internal/config"
	"github.com/luiz-simples/redix/internal/connection"
	"github.com/luiz-simples/redix/internal/domain"
	"github.com/luiz-simples/redix/internal/logger"
	"github.com/luiz-simples/redix/internal/metrics"
	"github.com/luiz-simples/redix/internal/replication"
)

type (
	Option func(*Client)

	// backend is what every topology offers the client.
	backend interface {
		domain.Executor
		Disconnect() error
	}

	pipeliner interface {
		Pipeline(context.Context, []domain.Command) ([]*domain.Reply, error)
	}

	// Client picks a topology from its configuration and builds commands
	// from a versioned profile. Commands may be sent concurrently;
	// each transaction gets its own connection.
	Client struct {
		config  *config.ClientConfig
		profile *command.Profile
		factory domain.ConnectionFactory
		metrics *metrics.Collector
		log     *slog.Logger

		backend     backend
		node        *domain.Parameters
		cluster     *cluster.Router
		replication *replication.Router
	}
)

// WithConnectionFactory replaces how node connections are created.
func WithConnectionFactory(factory domain.ConnectionFactory) Option {
	return func(client *Client) {
		client.factory = factory
	}
}

func WithMetrics(collector *metrics.Collector) Option {
	return func(client *Client) {
		client.metrics = collector
	}
}

// WithProfile overrides the profile derived from ServerVersion.
func WithProfile(profile *command.Profile) Option {
	return func(client *Client) {
		client.profile = profile
	}
}

func New(cfg *config.ClientConfig, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	if err := cfg.Validate(); hasError(err) {
		return nil, err
	}

	client := &Client{
		config:  cfg,
		factory: connection.Factory,
		log:     logger.With("topology", cfg.Topology),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.profile == nil {
		profile, err := command.NewProfile(cfg.ServerVersion)
		if hasError(err) {
			return nil, err
		}
		client.profile = profile
	}

	params, err := cfg.Parameters()
	if hasError(err) {
		return nil, err
	}

	if err := client.build(params); hasError(err) {
		return nil, err
	}

	client.log.Debug("client created", "endpoints", len(params), "profile", client.profile.Version())
	return client, nil
}

func (client *Client) build(params []*domain.Parameters) error {
	switch client.config.Topology {
	case config.TopologyCluster:
		opts := []cluster.Option{
			cluster.WithMaxRedirections(client.config.MaxRedirections),
			cluster.WithMetrics(client.metrics),
		}
		if client.config.ClusterSlotsRefresh {
			opts = append(opts, cluster.WithSlotsRefresh(client.config.RefreshInterval))
		}

		router, err := cluster.NewRouter(client.factory, params, opts...)
		if hasError(err) {
			return err
		}
		client.cluster = router
		client.backend = router

	case config.TopologyReplication:
		primary, replicas := replication.Split(params)
		router, err := replication.NewRouter(client.factory, primary, replicas,
			replication.WithLoadBalancing(client.config.LoadBalancing),
			replication.WithMetrics(client.metrics),
		)
		if hasError(err) {
			return err
		}
		client.replication = router
		client.backend = router

	default:
		client.node = params[0]
		client.backend = &nodeBackend{conn: client.factory(params[0]), metrics: client.metrics}
	}

	return nil
}

func (client *Client) Config() *config.ClientConfig {
	return client.config
}

func (client *Client) Profile() *command.Profile {
	return client.profile
}

// Cluster returns the cluster router, or nil for other topologies.
func (client *Client) Cluster() *cluster.Router {
	return client.cluster
}

// Replication returns the replication router, or nil for other topologies.
func (client *Client) Replication() *replication.Router {
	return client.replication
}

// Command builds a command from the profile and applies the key prefix.
func (client *Client) Command(id string, values ...any) (*command.Command, error) {
	cmd, err := client.profile.Create(id, values...)
	if hasError(err) {
		return nil, err
	}

	if isEmpty(client.config.Prefix) {
		return cmd, nil
	}

	return cmd.WithKeyPrefix(client.config.Prefix), nil
}

// Do builds, sends and decodes one command.
func (client *Client) Do(ctx context.Context, id string, values ...any) (any, error) {
	cmd, err := client.Command(id, values...)
	if hasError(err) {
		return nil, err
	}

	reply, err := client.backend.ExecuteCommand(ctx, cmd)
	if hasError(err) {
		return nil, err
	}

	if reply.IsError() {
		return client.serverError(reply)
	}

	return cmd.Decode(reply)
}

// ExecuteCommand sends cmd as is and returns the raw reply. With exceptions
// enabled an error reply is also returned as the error.
func (client *Client) ExecuteCommand(ctx context.Context, cmd domain.Command) (*domain.Reply, error) {
	reply, err := client.backend.ExecuteCommand(ctx, cmd)
	if hasError(err) {
		return nil, err
	}

	if reply.IsError() && client.config.Exceptions {
		return reply, reply.Err
	}

	return reply, nil
}

// Pipeline sends cmds and returns one reply per command in order. A single
// node writes them in one flush; routers send them one by one.
func (client *Client) Pipeline(ctx context.Context, cmds ...domain.Command) ([]*domain.Reply, error) {
	if len(cmds) == 0 {
		return nil, nil
	}

	if pipe, ok := client.backend.(pipeliner); ok {
		return pipe.Pipeline(ctx, cmds)
	}

	replies := make([]*domain.Reply, 0, len(cmds))

	for _, cmd := range cmds {
		reply, err := client.backend.ExecuteCommand(ctx, cmd)
		if hasError(err) {
			return replies, err
		}
		replies = append(replies, reply)
	}

	return replies, nil
}

func (client *Client) Close() error {
	return client.backend.Disconnect()
}

func (client *Client) String() string {
	return fmt.Sprintf("redix(%s %v)", client.config.Topology, client.config.Endpoints)
}

func (client *Client) serverError(reply *domain.Reply) (any, error) {
	if client.config.Exceptions {
		return nil, reply.Err
	}

	return reply.Err, nil
}
