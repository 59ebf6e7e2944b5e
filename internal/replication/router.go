package replication

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/luiz-simples/redix/internal/domain"
	"github.com/luiz-simples/redix/internal/logger"
	"github.com/luiz-simples/redix/internal/metrics"
)

type (
	Option func(*Router)

	// Router sends writes to the primary and, with load balancing, reads to
	// healthy replicas. The node set is swapped atomically on failover.
	Router struct {
		factory       domain.ConnectionFactory
		strategy      *Strategy
		nodes         atomic.Pointer[topology]
		unhealthy     *xsync.MapOf[string, bool]
		next          atomic.Uint64
		loadBalancing bool
		verifyPrimary bool
		verified      atomic.Bool
		metrics       *metrics.Collector
		log           *slog.Logger
	}

	topology struct {
		primary  domain.Connection
		replicas []domain.Connection
	}
)

func WithStrategy(strategy *Strategy) Option {
	return func(router *Router) {
		router.strategy = strategy
	}
}

func WithLoadBalancing(enabled bool) Option {
	return func(router *Router) {
		router.loadBalancing = enabled
	}
}

// WithPrimaryCheck verifies the primary role before the first command.
func WithPrimaryCheck() Option {
	return func(router *Router) {
		router.verifyPrimary = true
	}
}

func WithMetrics(collector *metrics.Collector) Option {
	return func(router *Router) {
		router.metrics = collector
	}
}

func NewRouter(factory domain.ConnectionFactory, primary *domain.Parameters, replicas []*domain.Parameters, opts ...Option) (*Router, error) {
	if primary == nil {
		return nil, fmt.Errorf("%w: replication requires a primary", domain.ErrNoConnection)
	}

	router := &Router{
		factory:       factory,
		strategy:      NewStrategy(),
		unhealthy:     xsync.NewMapOf[string, bool](),
		loadBalancing: true,
		log:           logger.With("topology", metrics.TopologyReplication),
	}

	for _, opt := range opts {
		opt(router)
	}

	nodes := &topology{primary: factory(primary.WithRole(domain.RolePrimary))}
	for _, replica := range replicas {
		nodes.replicas = append(nodes.replicas, factory(replica.WithRole(domain.RoleReplica)))
	}

	router.nodes.Store(nodes)
	return router, nil
}

// Split builds primary and replica parameters from a flat list using the
// role of each entry; without roles the first entry is the primary.
func Split(params []*domain.Parameters) (*domain.Parameters, []*domain.Parameters) {
	var primary *domain.Parameters
	replicas := make([]*domain.Parameters, 0, len(params))

	for _, param := range params {
		if primary == nil && param.Role != domain.RoleReplica {
			primary = param
			continue
		}
		replicas = append(replicas, param)
	}

	return primary, replicas
}

func (router *Router) Strategy() *Strategy {
	return router.strategy
}

func (router *Router) Primary() domain.Connection {
	return router.nodes.Load().primary
}

// Dedicated opens a fresh connection to the current primary.
func (router *Router) Dedicated() domain.Connection {
	return router.factory(router.Primary().Parameters())
}

func (router *Router) Replicas() []domain.Connection {
	return append([]domain.Connection(nil), router.nodes.Load().replicas...)
}

func (router *Router) IsHealthy(conn domain.Connection) bool {
	_, down := router.unhealthy.Load(conn.Parameters().Endpoint())
	return !down
}

// ConnectionForCommand resolves the node for cmd without sending anything.
func (router *Router) ConnectionForCommand(cmd domain.Command) (domain.Connection, error) {
	if router.strategy.IsDisallowed(cmd) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotSupportedInReplication, cmd.ID())
	}

	if !router.loadBalancing || !router.strategy.IsReadOperation(cmd) {
		return router.Primary(), nil
	}

	if replica := router.pickReplica(); replica != nil {
		return replica, nil
	}

	return router.Primary(), nil
}

// ExecuteCommand retries a read on the primary when its replica fails, and
// keeps that replica out of rotation until Refresh sees it again.
func (router *Router) ExecuteCommand(ctx context.Context, cmd domain.Command) (*domain.Reply, error) {
	if err := router.ensurePrimary(ctx); hasError(err) {
		return nil, err
	}

	conn, err := router.ConnectionForCommand(cmd)
	if hasError(err) {
		return nil, err
	}

	router.metrics.Command(metrics.TopologyReplication)

	reply, err := conn.ExecuteCommand(ctx, cmd)
	if !hasError(err) || conn == router.Primary() || !domain.IsCommunicationError(err) {
		return reply, err
	}

	router.markUnhealthy(conn, err)
	router.metrics.Failover()

	return router.Primary().ExecuteCommand(ctx, cmd)
}

func (router *Router) Disconnect() error {
	nodes := router.nodes.Load()
	err := nodes.primary.Disconnect()

	for _, replica := range nodes.replicas {
		if replicaErr := replica.Disconnect(); hasError(replicaErr) && !hasError(err) {
			err = replicaErr
		}
	}

	return err
}

func (router *Router) pickReplica() domain.Connection {
	replicas := router.nodes.Load().replicas
	if len(replicas) == 0 {
		return nil
	}

	start := router.next.Add(1)

	for offset := range uint64(len(replicas)) {
		candidate := replicas[(start+offset)%uint64(len(replicas))]
		if router.IsHealthy(candidate) {
			return candidate
		}
	}

	return nil
}

func (router *Router) markUnhealthy(conn domain.Connection, cause error) {
	router.unhealthy.Store(conn.Parameters().Endpoint(), true)
	router.log.Warn("replica marked unhealthy", "endpoint", conn.Parameters().Endpoint(), "error", cause)
}

func (router *Router) ensurePrimary(ctx context.Context) error {
	if !router.verifyPrimary || router.verified.Load() {
		return nil
	}

	if err := router.CheckRole(ctx, router.Primary(), domain.RolePrimary); hasError(err) {
		return err
	}

	router.verified.Store(true)
	return nil
}
