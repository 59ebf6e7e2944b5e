package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/time/rate"

	"github.com/luiz-simples/redix/internal/command"
	"github.com/luiz-simples/redix/internal/domain"
	"github.com/luiz-simples/redix/internal/logger"
	"github.com/luiz-simples/redix/internal/metrics"
)

const (
	DefaultMaxRedirections = 1
	DefaultRefreshLimit    = time.Second

	redirectMoved = "MOVED"
	redirectAsk   = "ASK"
)

type (
	Option func(*Router)

	// Router resolves commands to cluster nodes. The slot map is owned by the
	// router and only changes on redirections and refreshes.
	Router struct {
		factory domain.ConnectionFactory
		seeds   []*domain.Parameters
		pool    *xsync.MapOf[string, domain.Connection]
		slots   *SlotMap
		limiter *rate.Limiter
		metrics *metrics.Collector
		log     *slog.Logger

		maxRedirections int
		refreshOnMoved  bool
	}

	redirection struct {
		kind     string
		slot     int
		endpoint string
	}

	pipeliner interface {
		Pipeline(context.Context, []domain.Command) ([]*domain.Reply, error)
	}
)

// WithMaxRedirections bounds how many MOVED/ASK replies one command may follow.
func WithMaxRedirections(limit int) Option {
	return func(router *Router) {
		router.maxRedirections = max(limit, 0)
	}
}

// WithSlotsRefresh reloads the whole slot map via CLUSTER SLOTS after a MOVED,
// at most once per interval.
func WithSlotsRefresh(interval time.Duration) Option {
	return func(router *Router) {
		router.refreshOnMoved = true
		if interval > 0 {
			router.limiter = rate.NewLimiter(rate.Every(interval), 1)
		}
	}
}

func WithMetrics(collector *metrics.Collector) Option {
	return func(router *Router) {
		router.metrics = collector
	}
}

func NewRouter(factory domain.ConnectionFactory, seeds []*domain.Parameters, opts ...Option) (*Router, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: cluster requires at least one seed node", domain.ErrNoConnection)
	}

	router := &Router{
		factory:         factory,
		seeds:           seeds,
		pool:            xsync.NewMapOf[string, domain.Connection](),
		slots:           NewSlotMap(),
		limiter:         rate.NewLimiter(rate.Every(DefaultRefreshLimit), 1),
		log:             logger.With("topology", metrics.TopologyCluster),
		maxRedirections: DefaultMaxRedirections,
	}

	for _, opt := range opts {
		opt(router)
	}

	for _, seed := range seeds {
		router.pool.Store(seed.Endpoint(), factory(seed))
	}

	return router, nil
}

func (router *Router) SlotMap() *SlotMap {
	return router.slots
}

func (router *Router) ConnectionForCommand(cmd domain.Command) (domain.Connection, error) {
	slot, err := SlotFor(cmd)
	if hasError(err) {
		return nil, err
	}

	if slot == NoSlot {
		return router.anyConnection()
	}

	return router.ConnectionBySlot(slot)
}

// ConnectionBySlot falls back to any known node for unmapped slots; the
// node answers with MOVED if it is the wrong one.
func (router *Router) ConnectionBySlot(slot int) (domain.Connection, error) {
	if endpoint, found := router.slots.Lookup(slot); found {
		return router.ConnectionByEndpoint(endpoint)
	}

	return router.anyConnection()
}

func (router *Router) ConnectionByEndpoint(endpoint string) (domain.Connection, error) {
	if conn, found := router.pool.Load(endpoint); found {
		return conn, nil
	}

	params, err := router.seeds[0].WithEndpoint(endpoint)
	if hasError(err) {
		return nil, err
	}

	conn, _ := router.pool.LoadOrCompute(endpoint, func() domain.Connection {
		return router.factory(params)
	})

	return conn, nil
}

// Dedicated opens a connection outside the pool to the node serving slot,
// for state bound to one connection such as WATCH and MULTI.
func (router *Router) Dedicated(slot int) (domain.Connection, error) {
	pooled, err := router.ConnectionBySlot(slot)
	if hasError(err) {
		return nil, err
	}

	return router.factory(pooled.Parameters()), nil
}

// Connections returns every pooled node connection.
func (router *Router) Connections() []domain.Connection {
	conns := make([]domain.Connection, 0, router.pool.Size())

	router.pool.Range(func(_ string, conn domain.Connection) bool {
		conns = append(conns, conn)
		return true
	})

	return conns
}

// ExecuteCommand sends cmd to the owning node and follows at most
// maxRedirections MOVED/ASK replies.
func (router *Router) ExecuteCommand(ctx context.Context, cmd domain.Command) (*domain.Reply, error) {
	conn, err := router.ConnectionForCommand(cmd)
	if hasError(err) {
		return nil, err
	}

	asking := false

	for attempt := 0; ; attempt++ {
		router.metrics.Command(metrics.TopologyCluster)

		reply, err := router.send(ctx, conn, cmd, asking)
		if hasError(err) {
			return nil, err
		}

		target, redirected := parseRedirection(reply, conn.Parameters())
		if !redirected {
			return reply, nil
		}

		if attempt >= router.maxRedirections {
			return nil, fmt.Errorf("%w: %s", domain.ErrTooManyRedirections, reply.Err.Message)
		}

		conn, err = router.follow(ctx, target)
		if hasError(err) {
			return nil, err
		}

		asking = target.kind == redirectAsk
	}
}

// Disconnect closes every pooled connection.
func (router *Router) Disconnect() error {
	var firstErr error

	router.pool.Range(func(_ string, conn domain.Connection) bool {
		if err := conn.Disconnect(); hasError(err) && firstErr == nil {
			firstErr = err
		}
		return true
	})

	return firstErr
}

func (router *Router) follow(ctx context.Context, target redirection) (domain.Connection, error) {
	if target.kind == redirectAsk {
		router.metrics.Redirection(metrics.RedirectAsk)
		router.log.Debug("following ASK redirection", "slot", target.slot, "endpoint", target.endpoint)
		return router.ConnectionByEndpoint(target.endpoint)
	}

	router.metrics.Redirection(metrics.RedirectMoved)
	router.log.Info("slot moved", "slot", target.slot, "endpoint", target.endpoint)
	router.slots.Set(target.slot, target.endpoint)

	if router.refreshOnMoved && router.limiter.Allow() {
		if err := router.RefreshSlots(ctx); hasError(err) {
			router.log.Warn("slot map refresh failed", "error", err)
		}
	}

	return router.ConnectionByEndpoint(target.endpoint)
}

// send prefixes cmd with ASKING when following an ASK redirection. Both go
// out in one write so nothing can slip in between on a shared connection.
func (router *Router) send(ctx context.Context, conn domain.Connection, cmd domain.Command, asking bool) (*domain.Reply, error) {
	if !asking {
		return conn.ExecuteCommand(ctx, cmd)
	}

	batch := []domain.Command{command.MustNew("ASKING"), cmd}

	if pipe, ok := conn.(pipeliner); ok {
		replies, err := pipe.Pipeline(ctx, batch)
		if hasError(err) {
			return nil, err
		}
		if replies[0].IsError() {
			return replies[0], nil
		}
		return replies[1], nil
	}

	reply, err := conn.ExecuteCommand(ctx, batch[0])
	if hasError(err) || reply.IsError() {
		return reply, err
	}

	return conn.ExecuteCommand(ctx, cmd)
}

func (router *Router) anyConnection() (domain.Connection, error) {
	var chosen domain.Connection

	for _, endpoint := range router.slots.Endpoints() {
		if conn, found := router.pool.Load(endpoint); found {
			return conn, nil
		}
	}

	router.pool.Range(func(_ string, conn domain.Connection) bool {
		chosen = conn
		return false
	})

	if chosen == nil {
		return nil, domain.ErrNoConnection
	}

	return chosen, nil
}

func parseRedirection(reply *domain.Reply, origin *domain.Parameters) (redirection, bool) {
	if !reply.IsError() || (reply.Err.Type != redirectMoved && reply.Err.Type != redirectAsk) {
		return redirection{}, false
	}

	var target redirection
	var rawSlot string

	if _, err := fmt.Sscan(reply.Err.Detail(), &rawSlot, &target.endpoint); hasError(err) {
		return redirection{}, false
	}

	slot, err := strconv.Atoi(rawSlot)
	if hasError(err) || !validSlot(slot) {
		return redirection{}, false
	}

	host, port, err := net.SplitHostPort(target.endpoint)
	if hasError(err) {
		return redirection{}, false
	}

	if isEmpty(host) {
		target.endpoint = net.JoinHostPort(origin.Host, port)
	}

	target.kind = reply.Err.Type
	target.slot = slot

	return target, true
}
