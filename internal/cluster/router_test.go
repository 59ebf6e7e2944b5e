package cluster_test

import (
	"context"
	"net"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/luiz-simples/redix/internal/cluster"
	"github.com/luiz-simples/redix/internal/command"
	"github.com/luiz-simples/redix/internal/connection"
	"github.com/luiz-simples/redix/internal/domain"
	"github.com/luiz-simples/redix/internal/metrics"
	"github.com/luiz-simples/redix/internal/redistest"
)

const (
	fooSlot = 12182
	barSlot = 5061
)

var _ = Describe("Router", func() {
	var (
		ctx     context.Context
		profile *command.Profile
		nodeA   *redistest.Server
		nodeB   *redistest.Server
	)

	create := func(id string, values ...any) domain.Command {
		cmd, err := profile.Create(id, values...)
		Expect(err).NotTo(HaveOccurred())
		return cmd
	}

	layout := func() []redistest.SlotRange {
		return []redistest.SlotRange{
			{Start: 0, End: 8191, Endpoint: nodeA.Endpoint()},
			{Start: 8192, End: cluster.SlotCount - 1, Endpoint: nodeB.Endpoint()},
		}
	}

	newRouter := func(opts ...cluster.Option) *cluster.Router {
		router, err := cluster.NewRouter(connection.Factory, []*domain.Parameters{paramsOf(nodeA)}, opts...)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(router.Disconnect)
		return router
	}

	BeforeEach(func() {
		ctx = context.Background()
		profile = command.MustProfile("7.0")

		nodeA = startNode()
		nodeB = startNode()

		nodeA.SetClusterSlots(layout()...)
		nodeB.SetClusterSlots(layout()...)
	})

	It("should require at least one seed", func() {
		_, err := cluster.NewRouter(connection.Factory, nil)
		Expect(err).To(MatchError(domain.ErrNoConnection))
	})

	Describe("RefreshSlots", func() {
		It("should load the layout and connect to every owner", func() {
			router := newRouter()

			Expect(router.RefreshSlots(ctx)).To(Succeed())
			Expect(router.SlotMap().Assigned()).To(Equal(cluster.SlotCount))

			owner, _ := router.SlotMap().Lookup(barSlot)
			Expect(owner).To(Equal(nodeA.Endpoint()))

			owner, _ = router.SlotMap().Lookup(fooSlot)
			Expect(owner).To(Equal(nodeB.Endpoint()))

			Expect(router.Connections()).To(HaveLen(2))
		})

		It("should report servers without cluster support", func() {
			standalone := startNode()

			router, err := cluster.NewRouter(connection.Factory, []*domain.Parameters{paramsOf(standalone)})
			Expect(err).NotTo(HaveOccurred())
			defer router.Disconnect()

			err = router.RefreshSlots(ctx)
			Expect(domain.IsServerError(err)).To(BeTrue())
		})
	})

	Describe("ExecuteCommand", func() {
		It("should send commands to the slot owner", func() {
			router := newRouter()
			Expect(router.RefreshSlots(ctx)).To(Succeed())

			reply, err := router.ExecuteCommand(ctx, create("SET", "foo", "1"))
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.IsOK()).To(BeTrue())

			_, err = router.ExecuteCommand(ctx, create("SET", "bar", "2"))
			Expect(err).NotTo(HaveOccurred())

			_, found := nodeB.Store().Get("foo")
			Expect(found).To(BeTrue())
			_, found = nodeA.Store().Get("bar")
			Expect(found).To(BeTrue())
			_, found = nodeA.Store().Get("foo")
			Expect(found).To(BeFalse())
		})

		It("should send keyless commands to any node", func() {
			router := newRouter()

			reply, err := router.ExecuteCommand(ctx, create("PING"))
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.IsStatus("PONG")).To(BeTrue())
		})

		It("should refuse cross slot commands without contacting any node", func() {
			router := newRouter()

			_, err := router.ExecuteCommand(ctx, create("MGET", "foo", "bar"))
			Expect(err).To(MatchError(domain.ErrCrossSlot))
			Expect(nodeA.Calls()).To(BeEmpty())
			Expect(nodeB.Calls()).To(BeEmpty())
		})

		It("should follow MOVED and remember the new owner", func() {
			collector := metrics.New()
			router := newRouter(cluster.WithMetrics(collector))
			nodeA.Move(fooSlot, nodeB.Endpoint())

			reply, err := router.ExecuteCommand(ctx, create("SET", "foo", "1"))
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.IsOK()).To(BeTrue())

			owner, found := router.SlotMap().Lookup(fooSlot)
			Expect(found).To(BeTrue())
			Expect(owner).To(Equal(nodeB.Endpoint()))
			Expect(testutil.ToFloat64(collector.Redirections(metrics.RedirectMoved))).To(Equal(1.0))

			nodeA.ResetCalls()

			reply, err = router.ExecuteCommand(ctx, create("GET", "foo"))
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.Text()).To(Equal("1"))
			Expect(nodeA.Count("GET")).To(BeZero())
		})

		It("should resolve MOVED targets without a host against the origin", func() {
			router := newRouter()

			_, port, err := net.SplitHostPort(nodeB.Endpoint())
			Expect(err).NotTo(HaveOccurred())
			nodeA.Move(fooSlot, ":"+port)

			reply, err := router.ExecuteCommand(ctx, create("SET", "foo", "1"))
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.IsOK()).To(BeTrue())

			owner, _ := router.SlotMap().Lookup(fooSlot)
			Expect(owner).To(Equal(nodeB.Endpoint()))
		})

		It("should follow ASK once without touching the slot map", func() {
			collector := metrics.New()
			router := newRouter(cluster.WithMetrics(collector))
			nodeA.Ask(fooSlot, nodeB.Endpoint())
			nodeB.Import(fooSlot)

			reply, err := router.ExecuteCommand(ctx, create("SET", "foo", "1"))
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.IsOK()).To(BeTrue())

			Expect(nodeB.Calls()).To(Equal([]string{"ASKING", "SET"}))
			Expect(testutil.ToFloat64(collector.Redirections(metrics.RedirectAsk))).To(Equal(1.0))

			_, found := router.SlotMap().Lookup(fooSlot)
			Expect(found).To(BeFalse())
		})

		It("should stop after the redirection limit", func() {
			router := newRouter()
			nodeA.Move(fooSlot, nodeB.Endpoint())
			nodeB.Move(fooSlot, nodeA.Endpoint())

			_, err := router.ExecuteCommand(ctx, create("GET", "foo"))
			Expect(err).To(MatchError(domain.ErrTooManyRedirections))
		})

		It("should follow longer chains when allowed", func() {
			nodeC := startNode()
			nodeC.SetClusterSlots(layout()...)

			router := newRouter(cluster.WithMaxRedirections(2))
			nodeA.Move(fooSlot, nodeB.Endpoint())
			nodeB.Move(fooSlot, nodeC.Endpoint())

			reply, err := router.ExecuteCommand(ctx, create("SET", "foo", "1"))
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.IsOK()).To(BeTrue())

			_, found := nodeC.Store().Get("foo")
			Expect(found).To(BeTrue())
		})

		It("should reload the whole layout after MOVED when enabled", func() {
			router := newRouter(cluster.WithSlotsRefresh(0))
			nodeA.Move(fooSlot, nodeB.Endpoint())

			_, err := router.ExecuteCommand(ctx, create("SET", "foo", "1"))
			Expect(err).NotTo(HaveOccurred())

			Expect(router.SlotMap().Assigned()).To(Equal(cluster.SlotCount))
			Expect(nodeB.Count("CLUSTER")).To(Equal(1))
		})

		It("should return plain server errors untouched", func() {
			router := newRouter()

			reply, err := router.ExecuteCommand(ctx, create("INCR", "foo"))
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.IsError()).To(BeFalse())

			_, err = router.ExecuteCommand(ctx, create("SET", "bar", "text"))
			Expect(err).NotTo(HaveOccurred())

			reply, err = router.ExecuteCommand(ctx, create("INCR", "bar"))
			Expect(err).NotTo(HaveOccurred())
			Expect(reply.IsError()).To(BeTrue())
		})
	})

	Describe("Dedicated", func() {
		It("should open a connection to the owner outside the pool", func() {
			router := newRouter()
			Expect(router.RefreshSlots(ctx)).To(Succeed())

			pooled, err := router.ConnectionBySlot(fooSlot)
			Expect(err).NotTo(HaveOccurred())

			dedicated, err := router.Dedicated(fooSlot)
			Expect(err).NotTo(HaveOccurred())
			defer dedicated.Disconnect()

			Expect(dedicated).NotTo(BeIdenticalTo(pooled))
			Expect(dedicated.Parameters().Endpoint()).To(Equal(nodeB.Endpoint()))
			Expect(router.Connections()).To(HaveLen(2))
		})
	})

	Describe("Watch", func() {
		It("should refresh periodically until cancelled", func() {
			router := newRouter()

			watchCtx, cancel := context.WithCancel(ctx)
			done := make(chan struct{})

			go func() {
				defer close(done)
				router.Watch(watchCtx, 10*time.Millisecond)
			}()

			Eventually(router.SlotMap().Assigned).Should(Equal(cluster.SlotCount))

			cancel()
			Eventually(done).Should(BeClosed())
		})
	})
})
