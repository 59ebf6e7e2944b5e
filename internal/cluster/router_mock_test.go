package cluster_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/luiz-simples/redix/internal/cluster"
	"github.com/luiz-simples/redix/internal/command"
	"github.com/luiz-simples/redix/internal/domain"
	"github.com/luiz-simples/redix/internal/domain/mocks"
)

var _ = Describe("Router with mocked connections", func() {
	var (
		ctx      context.Context
		ctrl     *gomock.Controller
		seed     *domain.Parameters
		target   *domain.Parameters
		seedConn *mocks.MockConnection
		nextConn *mocks.MockConnection
		router   *cluster.Router
		get      domain.Command
	)

	BeforeEach(func() {
		ctx = context.Background()
		ctrl = gomock.NewController(GinkgoT())

		seed = domain.NewParameters("10.0.0.1", 7000)
		target = domain.NewParameters("10.0.0.2", 7001)

		seedConn = mocks.NewMockConnection(ctrl)
		nextConn = mocks.NewMockConnection(ctrl)

		seedConn.EXPECT().Parameters().Return(seed).AnyTimes()
		nextConn.EXPECT().Parameters().Return(target).AnyTimes()

		factory := func(params *domain.Parameters) domain.Connection {
			if params.Endpoint() == target.Endpoint() {
				return nextConn
			}
			return seedConn
		}

		var err error
		router, err = cluster.NewRouter(factory, []*domain.Parameters{seed})
		Expect(err).NotTo(HaveOccurred())

		get, err = command.MustProfile("7.0").Create("GET", "foo")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should propagate communication errors", func() {
		failure := domain.NewCommunicationError(seed.Endpoint(), errors.New("connection reset"))
		seedConn.EXPECT().ExecuteCommand(ctx, get).Return(nil, failure)

		_, err := router.ExecuteCommand(ctx, get)
		Expect(err).To(MatchError(failure))
	})

	It("should send ASKING before the command on connections without pipelining", func() {
		seedConn.EXPECT().ExecuteCommand(ctx, get).
			Return(domain.NewError("ASK 12182 "+target.Endpoint()), nil)

		gomock.InOrder(
			nextConn.EXPECT().ExecuteCommand(ctx, gomock.Any()).DoAndReturn(
				func(_ context.Context, cmd domain.Command) (*domain.Reply, error) {
					Expect(cmd.ID()).To(Equal("ASKING"))
					return domain.NewStatus(domain.StatusOK), nil
				}),
			nextConn.EXPECT().ExecuteCommand(ctx, get).Return(domain.NewBulk([]byte("bar")), nil),
		)

		reply, err := router.ExecuteCommand(ctx, get)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Text()).To(Equal("bar"))
	})

	It("should stop when ASKING is refused", func() {
		seedConn.EXPECT().ExecuteCommand(ctx, get).
			Return(domain.NewError("ASK 12182 "+target.Endpoint()), nil)
		nextConn.EXPECT().ExecuteCommand(ctx, gomock.Any()).
			Return(domain.NewError("ERR unknown command 'ASKING'"), nil)

		reply, err := router.ExecuteCommand(ctx, get)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.IsError()).To(BeTrue())
	})

	It("should ignore malformed redirections", func() {
		seedConn.EXPECT().ExecuteCommand(ctx, get).Return(domain.NewError("MOVED nonsense"), nil)

		reply, err := router.ExecuteCommand(ctx, get)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.Err.Type).To(Equal("MOVED"))

		_, found := router.SlotMap().Lookup(12182)
		Expect(found).To(BeFalse())
	})

	It("should close every pooled connection", func() {
		seedConn.EXPECT().Disconnect().Return(nil)
		Expect(router.Disconnect()).To(Succeed())
	})
})
