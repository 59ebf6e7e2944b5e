package redistest_test

import (
	"context"
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"github.com/luiz-simples/redix/internal/cluster"
	"github.com/luiz-simples/redix/internal/redistest"
)

var _ = Describe("Server", func() {
	var (
		ctx    context.Context
		server *redistest.Server
		rdb    *redis.Client
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		server, err = redistest.Start()
		Expect(err).NotTo(HaveOccurred())

		rdb = newGoRedis(server.Endpoint())
	})

	AfterEach(func() {
		rdb.Close()
		server.Close()
	})

	Describe("string commands", func() {
		It("should store and read values", func() {
			Expect(rdb.Set(ctx, "greeting", "hello", 0).Err()).To(Succeed())
			Expect(rdb.Get(ctx, "greeting").Val()).To(Equal("hello"))
			Expect(rdb.Exists(ctx, "greeting", "missing").Val()).To(Equal(int64(1)))
			Expect(rdb.MGet(ctx, "greeting", "missing").Val()).To(Equal([]any{"hello", nil}))
		})

		It("should return nil for missing keys", func() {
			Expect(rdb.Get(ctx, "missing").Err()).To(MatchError(redis.Nil))
		})

		It("should honour NX and XX", func() {
			Expect(rdb.SetNX(ctx, "key", "first", 0).Val()).To(BeTrue())
			Expect(rdb.SetNX(ctx, "key", "second", 0).Val()).To(BeFalse())
			Expect(rdb.SetXX(ctx, "key", "third", 0).Val()).To(BeTrue())
			Expect(rdb.SetXX(ctx, "other", "value", 0).Val()).To(BeFalse())
			Expect(rdb.Get(ctx, "key").Val()).To(Equal("third"))
		})

		It("should increment counters and reject non integers", func() {
			Expect(rdb.Incr(ctx, "counter").Val()).To(Equal(int64(1)))
			Expect(rdb.IncrBy(ctx, "counter", 41).Val()).To(Equal(int64(42)))

			rdb.Set(ctx, "text", "abc", 0)
			Expect(rdb.Incr(ctx, "text").Err()).To(MatchError(ContainSubstring("not an integer")))
		})

		It("should delete keys", func() {
			rdb.Set(ctx, "a", "1", 0)
			rdb.Set(ctx, "b", "2", 0)

			Expect(rdb.Del(ctx, "a", "b", "c").Val()).To(Equal(int64(2)))
			Expect(server.Store().Exists("a", "b")).To(Equal(int64(0)))
		})
	})

	Describe("transactions", func() {
		It("should execute queued commands on EXEC", func() {
			cmds, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, "key", "value", 0)
				pipe.Incr(ctx, "counter")
				return nil
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(cmds).To(HaveLen(2))
			Expect(cmds[1].(*redis.IntCmd).Val()).To(Equal(int64(1)))
			Expect(server.Count("MULTI")).To(Equal(1))
			Expect(server.Count("EXEC")).To(Equal(1))
		})

		It("should abort EXEC when a watched key changes", func() {
			other := newGoRedis(server.Endpoint())
			defer other.Close()

			err := rdb.Watch(ctx, func(tx *redis.Tx) error {
				Expect(other.Set(ctx, "watched", "changed", 0).Err()).To(Succeed())

				_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Set(ctx, "watched", "mine", 0)
					return nil
				})
				return err
			}, "watched")

			Expect(err).To(MatchError(redis.TxFailedErr))
			Expect(rdb.Get(ctx, "watched").Val()).To(Equal("changed"))
		})

		It("should commit when watched keys are untouched", func() {
			err := rdb.Watch(ctx, func(tx *redis.Tx) error {
				_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Set(ctx, "watched", "mine", 0)
					return nil
				})
				return err
			}, "watched")

			Expect(err).NotTo(HaveOccurred())
			Expect(rdb.Get(ctx, "watched").Val()).To(Equal("mine"))
		})
	})

	Describe("unknown and disabled commands", func() {
		It("should reject unknown commands", func() {
			Expect(rdb.Do(ctx, "NOPE").Err()).To(MatchError(ContainSubstring("unknown command")))
		})

		It("should reject disabled commands", func() {
			disabled, err := redistest.Start(redistest.WithDisabledCommands("role"))
			Expect(err).NotTo(HaveOccurred())
			defer disabled.Close()

			client := newGoRedis(disabled.Endpoint())
			defer client.Close()

			Expect(client.Do(ctx, "ROLE").Err()).To(MatchError(ContainSubstring("unknown command 'ROLE'")))
		})

		It("should check arity", func() {
			Expect(rdb.Do(ctx, "GET").Err()).To(MatchError(ContainSubstring("wrong number of arguments")))
		})
	})

	Describe("replication roles", func() {
		It("should report the primary role with its replicas", func() {
			primary, err := redistest.Start(redistest.WithReplicas("127.0.0.1:7001"))
			Expect(err).NotTo(HaveOccurred())
			defer primary.Close()

			client := newGoRedis(primary.Endpoint())
			defer client.Close()

			role, err := client.Do(ctx, "ROLE").Slice()
			Expect(err).NotTo(HaveOccurred())
			Expect(role[0]).To(Equal("master"))
			Expect(role[2]).To(HaveLen(1))
		})

		It("should reject writes on replicas", func() {
			replica, err := redistest.Start(redistest.AsReplicaOf(server.Endpoint()))
			Expect(err).NotTo(HaveOccurred())
			defer replica.Close()

			client := newGoRedis(replica.Endpoint())
			defer client.Close()

			Expect(client.Set(ctx, "key", "value", 0).Err()).To(MatchError(ContainSubstring("READONLY")))
			Expect(client.Get(ctx, "key").Err()).To(MatchError(redis.Nil))

			role, err := client.Do(ctx, "ROLE").Slice()
			Expect(err).NotTo(HaveOccurred())
			Expect(role[0]).To(Equal("slave"))

			Expect(client.Info(ctx, "replication").Val()).To(ContainSubstring("role:slave"))
		})

		It("should switch roles on promote and demote", func() {
			server.Demote("127.0.0.1:7000")
			Expect(rdb.Info(ctx, "replication").Val()).To(ContainSubstring("role:slave"))

			server.Promote()
			Expect(rdb.Info(ctx, "replication").Val()).To(ContainSubstring("role:master"))
		})
	})

	Describe("cluster behaviour", func() {
		BeforeEach(func() {
			server.SetClusterSlots(redistest.SlotRange{Start: 0, End: cluster.SlotCount - 1, Endpoint: server.Endpoint()})
		})

		It("should describe its slots", func() {
			slots, err := rdb.Do(ctx, "CLUSTER", "SLOTS").Slice()
			Expect(err).NotTo(HaveOccurred())
			Expect(slots).To(HaveLen(1))

			entry := slots[0].([]any)
			Expect(entry[0]).To(Equal(int64(0)))
			Expect(entry[1]).To(Equal(int64(cluster.SlotCount - 1)))
		})

		It("should compute key slots", func() {
			Expect(rdb.ClusterKeySlot(ctx, "{user}:1").Val()).To(Equal(int64(cluster.Slot([]byte("user")))))
		})

		It("should answer MOVED for moved slots", func() {
			slot := cluster.Slot([]byte("foo"))
			server.Move(slot, "127.0.0.1:7002")

			Expect(rdb.Get(ctx, "foo").Err()).To(MatchError("MOVED " + strconv.Itoa(slot) + " 127.0.0.1:7002"))

			server.ClearRedirects()
			Expect(rdb.Get(ctx, "foo").Err()).To(MatchError(redis.Nil))
		})

		It("should require ASKING for importing slots", func() {
			slot := cluster.Slot([]byte("foo"))
			server.SetClusterSlots(redistest.SlotRange{Start: 0, End: cluster.SlotCount - 1, Endpoint: "127.0.0.1:7003"})
			server.Import(slot)

			Expect(rdb.Get(ctx, "foo").Err()).To(MatchError(ContainSubstring("MOVED")))

			conn := rdb.Conn()
			defer conn.Close()

			_, err := conn.Pipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Do(ctx, "ASKING")
				pipe.Set(ctx, "foo", "bar", 0)
				return nil
			})
			Expect(err).NotTo(HaveOccurred())

			value, found := server.Store().Get("foo")
			Expect(found).To(BeTrue())
			Expect(value).To(Equal([]byte("bar")))
		})

		It("should reject keys spanning slots", func() {
			Expect(rdb.MGet(ctx, "foo", "bar").Err()).To(MatchError(ContainSubstring("CROSSSLOT")))
		})
	})
})
