package command_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luiz-simples/redix/internal/command"
	"github.com/luiz-simples/redix/internal/domain"
)

var _ = Describe("Command", func() {
	var profile *command.Profile

	BeforeEach(func() {
		profile = command.MustProfile("7.0")
	})

	Describe("New", func() {
		It("should upper case the identifier", func() {
			cmd := command.MustNew(" get ", "key")
			Expect(cmd.ID()).To(Equal("GET"))
			Expect(cmd.Spec()).To(BeNil())
		})

		It("should reject empty identifiers", func() {
			_, err := command.New("  ")
			Expect(err).To(MatchError(domain.ErrEmptyCommandID))
		})

		It("should convert typed arguments", func() {
			cmd := command.MustNew("SET", "key", 42, int64(-7), 1.5, true, 1500*time.Millisecond, []byte("raw"))
			Expect(texts(cmd.Arguments())).To(Equal([]string{"key", "42", "-7", "1.5", "1", "1500", "raw"}))
		})

		It("should have no known keys outside a profile", func() {
			Expect(command.MustNew("GET", "key").Keys()).To(BeEmpty())
		})

		It("should render as a readable line", func() {
			Expect(command.MustNew("set", "k", "v").String()).To(Equal("SET k v"))
		})
	})

	Describe("WithKeyPrefix", func() {
		It("should prefix only key arguments", func() {
			cmd, err := profile.Create("MSET", "a", "1", "b", "2")
			Expect(err).NotTo(HaveOccurred())

			prefixed := cmd.WithKeyPrefix("app:")
			Expect(texts(prefixed.Arguments())).To(Equal([]string{"app:a", "1", "app:b", "2"}))
			Expect(texts(cmd.Arguments())).To(Equal([]string{"a", "1", "b", "2"}))
		})

		It("should return the same command without a prefix", func() {
			cmd, err := profile.Create("GET", "key")
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.WithKeyPrefix("")).To(BeIdenticalTo(cmd))
		})

		It("should leave keyless commands alone", func() {
			cmd, err := profile.Create("PING")
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.WithKeyPrefix("app:")).To(BeIdenticalTo(cmd))
		})

		It("should prefix script keys and not script arguments", func() {
			cmd, err := profile.Create("EVAL", "return 1", 2, "k1", "k2", "arg")
			Expect(err).NotTo(HaveOccurred())
			Expect(texts(cmd.WithKeyPrefix("p:").Arguments())).To(Equal([]string{"return 1", "2", "p:k1", "p:k2", "arg"}))
		})
	})

	Describe("Decode", func() {
		It("should decode with the table decoder", func() {
			cmd, err := profile.Create("INCR", "counter")
			Expect(err).NotTo(HaveOccurred())

			value, err := cmd.Decode(domain.NewInteger(3))
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(int64(3)))
		})

		It("should return the raw reply without a decoder", func() {
			reply := domain.NewStatus("PONG")

			value, err := command.MustNew("PING").Decode(reply)
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(BeIdenticalTo(reply))
		})

		It("should surface error replies as errors", func() {
			cmd, err := profile.Create("INCR", "counter")
			Expect(err).NotTo(HaveOccurred())

			_, err = cmd.Decode(domain.NewError("WRONGTYPE Operation against a key holding the wrong kind of value"))
			Expect(domain.IsServerError(err)).To(BeTrue())
		})
	})
})
