package protocol_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luiz-simples/redix/internal/domain"
	"github.com/luiz-simples/redix/internal/protocol"
)

var _ = Describe("Serializer", func() {
	It("should frame a command as an array of bulk strings", func() {
		payload := protocol.Serialize(newRaw("SET", "key", "value"))

		Expect(string(payload)).To(Equal("*3\r\n$3\r\nSET\r\n$3\r\nkey\r\n$5\r\nvalue\r\n"))
	})

	It("should frame a command without arguments", func() {
		Expect(string(protocol.Serialize(newRaw("PING")))).To(Equal("*1\r\n$4\r\nPING\r\n"))
	})

	It("should count bytes rather than characters", func() {
		payload := protocol.Serialize(newRaw("SET", "k", "ação"))

		Expect(string(payload)).To(HaveSuffix("$6\r\nação\r\n"))
	})

	It("should not escape CR, LF or NUL inside arguments", func() {
		payload := protocol.Serialize(rawCommand{id: "SET", args: [][]byte{[]byte("k"), {'\r', '\n', 0}}})

		Expect(payload).To(HaveSuffix("$3\r\n\r\n\x00\r\n"))
	})

	It("should concatenate frames for pipelines", func() {
		commands := []domain.Command{newRaw("PING"), newRaw("GET", "a")}

		Expect(string(protocol.SerializeAll(commands))).To(Equal("*1\r\n$4\r\nPING\r\n*2\r\n$3\r\nGET\r\n$1\r\na\r\n"))
	})
})

var _ = Describe("Encoder", func() {
	It("should downgrade RESP3 maps to flat arrays for RESP2", func() {
		reply := &domain.Reply{Kind: domain.KindMap, Entries: []domain.MapEntry{
			{Key: domain.NewStatus("role"), Value: domain.NewBulk([]byte("master"))},
		}}

		Expect(string(protocol.EncodeReply(reply, protocol.RESP2))).To(Equal("*2\r\n+role\r\n$6\r\nmaster\r\n"))
		Expect(string(protocol.EncodeReply(reply, protocol.RESP3))).To(Equal("%1\r\n+role\r\n$6\r\nmaster\r\n"))
	})

	It("should encode nil per protocol", func() {
		Expect(string(protocol.EncodeReply(domain.NewNil(), protocol.RESP2))).To(Equal("$-1\r\n"))
		Expect(string(protocol.EncodeReply(domain.NewNil(), protocol.RESP3))).To(Equal("_\r\n"))
	})

	It("should encode booleans as integers for RESP2", func() {
		reply := &domain.Reply{Kind: domain.KindBoolean, Boolean: true}

		Expect(string(protocol.EncodeReply(reply, protocol.RESP2))).To(Equal(":1\r\n"))
		Expect(string(protocol.EncodeReply(reply, protocol.RESP3))).To(Equal("#t\r\n"))
	})
})
