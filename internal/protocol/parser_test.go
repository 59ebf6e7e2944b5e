package protocol_test

import (
	"fmt"
	"io"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luiz-simples/redix/internal/domain"
	"github.com/luiz-simples/redix/internal/protocol"
)

var _ = Describe("Parser", func() {
	Describe("shared RESP2 and RESP3 types", func() {
		for _, version := range []int{protocol.RESP2, protocol.RESP3} {
			Context(versionLabel(version), func() {
				It("should parse status replies", func() {
					reply, err := protocol.ParseBytes([]byte("+OK\r\n"), version)

					Expect(err).NotTo(HaveOccurred())
					Expect(reply.IsOK()).To(BeTrue())
				})

				It("should parse error replies keeping the type token", func() {
					reply, err := protocol.ParseBytes([]byte("-MOVED 3999 127.0.0.1:6381\r\n"), version)

					Expect(err).NotTo(HaveOccurred())
					Expect(reply.IsError()).To(BeTrue())
					Expect(reply.Err.Type).To(Equal("MOVED"))
					Expect(reply.Err.Detail()).To(Equal("3999 127.0.0.1:6381"))
				})

				It("should parse integers and the legacy nil integer", func() {
					reply, err := protocol.ParseBytes([]byte(":-1000\r\n"), version)
					Expect(err).NotTo(HaveOccurred())
					Expect(reply.Integer).To(Equal(int64(-1000)))

					reply, err = protocol.ParseBytes([]byte(":nil\r\n"), version)
					Expect(err).NotTo(HaveOccurred())
					Expect(reply.IsNil()).To(BeTrue())
				})

				It("should parse bulk strings including empty and null ones", func() {
					reply, err := protocol.ParseBytes([]byte("$5\r\nhe\r\no\r\n"), version)
					Expect(err).NotTo(HaveOccurred())
					Expect(reply.Bytes).To(Equal([]byte("he\r\no")))

					reply, err = protocol.ParseBytes([]byte("$0\r\n\r\n"), version)
					Expect(err).NotTo(HaveOccurred())
					Expect(reply.Kind).To(Equal(domain.KindBulk))
					Expect(reply.Bytes).To(BeEmpty())

					reply, err = protocol.ParseBytes([]byte("$-1\r\n"), version)
					Expect(err).NotTo(HaveOccurred())
					Expect(reply.IsNil()).To(BeTrue())
				})

				It("should parse nested arrays and null arrays", func() {
					reply, err := protocol.ParseBytes([]byte("*3\r\n$3\r\nfoo\r\n*1\r\n:1\r\n*0\r\n"), version)
					Expect(err).NotTo(HaveOccurred())
					Expect(reply.Elems).To(HaveLen(3))
					Expect(reply.Elems[0].Text()).To(Equal("foo"))
					Expect(reply.Elems[1].Elems[0].Integer).To(Equal(int64(1)))
					Expect(reply.Elems[2].Elems).To(BeEmpty())

					reply, err = protocol.ParseBytes([]byte("*-1\r\n"), version)
					Expect(err).NotTo(HaveOccurred())
					Expect(reply.IsNil()).To(BeTrue())
				})

				It("should keep error elements inside arrays as values", func() {
					reply, err := protocol.ParseBytes([]byte("*2\r\n+OK\r\n-ERR boom\r\n"), version)

					Expect(err).NotTo(HaveOccurred())
					Expect(reply.Elems[1].IsError()).To(BeTrue())
				})
			})
		}
	})

	DescribeTable("malformed input",
		func(payload string, version int) {
			_, err := protocol.ParseBytes([]byte(payload), version)

			Expect(domain.IsProtocolError(err)).To(BeTrue())
		},
		Entry("non-numeric bulk length", "$abc\r\n", protocol.RESP2),
		Entry("negative aggregate length", "*-2\r\n", protocol.RESP2),
		Entry("bulk without trailer", "$3\r\nfooXY", protocol.RESP2),
		Entry("line without CR", "+OK\n", protocol.RESP2),
		Entry("unknown prefix", "?what\r\n", protocol.RESP3),
		Entry("RESP3 null on RESP2", "_\r\n", protocol.RESP2),
		Entry("invalid integer", ":12a\r\n", protocol.RESP2),
		Entry("invalid boolean", "#x\r\n", protocol.RESP3),
		Entry("invalid double", ",pi\r\n", protocol.RESP3),
		Entry("verbatim without format", "=3\r\nabc\r\n", protocol.RESP3),
		Entry("empty line", "\r\n", protocol.RESP3),
		Entry("huge array header", "*99999999999999\r\n", protocol.RESP2),
		Entry("huge map header", "%99999999999999\r\n", protocol.RESP3),
		Entry("huge set header", "~99999999999999\r\n", protocol.RESP3),
		Entry("huge push header", ">99999999999999\r\n", protocol.RESP3),
		Entry("huge attribute header", "|99999999999999\r\n", protocol.RESP3),
		Entry("array header past the limit", fmt.Sprintf("*%d\r\n", int64(protocol.MaxAggregateLength)+1), protocol.RESP2),
	)

	It("should not reserve memory for elements that never arrive", func() {
		_, err := protocol.ParseBytes([]byte("*1000000000\r\n:1\r\n"), protocol.RESP2)

		Expect(err).To(HaveOccurred())
	})

	It("should report a truncated payload as an unexpected EOF", func() {
		_, err := protocol.ParseBytes([]byte("$5\r\nhel"), protocol.RESP2)

		Expect(err).To(MatchError(io.ErrUnexpectedEOF))
	})

	It("should reject unknown protocol versions", func() {
		_, err := protocol.NewParser(4)

		Expect(err).To(HaveOccurred())
	})

	Describe("RESP3 types", func() {
		parse := func(payload string) *domain.Reply {
			reply, err := protocol.ParseBytes([]byte(payload), protocol.RESP3)
			Expect(err).NotTo(HaveOccurred())
			return reply
		}

		It("should parse null", func() {
			Expect(parse("_\r\n").IsNil()).To(BeTrue())
		})

		It("should parse doubles including infinities and NaN", func() {
			Expect(parse(",3.14\r\n").Double).To(Equal(3.14))
			Expect(math.IsInf(parse(",inf\r\n").Double, 1)).To(BeTrue())
			Expect(math.IsInf(parse(",-inf\r\n").Double, -1)).To(BeTrue())
			Expect(math.IsNaN(parse(",nan\r\n").Double)).To(BeTrue())
		})

		It("should parse booleans", func() {
			Expect(parse("#t\r\n").Boolean).To(BeTrue())
			Expect(parse("#f\r\n").Boolean).To(BeFalse())
		})

		It("should parse big numbers", func() {
			reply := parse("(3492890328409238509324850943850943825024385\r\n")

			Expect(reply.Kind).To(Equal(domain.KindBigNumber))
			Expect(reply.Big.String()).To(Equal("3492890328409238509324850943850943825024385"))
		})

		It("should parse blob errors", func() {
			reply := parse("!21\r\nSYNTAX invalid syntax\r\n")

			Expect(reply.IsError()).To(BeTrue())
			Expect(reply.Err.Type).To(Equal("SYNTAX"))
		})

		It("should parse verbatim strings", func() {
			reply := parse("=15\r\ntxt:Some string\r\n")

			Expect(reply.Format).To(Equal("txt"))
			Expect(reply.Text()).To(Equal("Some string"))
		})

		It("should parse maps sets and pushes", func() {
			reply := parse("%2\r\n+first\r\n:1\r\n+second\r\n:2\r\n")
			Expect(reply.Entries).To(HaveLen(2))
			Expect(reply.Entries[1].Key.Str).To(Equal("second"))
			Expect(reply.Entries[1].Value.Integer).To(Equal(int64(2)))

			reply = parse("~2\r\n+a\r\n+b\r\n")
			Expect(reply.Kind).To(Equal(domain.KindSet))
			Expect(reply.Elems).To(HaveLen(2))

			reply = parse(">3\r\n+message\r\n+news\r\n+hello\r\n")
			Expect(reply.Kind).To(Equal(domain.KindPush))
		})

		It("should attach attributes to the following reply", func() {
			reply := parse("|1\r\n+key-popularity\r\n%1\r\n$1\r\na\r\n,0.1923\r\n*1\r\n:2039123\r\n")

			Expect(reply.Kind).To(Equal(domain.KindArray))
			Expect(reply.Attributes).To(HaveLen(1))
			Expect(reply.Attributes[0].Key.Str).To(Equal("key-popularity"))
			Expect(reply.Elems[0].Integer).To(Equal(int64(2039123)))
		})
	})

	It("should read consecutive replies from one stream", func() {
		parser, err := protocol.NewParser(protocol.RESP2)
		Expect(err).NotTo(HaveOccurred())

		reader := protocol.NewBytesReader([]byte("+OK\r\n:7\r\n$1\r\nx\r\n"))

		first, err := parser.Parse(reader)
		Expect(err).NotTo(HaveOccurred())
		second, err := parser.Parse(reader)
		Expect(err).NotTo(HaveOccurred())
		third, err := parser.Parse(reader)
		Expect(err).NotTo(HaveOccurred())

		Expect(first.IsOK()).To(BeTrue())
		Expect(second.Integer).To(Equal(int64(7)))
		Expect(third.Text()).To(Equal("x"))
	})
})

func versionLabel(version int) string {
	if version == protocol.RESP3 {
		return "RESP3"
	}
	return "RESP2"
}
