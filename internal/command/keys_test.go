package command_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luiz-simples/redix/internal/command"
)

var _ = Describe("KeyRule", func() {
	DescribeTable("Positions",
		func(rule command.KeyRule, values []string, expected []int) {
			positions := rule.Positions(args(values...))
			if len(expected) == 0 {
				Expect(positions).To(BeEmpty())
				return
			}
			Expect(positions).To(Equal(expected))
		},
		Entry("no keys", command.NoKeys, []string{"a"}, nil),
		Entry("first key", command.FirstKey, []string{"k", "v"}, []int{0}),
		Entry("first key on empty args", command.FirstKey, []string{}, nil),
		Entry("all keys", command.AllKeys, []string{"a", "b", "c"}, []int{0, 1, 2}),
		Entry("interleaved", command.InterleavedKeys, []string{"a", "1", "b", "2"}, []int{0, 2}),
		Entry("all but last", command.AllButLastKeys, []string{"a", "b", "0"}, []int{0, 1}),
		Entry("all but first", command.AllButFirstKeys, []string{"AND", "dest", "a", "b"}, []int{1, 2, 3}),
		Entry("script", command.ScriptKeys, []string{"body", "2", "a", "b", "arg"}, []int{2, 3}),
		Entry("script without keys", command.ScriptKeys, []string{"body", "0", "arg"}, nil),
		Entry("script with a bad count", command.ScriptKeys, []string{"body", "x", "a"}, nil),
		Entry("script count beyond args", command.ScriptKeys, []string{"body", "5", "a"}, []int{2}),
		Entry("numkeys first", command.NumKeysFirst, []string{"2", "a", "b", "LEFT"}, []int{1, 2}),
		Entry("destination numkeys", command.DestinationNumKeys, []string{"dest", "2", "a", "b", "WEIGHTS", "1", "2"}, []int{0, 2, 3}),
		Entry("streams", command.StreamKeys, []string{"COUNT", "1", "STREAMS", "s1", "s2", "0", "0"}, []int{3, 4}),
		Entry("streams lower case", command.StreamKeys, []string{"streams", "s1", "$"}, []int{1}),
		Entry("streams without token", command.StreamKeys, []string{"COUNT", "1"}, nil),
	)

	It("should name every rule", func() {
		Expect(command.FirstKey.String()).To(Equal("first"))
		Expect(command.StreamKeys.String()).To(Equal("streams"))
		Expect(command.KeyRule(200).String()).To(Equal("unknown"))
	})
})
