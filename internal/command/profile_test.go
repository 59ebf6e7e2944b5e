package command_test

import (
	"slices"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luiz-simples/redix/internal/command"
	"github.com/luiz-simples/redix/internal/domain"
)

var _ = Describe("Profile", func() {
	Describe("NewProfile", func() {
		It("should default to the current version", func() {
			profile, err := command.NewProfile("")
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Version()).To(Equal(command.DefaultVersion))

			named, err := command.NewProfile("default")
			Expect(err).NotTo(HaveOccurred())
			Expect(named.Version()).To(Equal(command.DefaultVersion))
		})

		It("should reject unparsable versions", func() {
			_, err := command.NewProfile("banana")
			Expect(err).To(MatchError(command.ErrUnsupportedVersion))
		})

		It("should reject versions older than the first table", func() {
			_, err := command.NewProfile("2.4")
			Expect(err).To(MatchError(command.ErrUnsupportedVersion))
		})

		It("should give unknown future versions the newest table", func() {
			profile, err := command.NewProfile("9.9")
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Supports("LMPOP")).To(BeTrue())
		})
	})

	DescribeTable("version availability",
		func(version, id string, supported bool) {
			Expect(command.MustProfile(version).Supports(id)).To(Equal(supported))
		},
		Entry("GET everywhere", "2.6", "GET", true),
		Entry("BITFIELD from 3.2", "3.2", "BITFIELD", true),
		Entry("BITFIELD not before 3.2", "2.8", "BITFIELD", false),
		Entry("XREAD from 5.0", "5.0", "XREAD", true),
		Entry("GETDEL from 6.2", "6.2", "GETDEL", true),
		Entry("GETDEL not in 6.0", "6.0", "GETDEL", false),
		Entry("LMPOP from 7.0", "7.0", "LMPOP", true),
		Entry("LMPOP not in 6.2", "6.2.14", "LMPOP", false),
		Entry("lower case identifiers", "7.0", "get", true),
	)

	Describe("Spec", func() {
		It("should stamp the version that introduced the command", func() {
			spec, exists := command.MustProfile("7.0").Spec("GETDEL")
			Expect(exists).To(BeTrue())
			Expect(spec.Since).To(Equal("6.2"))
		})

		It("should resolve aliases to the canonical spec", func() {
			spec, exists := command.MustProfile("7.0").Spec("substr")
			Expect(exists).To(BeTrue())
			Expect(spec.Name).To(Equal("GETRANGE"))
		})
	})

	Describe("Create", func() {
		var profile *command.Profile

		BeforeEach(func() {
			profile = command.MustProfile("7.0")
		})

		It("should build commands with the canonical identifier", func() {
			cmd, err := profile.Create("substr", "key", 0, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.ID()).To(Equal("GETRANGE"))
			Expect(texts(cmd.Arguments())).To(Equal([]string{"key", "0", "-1"}))
		})

		It("should reject unknown commands", func() {
			_, err := profile.Create("NOPE")
			Expect(err).To(MatchError(domain.ErrUnknownCommand))
		})

		It("should reject commands newer than the profile", func() {
			_, err := command.MustProfile("6.2").Create("LMPOP", 1, "list", "LEFT")
			Expect(err).To(MatchError(domain.ErrUnknownCommand))
		})

		DescribeTable("arity checks",
			func(id string, values []any, valid bool) {
				_, err := profile.Create(id, values...)
				if valid {
					Expect(err).NotTo(HaveOccurred())
					return
				}
				Expect(err).To(MatchError(domain.ErrWrongArity))
			},
			Entry("GET with a key", "GET", []any{"key"}, true),
			Entry("GET without a key", "GET", []any{}, false),
			Entry("GET with two keys", "GET", []any{"a", "b"}, false),
			Entry("DEL with many keys", "DEL", []any{"a", "b", "c"}, true),
			Entry("SET with options", "SET", []any{"key", "value", "NX", "EX", 10}, true),
			Entry("SET without a value", "SET", []any{"key"}, false),
			Entry("flattened slices", "MGET", []any{[]string{"a", "b"}}, true),
		)

		It("should reject unsupported argument types", func() {
			_, err := profile.Create("GET", struct{}{})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("With", func() {
		It("should extend a copy and leave the original untouched", func() {
			base := command.MustProfile("7.0")
			extended := base.With(&command.Spec{
				Name:    "json.get",
				MinArgs: 2,
				MaxArgs: -1,
				Keys:    command.FirstKey,
				Aliases: []string{"JGET"},
			})

			Expect(extended.Supports("JSON.GET")).To(BeTrue())
			Expect(extended.Supports("jget")).To(BeTrue())
			Expect(base.Supports("JSON.GET")).To(BeFalse())

			cmd, err := extended.Create("JGET", "doc", "$")
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.ID()).To(Equal("JSON.GET"))
			Expect(texts(cmd.Keys())).To(Equal([]string{"doc"}))
		})

		It("should override existing specs in the copy only", func() {
			base := command.MustProfile("7.0")
			extended := base.With(&command.Spec{Name: "GET", MinArgs: 2, MaxArgs: 3, Keys: command.FirstKey})

			_, err := extended.Create("GET", "key", "extra")
			Expect(err).NotTo(HaveOccurred())

			_, err = base.Create("GET", "key", "extra")
			Expect(err).To(MatchError(domain.ErrWrongArity))
		})
	})

	Describe("Commands", func() {
		It("should list names in order", func() {
			names := command.MustProfile("2.6").Commands()
			Expect(names).To(ContainElements("GET", "SET", "MULTI"))
			Expect(names).NotTo(ContainElement("SUBSTR"))
			Expect(slices.IsSorted(names)).To(BeTrue())
		})
	})
})
