package redistest_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/luiz-simples/redix/internal/redistest"
)

var _ = Describe("Store", func() {
	var store *redistest.Store

	BeforeEach(func() {
		store = redistest.NewStore()
	})

	It("should bump the version on every write", func() {
		Expect(store.Version("key")).To(BeZero())

		store.Set("key", []byte("a"))
		first := store.Version("key")

		store.Set("key", []byte("a"))
		Expect(store.Version("key")).To(BeNumerically(">", first))
	})

	It("should bump versions on delete and flush", func() {
		store.Set("key", []byte("a"))
		before := store.Version("key")

		Expect(store.Del("key", "missing")).To(Equal(int64(1)))
		Expect(store.Version("key")).To(BeNumerically(">", before))
		Expect(store.Version("missing")).To(BeZero())

		store.Set("other", []byte("b"))
		before = store.Version("other")
		store.Flush()
		Expect(store.Version("other")).To(BeNumerically(">", before))
		Expect(store.Exists("other")).To(BeZero())
	})

	It("should apply conditional sets", func() {
		mustExist, mustNotExist := true, false

		Expect(store.SetIf("key", []byte("a"), &mustExist)).To(BeFalse())
		Expect(store.SetIf("key", []byte("a"), &mustNotExist)).To(BeTrue())
		Expect(store.SetIf("key", []byte("b"), &mustNotExist)).To(BeFalse())
		Expect(store.SetIf("key", []byte("c"), &mustExist)).To(BeTrue())
		Expect(store.SetIf("key", []byte("d"), nil)).To(BeTrue())

		value, found := store.Get("key")
		Expect(found).To(BeTrue())
		Expect(value).To(Equal([]byte("d")))
	})

	It("should copy stored values", func() {
		value := []byte("abc")
		store.Set("key", value)
		value[0] = 'x'

		stored, _ := store.Get("key")
		Expect(stored).To(Equal([]byte("abc")))
	})

	It("should increment integers only", func() {
		Expect(store.IncrBy("counter", 5)).To(Equal(int64(5)))
		Expect(store.IncrBy("counter", -2)).To(Equal(int64(3)))

		store.Set("text", []byte("abc"))
		_, err := store.IncrBy("text", 1)
		Expect(err).To(MatchError(ContainSubstring("not an integer")))
	})
})
