package trie

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SplitRune", func() {
	It("should split off the first character", func() {
		label, rest := SplitRune("cat")
		Expect(label).Should(Equal("c"))
		Expect(rest).Should(Equal("at"))
	})

	It("should keep multi byte characters together", func() {
		label, rest := SplitRune("über")
		Expect(label).Should(Equal("ü"))
		Expect(rest).Should(Equal("ber"))
	})

	It("should not crash with an empty string", func() {
		label, rest := SplitRune("")
		Expect(label).Should(Equal(""))
		Expect(rest).Should(Equal(""))
	})
})

var _ = Describe("SplitPath", func() {
	It("should split off the first segment", func() {
		label, rest := SplitPath("a/b/c")
		Expect(label).Should(Equal("a/"))
		Expect(rest).Should(Equal("b/c"))
	})

	It("should not split a plain string", func() {
		label, rest := SplitPath("abc")
		Expect(label).Should(Equal("abc"))
		Expect(rest).Should(Equal(""))
	})

	It("should handle a trailing separator", func() {
		label, rest := SplitPath("abc/")
		Expect(label).Should(Equal("abc/"))
		Expect(rest).Should(Equal(""))
	})
})
