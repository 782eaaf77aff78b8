package trie

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Trie", func() {
	var sut *Trie

	BeforeEach(func() {
		sut = NewTrie(SplitRune)
	})

	Describe("Basic operations", func() {
		When("Trie is created", func() {
			It("should be empty", func() {
				Expect(sut.IsEmpty()).Should(BeTrue())
				Expect(sut.Count()).Should(Equal(0))
			})

			It("should not find anything", func() {
				Expect(sut.Contains("cat")).Should(BeFalse())
				Expect(sut.WithPrefix("c")).Should(BeEmpty())
				Expect(sut.WithPrefix("")).Should(BeEmpty())
			})

			It("should not insert the empty string", func() {
				sut.Insert("", "")
				Expect(sut.IsEmpty()).Should(BeTrue())
				Expect(sut.Contains("")).Should(BeFalse())
			})
		})

		When("Adding words", func() {
			BeforeEach(func() {
				sut.Insert("cat", "cat")
				sut.Insert("car", "car")
				sut.Insert("dog", "dog")
			})

			It("should count them", func() {
				Expect(sut.IsEmpty()).Should(BeFalse())
				Expect(sut.Count()).Should(Equal(3))
			})

			It("should find words sharing a prefix", func() {
				Expect(sut.WithPrefix("ca")).Should(ConsistOf("cat", "car"))
			})

			It("should return results ordered by key", func() {
				Expect(sut.WithPrefix("")).Should(Equal([]string{"car", "cat", "dog"}))
			})

			It("should match a full word as prefix of itself", func() {
				Expect(sut.WithPrefix("cat")).Should(Equal([]string{"cat"}))
			})

			It("should not match unrelated prefixes", func() {
				Expect(sut.WithPrefix("cow")).Should(BeEmpty())
				Expect(sut.WithPrefix("cats")).Should(BeEmpty())
			})

			It("should only contain inserted keys", func() {
				Expect(sut.Contains("cat")).Should(BeTrue())
				Expect(sut.Contains("ca")).Should(BeFalse())
			})

			It("should not count duplicates", func() {
				sut.Insert("cat", "cat")
				Expect(sut.Count()).Should(Equal(3))
			})

			It("should keep a word that is a prefix of another", func() {
				sut.Insert("ca", "ca")
				Expect(sut.WithPrefix("c")).Should(Equal([]string{"ca", "car", "cat"}))
			})

			It("should replace the value of an existing key", func() {
				sut.Insert("dog", "DOG")
				Expect(sut.WithPrefix("d")).Should(Equal([]string{"DOG"}))
			})
		})
	})

	Describe("Path split", func() {
		BeforeEach(func() {
			sut = NewTrie(SplitPath)
			sut.Insert("a/b/c", "1")
			sut.Insert("a/bc", "2")
			sut.Insert("x/y", "3")
		})

		It("should only match whole segments", func() {
			Expect(sut.WithPrefix("a/")).Should(ConsistOf("1", "2"))
			Expect(sut.WithPrefix("a/b/")).Should(ConsistOf("1"))
			Expect(sut.WithPrefix("a/b")).Should(BeEmpty())
		})
	})

	Describe("Walk", func() {
		It("should visit every value", func() {
			sut.Insert("b", "2")
			sut.Insert("a", "1")

			var visited []string
			sut.Walk(func(v string) { visited = append(visited, v) })

			Expect(visited).Should(Equal([]string{"1", "2"}))
		})
	})
})
