package util

import (
	"errors"

	"github.com/namedcache/namedcache/helpertest"
	"github.com/namedcache/namedcache/log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Error logging", func() {
	Describe("LogOnError", func() {
		It("should log nothing without an error", func() {
			hook := helpertest.NewLogHook()

			LogOnError("failed: ", nil)

			Expect(hook.AllEntries()).Should(BeEmpty())
		})

		It("should log the error", func() {
			hook := helpertest.NewLogHook()

			LogOnError("failed: ", errors.New("boom"))

			Expect(helpertest.Messages(hook)).Should(ConsistOf("failed: boom"))
		})
	})

	Describe("LogOnErrorWithEntry", func() {
		It("should log through the given entry", func() {
			hook := helpertest.NewLogHook()

			LogOnErrorWithEntry(log.PrefixedLog("test"), "failed: ", errors.New("boom"))

			Expect(hook.LastEntry().Data).Should(HaveKeyWithValue("prefix", "test"))
		})
	})
})
