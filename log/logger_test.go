package log

import (
	"bytes"
	"context"
	"encoding/json"
	"os"

	"github.com/namedcache/namedcache/instanceid"

	"github.com/sirupsen/logrus"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Logger", func() {
	When("hostname file is provided", func() {
		var (
			tmpFile *os.File
			err     error
		)
		JustBeforeEach(func() {
			tmpFile, err = os.CreateTemp("", "prefix")
			Expect(err).Should(Succeed())
			_, err = tmpFile.WriteString("Test-Hostname\n")
			Expect(err).Should(Succeed())
			DeferCleanup(func() { os.Remove(tmpFile.Name()) })
		})
		It("should use it", func() {
			hostname, err := getHostname(tmpFile.Name())
			Expect(err).Should(Succeed())
			Expect(hostname).Should(Equal("test-hostname"))
		})
	})

	When("hostname file is not provided", func() {
		It("should fall back to the os hostname", func() {
			hostname1, err := os.Hostname()
			Expect(err).Should(Succeed())
			hostname2, err := getHostname("")
			Expect(err).Should(Succeed())
			Expect(hostname2).Should(Equal(hostname1))
		})
	})

	Describe("ConfigureLogger", func() {
		var buf *bytes.Buffer

		BeforeEach(func() {
			buf = &bytes.Buffer{}
			logger.Out = buf

			DeferCleanup(func() {
				ConfigureLogger(DefaultConfig())
				Silence()
			})
		})

		It("should apply the level", func() {
			cfg := DefaultConfig()
			cfg.Level = LevelWarn
			ConfigureLogger(cfg)

			Expect(Log().GetLevel()).Should(Equal(logrus.WarnLevel))
		})

		It("should add the instance id in json format", func() {
			cfg := DefaultConfig()
			cfg.Format = FormatTypeJson
			cfg.InstanceID = true
			ConfigureLogger(cfg)

			PrefixedLog("test").Info("hello")

			var line map[string]interface{}
			Expect(json.Unmarshal(buf.Bytes(), &line)).Should(Succeed())
			Expect(line).Should(HaveKeyWithValue("instanceId", instanceid.String()))
			Expect(line).Should(HaveKeyWithValue("prefix", "test"))
			Expect(line).Should(HaveKeyWithValue("msg", "hello"))
		})

		It("should not leak static fields into the entry", func() {
			cfg := DefaultConfig()
			cfg.InstanceID = true
			ConfigureLogger(cfg)

			entry := PrefixedLog("test")
			entry.Info("hello")

			Expect(entry.Data).ShouldNot(HaveKey("instanceId"))
			Expect(buf.String()).Should(ContainSubstring("hello"))
		})
	})

	Describe("EscapeInput", func() {
		It("should remove line breaks", func() {
			Expect(EscapeInput("a\nb\r\nc")).Should(Equal("abc"))
		})
	})

	Describe("context logger", func() {
		It("should fall back to the global logger", func() {
			entry := FromCtx(context.Background())
			Expect(entry.Logger).Should(BeIdenticalTo(Log()))
		})

		It("should carry fields through the context", func() {
			ctx, _ := CtxWithPrefix(context.Background(), "store")
			ctx, entry := CtxWithFields(ctx, logrus.Fields{"key": "k1"})

			Expect(entry.Data).Should(HaveKeyWithValue("prefix", "store"))
			Expect(FromCtx(ctx).Data).Should(HaveKeyWithValue("key", "k1"))
			Expect(FromCtx(ctx).Context).Should(Equal(ctx))
		})
	})
})
