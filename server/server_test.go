package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/namedcache/namedcache/api"
	"github.com/namedcache/namedcache/config"
	"github.com/namedcache/namedcache/helpertest"
	"github.com/namedcache/namedcache/registry"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const basePort = 4100

var _ = Describe("Running HTTP server", func() {
	var (
		cfg  *config.Config
		reg  *registry.Registry
		sut  *Server
		ctx  context.Context
		base string
	)

	BeforeEach(func() {
		var (
			cancelFn context.CancelFunc
			err      error
		)

		ctx, cancelFn = context.WithCancel(context.Background())
		DeferCleanup(cancelFn)

		cfg, err = config.NewDefaultConfig()
		Expect(err).Should(Succeed())

		cfg.Ports.HTTP = "127.0.0.1:" + helpertest.GetStringPort(basePort)
		cfg.Metrics.Enable = true

		reg = registry.New(registry.Options{})
		DeferCleanup(reg.Close)
	})

	JustBeforeEach(func() {
		var err error

		sut, err = NewServer(cfg, reg)
		Expect(err).Should(Succeed())

		errCh := make(chan error, 1)
		sut.Start(ctx, errCh)

		DeferCleanup(func() {
			Expect(sut.Stop(context.Background())).Should(Succeed())
		})

		base = fmt.Sprintf("http://%s", sut.Addr())
	})

	get := func(path string) *http.Response {
		var resp *http.Response

		Eventually(func() error {
			var err error

			resp, err = http.Get(base + path) //nolint:noctx

			return err
		}).Should(Succeed())

		DeferCleanup(resp.Body.Close)

		return resp
	}

	It("should serve the cache status", func() {
		reg.Store("users")

		resp := get(api.PathCacheStatus)
		Expect(resp.StatusCode).Should(Equal(http.StatusOK))

		var status api.CacheStatus
		Expect(json.NewDecoder(resp.Body).Decode(&status)).Should(Succeed())

		Expect(status.Enabled).Should(BeTrue())
		Expect(status.Stores).Should(Equal([]string{"users"}))
	})

	It("should redirect the root to the cache description", func() {
		resp := get("/")

		Expect(resp.StatusCode).Should(Equal(http.StatusOK))
		Expect(resp.Request.URL.Path).Should(Equal(api.PathCache))
	})

	It("should serve the metrics", func() {
		resp := get(cfg.Metrics.Path)

		Expect(resp.StatusCode).Should(Equal(http.StatusOK))
	})

	When("metrics are disabled", func() {
		BeforeEach(func() {
			cfg.Metrics.Enable = false
		})

		It("should not serve the metrics", func() {
			resp := get(cfg.Metrics.Path)

			Expect(resp.StatusCode).Should(Equal(http.StatusNotFound))
		})
	})

	It("should fail if the port is in use", func() {
		_, err := NewServer(cfg, reg)

		Expect(err).Should(MatchError(ContainSubstring("start http listener on")))
	})

	It("should listen on the configured address", func() {
		addr, ok := sut.Addr().(*net.TCPAddr)

		Expect(ok).Should(BeTrue())
		Expect(addr.IP.String()).Should(Equal("127.0.0.1"))
	})
})
