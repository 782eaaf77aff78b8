package cmd

import (
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/namedcache/namedcache/config"
	"github.com/namedcache/namedcache/helpertest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const (
	basePort = 5000
)

var _ = Describe("Serve command", func() {
	var (
		tmpDir *helpertest.TmpFolder
		port   string
	)
	BeforeEach(func() {
		port = helpertest.GetStringPort(basePort)
		tmpDir = helpertest.NewTmpFolder("config")

		configPath = defaultConfigPath
		apiHost = ""
		apiPort = 0
		cfg = nil
	})

	When("Serve command is called with valid config", func() {
		It("should start without error and terminate with signal", func() {
			By("initialize config", func() {
				cfgFile := tmpDir.CreateStringFile("config.yaml",
					"ports:",
					"  http: 127.0.0.1:"+port)

				os.Setenv(configFileEnvVar, cfgFile.Path)
				DeferCleanup(func() { os.Unsetenv(configFileEnvVar) })

				Expect(initConfig()).Should(Succeed())
			})

			errChan := make(chan error)
			By("start server", func() {
				go func() {
					// it is a blocking function, call async
					errChan <- startServer(newServeCommand(), []string{})
				}()
			})

			By("check HTTP port is open", func() {
				Eventually(func(g Gomega) {
					conn, err := net.DialTimeout("tcp", "127.0.0.1:"+port, 200*time.Millisecond)
					g.Expect(err).Should(Succeed())
					defer conn.Close()
				}).Should(Succeed())
			})

			By("terminate with signal", func() {
				signals <- syscall.SIGINT

				Eventually(errChan, "5s").Should(Receive(BeNil()))
			})
		})
	})

	When("Serve command is called with a port in use", func() {
		It("should fail if server start fails", func() {
			By("start http server on port "+port, func() {
				listener, err := net.Listen("tcp", "127.0.0.1:"+port)
				Expect(err).Should(Succeed())
				DeferCleanup(listener.Close)

				go func() {
					_ = http.Serve(listener, nil)
				}()
			})
			By("initialize config with blocked port "+port, func() {
				cfgFile := tmpDir.CreateStringFile("config.yaml",
					"ports:",
					"  http: 127.0.0.1:"+port)

				os.Setenv(configFileEnvVar, cfgFile.Path)
				DeferCleanup(func() { os.Unsetenv(configFileEnvVar) })

				Expect(initConfig()).Should(Succeed())
			})

			errChan := make(chan error)
			By("start server", func() {
				go func() {
					errChan <- startServer(newServeCommand(), []string{})
				}()
			})

			By("server should terminate with error", func() {
				var startError error
				Eventually(errChan, "10s").Should(Receive(&startError))
				Expect(startError).Should(MatchError(ContainSubstring("address already in use")))
			})
		})
	})

	When("Serve command is called without config", func() {
		It("should fail to start and report error", func() {
			errChan := make(chan error)
			By("start server", func() {
				go func() {
					errChan <- startServer(newServeCommand(), []string{})
				}()
			})

			By("server should terminate with error", func() {
				var startError error
				Eventually(errChan).Should(Receive(&startError))
				Expect(startError).Should(MatchError(ContainSubstring("unable to load configuration")))
			})
		})
	})

	Describe("process registry", func() {
		It("should return the same instance on every call", func() {
			c, err := config.NewDefaultConfig()
			Expect(err).Should(Succeed())

			Expect(defaultRegistry(&c.Cache)).Should(BeIdenticalTo(defaultRegistry(&c.Cache)))
		})
	})
})
