package helpertest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/namedcache/namedcache/log"

	"github.com/onsi/ginkgo/v2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// GetIntPort returns an port for the current testing
// process by adding the current ginkgo parallel process to
// the base port and returning it as int
func GetIntPort(port int) int {
	return port + ginkgo.GinkgoParallelProcess()
}

// GetStringPort returns an port for the current testing
// process by adding the current ginkgo parallel process to
// the base port and returning it as string
func GetStringPort(port int) string {
	return fmt.Sprintf("%d", GetIntPort(port))
}

// DoRequest performs a request against the handler and records the response
func DoRequest(ctx context.Context, method, url string, body io.Reader, handler http.Handler) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, url, body).WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, r)

	return rr
}

// NewLogHook attaches a recording hook to the global logger for the current spec.
// The logger level is raised to debug and restored afterwards.
func NewLogHook() *test.Hook {
	logger := log.Log()
	level := logger.GetLevel()

	hook := test.NewLocal(logger)
	logger.SetLevel(logrus.DebugLevel)

	ginkgo.DeferCleanup(func() {
		logger.ReplaceHooks(make(logrus.LevelHooks))
		logger.SetLevel(level)
	})

	return hook
}

// Messages returns the messages of all recorded entries
func Messages(hook *test.Hook) []string {
	entries := hook.AllEntries()
	messages := make([]string, 0, len(entries))

	for _, e := range entries {
		messages = append(messages, e.Message)
	}

	return messages
}
