package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/namedcache/namedcache/cache"
	"github.com/namedcache/namedcache/log"
	"github.com/namedcache/namedcache/registry"
	"github.com/namedcache/namedcache/util"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const (
	contentTypeHeader = "content-type"
	jsonContentType   = "application/json"
)

// CacheControl interface to inspect and control the cache registry
type CacheControl interface {
	Describe() registry.Description
	Get(name string) (cache.Container, bool)
	Remove(name string) bool
	Flush()
	Enable()
	Disable()
	IsEnabled() bool
	Timestamp() time.Time
	StoreNames() []string
	PrefixStoreNames() []string
}

// Refresher interface to trigger the registry refresh
type Refresher interface {
	Refresh()
}

type entryRemover interface {
	Remove(key string) bool
}

type keyLister interface {
	Keys() []string
}

type prefixQuerier interface {
	Get(prefix string) []string
}

// CacheEndpoint endpoint for the cache control
type CacheEndpoint struct {
	control CacheControl
}

// RefreshEndpoint endpoint for the registry refresh
type RefreshEndpoint struct {
	refresher Refresher
}

// RegisterEndpoint registers an implementation as HTTP endpoint
func RegisterEndpoint(router chi.Router, t interface{}) {
	if a, ok := t.(CacheControl); ok {
		registerCacheEndpoints(router, a)
	}

	if a, ok := t.(Refresher); ok {
		registerRefreshEndpoints(router, a)
	}
}

func registerCacheEndpoints(router chi.Router, control CacheControl) {
	s := &CacheEndpoint{control}

	router.Get(PathCache, s.apiCache)
	router.Get(PathCacheStatus, s.apiCacheStatus)
	router.Get(PathCacheEnable, s.apiCacheEnable)
	router.Get(PathCacheDisable, s.apiCacheDisable)
	router.Get(PathStoreKeys, s.apiStoreKeys)
	router.Get(PathPrefixQuery, s.apiPrefixQuery)
}

func registerRefreshEndpoints(router chi.Router, refresher Refresher) {
	r := &RefreshEndpoint{refresher}

	router.Post(PathCacheRefresh, r.apiCacheRefresh)
}

func logger() *logrus.Entry {
	return log.PrefixedLog("api")
}

// apiCache returns the registry description, or flushes if a flush reference is passed
func (s *CacheEndpoint) apiCache(rw http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()

	if query.Has(FlushAllParam) {
		s.flushAll(rw, query.Get(FlushAllParam))

		return
	}

	if query.Has(cache.FlushParam) {
		s.flush(rw, query.Get(cache.FlushParam), query.Get(cache.EntryParam), query.Has(cache.EntryParam))

		return
	}

	writeJSON(rw, s.control.Describe())
}

func (s *CacheEndpoint) flush(rw http.ResponseWriter, name, entry string, hasEntry bool) {
	switch {
	case name == "":
		writeError(rw, http.StatusBadRequest, "missing container name")

		return

	case !hasEntry:
		if !s.control.Remove(name) {
			writeError(rw, http.StatusNotFound, "unknown container '%s'", name)

			return
		}

		logger().Infof("flushed container '%s'", log.EscapeInput(name))

	default:
		c, found := s.control.Get(name)
		if !found {
			writeError(rw, http.StatusNotFound, "unknown container '%s'", name)

			return
		}

		remover, ok := c.(entryRemover)
		if !ok {
			writeError(rw, http.StatusBadRequest, "container '%s' has no entries", name)

			return
		}

		if !remover.Remove(entry) {
			writeError(rw, http.StatusNotFound, "unknown entry '%s' in container '%s'", entry, name)

			return
		}

		logger().Infof("flushed entry '%s' of container '%s'", log.EscapeInput(entry), log.EscapeInput(name))
	}

	writeJSON(rw, FlushResult{Container: name, Entry: entry})
}

func (s *CacheEndpoint) flushAll(rw http.ResponseWriter, value string) {
	all, err := strconv.ParseBool(value)
	if err != nil {
		writeError(rw, http.StatusBadRequest, "invalid %s value '%s'", FlushAllParam, value)

		return
	}

	if all {
		logger().Info("flushing all containers")
		s.control.Flush()
	}

	writeJSON(rw, FlushResult{})
}

func (s *CacheEndpoint) apiCacheStatus(rw http.ResponseWriter, _ *http.Request) {
	writeJSON(rw, s.status())
}

func (s *CacheEndpoint) status() CacheStatus {
	return CacheStatus{
		Enabled:      s.control.IsEnabled(),
		Timestamp:    cache.FormatTime(s.control.Timestamp()),
		Stores:       s.control.StoreNames(),
		PrefixStores: s.control.PrefixStoreNames(),
	}
}

func (s *CacheEndpoint) apiCacheEnable(rw http.ResponseWriter, _ *http.Request) {
	logger().Info("enabling cache...")

	s.control.Enable()
	writeJSON(rw, s.status())
}

func (s *CacheEndpoint) apiCacheDisable(rw http.ResponseWriter, _ *http.Request) {
	logger().Info("disabling cache...")

	s.control.Disable()
	writeJSON(rw, s.status())
}

func (s *CacheEndpoint) apiStoreKeys(rw http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "name")

	c, found := s.control.Get(name)
	if !found {
		writeError(rw, http.StatusNotFound, "unknown container '%s'", name)

		return
	}

	lister, ok := c.(keyLister)
	if !ok {
		writeError(rw, http.StatusBadRequest, "container '%s' is not a key/value store", name)

		return
	}

	writeJSON(rw, KeysResult{Store: name, Keys: lister.Keys()})
}

func (s *CacheEndpoint) apiPrefixQuery(rw http.ResponseWriter, req *http.Request) {
	name := chi.URLParam(req, "name")
	prefix := req.URL.Query().Get("prefix")

	c, found := s.control.Get(name)
	if !found {
		writeError(rw, http.StatusNotFound, "unknown container '%s'", name)

		return
	}

	querier, ok := c.(prefixQuerier)
	if !ok {
		writeError(rw, http.StatusBadRequest, "container '%s' is not a prefix store", name)

		return
	}

	values := querier.Get(prefix)
	if values == nil {
		values = []string{}
	}

	writeJSON(rw, PrefixResult{Store: name, Prefix: prefix, Values: values})
}

func (r *RefreshEndpoint) apiCacheRefresh(rw http.ResponseWriter, _ *http.Request) {
	r.refresher.Refresh()

	rw.Header().Set(contentTypeHeader, jsonContentType)
	_, err := rw.Write([]byte("{}"))

	util.LogOnErrorWithEntry(logger(), "can't send an empty answer: ", err)
}

func writeJSON(rw http.ResponseWriter, v any) {
	rw.Header().Set(contentTypeHeader, jsonContentType)

	response, err := json.Marshal(v)
	util.LogOnErrorWithEntry(logger(), "unable to marshal response ", err)

	_, err = rw.Write(response)
	util.LogOnErrorWithEntry(logger(), "unable to write response ", err)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(rw http.ResponseWriter, code int, format string, args ...any) {
	for i, a := range args {
		if str, ok := a.(string); ok {
			args[i] = log.EscapeInput(str)
		}
	}

	msg := fmt.Sprintf(format, args...)

	logger().Warn(msg)

	rw.Header().Set(contentTypeHeader, jsonContentType)
	rw.WriteHeader(code)

	response, err := json.Marshal(errorResponse{Error: msg})
	util.LogOnErrorWithEntry(logger(), "unable to marshal response ", err)

	_, err = rw.Write(response)
	util.LogOnErrorWithEntry(logger(), "unable to write response ", err)
}
