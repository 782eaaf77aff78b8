package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/namedcache/namedcache/helpertest"
	"github.com/namedcache/namedcache/registry"

	"github.com/go-chi/chi/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type refreshMock struct {
	refreshTriggered bool
}

func (r *refreshMock) Refresh() {
	r.refreshTriggered = true
}

var _ = Describe("API tests", func() {
	var (
		reg    *registry.Registry
		router chi.Router
		ctx    context.Context
	)

	BeforeEach(func() {
		clock := helpertest.NewFakeClock()

		reg = registry.New(registry.Options{Now: clock.Now})
		DeferCleanup(reg.Close)

		router = chi.NewRouter()
		RegisterEndpoint(router, reg)

		ctx = context.Background()
	})

	get := func(url string) *httptest.ResponseRecorder {
		return helpertest.DoRequest(ctx, http.MethodGet, url, nil, router)
	}

	decode := func(resp *httptest.ResponseRecorder, target any) {
		Expect(resp.Header().Get(contentTypeHeader)).Should(Equal(jsonContentType))
		Expect(json.NewDecoder(resp.Body).Decode(target)).Should(Succeed())
	}

	Describe("Describe", func() {
		It("should describe every container", func() {
			reg.Store("users").Add("u1", "alice", 0)
			reg.PrefixStore("words").Add("cat")

			resp := get(PathCache)
			Expect(resp.Code).Should(Equal(http.StatusOK))

			var d registry.Description
			decode(resp, &d)

			Expect(d.Enabled).Should(BeTrue())
			Expect(d.Stores).Should(HaveLen(1))
			Expect(d.Stores[0].Name).Should(Equal("users"))
			Expect(d.Stores[0].Entries).Should(HaveKey("u1"))
			Expect(d.PrefixStores).Should(HaveLen(1))
		})
	})

	Describe("Flush references", func() {
		BeforeEach(func() {
			reg.Store("users").Add("u1", "alice", 0)
			reg.Store("users").Add("u2", "bob", 0)
			reg.PrefixStore("words").Add("cat")
		})

		It("should remove a single entry", func() {
			ref := reg.Describe().Stores[0].Entries["u1"].Flush

			resp := get(PathCache + ref)
			Expect(resp.Code).Should(Equal(http.StatusOK))

			var res FlushResult
			decode(resp, &res)
			Expect(res).Should(Equal(FlushResult{Container: "users", Entry: "u1"}))

			Expect(reg.Store("users").Keys()).Should(Equal([]string{"u2"}))
		})

		It("should remove a whole container", func() {
			resp := get(PathCache + reg.Describe().PrefixStores[0].Flush)
			Expect(resp.Code).Should(Equal(http.StatusOK))

			Expect(reg.PrefixStoreNames()).Should(BeEmpty())
			Expect(reg.StoreNames()).Should(Equal([]string{"users"}))
		})

		It("should flush everything", func() {
			resp := get(PathCache + "?flushAll=true")
			Expect(resp.Code).Should(Equal(http.StatusOK))

			Expect(reg.StoreNames()).Should(BeEmpty())
			Expect(reg.PrefixStoreNames()).Should(BeEmpty())
		})

		It("should keep everything if flushAll is false", func() {
			Expect(get(PathCache + "?flushAll=false").Code).Should(Equal(http.StatusOK))

			Expect(reg.StoreNames()).Should(Equal([]string{"users"}))
		})

		It("should answer 400 for an invalid flushAll value", func() {
			Expect(get(PathCache + "?flushAll=maybe").Code).Should(Equal(http.StatusBadRequest))

			Expect(reg.StoreNames()).Should(Equal([]string{"users"}))
		})

		It("should remove only the container named all", func() {
			reg.Store("all").Add("k", "v", 0)

			resp := get(PathCache + reg.Store("all").Describe().Flush)
			Expect(resp.Code).Should(Equal(http.StatusOK))

			Expect(reg.StoreNames()).Should(Equal([]string{"users"}))
			Expect(reg.PrefixStoreNames()).Should(Equal([]string{"words"}))
		})

		It("should answer 404 for unknown containers", func() {
			Expect(get(PathCache + "?flush=unknown").Code).Should(Equal(http.StatusNotFound))
			Expect(get(PathCache + "?flush=unknown&entry=x").Code).Should(Equal(http.StatusNotFound))
		})

		It("should answer 404 for unknown entries", func() {
			resp := get(PathCache + "?flush=users&entry=u3")
			Expect(resp.Code).Should(Equal(http.StatusNotFound))

			var res errorResponse
			decode(resp, &res)
			Expect(res.Error).Should(Equal("unknown entry 'u3' in container 'users'"))
		})

		It("should answer 400 for entries of prefix stores", func() {
			Expect(get(PathCache + "?flush=words&entry=cat").Code).Should(Equal(http.StatusBadRequest))
		})

		It("should answer 400 without a name", func() {
			Expect(get(PathCache + "?flush=").Code).Should(Equal(http.StatusBadRequest))
		})
	})

	Describe("Enable and disable", func() {
		It("should toggle the cache", func() {
			s := reg.Store("users")

			resp := get(PathCacheDisable)
			Expect(resp.Code).Should(Equal(http.StatusOK))

			var status CacheStatus
			decode(resp, &status)
			Expect(status.Enabled).Should(BeFalse())
			Expect(s.IsEnabled()).Should(BeFalse())

			resp = get(PathCacheEnable)
			Expect(resp.Code).Should(Equal(http.StatusOK))

			decode(resp, &status)
			Expect(status.Enabled).Should(BeTrue())
			Expect(s.IsEnabled()).Should(BeTrue())
		})

		It("should report the status", func() {
			reg.Store("b")
			reg.Store("a")
			reg.PrefixStore("p")

			var status CacheStatus
			decode(get(PathCacheStatus), &status)

			Expect(status).Should(Equal(CacheStatus{
				Enabled:      true,
				Timestamp:    "2022-10-01 12:00:00",
				Stores:       []string{"a", "b"},
				PrefixStores: []string{"p"},
			}))
		})
	})

	Describe("Store keys", func() {
		It("should list the live keys", func() {
			reg.Store("users").Add("u1", 1, 0)

			var res KeysResult
			decode(get("/api/cache/stores/users/keys"), &res)

			Expect(res.Keys).Should(Equal([]string{"u1"}))
		})

		It("should reject prefix stores", func() {
			reg.PrefixStore("words")

			Expect(get("/api/cache/stores/words/keys").Code).Should(Equal(http.StatusBadRequest))
		})

		It("should answer 404 for unknown stores", func() {
			Expect(get("/api/cache/stores/none/keys").Code).Should(Equal(http.StatusNotFound))
		})
	})

	Describe("Prefix query", func() {
		BeforeEach(func() {
			p := reg.PrefixStore("words")
			p.Add("cat")
			p.Add("car")
			p.Add("dog")
		})

		It("should return the matching strings", func() {
			var res PrefixResult
			decode(get("/api/cache/prefixes/words?prefix=ca"), &res)

			Expect(res.Values).Should(ConsistOf("cat", "car"))
		})

		It("should return an empty list without matches", func() {
			var res PrefixResult
			decode(get("/api/cache/prefixes/words?prefix=x"), &res)

			Expect(res.Values).Should(BeEmpty())
		})

		It("should reject key/value stores", func() {
			reg.Store("users")

			Expect(get("/api/cache/prefixes/users?prefix=a").Code).Should(Equal(http.StatusBadRequest))
		})
	})

	Describe("Refresh", func() {
		It("should trigger the refresh", func() {
			r := &refreshMock{}
			refreshRouter := chi.NewRouter()
			RegisterEndpoint(refreshRouter, r)

			resp := helpertest.DoRequest(ctx, http.MethodPost, PathCacheRefresh, nil, refreshRouter)

			Expect(resp.Code).Should(Equal(http.StatusOK))
			Expect(r.refreshTriggered).Should(BeTrue())
		})
	})
})
