package server

import (
	"net/http"
	"time"

	"github.com/namedcache/namedcache/api"
	"github.com/namedcache/namedcache/log"
	"github.com/namedcache/namedcache/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

func createRouter() *chi.Mux {
	router := chi.NewRouter()

	configureCorsHandler(router)

	configureAccessLog(router)

	configureDebugHandler(router)

	configureRootHandler(router)

	return router
}

func configureRootHandler(router *chi.Mux) {
	router.Get("/", func(writer http.ResponseWriter, request *http.Request) {
		http.Redirect(writer, request, api.PathCache, http.StatusFound)
	})
}

func configureDebugHandler(router *chi.Mux) {
	router.Mount("/debug", middleware.Profiler())
}

func configureCorsHandler(router *chi.Mux) {
	crs := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	router.Use(crs.Handler)
}

func configureAccessLog(router *chi.Mux) {
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(rw, req.ProtoMajor)

			entry := logger().WithFields(logrus.Fields{
				"client_ip": util.HTTPClientIP(req),
				"method":    req.Method,
				"path":      log.EscapeInput(req.URL.Path),
			})

			ctx, _ := log.NewCtx(req.Context(), entry)

			next.ServeHTTP(ww, req.WithContext(ctx))

			entry.WithFields(logrus.Fields{
				"status":   ww.Status(),
				"duration": time.Since(start),
			}).Debug("request served")
		})
	})
}
