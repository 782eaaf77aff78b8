package metrics

import (
	"fmt"
	"sync"

	"github.com/namedcache/namedcache/evt"
	"github.com/namedcache/namedcache/util"

	"github.com/prometheus/client_golang/prometheus"
)

//nolint:gochecknoglobals
var registerOnce sync.Once

// RegisterEventListeners registers all metric handlers by the event bus. Repeated calls are no-ops.
func RegisterEventListeners() {
	registerOnce.Do(func() {
		registerCachingEventListeners()
		registerContainerEventListeners()
		registerApplicationEventListeners()
	})
}

func registerApplicationEventListeners() {
	v := versionNumberGauge()
	RegisterMetric(v)

	subscribe(evt.ApplicationStarted, func(version, buildTime string) {
		v.WithLabelValues(version, buildTime).Set(1)
	})
}

func versionNumberGauge() *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "namedcache_build_info",
			Help: "Version number and build info",
		}, []string{"version", "build_time"},
	)
}

func registerCachingEventListeners() {
	enabled := enabledGauge()
	storeEnabled := storeEnabledGauge()
	hitCount := cacheHitCount()
	missCount := cacheMissCount()
	swept := sweptEntriesCount()

	RegisterMetric(enabled)
	RegisterMetric(storeEnabled)
	RegisterMetric(hitCount)
	RegisterMetric(missCount)
	RegisterMetric(swept)

	subscribe(evt.CacheEnabledEvent, func(isEnabled bool) {
		enabled.Set(boolToFloat(isEnabled))
	})

	subscribe(evt.StoreEnabledEvent, func(name string, isEnabled bool) {
		storeEnabled.WithLabelValues(name).Set(boolToFloat(isEnabled))
	})

	subscribe(evt.CacheHit, func(name string) {
		hitCount.WithLabelValues(name).Inc()
	})

	subscribe(evt.CacheMiss, func(name string) {
		missCount.WithLabelValues(name).Inc()
	})

	subscribe(evt.EntriesSwept, func(name string, cnt int) {
		swept.WithLabelValues(name).Add(float64(cnt))
	})
}

func registerContainerEventListeners() {
	containerCount := containerCountGauge()
	created := containersCreatedCount()
	removed := containersRemovedCount()
	lastRefresh := lastRegistryRefresh()

	RegisterMetric(containerCount)
	RegisterMetric(created)
	RegisterMetric(removed)
	RegisterMetric(lastRefresh)

	subscribe(evt.ContainerCountChanged, func(typeName string, cnt int) {
		containerCount.WithLabelValues(typeName).Set(float64(cnt))
	})

	subscribe(evt.ContainerCreated, func(typeName, _ string) {
		created.WithLabelValues(typeName).Inc()
	})

	subscribe(evt.ContainerRemoved, func(typeName, _ string) {
		removed.WithLabelValues(typeName).Inc()
	})

	subscribe(evt.RegistryRefreshed, func(_ int) {
		lastRefresh.SetToCurrentTime()
	})
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}

	return 0
}

func enabledGauge() prometheus.Gauge {
	enabledGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "namedcache_enabled",
		Help: "Global caching status",
	})
	enabledGauge.Set(1)

	return enabledGauge
}

func storeEnabledGauge() *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "namedcache_store_enabled",
			Help: "Caching status per key/value store",
		}, []string{"store"},
	)
}

func cacheHitCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namedcache_hits_total",
			Help: "Cache hit counter",
		}, []string{"store"},
	)
}

func cacheMissCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namedcache_misses_total",
			Help: "Cache miss counter",
		}, []string{"store"},
	)
}

func sweptEntriesCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namedcache_swept_entries_total",
			Help: "Number of expired entries removed by the periodic sweep",
		}, []string{"store"},
	)
}

func containerCountGauge() *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "namedcache_containers",
			Help: "Number of held containers",
		}, []string{"type"},
	)
}

func containersCreatedCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namedcache_containers_created_total",
			Help: "Number of created containers",
		}, []string{"type"},
	)
}

func containersRemovedCount() *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namedcache_containers_removed_total",
			Help: "Number of removed, replaced or flushed containers",
		}, []string{"type"},
	)
}

func lastRegistryRefresh() prometheus.Gauge {
	return prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "namedcache_last_refresh_timestamp_seconds",
			Help: "Timestamp of the last registry refresh",
		},
	)
}

func subscribe(topic string, fn interface{}) {
	util.FatalOnError(fmt.Sprintf("can't subscribe topic '%s'", topic), evt.Bus().Subscribe(topic, fn))
}
