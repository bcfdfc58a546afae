package prefetch

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshuapare/prefetchkit/pkg/types"
)

var _ types.MetricsSink = (*Metrics)(nil)

// Metrics exports parser counters to Prometheus. Pass it as
// OpenOptions.Metrics; one Metrics can serve any number of files.
type Metrics struct {
	FilesOpened       *prometheus.CounterVec
	OpenFailures      *prometheus.CounterVec
	CacheLookups      *prometheus.CounterVec
	CacheEvictions    prometheus.Counter
	BlocksDecoded     prometheus.Counter
	BytesDecompressed prometheus.Counter
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	filesOpened := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prefetch_files_opened_total",
		Help: "Prefetch files parsed successfully, by container format",
	}, []string{"container"})

	openFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prefetch_open_failures_total",
		Help: "Prefetch files that failed to parse, by error kind",
	}, []string{"kind"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prefetch_block_cache_lookups_total",
		Help: "Decompressed block cache lookups, by result",
	}, []string{"result"})

	cacheEvictions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prefetch_block_cache_evictions_total",
		Help: "Decompressed blocks evicted from the cache",
	})

	blocksDecoded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prefetch_blocks_decompressed_total",
		Help: "Compressed blocks decoded, including cache reloads",
	})

	bytesDecompressed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "prefetch_decompressed_bytes_total",
		Help: "Bytes produced by the decompressor",
	})

	reg.MustRegister(filesOpened, openFailures, cacheLookups, cacheEvictions, blocksDecoded, bytesDecompressed)

	return &Metrics{
		FilesOpened:       filesOpened,
		OpenFailures:      openFailures,
		CacheLookups:      cacheLookups,
		CacheEvictions:    cacheEvictions,
		BlocksDecoded:     blocksDecoded,
		BytesDecompressed: bytesDecompressed,
	}
}

func (m *Metrics) CacheHit() { m.CacheLookups.WithLabelValues("hit").Inc() }
func (m *Metrics) CacheMiss() { m.CacheLookups.WithLabelValues("miss").Inc() }
func (m *Metrics) CacheEvict() { m.CacheEvictions.Inc() }

func (m *Metrics) BlockDecompressed(bytes int) {
	m.BlocksDecoded.Inc()
	m.BytesDecompressed.Add(float64(bytes))
}

func (m *Metrics) FileOpened(format types.ContainerFormat) {
	m.FilesOpened.WithLabelValues(format.String()).Inc()
}

func (m *Metrics) OpenFailed(kind types.ErrKind) {
	m.OpenFailures.WithLabelValues(kind.String()).Inc()
}
