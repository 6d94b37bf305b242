// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsEngine holds Prometheus metrics for the context engine.
type metricsEngine struct {
	once sync.Once

	// Project builds
	builds        prometheus.Counter
	buildFailures prometheus.Counter
	refreshFails  prometheus.Counter
	skippedFiles  *prometheus.CounterVec

	// Incremental updates
	fileMutations *prometheus.CounterVec

	// Window cache
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	compressed  prometheus.Counter

	// Snapshot size
	graphFiles         prometheus.Gauge
	graphRelationships prometheus.Gauge
	graphClusters      prometheus.Gauge

	// Durations
	buildDuration  prometheus.Histogram
	selectDuration prometheus.Histogram
}

var engMetrics metricsEngine

func (m *metricsEngine) init() {
	m.once.Do(func() {
		m.builds = prometheus.NewCounter(prometheus.CounterOpts{Name: "ctxengine_builds_total", Help: "Project graphs built from a full scan"})
		m.buildFailures = prometheus.NewCounter(prometheus.CounterOpts{Name: "ctxengine_build_failures_total", Help: "Full scans that failed"})
		m.refreshFails = prometheus.NewCounter(prometheus.CounterOpts{Name: "ctxengine_refresh_failures_total", Help: "Scheduled refreshes that failed and kept the previous graph"})
		m.skippedFiles = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ctxengine_scan_skipped_total", Help: "Paths skipped during scans, by reason"}, []string{"reason"})

		m.fileMutations = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ctxengine_file_mutations_total", Help: "Incremental file updates, by operation"}, []string{"op"})

		m.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{Name: "ctxengine_window_cache_hits_total", Help: "Context windows served from cache"})
		m.cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{Name: "ctxengine_window_cache_misses_total", Help: "Context windows computed"})
		m.compressed = prometheus.NewCounter(prometheus.CounterOpts{Name: "ctxengine_windows_compressed_total", Help: "Context windows that needed compression"})

		m.graphFiles = prometheus.NewGauge(prometheus.GaugeOpts{Name: "ctxengine_graph_files", Help: "Files in the current snapshot"})
		m.graphRelationships = prometheus.NewGauge(prometheus.GaugeOpts{Name: "ctxengine_graph_relationships", Help: "Relationships in the current snapshot"})
		m.graphClusters = prometheus.NewGauge(prometheus.GaugeOpts{Name: "ctxengine_graph_clusters", Help: "Clusters in the current snapshot"})

		buckets := []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
		m.buildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "ctxengine_build_seconds", Help: "Duration of scan, extraction and graph build", Buckets: buckets})
		m.selectDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "ctxengine_select_seconds", Help: "Duration of context selection on cache miss", Buckets: buckets})

		prometheus.MustRegister(
			m.builds, m.buildFailures, m.refreshFails, m.skippedFiles,
			m.fileMutations,
			m.cacheHits, m.cacheMisses, m.compressed,
			m.graphFiles, m.graphRelationships, m.graphClusters,
			m.buildDuration, m.selectDuration,
		)
	})
}

func recordSnapshot(files, rels, clusters int) {
	engMetrics.init()
	engMetrics.graphFiles.Set(float64(files))
	engMetrics.graphRelationships.Set(float64(rels))
	engMetrics.graphClusters.Set(float64(clusters))
}

func recordSkipped(reasons map[string]int) {
	engMetrics.init()
	for reason, n := range reasons {
		engMetrics.skippedFiles.WithLabelValues(reason).Add(float64(n))
	}
}

func recordMutation(op string) { engMetrics.init(); engMetrics.fileMutations.WithLabelValues(op).Inc() }
func recordBuildFailure()      { engMetrics.init(); engMetrics.buildFailures.Inc() }
func recordRefreshFailure()    { engMetrics.init(); engMetrics.refreshFails.Inc() }
func recordCacheHit()          { engMetrics.init(); engMetrics.cacheHits.Inc() }
func recordCacheMiss()         { engMetrics.init(); engMetrics.cacheMisses.Inc() }
func recordCompressed()        { engMetrics.init(); engMetrics.compressed.Inc() }

func observeBuild(seconds float64) {
	engMetrics.init()
	engMetrics.builds.Inc()
	engMetrics.buildDuration.Observe(seconds)
}

func observeSelect(seconds float64) { engMetrics.init(); engMetrics.selectDuration.Observe(seconds) }
