// Package metrics counts traffic through the dispatch pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dherrin/packetd/pkg/dgram"
)

// Extension observes every packet entering the pipeline and always lets it
// continue; it never alters routing.
type Extension struct {
	packetsTotal prometheus.Counter
	bytesTotal   prometheus.Counter
	senders      *prometheus.CounterVec
}

// New creates and registers the pipeline metrics on reg.
func New(reg prometheus.Registerer) *Extension {
	factory := promauto.With(reg)
	return &Extension{
		packetsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "packetd_packets_received_total",
			Help: "Total number of UDP packets received",
		}),
		bytesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "packetd_payload_bytes_total",
			Help: "Total payload bytes received",
		}),
		senders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "packetd_packets_by_sender_total",
			Help: "Packets received per sender address",
		}, []string{"sender"}),
	}
}

func (e *Extension) Name() string { return "metrics" }

func (e *Extension) OnStart(dgram.Store) error { return nil }

func (e *Extension) Route(ctx *dgram.Context) (bool, error) {
	e.packetsTotal.Inc()
	e.bytesTotal.Add(float64(len(ctx.Payload)))
	e.senders.WithLabelValues(ctx.From.String()).Inc()
	return true, nil
}

// Clone shares the collectors: Prometheus counters are safe for concurrent
// use and the totals are meant to be server-wide.
func (e *Extension) Clone() dgram.Extension { return e }
