package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "salidas"

// Metrics holds the prometheus collectors. Methods are safe on a nil receiver.
type Metrics struct {
	SeatsSold         prometheus.Counter
	SeatsHeld         prometheus.Counter
	SeatRejections    *prometheus.CounterVec
	ParcelsShipped    prometheus.Counter
	ParcelsDelivered  prometheus.Counter
	DepartureStatus   *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	ManifestsRendered prometheus.Counter
}

// New registers a fresh set of collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SeatsSold: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seats_sold_total",
			Help:      "Seats sold at the counter",
		}),
		SeatsHeld: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seats_held_total",
			Help:      "Seats held by drivers",
		}),
		SeatRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seat_rejections_total",
			Help:      "Seat requests rejected, by reason",
		}, []string{"reason"}),
		ParcelsShipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parcels_shipped_total",
			Help:      "Parcels registered for shipping",
		}),
		ParcelsDelivered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parcels_delivered_total",
			Help:      "Parcels handed to the recipient",
		}),
		DepartureStatus: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "departure_transitions_total",
			Help:      "Departure status changes, by target status",
		}, []string{"status"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by route and status code",
		}, []string{"method", "route", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ManifestsRendered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifests_rendered_total",
			Help:      "Manifest PDFs rendered",
		}),
	}
}

var (
	defaultOnce sync.Once
	defaultSet  *Metrics
)

// Default returns the collectors registered on the global registry.
func Default() *Metrics {
	defaultOnce.Do(func() { defaultSet = New(prometheus.DefaultRegisterer) })
	return defaultSet
}

func (m *Metrics) SeatSold() {
	if m != nil {
		m.SeatsSold.Inc()
	}
}

func (m *Metrics) SeatHeld() {
	if m != nil {
		m.SeatsHeld.Inc()
	}
}

func (m *Metrics) SeatRejected(reason string) {
	if m != nil {
		m.SeatRejections.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) ParcelShipped() {
	if m != nil {
		m.ParcelsShipped.Inc()
	}
}

func (m *Metrics) ParcelDelivered() {
	if m != nil {
		m.ParcelsDelivered.Inc()
	}
}

func (m *Metrics) DepartureMoved(status string) {
	if m != nil {
		m.DepartureStatus.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ManifestRendered() {
	if m != nil {
		m.ManifestsRendered.Inc()
	}
}

func (m *Metrics) ObserveHTTP(method, route string, code int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}
