package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	DispatchLatency         = metric.NewHistogram("1m1s")
	AdvertisementsAccepted  = metric.NewCounter("10s1s")
	AdvertisementsStale     = metric.NewCounter("10s1s")
	AdvertisementsSent      = metric.NewCounter("10s1s")
	MalformedAdvertisements = metric.NewCounter("1m1s")
	RouteChanges            = metric.NewCounter("1m1s")
	PacketsForwarded        = metric.NewCounter("10s1s")
	PacketsDropped          = metric.NewCounter("10s1s")
	PacketsLost             = metric.NewCounter("10s1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("lsr:DispatchLatency (µs)", DispatchLatency)
	expvar.Publish("lsr:AdvertisementsAccepted/s", AdvertisementsAccepted)
	expvar.Publish("lsr:AdvertisementsStale/s", AdvertisementsStale)
	expvar.Publish("lsr:AdvertisementsSent/s", AdvertisementsSent)
	expvar.Publish("lsr:MalformedAdvertisements/s", MalformedAdvertisements)
	expvar.Publish("lsr:RouteChanges/s", RouteChanges)
	expvar.Publish("lsr:PacketsForwarded/s", PacketsForwarded)
	expvar.Publish("lsr:PacketsDropped/s", PacketsDropped)
	expvar.Publish("lsr:PacketsLost/s", PacketsLost)
}
