package utils

import (
	"strconv"

	"github.com/kataras/iris/v12"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travel_planner",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"method", "route", "code"})

	PlanOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "travel_planner",
		Name:      "plan_operations_total",
		Help:      "Successful travel plan mutations by operation.",
	}, []string{"op"})
)

func init() {
	Registry.MustRegister(httpRequests, PlanOperations)
}

func MetricsMiddleware(ctx iris.Context) {
	ctx.Next()

	route := "unmatched"
	if r := ctx.GetCurrentRoute(); r != nil {
		route = r.Path()
	}
	httpRequests.WithLabelValues(ctx.Method(), route, strconv.Itoa(ctx.GetStatusCode())).Inc()
}

func MetricsHandler() iris.Handler {
	return iris.FromStd(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
