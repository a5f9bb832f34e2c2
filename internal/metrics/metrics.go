// Package metrics holds Prometheus instruments that are used across the
// runtime.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveStores = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_stores",
			Help: "Number of data stores currently registered in memory.",
		})

	TenantLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_load_total",
			Help: "Cumulative number of tenants resolved from the control store.",
		})

	TenantLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_load_errors_total",
			Help: "Cumulative number of tenant resolution failures.",
		})

	StoreProvisionTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "store_provision_total",
			Help: "Cumulative number of dedicated tenant stores provisioned.",
		})

	IdentityCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "identity_cache_hits_total",
			Help: "Decoded-identity cache hits during authentication.",
		})

	IdentityCacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "identity_cache_misses_total",
			Help: "Decoded-identity cache misses during authentication.",
		})

	PermissionDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "permission_denied_total",
			Help: "Requests rejected by the permission enforcer.",
		})

	AuditWriteErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_write_errors_total",
			Help: "Audit-log writes that failed and were dropped.",
		})
)

func init() {
	prometheus.MustRegister(
		ActiveStores,
		TenantLoadTotal,
		TenantLoadErrorsTotal,
		StoreProvisionTotal,
		IdentityCacheHitsTotal,
		IdentityCacheMissesTotal,
		PermissionDeniedTotal,
		AuditWriteErrorsTotal,
	)
}
