package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	RunStatusSuccess          = "success"
	RunStatusDataInsufficient = "data_insufficient"
	RunStatusError            = "error"

	ExpiredOnResolve = "resolve"
	ExpiredOnSweep   = "sweep"
)

type Registry struct {
	reg *prometheus.Registry

	// Reconciliação de demanda
	ReconciliationRuns     *prometheus.CounterVec
	ReconciliationDuration prometheus.Histogram
	ReconciledRecords      prometheus.Counter
	ImputedRecords         prometheus.Counter
	ConversionRate         prometheus.Gauge

	// Ajustes manuais
	OverridesSet      prometheus.Counter
	OverridesRejected prometheus.Counter
	OverridesApplied  prometheus.Counter
	OverridesExpired  *prometheus.CounterVec
	ActiveOverrides   prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "demand_reconciliation_runs_total",
		Help: "Execuções do reconciliador de demanda por status",
	}, []string{"status"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "demand_reconciliation_duration_seconds",
		Help:    "Duração das execuções do reconciliador",
		Buckets: prometheus.DefBuckets,
	})
	reconciled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "demand_reconciled_records_total",
		Help: "Registros de vendas reconciliados",
	})
	imputed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "demand_imputed_records_total",
		Help: "Registros com ruptura cuja demanda foi estimada acima do vendido",
	})
	rate := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "demand_conversion_rate",
		Help: "Taxa de conversão global da última reconciliação",
	})

	set := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "override_set_total",
		Help: "Ajustes manuais criados ou substituídos",
	})
	rejected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "override_rejected_total",
		Help: "Ajustes manuais rejeitados por validação",
	})
	applied := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "override_applied_total",
		Help: "Previsões ajustadas por um ajuste manual ativo",
	})
	expired := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "override_expired_total",
		Help: "Ajustes manuais removidos por expiração",
	}, []string{"path"})
	active := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "override_active",
		Help: "Ajustes manuais mantidos no ledger",
	})

	r.MustRegister(runs, duration, reconciled, imputed, rate, set, rejected, applied, expired, active)

	return &Registry{
		reg:                    r,
		ReconciliationRuns:     runs,
		ReconciliationDuration: duration,
		ReconciledRecords:      reconciled,
		ImputedRecords:         imputed,
		ConversionRate:         rate,
		OverridesSet:           set,
		OverridesRejected:      rejected,
		OverridesApplied:       applied,
		OverridesExpired:       expired,
		ActiveOverrides:        active,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
