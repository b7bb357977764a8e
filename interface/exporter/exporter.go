package exporter

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	METRIC_ERROR_COUNT       = "error_count"
	METRIC_TRANSACTION_COUNT = "transaction_count"
	METRIC_DRAW_COUNT        = "draw_count"
	METRIC_EMPTY_DRAW_COUNT  = "empty_draw_count"
	METRIC_TAX_COLLECTED     = "tax_collected_tokens"
	METRIC_DEV_FEE_COLLECTED = "dev_fee_collected_tokens"

	METRIC_TOTAL_TOKENS = "total_tokens"
	METRIC_HOLDER_COUNT = "holder_count"

	METRIC_LEGS_SENT = "legs_sent_count"
)

var (
	once     sync.Once
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	legsSent *prometheus.CounterVec
)

// Init creates and registers the metrics. It is safe to call more than once;
// every recording function calls it too.
func Init() {
	once.Do(register)
}

func register() {
	counters = make(map[string]prometheus.Counter)
	gauges = make(map[string]prometheus.Gauge)

	addCounter(METRIC_ERROR_COUNT, "Counts the number of failed operations")
	addCounter(METRIC_TRANSACTION_COUNT, "Counts the number of processed transactions")
	addCounter(METRIC_DRAW_COUNT, "Counts the number of draws that selected a wallet")
	addCounter(METRIC_EMPTY_DRAW_COUNT, "Counts the number of draws run without holders")
	addCounter(METRIC_TAX_COLLECTED, "Sum of tax amounts deducted from transfers")
	addCounter(METRIC_DEV_FEE_COLLECTED, "Sum of development fees deducted from transfers")

	addGauge(METRIC_TOTAL_TOKENS, "Total tokens tracked by the ledger")
	addGauge(METRIC_HOLDER_COUNT, "Number of registered holders")

	legsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taxtoken",
		Subsystem: "ledger",
		Name:      METRIC_LEGS_SENT,
		Help:      "Counts the number of settled transfer legs",
	}, []string{"kind"})
	prometheus.MustRegister(legsSent)
}

func addCounter(name string, help string) {
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "taxtoken",
		Subsystem: "ledger",
		Name:      name,
		Help:      help,
	})
	prometheus.MustRegister(counter)
	counters[name] = counter
}

func addGauge(name string, help string) {
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "taxtoken",
		Subsystem: "ledger",
		Name:      name,
		Help:      help,
	})
	prometheus.MustRegister(gauge)
	gauges[name] = gauge
}

func GetCounter(name string) prometheus.Counter {
	Init()
	return counters[name]
}

func GetGauge(name string) prometheus.Gauge {
	Init()
	return gauges[name]
}

func IncErrorCount() {
	GetCounter(METRIC_ERROR_COUNT).Inc()
}

func ObserveTransaction(taxAmount uint64, devFee uint64) {
	GetCounter(METRIC_TRANSACTION_COUNT).Inc()
	GetCounter(METRIC_TAX_COLLECTED).Add(float64(taxAmount))
	GetCounter(METRIC_DEV_FEE_COLLECTED).Add(float64(devFee))
}

func IncDrawCount(drawn bool) {
	if drawn {
		GetCounter(METRIC_DRAW_COUNT).Inc()
	} else {
		GetCounter(METRIC_EMPTY_DRAW_COUNT).Inc()
	}
}

func SetLedgerGauges(totalTokens uint64, holderCount int) {
	GetGauge(METRIC_TOTAL_TOKENS).Set(float64(totalTokens))
	GetGauge(METRIC_HOLDER_COUNT).Set(float64(holderCount))
}

func IncLegsSent(kind string) {
	Init()
	legsSent.WithLabelValues(kind).Inc()
}
