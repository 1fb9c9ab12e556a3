package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// SaleOrderSubmitTotal counts sale order submissions by outcome.
	SaleOrderSubmitTotal *prometheus.CounterVec
	// SaleOrderQuoteTotal counts computed quotes, split by whether they validated.
	SaleOrderQuoteTotal *prometheus.CounterVec
	// SaleOrderTotalAmount records the payable total of accepted orders.
	SaleOrderTotalAmount prometheus.Histogram
	// UpstreamRequestTotal counts calls to the order service by operation and outcome.
	UpstreamRequestTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		SaleOrderSubmitTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sale_order_submit_total",
			Help:      "Count of sale order submissions by result.",
		}, []string{"result"})
		SaleOrderQuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sale_order_quote_total",
			Help:      "Count of computed sale order quotes.",
		}, []string{"valid"})
		SaleOrderTotalAmount = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sale_order_total_amount",
			Help:      "Payable total of accepted sale orders.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 25000},
		})
		UpstreamRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_request_total",
			Help:      "Count of order service calls by operation and result.",
		}, []string{"operation", "result"})

		mustRegisterCollector(reg, SaleOrderSubmitTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SaleOrderSubmitTotal = v
			}
		})
		mustRegisterCollector(reg, SaleOrderQuoteTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SaleOrderQuoteTotal = v
			}
		})
		mustRegisterCollector(reg, SaleOrderTotalAmount, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				SaleOrderTotalAmount = v
			}
		})
		mustRegisterCollector(reg, UpstreamRequestTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				UpstreamRequestTotal = v
			}
		})
	})
}

// ObserveSubmit records one submission outcome. Safe before registration.
func ObserveSubmit(result string, total float64) {
	if SaleOrderSubmitTotal != nil {
		SaleOrderSubmitTotal.WithLabelValues(result).Inc()
	}
	if result == "accepted" && SaleOrderTotalAmount != nil {
		SaleOrderTotalAmount.Observe(total)
	}
}

// ObserveQuote records one computed quote.
func ObserveQuote(valid bool) {
	if SaleOrderQuoteTotal == nil {
		return
	}
	label := "false"
	if valid {
		label = "true"
	}
	SaleOrderQuoteTotal.WithLabelValues(label).Inc()
}

// ObserveUpstream records one order service call.
func ObserveUpstream(operation, result string) {
	if UpstreamRequestTotal != nil {
		UpstreamRequestTotal.WithLabelValues(operation, result).Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
