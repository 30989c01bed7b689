package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PromoValidationsTotal counts promo code validation outcomes.
	PromoValidationsTotal *prometheus.CounterVec
	// CartQuotesTotal counts priced carts by the order discount source applied.
	CartQuotesTotal *prometheus.CounterVec
	// CheckoutSummariesTotal counts generated order summaries by shipping method.
	CheckoutSummariesTotal *prometheus.CounterVec
	// CacheLookupsTotal tracks read-through cache hits and misses.
	CacheLookupsTotal *prometheus.CounterVec
	// PromotionExpiriesTotal counts promotions switched off after their end date.
	PromotionExpiriesTotal prometheus.Counter
	// EventTasksTotal counts processed domain event tasks.
	EventTasksTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		if namespace == "" {
			namespace = DefaultNamespace
		}
		PromoValidationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promo_validations_total",
			Help:      "Count of promo code validation outcomes.",
		}, []string{"result"})
		CartQuotesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_quotes_total",
			Help:      "Count of cart quotes by order discount source.",
		}, []string{"source"})
		CheckoutSummariesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_summaries_total",
			Help:      "Count of order summaries generated for WhatsApp checkout.",
		}, []string{"shipping"})
		CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Count of cache lookups by cache and result.",
		}, []string{"cache", "result"})
		PromotionExpiriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promotion_expiries_total",
			Help:      "Number of promotions deactivated after their end date.",
		})
		EventTasksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_tasks_total",
			Help:      "Count of processed domain event tasks by topic and result.",
		}, []string{"topic", "result"})

		mustRegisterCollector(reg, PromoValidationsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PromoValidationsTotal = v
			}
		})
		mustRegisterCollector(reg, CartQuotesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CartQuotesTotal = v
			}
		})
		mustRegisterCollector(reg, CheckoutSummariesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutSummariesTotal = v
			}
		})
		mustRegisterCollector(reg, CacheLookupsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CacheLookupsTotal = v
			}
		})
		mustRegisterCollector(reg, PromotionExpiriesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				PromotionExpiriesTotal = v
			}
		})
		mustRegisterCollector(reg, EventTasksTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				EventTasksTotal = v
			}
		})
	})
}

// ObserveCache records a cache lookup when domain metrics are registered.
func ObserveCache(cache string, hit bool) {
	if CacheLookupsTotal == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(cache, result).Inc()
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
