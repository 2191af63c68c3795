package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records storefront business counters. A nil *Metrics is a valid no-op.
type Metrics struct {
	promoValidations *prometheus.CounterVec
	promoRedemptions *prometheus.CounterVec
	ordersPlaced     prometheus.Counter
	orderTransitions *prometheus.CounterVec
}

// New registers the storefront metrics on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	promoValidations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_promo_validations_total",
		Help: "Promo code validations by outcome.",
	}, []string{"result"})
	promoRedemptions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_promo_redemptions_total",
		Help: "Promo code redemptions attempted at order placement by outcome.",
	}, []string{"result"})
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Orders committed at checkout.",
	})
	orderTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_transitions_total",
		Help: "Order status transitions by target status.",
	}, []string{"status"})
	reg.MustRegister(promoValidations, promoRedemptions, ordersPlaced, orderTransitions)
	return &Metrics{
		promoValidations: promoValidations,
		promoRedemptions: promoRedemptions,
		ordersPlaced:     ordersPlaced,
		orderTransitions: orderTransitions,
	}
}

// PromoValidated counts a validation; result is "ok" or a rejection reason.
func (m *Metrics) PromoValidated(result string) {
	if m == nil || m.promoValidations == nil {
		return
	}
	m.promoValidations.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *Metrics) PromoRedeemed(result string) {
	if m == nil || m.promoRedemptions == nil {
		return
	}
	m.promoRedemptions.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *Metrics) OrderPlaced() {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Inc()
}

func (m *Metrics) OrderTransitioned(status string) {
	if m == nil || m.orderTransitions == nil {
		return
	}
	m.orderTransitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
