package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	achPaymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ach_payments_total",
		Help: "Total ACH payments processed",
	}, []string{
		"direction",        // debit, credit
		"transaction_code", // 22, 27, 32, 37
		"status",           // pending, failed
	})

	achPaymentAmountCents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ach_payment_amount_cents_total",
		Help: "Total ACH payment amount in cents",
	}, []string{
		"direction",
		"currency",
	})

	achFeeCents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ach_fee_cents_total",
		Help: "Total ACH fees assessed in cents",
	}, []string{
		"direction",
	})

	achProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "ach_processing_duration_seconds",
		Help: "Time to validate, tokenize and queue an ACH payment",
		// Tokenizer and queue round trips dominate
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{
		"direction",
		"status",
	})

	achValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ach_validation_failures_total",
		Help: "ACH requests rejected by validation",
	}, []string{
		"operation", // debit, credit, recurring, nacha
	})

	achQueueFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ach_queue_failures_total",
		Help: "ACH debits whose hand-off to the sync queue failed",
	})

	achOutboxDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ach_outbox_deliveries_total",
		Help: "Outbox delivery attempts to the sync manager",
	}, []string{
		"status", // delivered, retrying, dead_lettered
	})

	achOutboxDeadLetters = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ach_outbox_dead_letters_total",
		Help: "Queued payments moved to the dead-letter table",
	}, []string{
		"source", // enqueue, delivery
	})

	achNachaFiles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ach_nacha_files_generated_total",
		Help: "NACHA files generated",
	})

	achNachaEntries = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ach_nacha_file_entries",
		Help:    "Entry detail records per generated NACHA file",
		Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
	})

	achRecurringSetups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ach_recurring_setups_total",
		Help: "Recurring ACH schedules created",
	}, []string{
		"frequency",
	})
)

// RecordACHPayment records a processed ACH payment
func RecordACHPayment(direction, transactionCode, status, currency string, amountCents, feeCents int64, duration float64) {
	achPaymentsTotal.WithLabelValues(direction, transactionCode, status).Inc()
	achPaymentAmountCents.WithLabelValues(direction, currency).Add(float64(amountCents))
	achFeeCents.WithLabelValues(direction).Add(float64(feeCents))
	achProcessingDuration.WithLabelValues(direction, status).Observe(duration)
}

// RecordACHValidationFailure counts a rejected request
func RecordACHValidationFailure(operation string) {
	achValidationFailures.WithLabelValues(operation).Inc()
}

// RecordACHQueueFailure counts a failed sync-queue hand-off
func RecordACHQueueFailure() {
	achQueueFailures.Inc()
}

// RecordOutboxDelivery records one dispatcher attempt
func RecordOutboxDelivery(status string) {
	achOutboxDeliveries.WithLabelValues(status).Inc()
}

// RecordOutboxDeadLetter records a payment moved to dead letters
func RecordOutboxDeadLetter(source string) {
	achOutboxDeadLetters.WithLabelValues(source).Inc()
}

// RecordNACHAFile records a generated file and its size
func RecordNACHAFile(entries int) {
	achNachaFiles.Inc()
	achNachaEntries.Observe(float64(entries))
}

// RecordRecurringSetup records a new recurring schedule
func RecordRecurringSetup(frequency string) {
	achRecurringSetups.WithLabelValues(frequency).Inc()
}
