package domain

const (
	CanonicalEventClassDomain        = "domain"
	CanonicalEventClassAnalyticsOnly = "analytics_only"
	CanonicalEventClassOps           = "ops"
)

const (
	EventOrderFunded          = "escrow.order_funded"
	EventOrderSettled         = "escrow.order_settled"
	EventOrderCancelled       = "escrow.order_cancelled"
	EventOrderRefunded        = "escrow.order_refunded"
	EventPoolToppedUp         = "pool.topped_up"
	EventPoolRefundIssued     = "pool.refund_issued"
	EventPoolSwept            = "pool.swept"
	EventFeeConfigChanged     = "config.fees_changed"
	EventAuthorizationChanged = "config.authorization_changed"
)

func IsCanonicalEmittedEvent(eventType string) bool {
	switch eventType {
	case EventOrderFunded, EventOrderSettled, EventOrderCancelled, EventOrderRefunded,
		EventPoolToppedUp, EventPoolRefundIssued, EventPoolSwept,
		EventFeeConfigChanged, EventAuthorizationChanged:
		return true
	default:
		return false
	}
}

func CanonicalEventClass(eventType string) string {
	switch eventType {
	case EventOrderFunded, EventOrderSettled, EventOrderCancelled, EventOrderRefunded,
		EventPoolRefundIssued:
		return CanonicalEventClassDomain
	case EventPoolToppedUp, EventPoolSwept:
		return CanonicalEventClassAnalyticsOnly
	case EventFeeConfigChanged, EventAuthorizationChanged:
		return CanonicalEventClassOps
	default:
		return ""
	}
}

func CanonicalPartitionKeyPath(eventType string) string {
	switch eventType {
	case EventOrderFunded, EventOrderSettled, EventOrderCancelled, EventOrderRefunded,
		EventPoolRefundIssued:
		return "data.sale_id"
	case EventPoolToppedUp, EventPoolSwept:
		return "data.pool"
	case EventFeeConfigChanged, EventAuthorizationChanged:
		return "data.scope"
	default:
		return ""
	}
}
