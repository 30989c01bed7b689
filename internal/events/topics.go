package events

// Topic constants for domain events emitted by the storefront.
const (
	TopicCatalogChanged         = "catalog.changed"
	TopicPromotionChanged       = "promotion.changed"
	TopicCheckoutSummaryCreated = "checkout.summary_created"
)

// DefaultTopics returns the topics the worker subscribes to.
func DefaultTopics() []string {
	return []string{
		TopicCatalogChanged,
		TopicPromotionChanged,
		TopicCheckoutSummaryCreated,
	}
}
