package cache

// Keys for storefront payloads. Bump the version suffix when the cached
// shape changes.
const (
	KeyCatalogTree    = "catalog:tree:v1"
	KeyDiscountConfig = "discount:config:v1"
)
