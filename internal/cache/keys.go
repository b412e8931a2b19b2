package cache

import "time"

// DefaultTTL bounds staleness when an invalidation is missed: entries are
// never overwritten in place, only deleted or expired.
const DefaultTTL = time.Hour

// Key construction is centralized here so the read paths and the
// invalidation fan-out cannot drift out of sync.

const (
	AllOrdersKey        = "orders:all"
	AllProductsKey      = "products:all"
	FeaturedProductsKey = "featuredProducts"

	// DefaultSearchKey caches the empty-query search results.
	DefaultSearchKey = "search:{}"
)

func OrderKey(orderID string) string { return "orders:" + orderID }

func BuyerOrdersKey(buyerID string) string { return "buyerOrders:" + buyerID }

func SellerOrdersKey(sellerID string) string { return "sellerOrders:" + sellerID }

func ProductKey(productID string) string { return "products:" + productID }

func SellerProductsKey(sellerID string) string { return "sellerProducts:" + sellerID }
