package errors

// Stable error codes returned to the storefront client.
// Format: CATEGORY_SPECIFIC_DETAIL; the frontend maps codes to copy.

const (
	// ==================== Catalog (CATALOG_) ====================
	CatalogProductNotFound = "CATALOG_PRODUCT_NOT_FOUND"
	CatalogInvalidCategory = "CATALOG_INVALID_CATEGORY"

	// ==================== Cart (CART_) ====================
	CartLineNotFound    = "CART_LINE_NOT_FOUND"
	CartInvalidQuantity = "CART_INVALID_QUANTITY"
	CartEmpty           = "CART_EMPTY"

	// ==================== Coupon (COUPON_) ====================
	CouponInvalid = "COUPON_INVALID"

	// ==================== Checkout (CHECKOUT_) ====================
	CheckoutConsentRequired     = "CHECKOUT_CONSENT_REQUIRED"
	CheckoutInFlight            = "CHECKOUT_IN_FLIGHT"
	CheckoutGatewayUnavailable  = "CHECKOUT_GATEWAY_UNAVAILABLE"
	CheckoutSignatureMismatch   = "CHECKOUT_SIGNATURE_MISMATCH"
	CheckoutNotInFlight         = "CHECKOUT_NOT_IN_FLIGHT"
	CheckoutInvalidAmount       = "CHECKOUT_INVALID_AMOUNT"

	// ==================== Session (SESSION_) ====================
	SessionMissing = "SESSION_MISSING"
	SessionInvalid = "SESSION_INVALID"

	// ==================== Contact (CONTACT_) ====================
	ContactMissingFields = "CONTACT_MISSING_FIELDS"
	ContactRelayFailed   = "CONTACT_RELAY_FAILED"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError = "INTERNAL_SERVER_ERROR"
	InternalStoreError  = "INTERNAL_STORE_ERROR"
)
