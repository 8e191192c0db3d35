package razorpay

import "errors"

var (
	// ErrInvalidRequest is returned when the request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnauthorized is returned when the API credentials are rejected
	ErrUnauthorized = errors.New("unauthorized")

	// ErrOrderFailed is returned when order creation fails
	ErrOrderFailed = errors.New("order creation failed")

	// ErrNetworkError is returned when the API is unreachable
	ErrNetworkError = errors.New("network error")
)
