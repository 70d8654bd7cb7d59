package utils

// ContextKey is the type used for request-scoped context values
type ContextKey string

// Context keys carried through request handling
const (
	RequestIDKey  ContextKey = "X-Request-ID"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	CancelFuncKey ContextKey = "cancel_func"
)
