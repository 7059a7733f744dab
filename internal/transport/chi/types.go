package chi

// ErrorCode is a machine-readable error code in ErrorResponse.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeValidationFailed       ErrorCode = "validation_failed"
	ErrorCodeKeyTooLong             ErrorCode = "key_too_long"
	ErrorCodeBucketNotFound         ErrorCode = "bucket_not_found"
	ErrorCodeDescriptorsUnavailable ErrorCode = "descriptors_unavailable"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// OrderItem is a matched order.
type OrderItem struct {
	UserID     int64 `json:"user_id"`
	OrderID    int64 `json:"order_id"`
	UnixTimeMs int64 `json:"unix_time_ms"`
}

// OrdersResponse is the body of GET /v1/orders.
type OrdersResponse struct {
	UserID     int64       `json:"user_id"`
	Orders     []OrderItem `json:"orders"`
	Candidates []string    `json:"candidates"`
	Fetched    int         `json:"fetched"`
	Truncated  bool        `json:"truncated"`
}

// CandidatesResponse is the body of GET /v1/candidates.
type CandidatesResponse struct {
	UserID     int64    `json:"user_id"`
	Candidates []string `json:"candidates"`
}

// ProbeResponse is the body of GET /v1/probe.
type ProbeResponse struct {
	UserID  int64    `json:"user_id"`
	Probe   string   `json:"probe"`
	Nibbles [4]uint8 `json:"nibbles"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	Descriptors int               `json:"descriptors"`
}
