package bridge

import (
	"encoding/json"
	"fmt"
)

// ErrorCode is the closed taxonomy of host callback failures. Unknown codes
// normalize to CodeBridgeError so the UI never renders arbitrary strings.
type ErrorCode string

const (
	CodeRegisterBusy      ErrorCode = "REGISTER_BUSY"
	CodeInvalidRole       ErrorCode = "INVALID_ROLE"
	CodeNotOrgMember      ErrorCode = "NOT_ORG_MEMBER"
	CodeStaleSession      ErrorCode = "STALE_SESSION"
	CodeStaleTransaction  ErrorCode = "STALE_TRANSACTION"
	CodeDuplicateAction   ErrorCode = "DUPLICATE_ACTION"
	CodeInvalidPayload    ErrorCode = "INVALID_PAYLOAD"
	CodePriceMismatch     ErrorCode = "PRICE_MISMATCH"
	CodeDiscountInvalid   ErrorCode = "DISCOUNT_INVALID"
	CodeInsufficientStock ErrorCode = "INSUFFICIENT_STOCK"
	CodeTierNotEligible   ErrorCode = "TIER_NOT_ELIGIBLE"
	CodeRateLimited       ErrorCode = "RATE_LIMITED"
	CodeInternalError     ErrorCode = "INTERNAL_ERROR"
	CodeBridgeError       ErrorCode = "BRIDGE_ERROR"
	CodeHTTPError         ErrorCode = "HTTP_ERROR"
	CodeTimeout           ErrorCode = "TIMEOUT"
	CodeFetchError        ErrorCode = "FETCH_ERROR"
)

type errorInfo struct {
	retryable      bool
	defaultMessage string
}

var catalog = map[ErrorCode]errorInfo{
	CodeRegisterBusy:      {true, "Register is currently busy."},
	CodeInvalidRole:       {false, "Role is not valid for this action."},
	CodeNotOrgMember:      {false, "Organization membership is required."},
	CodeStaleSession:      {false, "Session has expired. Reopen the register."},
	CodeStaleTransaction:  {false, "Transaction is no longer active."},
	CodeDuplicateAction:   {false, "Duplicate action ignored."},
	CodeInvalidPayload:    {false, "Request payload is invalid."},
	CodePriceMismatch:     {false, "Price mismatch detected."},
	CodeDiscountInvalid:   {false, "Discount is no longer valid."},
	CodeInsufficientStock: {false, "Not enough stock for this item."},
	CodeTierNotEligible:   {false, "Register tier upgrade is not eligible."},
	CodeRateLimited:       {true, "Rate limit exceeded. Please retry shortly."},
	CodeInternalError:     {false, "Internal server error."},
	CodeBridgeError:       {false, "Host bridge error."},
	CodeHTTPError:         {true, "Host callback HTTP request failed."},
	CodeTimeout:           {true, "Host callback timed out."},
	CodeFetchError:        {true, "Host callback network failure."},
}

// IsKnownCode reports whether a code belongs to the closed catalog.
func IsKnownCode(code ErrorCode) bool {
	_, ok := catalog[code]
	return ok
}

// NormalizeCode maps unknown codes to the fallback.
func NormalizeCode(code ErrorCode, fallback ErrorCode) ErrorCode {
	if IsKnownCode(code) {
		return code
	}
	return fallback
}

// Retryable reports whether an action failing with this code is worth a retry.
func Retryable(code ErrorCode) bool {
	return catalog[NormalizeCode(code, CodeBridgeError)].retryable
}

// DefaultMessage returns the human message shown when the host sent none.
func DefaultMessage(code ErrorCode) string {
	return catalog[NormalizeCode(code, CodeBridgeError)].defaultMessage
}

// Error is a normalized host callback failure. Always a value, never a panic.
// Details carries code-specific structure (e.g. the INSUFFICIENT_STOCK
// category breakdown) and is decoded by the consumer.
type Error struct {
	Code    ErrorCode       `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// Normalize fills in the catalog defaults for missing or unknown fields.
func Normalize(e Error, fallback ErrorCode) Error {
	code := NormalizeCode(e.Code, fallback)
	message := e.Message
	if message == "" {
		message = DefaultMessage(code)
	}
	return Error{Code: code, Message: message, Details: e.Details}
}

// Banner formats an error the way the UI surfaces it: "[CODE] message".
func (e Error) Banner() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}
