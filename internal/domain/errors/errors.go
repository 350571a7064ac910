package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrAssetUnknown         = errors.New("asset not present in route graph")
	ErrNoRoute              = errors.New("no route between assets")
	ErrMaxHopsExceeded      = errors.New("route exceeds maximum hop count")
	ErrMaxCrossChainHops    = errors.New("route exceeds maximum cross-chain hop count")
	ErrProviderDisallowed   = errors.New("provider not allowed for this route")
	ErrCircularRoute        = errors.New("route revisits an asset")
	ErrQuoteFailed          = errors.New("failed to quote route step")
	ErrNetwork              = errors.New("provider request failed")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity for amount")
	ErrHighPriceImpact      = errors.New("price impact above acceptable threshold")
	ErrInvalidState         = errors.New("invalid quote state transition")
	ErrUnsupportedAsset     = errors.New("unsupported asset or chain")
	ErrProviderExcluded     = errors.New("provider excluded from swap operations")
)

// Error kind codes surfaced in API responses. Stable contract strings.
const (
	CodeValidation          = "VALIDATION"
	CodeAssetUnknown        = "ASSET_UNKNOWN"
	CodeNoRoute             = "NO_ROUTE"
	CodeMaxHopsExceeded     = "MAX_HOPS_EXCEEDED"
	CodeMaxXChainExceeded   = "MAX_XCHAIN_EXCEEDED"
	CodeProviderDisallowed  = "PROVIDER_DISALLOWED"
	CodeCircular            = "CIRCULAR"
	CodeQuoteFailed         = "QUOTE_FAILED"
	CodeNetwork             = "NETWORK"
	CodeInsufficientLiquidity = "INSUFFICIENT_LIQUIDITY"
	CodeHighPriceImpact     = "HIGH_PRICE_IMPACT"
	CodeInvalidState        = "INVALID_STATE"
	CodeUnsupportedAsset    = "UNSUPPORTED_ASSET_OR_CHAIN"
	CodeNotFound            = "NOT_FOUND"
	CodeInternal            = "INTERNAL"
)

// AppError carries an HTTP status and a stable error code alongside the
// human-readable message.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error.
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{Status: status, Code: code, Message: message, Err: err}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidation, message, ErrInvalidInput)
}

func InvalidState(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidState, message, ErrInvalidState)
}

func UnsupportedAsset(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeUnsupportedAsset, message, ErrUnsupportedAsset)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternal, "internal server error", err)
}

// RoutingCode maps a pathfinder or aggregator sentinel to its contract code.
func RoutingCode(err error) string {
	switch {
	case errors.Is(err, ErrAssetUnknown):
		return CodeAssetUnknown
	case errors.Is(err, ErrNoRoute):
		return CodeNoRoute
	case errors.Is(err, ErrMaxHopsExceeded):
		return CodeMaxHopsExceeded
	case errors.Is(err, ErrMaxCrossChainHops):
		return CodeMaxXChainExceeded
	case errors.Is(err, ErrProviderDisallowed), errors.Is(err, ErrProviderExcluded):
		return CodeProviderDisallowed
	case errors.Is(err, ErrCircularRoute):
		return CodeCircular
	case errors.Is(err, ErrQuoteFailed):
		return CodeQuoteFailed
	case errors.Is(err, ErrInsufficientLiquidity):
		return CodeInsufficientLiquidity
	case errors.Is(err, ErrHighPriceImpact):
		return CodeHighPriceImpact
	case errors.Is(err, ErrNetwork):
		return CodeNetwork
	case errors.Is(err, ErrUnsupportedAsset):
		return CodeUnsupportedAsset
	case errors.Is(err, ErrInvalidInput):
		return CodeValidation
	default:
		return CodeInternal
	}
}
