package errors

import "net/http"

// ErrorCode identifies a specific failure category.  Codes are stable strings
// grouped by module prefix so that dashboards and log queries can aggregate
// failures without parsing messages.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_015"
)

// Discovery module error codes.
const (
	ErrCodeDiscoveryMissingAPIKey ErrorCode = "DISC_001"
	ErrCodeDiscoveryTransport     ErrorCode = "DISC_002"
	ErrCodeDiscoveryAuthFailed    ErrorCode = "DISC_003"
	ErrCodeDiscoverySchema        ErrorCode = "DISC_004"
	ErrCodeDiscoveryZeroResults   ErrorCode = "DISC_005"
	ErrCodeDiscoveryRunNotFound   ErrorCode = "DISC_006"
	ErrCodeDiscoveryPassFailed    ErrorCode = "DISC_007"
)

// Scoring module error codes.
const (
	ErrCodeScoringWeightsInvalid ErrorCode = "SCORE_001"
	ErrCodeScoringFailed         ErrorCode = "SCORE_002"
)

// Patent module error codes.
const (
	ErrCodePatentNotFound      ErrorCode = "PAT_001"
	ErrCodePatentNumberInvalid ErrorCode = "PAT_002"
	ErrCodePatentParseFailed   ErrorCode = "PAT_003"
)

// Financial model error codes.
const (
	ErrCodeFinanceBenchmarkMissing ErrorCode = "FIN_001"
	ErrCodeFinanceModelFailed      ErrorCode = "FIN_002"
	ErrCodeFinanceSnapshotStale    ErrorCode = "FIN_003"
)

// Reporting module error codes.
const (
	ErrCodeReportNotFound         ErrorCode = "RPT_001"
	ErrCodeReportGenerationFailed ErrorCode = "RPT_002"
	ErrCodeReportUploadFailed     ErrorCode = "RPT_003"
)

// External data source error codes.
const (
	ErrCodeSourceUnavailable ErrorCode = "SRC_001"
	ErrCodeSourceRateLimited ErrorCode = "SRC_002"
	ErrCodeSourceAuthFailed  ErrorCode = "SRC_003"
	ErrCodeSourceParseError  ErrorCode = "SRC_004"
)

// Short aliases used pervasively at call sites.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeUnauthorized = ErrCodeUnauthorized
	CodeForbidden    = ErrCodeForbidden
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.  Codes missing
// from the map resolve to 500 via HTTPStatus.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeDiscoveryMissingAPIKey: http.StatusPreconditionFailed,
	ErrCodeDiscoveryTransport:     http.StatusBadGateway,
	ErrCodeDiscoveryAuthFailed:    http.StatusBadGateway,
	ErrCodeDiscoverySchema:        http.StatusBadGateway,
	ErrCodeDiscoveryZeroResults:   http.StatusNotFound,
	ErrCodeDiscoveryRunNotFound:   http.StatusNotFound,

	ErrCodeScoringWeightsInvalid: http.StatusBadRequest,

	ErrCodePatentNotFound:      http.StatusNotFound,
	ErrCodePatentNumberInvalid: http.StatusBadRequest,

	ErrCodeReportNotFound: http.StatusNotFound,

	ErrCodeSourceUnavailable: http.StatusBadGateway,
	ErrCodeSourceRateLimited: http.StatusTooManyRequests,
	ErrCodeSourceAuthFailed:  http.StatusBadGateway,
	ErrCodeSourceParseError:  http.StatusBadGateway,
}

// HTTPStatus returns the HTTP status for a code, defaulting to 500.
func HTTPStatus(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
