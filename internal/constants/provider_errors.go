package constants

// Data Provider Error Codes
// These constants define specific error scenarios for external data sources

const (
	ErrCodeNetworkError      = "NETWORK_ERROR"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeNotPublishedYet   = "NOT_PUBLISHED_YET"
	ErrCodeInvalidDataFormat = "INVALID_DATA_FORMAT"
	ErrCodeFileNotFound      = "FILE_NOT_FOUND"
	ErrCodeDecodingFailed    = "DECODING_FAILED"
)

var DataProviderErrorMessages = map[string]string{
	ErrCodeNetworkError:      "Unable to reach the upstream data source",
	ErrCodeRateLimited:       "Rate limit exceeded. Please try again later",
	ErrCodeNotPublishedYet:   "The requested daily file has not been published yet",
	ErrCodeInvalidDataFormat: "The data format is invalid",
	ErrCodeFileNotFound:      "The capture file was not found",
	ErrCodeDecodingFailed:    "Unable to decode the upstream payload",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := DataProviderErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
