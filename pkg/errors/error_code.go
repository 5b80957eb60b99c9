package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199)
	ErrCodeInvalidConfiguration ErrorCode = 100
	ErrCodeInvalidParameter     ErrorCode = 101
	ErrCodeNoStrategies         ErrorCode = 102
	ErrCodeVectorLengthMismatch ErrorCode = 103
	ErrCodeInvalidWindow        ErrorCode = 104
	ErrCodeInvalidWeights       ErrorCode = 105
	ErrCodeUnknownPolicy        ErrorCode = 106

	// Series/data errors (200-299)
	ErrCodeSeriesMisaligned   ErrorCode = 200
	ErrCodeDuplicateDate      ErrorCode = 201
	ErrCodeUnorderedDates     ErrorCode = 202
	ErrCodeMissingAsset       ErrorCode = 203
	ErrCodeInsufficientData   ErrorCode = 204
	ErrCodeEmptySeries        ErrorCode = 205
	ErrCodeNonPositivePrice   ErrorCode = 206
	ErrCodeDataSourceNotReady ErrorCode = 207

	// Policy errors (300-399)
	ErrCodePolicyFailed      ErrorCode = 300
	ErrCodeOptimizerDiverged ErrorCode = 301

	// Simulation errors (400-499)
	ErrCodeSimulationAborted ErrorCode = 400
	ErrCodeNoPriceTable      ErrorCode = 401
	ErrCodeResultsNotReady   ErrorCode = 402

	// Market data errors (500-599)
	ErrCodeMarketDataFetchFailed ErrorCode = 500
	ErrCodeMarketDataWriteFailed ErrorCode = 501
	ErrCodeQueryFailed           ErrorCode = 502
	ErrCodeInvalidInterval       ErrorCode = 503
)
