package domain

import "errors"

var (
	// ErrProductNotFound is returned when a barcode lookup finds no product
	ErrProductNotFound = errors.New("product not found")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrOracleFailure is returned when the analysis oracle cannot be reached or answers with an error
	ErrOracleFailure = errors.New("analysis oracle request failed")

	// ErrOracleMalformed is returned when the oracle body cannot be parsed even after repair
	ErrOracleMalformed = errors.New("analysis oracle returned malformed JSON")

	// ErrBarcodeLookupFailure is returned when the barcode database request fails
	ErrBarcodeLookupFailure = errors.New("barcode lookup failed")

	// ErrOCRFailure is returned when the OCR provider fails
	ErrOCRFailure = errors.New("OCR request failed")

	// ErrExtractionFailed is returned when no analyzable text could be extracted
	ErrExtractionFailed = errors.New("no analyzable text extracted")

	// ErrTooManyProducts is returned when a comparison exceeds the product limit
	ErrTooManyProducts = errors.New("too many products to compare")
)
