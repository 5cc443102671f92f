package rtdn

import "errors"

var (
	ErrMalformedPayload = errors.New("malformed notification payload")
	ErrProcessingFailed = errors.New("failed to process notification")
)
