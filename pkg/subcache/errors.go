package subcache

import "errors"

var (
	ErrFailedToLoadState = errors.New("failed to load cached subscription state")
	ErrFailedToSaveState = errors.New("failed to save cached subscription state")
)
