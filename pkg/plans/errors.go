package plans

import "errors"

var (
	ErrUnknownPlan              = errors.New("unknown plan name")
	ErrFailedToLoadPlans        = errors.New("failed to load plans")
	ErrInvalidPlanConfiguration = errors.New("invalid plan configuration")
	ErrDuplicateProductID       = errors.New("duplicate product ID in plan configuration")
)
