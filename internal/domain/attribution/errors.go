package attribution

import "errors"

var (
	ErrInvalidStep   = errors.New("unknown funnel step")
	ErrMissingClient = errors.New("missing client id")
)
