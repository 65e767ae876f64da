package peripheral

import "errors"

var ErrInvalidEdge = errors.New("invalid trigger edge")
