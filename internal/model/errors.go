package model

import "errors"

// ErrNoCaptions is returned when a video has no caption track for the
// requested language. It is a result, not a failure, and callers report it
// separately from errors.
var ErrNoCaptions = errors.New("no captions found")
