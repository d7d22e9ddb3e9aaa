package gizmo

import "errors"

var (
	ErrNoPickSource     = errors.New("no camera is marked as pick source")
	ErrNoCursor         = errors.New("cursor is outside the window")
	ErrMissingComponent = errors.New("missing component")
	ErrNoIntersection   = errors.New("ray does not intersect")
	ErrDegenerateCamera = errors.New("camera matrix is not invertible")
	ErrBehindCamera     = errors.New("point is behind the camera")
	ErrUnknownButton    = errors.New("unknown mouse button")
)
