package cio

import "github.com/pkg/errors"

var (
	ErrVectorLength = errors.New("decision vector length does not match the world layout")
	ErrBoundsLength = errors.New("bounds length does not match the world layout")
	ErrInvalidWorld = errors.New("invalid world")
	ErrGoalCount    = errors.New("one goal is required per manipulated object")
	ErrNoPhases     = errors.New("phase schedule is empty")
	ErrPhaseIndex   = errors.New("phase index out of the schedule")
	ErrBadWeights   = errors.New("phase weights must be finite and non-negative")
	ErrBadParams    = errors.New("invalid parameters")
)
