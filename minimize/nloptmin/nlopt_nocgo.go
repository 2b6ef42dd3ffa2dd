//go:build no_cgo

package nloptmin

import (
	"context"

	"github.com/akmonengine/cio/minimize"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Minimizer mimics the type in the cgo compiled code
type Minimizer struct{}

// New is not supported on no_cgo builds
func New(settings minimize.Settings, logger *zap.Logger) (*Minimizer, error) {
	return nil, errors.New("nlopt is not supported on this build")
}

// Minimize refuses to minimize problems without cgo
func (m *Minimizer) Minimize(ctx context.Context, problem minimize.Problem, x0 []float64) (*minimize.Result, error) {
	return nil, errors.New("cannot minimize without cgo")
}
