package spawn

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/respawn/pkg/geom"
	"github.com/ajitpratap0/respawn/pkg/logger"
)

// Reference tracks the position spawn distances are measured from,
// usually the player. The last Set wins.
type Reference struct {
	pos    geom.Vec3
	set    bool
	warned bool
	logger *zap.Logger
}

// NewReference returns a reference that has not been set. A nil logger
// uses the global one.
func NewReference(l *zap.Logger) *Reference {
	if l == nil {
		l = logger.Get()
	}
	return &Reference{logger: l}
}

// Set updates the tracked position.
func (r *Reference) Set(v geom.Vec3) {
	r.pos = v
	r.set = true
}

// IsSet reports whether Set was ever called.
func (r *Reference) IsSet() bool { return r.set }

// Position returns the tracked position. Before the first Set it returns the
// origin so selection keeps working, and logs that once.
func (r *Reference) Position() geom.Vec3 {
	if !r.set {
		if !r.warned {
			r.warned = true
			r.logger.Error("spawn reference position was never set, using origin")
		}
		return geom.Zero
	}
	return r.pos
}
