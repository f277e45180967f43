package cvk

import (
	"fmt"

	"github.com/gogpu/cvk/vk"
)

// Surface is a presentable surface created from a platform window.
// It must be destroyed before the instance that created it.
type Surface struct {
	instance Instance
	handle   vk.SurfaceKHR
	system   vk.WindowSystem
}

// NewSurface creates a surface for w on inst. The instance must have been
// created with the surface extensions for w.System.
func NewSurface(inst Instance, w vk.WindowHandle) (*Surface, error) {
	if w.System == vk.WindowSystemNone {
		return nil, fmt.Errorf("%w: no window system", ErrSurfaceCreation)
	}
	h, err := inst.CreateSurface(w)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSurfaceCreation, w.System, err)
	}
	return &Surface{instance: inst, handle: h, system: w.System}, nil
}

// Handle returns the surface handle, or vk.NullSurface after Destroy.
func (s *Surface) Handle() vk.SurfaceKHR { return s.handle }

// WindowSystem returns the window system the surface was created for.
func (s *Surface) WindowSystem() vk.WindowSystem { return s.system }

// Destroy releases the surface. Calling it more than once is a no-op.
func (s *Surface) Destroy() {
	if s.handle == vk.NullSurface {
		return
	}
	s.instance.DestroySurface(s.handle)
	s.handle = vk.NullSurface
}
