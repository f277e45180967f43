// Package probe lists GPU adapters through the gogpu HAL.
//
// It is an independent check of what the system driver exposes: the HAL
// opens its own instance, enumerates adapters and closes it again, without
// touching the process-wide cvk context.
package probe

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Registers the Vulkan backend with hal.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// ErrNoBackend is returned when the HAL has no Vulkan backend registered.
var ErrNoBackend = errors.New("probe: vulkan backend not available")

// InstanceFactory creates HAL instances. Both hal backends and the noop
// API satisfy it.
type InstanceFactory interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// Adapter describes one adapter reported by the HAL.
type Adapter struct {
	Name       string
	DeviceType gputypes.DeviceType
}

// Kind returns a short label for the adapter's device type.
func (a Adapter) Kind() string {
	switch a.DeviceType {
	case gputypes.DeviceTypeDiscreteGPU:
		return "discrete"
	case gputypes.DeviceTypeIntegratedGPU:
		return "integrated"
	default:
		return fmt.Sprint(a.DeviceType)
	}
}

func (a Adapter) String() string {
	return a.Name + " (" + a.Kind() + ")"
}

// Vulkan returns the registered HAL Vulkan backend.
func Vulkan() (InstanceFactory, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, ErrNoBackend
	}
	return backend, nil
}

// Adapters creates an instance from f, lists its adapters and destroys the
// instance. Discrete and integrated GPUs come first.
func Adapters(f InstanceFactory) ([]Adapter, error) {
	instance, err := f.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("probe: create instance: %w", err)
	}
	defer instance.Destroy()

	exposed := instance.EnumerateAdapters(nil)
	out := make([]Adapter, 0, len(exposed))
	for i := range exposed {
		out = append(out, Adapter{
			Name:       exposed[i].Info.Name,
			DeviceType: exposed[i].Info.DeviceType,
		})
	}
	sortAdapters(out)
	return out, nil
}

func rank(t gputypes.DeviceType) int {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return 0
	case gputypes.DeviceTypeIntegratedGPU:
		return 1
	default:
		return 2
	}
}

// sortAdapters orders by device type rank, keeping enumeration order
// within a rank.
func sortAdapters(as []Adapter) {
	slices.SortStableFunc(as, func(a, b Adapter) int {
		return rank(a.DeviceType) - rank(b.DeviceType)
	})
}
