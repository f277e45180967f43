package vk

import (
	"fmt"
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
	raw "github.com/gogpu/wgpu/hal/vulkan/vk"
)

// InstanceFuncs is a created VkInstance together with its instance-level
// entry points.
type InstanceFuncs struct {
	entry  *Entry
	handle Instance
	cmds   *raw.Commands

	// callback registered for the pNext messenger chained at creation.
	createCallback callbackID

	// vkGetPhysicalDeviceProperties, called directly through goffi.
	getPhysicalDeviceProperties unsafe.Pointer
}

func newInstanceFuncs(e *Entry, handle Instance, cb callbackID) (*InstanceFuncs, error) {
	cmds := raw.NewCommands()
	if err := cmds.LoadInstance(handle); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingFunction, err)
	}
	inst := &InstanceFuncs{entry: e, handle: handle, cmds: cmds, createCallback: cb}

	if raw.GetInstanceProcAddr(handle, "vkDestroyInstance") == nil {
		// Without vkDestroyInstance the handle can only leak.
		return nil, fmt.Errorf("%w: vkDestroyInstance", ErrMissingFunction)
	}
	for _, name := range []string{"vkEnumeratePhysicalDevices", "vkGetPhysicalDeviceProperties"} {
		if raw.GetInstanceProcAddr(handle, name) == nil {
			inst.Destroy()
			return nil, fmt.Errorf("%w: %s", ErrMissingFunction, name)
		}
	}
	inst.getPhysicalDeviceProperties = raw.GetInstanceProcAddr(handle, "vkGetPhysicalDeviceProperties")
	return inst, nil
}

// Handle returns the raw VkInstance.
func (i *InstanceFuncs) Handle() Instance { return i.handle }

// Entry returns the entry the instance was created from.
func (i *InstanceFuncs) Entry() *Entry { return i.entry }

// Destroy destroys the instance. Every object created from it must already
// be destroyed. Destroy is a no-op on an already destroyed instance.
func (i *InstanceFuncs) Destroy() {
	if i.handle == NullInstance {
		return
	}
	i.cmds.DestroyInstance(i.handle, nil)
	i.handle = NullInstance
	unregisterCallback(i.createCallback)
	i.createCallback = 0
}

// EnumeratePhysicalDevices lists the physical devices visible to the instance.
func (i *InstanceFuncs) EnumeratePhysicalDevices() ([]PhysicalDevice, error) {
	for {
		var count uint32
		if err := check(i.cmds.EnumeratePhysicalDevices(i.handle, &count, nil)); err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, nil
		}
		devices := make([]PhysicalDevice, count)
		res := Result(i.cmds.EnumeratePhysicalDevices(i.handle, &count, &devices[0]))
		if res == Incomplete {
			continue
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return devices[:count], nil
	}
}

// GetPhysicalDeviceProperties returns the identifying properties of pd.
func (i *InstanceFuncs) GetPhysicalDeviceProperties(pd PhysicalDevice) PhysicalDeviceProperties {
	var props raw.PhysicalDeviceProperties
	pProps := &props
	args := [2]unsafe.Pointer{
		unsafe.Pointer(&pd),
		unsafe.Pointer(&pProps),
	}
	if err := ffi.CallFunction(&raw.SigVoidHandlePtr, i.getPhysicalDeviceProperties, nil, args[:]); err != nil {
		slogger().Warn("vk: vkGetPhysicalDeviceProperties failed", "err", err)
	}
	return PhysicalDeviceProperties{
		APIVersion:    Version(props.ApiVersion),
		DriverVersion: props.DriverVersion,
		VendorID:      props.VendorID,
		DeviceID:      props.DeviceID,
		DeviceType:    PhysicalDeviceType(props.DeviceType),
		DeviceName:    goString(props.DeviceName[:]),
	}
}

// DestroySurface destroys a surface created with CreateSurface.
func (i *InstanceFuncs) DestroySurface(s SurfaceKHR) {
	if s == NullSurface {
		return
	}
	i.cmds.DestroySurfaceKHR(i.handle, s, nil)
}

func (i *InstanceFuncs) String() string {
	return fmt.Sprintf("VkInstance(%#x)", uintptr(i.handle))
}
