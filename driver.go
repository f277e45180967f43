package cvk

import "github.com/gogpu/cvk/vk"

// Driver loads the graphics-driver entry point.
type Driver interface {
	Load() (Entry, error)
}

// Entry is the loaded driver entry point: the functions callable before an
// instance exists.
type Entry interface {
	// InstanceVersion reports the highest instance API version supported
	// by the loader.
	InstanceVersion() (vk.Version, error)
	EnumerateInstanceLayerProperties() ([]vk.LayerProperties, error)
	// EnumerateInstanceExtensionProperties lists the extensions provided by
	// layer, or the global extensions when layer is empty.
	EnumerateInstanceExtensionProperties(layer string) ([]vk.ExtensionProperties, error)
	CreateInstance(info *vk.InstanceCreateInfo) (Instance, error)
}

// Instance is a created driver instance and its instance-level functions.
type Instance interface {
	Handle() vk.Instance
	EnumeratePhysicalDevices() ([]vk.PhysicalDevice, error)
	GetPhysicalDeviceProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceProperties
	// DebugUtils loads the VK_EXT_debug_utils functions. The extension
	// must have been enabled at creation.
	DebugUtils() (DebugUtils, error)
	CreateSurface(w vk.WindowHandle) (vk.SurfaceKHR, error)
	DestroySurface(s vk.SurfaceKHR)
	Destroy()
}

// DebugUtils creates and destroys debug messengers.
type DebugUtils interface {
	CreateMessenger(info *vk.DebugUtilsMessengerCreateInfo) (vk.DebugUtilsMessengerEXT, error)
	DestroyMessenger(m vk.DebugUtilsMessengerEXT)
}

// VulkanDriver returns the Driver backed by the system Vulkan loader,
// reached through the goffi bindings of github.com/gogpu/wgpu/hal/vulkan/vk.
// The loader library is opened on Load, not here.
func VulkanDriver() Driver { return vulkanDriver{} }

type vulkanDriver struct{}

func (vulkanDriver) Load() (Entry, error) {
	e, err := vk.Load()
	if err != nil {
		return nil, err
	}
	return vulkanEntry{e}, nil
}

type vulkanEntry struct{ *vk.Entry }

func (e vulkanEntry) CreateInstance(info *vk.InstanceCreateInfo) (Instance, error) {
	inst, err := e.Entry.CreateInstance(info)
	if err != nil {
		return nil, err
	}
	return vulkanInstance{inst}, nil
}

type vulkanInstance struct{ *vk.InstanceFuncs }

func (i vulkanInstance) DebugUtils() (DebugUtils, error) {
	d, err := vk.NewDebugUtils(i.InstanceFuncs)
	if err != nil {
		return nil, err
	}
	return d, nil
}
