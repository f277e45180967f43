package cvk

import (
	"slices"
	"sync"

	"github.com/gogpu/cvk/vk"
)

// fakeDriver is a Driver that records every call it receives.
type fakeDriver struct {
	mu    sync.Mutex
	calls []string

	loadErr      error
	versionErr   error
	version      vk.Version
	layers       []vk.LayerProperties
	extensions   map[string][]string // layer ("" for global) -> names
	createErr    error
	debugErr     error
	messengerErr error
	devicesErr   error
	surfaceErr   error
	devices      []vk.PhysicalDeviceProperties

	created   *vk.InstanceCreateInfo
	messenger *vk.DebugUtilsMessengerCreateInfo
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		version: vk.APIVersion13,
		layers: []vk.LayerProperties{
			{Name: vk.LayerKhronosValidation, SpecVersion: vk.APIVersion13},
		},
		extensions: map[string][]string{
			"": {
				vk.KhrSurfaceExtensionName,
				vk.KhrXlibSurfaceExtensionName,
				vk.KhrWaylandSurfaceExtensionName,
			},
			vk.LayerKhronosValidation: {vk.ExtDebugUtilsExtensionName},
		},
		devices: []vk.PhysicalDeviceProperties{
			{DeviceName: "Fake GPU", DeviceType: vk.PhysicalDeviceTypeDiscreteGPU, APIVersion: vk.APIVersion13},
		},
	}
}

func (d *fakeDriver) record(call string) {
	d.mu.Lock()
	d.calls = append(d.calls, call)
	d.mu.Unlock()
}

func (d *fakeDriver) log() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.calls)
}

func (d *fakeDriver) Load() (Entry, error) {
	d.record("load")
	if d.loadErr != nil {
		return nil, d.loadErr
	}
	return fakeEntry{d}, nil
}

type fakeEntry struct{ d *fakeDriver }

func (e fakeEntry) InstanceVersion() (vk.Version, error) {
	e.d.record("instance_version")
	return e.d.version, e.d.versionErr
}

func (e fakeEntry) EnumerateInstanceLayerProperties() ([]vk.LayerProperties, error) {
	e.d.record("enumerate_layers")
	return slices.Clone(e.d.layers), nil
}

func (e fakeEntry) EnumerateInstanceExtensionProperties(layer string) ([]vk.ExtensionProperties, error) {
	e.d.record("enumerate_extensions:" + layer)
	var out []vk.ExtensionProperties
	for _, name := range e.d.extensions[layer] {
		out = append(out, vk.ExtensionProperties{Name: name, SpecVersion: 1})
	}
	return out, nil
}

func (e fakeEntry) CreateInstance(info *vk.InstanceCreateInfo) (Instance, error) {
	e.d.record("create_instance")
	if e.d.createErr != nil {
		return nil, e.d.createErr
	}
	e.d.created = info
	return fakeInstance{e.d}, nil
}

type fakeInstance struct{ d *fakeDriver }

func (i fakeInstance) Handle() vk.Instance { return vk.Instance(0x1000) }

func (i fakeInstance) EnumeratePhysicalDevices() ([]vk.PhysicalDevice, error) {
	i.d.record("enumerate_physical_devices")
	if i.d.devicesErr != nil {
		return nil, i.d.devicesErr
	}
	pds := make([]vk.PhysicalDevice, len(i.d.devices))
	for n := range pds {
		pds[n] = vk.PhysicalDevice(n + 1)
	}
	return pds, nil
}

func (i fakeInstance) GetPhysicalDeviceProperties(pd vk.PhysicalDevice) vk.PhysicalDeviceProperties {
	i.d.record("get_physical_device_properties")
	return i.d.devices[pd-1]
}

func (i fakeInstance) DebugUtils() (DebugUtils, error) {
	i.d.record("load_debug_utils")
	if i.d.debugErr != nil {
		return nil, i.d.debugErr
	}
	return fakeDebugUtils{i.d}, nil
}

func (i fakeInstance) CreateSurface(w vk.WindowHandle) (vk.SurfaceKHR, error) {
	i.d.record("create_surface:" + w.System.String())
	if i.d.surfaceErr != nil {
		return vk.NullSurface, i.d.surfaceErr
	}
	return vk.SurfaceKHR(w.Window), nil
}

func (i fakeInstance) DestroySurface(vk.SurfaceKHR) { i.d.record("destroy_surface") }

func (i fakeInstance) Destroy() { i.d.record("destroy_instance") }

type fakeDebugUtils struct{ d *fakeDriver }

func (u fakeDebugUtils) CreateMessenger(info *vk.DebugUtilsMessengerCreateInfo) (vk.DebugUtilsMessengerEXT, error) {
	u.d.record("create_messenger")
	if u.d.messengerErr != nil {
		return vk.NullMessenger, u.d.messengerErr
	}
	u.d.messenger = info
	return vk.DebugUtilsMessengerEXT(0x2000), nil
}

func (u fakeDebugUtils) DestroyMessenger(vk.DebugUtilsMessengerEXT) { u.d.record("destroy_messenger") }
