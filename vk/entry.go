package vk

import (
	"fmt"
	"runtime"
	"unsafe"

	raw "github.com/gogpu/wgpu/hal/vulkan/vk"
)

// Entry holds the global (instance-less) Vulkan entry points.
type Entry struct {
	cmds *raw.Commands

	// hasInstanceVersion is false on 1.0 loaders.
	hasInstanceVersion bool
}

// Load opens the Vulkan loader library and resolves the global entry points.
// The library is opened once per process; later calls reuse it.
func Load() (*Entry, error) {
	if err := raw.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoaderNotFound, err)
	}

	cmds := raw.NewCommands()
	if err := cmds.LoadGlobal(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingFunction, err)
	}
	for _, name := range []string{"vkEnumerateInstanceLayerProperties", "vkEnumerateInstanceExtensionProperties"} {
		if raw.GetInstanceProcAddr(NullInstance, name) == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingFunction, name)
		}
	}

	e := &Entry{
		cmds:               cmds,
		hasInstanceVersion: raw.GetInstanceProcAddr(NullInstance, "vkEnumerateInstanceVersion") != nil,
	}
	slogger().Debug("vk: loader opened")
	return e, nil
}

// InstanceVersion reports the highest instance-level API version supported
// by the loader. Loaders without vkEnumerateInstanceVersion are 1.0.
func (e *Entry) InstanceVersion() (Version, error) {
	if !e.hasInstanceVersion {
		return APIVersion10, nil
	}
	var v uint32
	if err := check(e.cmds.EnumerateInstanceVersion(&v)); err != nil {
		return 0, err
	}
	return Version(v), nil
}

// EnumerateInstanceLayerProperties lists the available instance layers.
func (e *Entry) EnumerateInstanceLayerProperties() ([]LayerProperties, error) {
	for {
		var count uint32
		if err := check(e.cmds.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, nil
		}
		props := make([]raw.LayerProperties, count)
		res := Result(e.cmds.EnumerateInstanceLayerProperties(&count, &props[0]))
		if res == Incomplete {
			continue
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		out := make([]LayerProperties, count)
		for i := range out {
			out[i] = LayerProperties{
				Name:                  goString(props[i].LayerName[:]),
				SpecVersion:           Version(props[i].SpecVersion),
				ImplementationVersion: props[i].ImplementationVersion,
				Description:           goString(props[i].Description[:]),
			}
		}
		return out, nil
	}
}

// EnumerateInstanceExtensionProperties lists the instance extensions provided
// by the implementation (layer == "") or by the named layer.
func (e *Entry) EnumerateInstanceExtensionProperties(layer string) ([]ExtensionProperties, error) {
	var name *byte
	if layer != "" {
		name = cString(layer)
	}
	pLayer := uintptr(unsafe.Pointer(name))
	defer runtime.KeepAlive(name)

	for {
		var count uint32
		if err := check(e.cmds.EnumerateInstanceExtensionProperties(pLayer, &count, nil)); err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, nil
		}
		props := make([]raw.ExtensionProperties, count)
		res := Result(e.cmds.EnumerateInstanceExtensionProperties(pLayer, &count, &props[0]))
		if res == Incomplete {
			continue
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		out := make([]ExtensionProperties, count)
		for i := range out {
			out[i] = ExtensionProperties{
				Name:        goString(props[i].ExtensionName[:]),
				SpecVersion: props[i].SpecVersion,
			}
		}
		return out, nil
	}
}

// CreateInstance creates a VkInstance and resolves its instance-level
// entry points.
func (e *Entry) CreateInstance(info *InstanceCreateInfo) (*InstanceFuncs, error) {
	appName := cString(info.ApplicationName)
	engineName := cString(info.EngineName)
	app := &raw.ApplicationInfo{
		SType:              raw.StructureTypeApplicationInfo,
		PApplicationName:   uintptr(unsafe.Pointer(appName)),
		ApplicationVersion: info.ApplicationVersion,
		PEngineName:        uintptr(unsafe.Pointer(engineName)),
		EngineVersion:      info.EngineVersion,
		ApiVersion:         uint32(info.APIVersion),
	}

	layers := cStringArray(info.EnabledLayers)
	exts := cStringArray(info.EnabledExtensions)
	ci := &raw.InstanceCreateInfo{
		SType:                   raw.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        app,
		EnabledLayerCount:       uint32(len(info.EnabledLayers)),
		PpEnabledLayerNames:     layers.ptr(),
		EnabledExtensionCount:   uint32(len(info.EnabledExtensions)),
		PpEnabledExtensionNames: exts.ptr(),
	}

	var cb callbackID
	var dbg *raw.DebugUtilsMessengerCreateInfoEXT
	if info.DebugMessenger != nil {
		cb = registerCallback(info.DebugMessenger.Callback)
		dbg = newDebugUtilsMessengerCreateInfo(info.DebugMessenger, cb)
		ci.PNext = (*uintptr)(unsafe.Pointer(dbg))
	}

	var handle Instance
	res := e.cmds.CreateInstance(ci, nil, &handle)
	runtime.KeepAlive(appName)
	runtime.KeepAlive(engineName)
	runtime.KeepAlive(layers)
	runtime.KeepAlive(exts)
	runtime.KeepAlive(dbg)
	if err := check(res); err != nil {
		unregisterCallback(cb)
		return nil, err
	}

	inst, err := newInstanceFuncs(e, handle, cb)
	if err != nil {
		unregisterCallback(cb)
		return nil, err
	}
	slogger().Debug("vk: instance created",
		"api", info.APIVersion, "layers", info.EnabledLayers, "extensions", info.EnabledExtensions)
	return inst, nil
}
