package cvk

import (
	"slices"

	"github.com/gogpu/cvk/vk"
)

// ContextInfo describes the application to the driver and selects the
// features enabled on the instance. It is passed by value, so the copy held
// by the Context cannot change after Init.
type ContextInfo struct {
	AppName       string
	AppVersion    uint32
	EngineName    string
	EngineVersion uint32
	Version       APIVersion

	// Debugging enables the validation layer (when installed) and a debug
	// messenger that forwards driver messages to Logger.
	Debugging bool

	// Extensions lists additional instance extensions that must be present.
	Extensions []string

	// WindowSystem, when set, enables the surface extensions needed to
	// attach a window of that kind later.
	WindowSystem vk.WindowSystem
}

// DefaultContextInfo returns the info used when nothing else is configured.
func DefaultContextInfo() ContextInfo {
	return ContextInfo{
		AppName:    "Vulkan App",
		EngineName: "Engine",
		Version:    Vulkan10,
	}
}

// WithAppName returns a copy of ci with AppName set.
func (ci ContextInfo) WithAppName(name string) ContextInfo {
	ci.AppName = name
	return ci
}

// WithAppVersion returns a copy of ci with AppVersion set.
func (ci ContextInfo) WithAppVersion(v uint32) ContextInfo {
	ci.AppVersion = v
	return ci
}

// WithEngineName returns a copy of ci with EngineName set.
func (ci ContextInfo) WithEngineName(name string) ContextInfo {
	ci.EngineName = name
	return ci
}

// WithEngineVersion returns a copy of ci with EngineVersion set.
func (ci ContextInfo) WithEngineVersion(v uint32) ContextInfo {
	ci.EngineVersion = v
	return ci
}

// WithVersion returns a copy of ci requesting API version v.
func (ci ContextInfo) WithVersion(v APIVersion) ContextInfo {
	ci.Version = v
	return ci
}

// WithDebugging returns a copy of ci with Debugging set.
func (ci ContextInfo) WithDebugging(on bool) ContextInfo {
	ci.Debugging = on
	return ci
}

// WithExtensions returns a copy of ci with exts appended to Extensions.
// The receiver's slice is never modified.
func (ci ContextInfo) WithExtensions(exts ...string) ContextInfo {
	ci.Extensions = append(slices.Clip(ci.Extensions), exts...)
	return ci
}

// WithWindowSystem returns a copy of ci with WindowSystem set.
func (ci ContextInfo) WithWindowSystem(ws vk.WindowSystem) ContextInfo {
	ci.WindowSystem = ws
	return ci
}

func (ci ContextInfo) clone() ContextInfo {
	ci.Extensions = slices.Clone(ci.Extensions)
	return ci
}

// requiredExtensions returns the instance extensions ci needs, without
// duplicates, in a stable order.
func (ci ContextInfo) requiredExtensions() []string {
	var exts []string
	add := func(names ...string) {
		for _, n := range names {
			if n != "" && !slices.Contains(exts, n) {
				exts = append(exts, n)
			}
		}
	}
	if ci.Debugging {
		add(vk.ExtDebugUtilsExtensionName)
	}
	add(vk.SurfaceExtensions(ci.WindowSystem)...)
	add(ci.Extensions...)
	return exts
}
