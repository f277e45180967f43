package vk

import (
	"fmt"
	"runtime"

	raw "github.com/gogpu/wgpu/hal/vulkan/vk"
)

// surfaceCreateFuncs names the platform create function for each window system.
var surfaceCreateFuncs = map[WindowSystem]string{
	WindowSystemXlib:    "vkCreateXlibSurfaceKHR",
	WindowSystemXcb:     "vkCreateXcbSurfaceKHR",
	WindowSystemWayland: "vkCreateWaylandSurfaceKHR",
	WindowSystemWin32:   "vkCreateWin32SurfaceKHR",
	WindowSystemMetal:   "vkCreateMetalSurfaceEXT",
}

// CreateSurface creates a presentable surface for a platform window. The
// instance must have been created with SurfaceExtensions(w.System).
func (i *InstanceFuncs) CreateSurface(w WindowHandle) (SurfaceKHR, error) {
	name, ok := surfaceCreateFuncs[w.System]
	if !ok {
		return NullSurface, fmt.Errorf("%w: %v", ErrUnsupportedWindowSystem, w.System)
	}
	if raw.GetInstanceProcAddr(i.handle, name) == nil {
		return NullSurface, fmt.Errorf("%w: %s", ErrMissingFunction, name)
	}

	var (
		s    SurfaceKHR
		res  raw.Result
		info any
	)
	switch w.System {
	case WindowSystemXlib:
		ci := &raw.XlibSurfaceCreateInfoKHR{
			SType:  raw.StructureTypeXlibSurfaceCreateInfoKhr,
			Dpy:    (*raw.XlibDisplay)(ptrFromUintptr(w.Display)),
			Window: raw.XlibWindow(w.Window),
		}
		info = ci
		res = i.cmds.CreateXlibSurfaceKHR(i.handle, ci, nil, &s)
	case WindowSystemXcb:
		ci := &raw.XcbSurfaceCreateInfoKHR{
			SType:      raw.StructureTypeXcbSurfaceCreateInfoKhr,
			Connection: (*raw.XcbConnection)(ptrFromUintptr(w.Display)),
			Window:     raw.XcbWindow(w.Window),
		}
		info = ci
		res = i.cmds.CreateXcbSurfaceKHR(i.handle, ci, nil, &s)
	case WindowSystemWayland:
		ci := &raw.WaylandSurfaceCreateInfoKHR{
			SType:   raw.StructureTypeWaylandSurfaceCreateInfoKhr,
			Display: (*raw.WlDisplay)(ptrFromUintptr(w.Display)),
			Surface: (*raw.WlSurface)(ptrFromUintptr(w.Window)),
		}
		info = ci
		res = i.cmds.CreateWaylandSurfaceKHR(i.handle, ci, nil, &s)
	case WindowSystemWin32:
		ci := &raw.Win32SurfaceCreateInfoKHR{
			SType:     raw.StructureTypeWin32SurfaceCreateInfoKhr,
			Hinstance: w.Display,
			Hwnd:      w.Window,
		}
		info = ci
		res = i.cmds.CreateWin32SurfaceKHR(i.handle, ci, nil, &s)
	case WindowSystemMetal:
		ci := &raw.MetalSurfaceCreateInfoEXT{
			SType:  raw.StructureTypeMetalSurfaceCreateInfoExt,
			PLayer: (*raw.CAMetalLayer)(ptrFromUintptr(w.Window)),
		}
		info = ci
		res = i.cmds.CreateMetalSurfaceEXT(i.handle, ci, nil, &s)
	}
	runtime.KeepAlive(info)
	if err := check(res); err != nil {
		return NullSurface, err
	}
	return s, nil
}
