// Package vk is a small Go-typed layer over the goffi Vulkan bindings in
// github.com/gogpu/wgpu/hal/vulkan/vk.
//
// Only the calls needed to bring up and tear down an instance are exposed:
// layer and extension enumeration, instance creation, physical device
// enumeration, VK_EXT_debug_utils messengers and platform surfaces.
// The loader library is opened at runtime through goffi, so the package
// builds without cgo or Vulkan headers and fails gracefully on machines
// without a driver.
//
// All raw memory handling lives in this package. Callers work with the Go
// types declared here and never see the C layouts.
package vk

import (
	"fmt"

	raw "github.com/gogpu/wgpu/hal/vulkan/vk"
)

// Handle types are shared with the underlying bindings.
type (
	// Instance is a dispatchable VkInstance handle.
	Instance = raw.Instance

	// PhysicalDevice is a dispatchable VkPhysicalDevice handle.
	PhysicalDevice = raw.PhysicalDevice

	// SurfaceKHR is a non-dispatchable VkSurfaceKHR handle.
	SurfaceKHR = raw.SurfaceKHR

	// DebugUtilsMessengerEXT is a non-dispatchable VkDebugUtilsMessengerEXT handle.
	DebugUtilsMessengerEXT = raw.DebugUtilsMessengerEXT
)

// Null handles.
const (
	NullInstance  Instance               = 0
	NullSurface   SurfaceKHR             = 0
	NullMessenger DebugUtilsMessengerEXT = 0
)

// Well-known layer and extension names.
const (
	LayerKhronosValidation = "VK_LAYER_KHRONOS_validation"

	ExtDebugUtilsExtensionName     = "VK_EXT_debug_utils"
	KhrSurfaceExtensionName        = "VK_KHR_surface"
	KhrXlibSurfaceExtensionName    = "VK_KHR_xlib_surface"
	KhrXcbSurfaceExtensionName     = "VK_KHR_xcb_surface"
	KhrWaylandSurfaceExtensionName = "VK_KHR_wayland_surface"
	KhrWin32SurfaceExtensionName   = "VK_KHR_win32_surface"
	ExtMetalSurfaceExtensionName   = "VK_EXT_metal_surface"
)

// Version is a packed Vulkan version number (variant.major.minor.patch).
type Version uint32

// MakeVersion packs a version the way VK_MAKE_API_VERSION does with variant 0.
func MakeVersion(major, minor, patch uint32) Version {
	return Version(major<<22 | minor<<12 | patch)
}

// Major returns the major component.
func (v Version) Major() uint32 { return uint32(v) >> 22 & 0x7f }

// Minor returns the minor component.
func (v Version) Minor() uint32 { return uint32(v) >> 12 & 0x3ff }

// Patch returns the patch component.
func (v Version) Patch() uint32 { return uint32(v) & 0xfff }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// API versions known to this package.
const (
	APIVersion10 Version = 1<<22 | 0<<12
	APIVersion11 Version = 1<<22 | 1<<12
	APIVersion12 Version = 1<<22 | 2<<12
	APIVersion13 Version = 1<<22 | 3<<12
)

// PhysicalDeviceType mirrors VkPhysicalDeviceType.
type PhysicalDeviceType uint32

const (
	PhysicalDeviceTypeOther         = PhysicalDeviceType(raw.PhysicalDeviceTypeOther)
	PhysicalDeviceTypeIntegratedGPU = PhysicalDeviceType(raw.PhysicalDeviceTypeIntegratedGpu)
	PhysicalDeviceTypeDiscreteGPU   = PhysicalDeviceType(raw.PhysicalDeviceTypeDiscreteGpu)
	PhysicalDeviceTypeVirtualGPU    = PhysicalDeviceType(raw.PhysicalDeviceTypeVirtualGpu)
	PhysicalDeviceTypeCPU           = PhysicalDeviceType(raw.PhysicalDeviceTypeCpu)
)

func (t PhysicalDeviceType) String() string {
	switch t {
	case PhysicalDeviceTypeOther:
		return "other"
	case PhysicalDeviceTypeIntegratedGPU:
		return "integrated"
	case PhysicalDeviceTypeDiscreteGPU:
		return "discrete"
	case PhysicalDeviceTypeVirtualGPU:
		return "virtual"
	case PhysicalDeviceTypeCPU:
		return "cpu"
	default:
		return fmt.Sprintf("PhysicalDeviceType(%d)", uint32(t))
	}
}

// DebugUtilsMessageSeverityFlags mirrors VkDebugUtilsMessageSeverityFlagsEXT.
type DebugUtilsMessageSeverityFlags uint32

const (
	DebugSeverityVerbose = DebugUtilsMessageSeverityFlags(raw.DebugUtilsMessageSeverityVerboseBitExt)
	DebugSeverityInfo    = DebugUtilsMessageSeverityFlags(raw.DebugUtilsMessageSeverityInfoBitExt)
	DebugSeverityWarning = DebugUtilsMessageSeverityFlags(raw.DebugUtilsMessageSeverityWarningBitExt)
	DebugSeverityError   = DebugUtilsMessageSeverityFlags(raw.DebugUtilsMessageSeverityErrorBitExt)
)

// DebugUtilsMessageTypeFlags mirrors VkDebugUtilsMessageTypeFlagsEXT.
type DebugUtilsMessageTypeFlags uint32

const (
	DebugTypeGeneral     = DebugUtilsMessageTypeFlags(raw.DebugUtilsMessageTypeGeneralBitExt)
	DebugTypeValidation  = DebugUtilsMessageTypeFlags(raw.DebugUtilsMessageTypeValidationBitExt)
	DebugTypePerformance = DebugUtilsMessageTypeFlags(raw.DebugUtilsMessageTypePerformanceBitExt)
)

func (t DebugUtilsMessageTypeFlags) String() string {
	s := ""
	add := func(name string) {
		if s != "" {
			s += "|"
		}
		s += name
	}
	if t&DebugTypeGeneral != 0 {
		add("general")
	}
	if t&DebugTypeValidation != 0 {
		add("validation")
	}
	if t&DebugTypePerformance != 0 {
		add("performance")
	}
	if s == "" {
		return "none"
	}
	return s
}

// LayerProperties describes an instance layer.
type LayerProperties struct {
	Name                  string
	SpecVersion           Version
	ImplementationVersion uint32
	Description           string
}

// ExtensionProperties describes an instance extension.
type ExtensionProperties struct {
	Name        string
	SpecVersion uint32
}

// PhysicalDeviceProperties is the subset of VkPhysicalDeviceProperties that
// callers of this package look at.
type PhysicalDeviceProperties struct {
	APIVersion    Version
	DriverVersion uint32
	VendorID      uint32
	DeviceID      uint32
	DeviceType    PhysicalDeviceType
	DeviceName    string
}

// DebugMessage is the payload handed to a DebugCallback.
type DebugMessage struct {
	Severity DebugUtilsMessageSeverityFlags
	Type     DebugUtilsMessageTypeFlags
	IDName   string
	IDNumber int32
	Message  string
}

// DebugCallback receives driver debug messages. Returning true asks the
// driver to abort the call that triggered the message.
type DebugCallback func(msg DebugMessage) bool

// DebugUtilsMessengerCreateInfo configures a debug messenger.
type DebugUtilsMessengerCreateInfo struct {
	Severity DebugUtilsMessageSeverityFlags
	Type     DebugUtilsMessageTypeFlags
	Callback DebugCallback
}

// InstanceCreateInfo combines VkApplicationInfo and VkInstanceCreateInfo.
type InstanceCreateInfo struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	APIVersion         Version

	EnabledLayers     []string
	EnabledExtensions []string

	// DebugMessenger, when set, is chained into pNext so that messages
	// emitted during vkCreateInstance and vkDestroyInstance are delivered.
	DebugMessenger *DebugUtilsMessengerCreateInfo
}

// WindowSystem identifies the platform windowing API of a WindowHandle.
type WindowSystem int

const (
	WindowSystemNone WindowSystem = iota
	WindowSystemXlib
	WindowSystemXcb
	WindowSystemWayland
	WindowSystemWin32
	WindowSystemMetal
)

var windowSystemNames = [...]string{
	WindowSystemNone:    "none",
	WindowSystemXlib:    "xlib",
	WindowSystemXcb:     "xcb",
	WindowSystemWayland: "wayland",
	WindowSystemWin32:   "win32",
	WindowSystemMetal:   "metal",
}

func (ws WindowSystem) String() string {
	if ws >= 0 && int(ws) < len(windowSystemNames) {
		return windowSystemNames[ws]
	}
	return fmt.Sprintf("WindowSystem(%d)", int(ws))
}

// ParseWindowSystem returns the WindowSystem named s.
func ParseWindowSystem(s string) (WindowSystem, error) {
	if s == "" {
		return WindowSystemNone, nil
	}
	for i, name := range windowSystemNames {
		if name == s {
			return WindowSystem(i), nil
		}
	}
	return WindowSystemNone, fmt.Errorf("vk: unknown window system %q", s)
}

// WindowHandle is a raw platform display/window pair.
//
//   - Xlib:    Display is a Display*, Window an X11 Window id.
//   - XCB:     Display is an xcb_connection_t*, Window an xcb_window_t.
//   - Wayland: Display is a wl_display*, Window a wl_surface*.
//   - Win32:   Display is the HINSTANCE, Window the HWND.
//   - Metal:   Window is a CAMetalLayer*; Display is ignored.
type WindowHandle struct {
	System  WindowSystem
	Display uintptr
	Window  uintptr
}

// SurfaceExtensions returns the instance extensions needed to create a
// surface for ws. It returns nil for WindowSystemNone.
func SurfaceExtensions(ws WindowSystem) []string {
	var platform string
	switch ws {
	case WindowSystemXlib:
		platform = KhrXlibSurfaceExtensionName
	case WindowSystemXcb:
		platform = KhrXcbSurfaceExtensionName
	case WindowSystemWayland:
		platform = KhrWaylandSurfaceExtensionName
	case WindowSystemWin32:
		platform = KhrWin32SurfaceExtensionName
	case WindowSystemMetal:
		platform = ExtMetalSurfaceExtensionName
	default:
		return nil
	}
	return []string{KhrSurfaceExtensionName, platform}
}
