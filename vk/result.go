package vk

import (
	"errors"
	"fmt"

	raw "github.com/gogpu/wgpu/hal/vulkan/vk"
)

// Result mirrors VkResult. Negative values are errors.
type Result int32

const (
	Success                   = Result(raw.Success)
	NotReady                  = Result(raw.NotReady)
	Incomplete                = Result(raw.Incomplete)
	ErrorOutOfHostMemory      = Result(raw.ErrorOutOfHostMemory)
	ErrorOutOfDeviceMemory    = Result(raw.ErrorOutOfDeviceMemory)
	ErrorInitializationFailed = Result(raw.ErrorInitializationFailed)
	ErrorDeviceLost           = Result(raw.ErrorDeviceLost)
	ErrorLayerNotPresent      = Result(raw.ErrorLayerNotPresent)
	ErrorExtensionNotPresent  = Result(raw.ErrorExtensionNotPresent)
	ErrorFeatureNotPresent    = Result(raw.ErrorFeatureNotPresent)
	ErrorIncompatibleDriver   = Result(raw.ErrorIncompatibleDriver)
	ErrorSurfaceLostKHR       = Result(raw.ErrorSurfaceLostKhr)
	ErrorNativeWindowInUseKHR = Result(raw.ErrorNativeWindowInUseKhr)
)

var resultNames = map[Result]string{
	Success:                   "VK_SUCCESS",
	NotReady:                  "VK_NOT_READY",
	Incomplete:                "VK_INCOMPLETE",
	ErrorOutOfHostMemory:      "VK_ERROR_OUT_OF_HOST_MEMORY",
	ErrorOutOfDeviceMemory:    "VK_ERROR_OUT_OF_DEVICE_MEMORY",
	ErrorInitializationFailed: "VK_ERROR_INITIALIZATION_FAILED",
	ErrorDeviceLost:           "VK_ERROR_DEVICE_LOST",
	ErrorLayerNotPresent:      "VK_ERROR_LAYER_NOT_PRESENT",
	ErrorExtensionNotPresent:  "VK_ERROR_EXTENSION_NOT_PRESENT",
	ErrorFeatureNotPresent:    "VK_ERROR_FEATURE_NOT_PRESENT",
	ErrorIncompatibleDriver:   "VK_ERROR_INCOMPATIBLE_DRIVER",
	ErrorSurfaceLostKHR:       "VK_ERROR_SURFACE_LOST_KHR",
	ErrorNativeWindowInUseKHR: "VK_ERROR_NATIVE_WINDOW_IN_USE_KHR",
}

func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("VkResult(%d)", int32(r))
}

// Error implements error so that failing results can be returned directly.
func (r Result) Error() string {
	return "vk: " + r.String()
}

// Err returns nil for non-negative results and r otherwise.
func (r Result) Err() error {
	if r >= 0 {
		return nil
	}
	return r
}

// check converts a result returned by the bindings.
func check(r raw.Result) error {
	return Result(r).Err()
}

// Package errors.
var (
	// ErrLoaderNotFound is returned when no Vulkan loader library can be opened.
	ErrLoaderNotFound = errors.New("vk: vulkan loader library not found")

	// ErrMissingFunction is returned when a required entry point cannot be resolved.
	ErrMissingFunction = errors.New("vk: missing function")

	// ErrUnsupportedWindowSystem is returned for surfaces on unknown window systems.
	ErrUnsupportedWindowSystem = errors.New("vk: unsupported window system")
)
