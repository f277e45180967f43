// Package cvk owns the process-wide Vulkan context.
//
// # Overview
//
// A process has at most one Context. It is created once by Init and holds the
// loaded driver entry point, the VkInstance, the optional debug messenger and
// the surface attached to it. Access goes through guarded handles:
//
//	cvk.Init(cvk.DefaultContextInfo().
//		WithAppName("viewer").
//		WithVersion(cvk.Vulkan12).
//		WithDebugging(true))
//	defer cvk.Shutdown()
//
//	h := cvk.Get()
//	inst := h.Instance().Handle()
//	h.Release()
//
// # Failure model
//
// A process cannot do anything useful without its graphics context, so Init,
// Get and GetMut panic on every failure. The panic value is an error wrapping
// one of the package sentinels (ErrDriverUnavailable, ErrUnsupportedExtension,
// ErrInstanceCreation, ErrAlreadyInitialized, ErrNotInitialized ...).
// TryGet and TryGetMut return nil instead of panicking or blocking.
//
// # Concurrency
//
// A single sync.RWMutex guards the context. Any number of ReadHandles may be
// held at once; a WriteHandle excludes every other handle. A goroutine must
// not request a handle while it already holds one.
//
// # Teardown
//
// Shutdown destroys the attached surface, then the debug messenger, then the
// instance. Vulkan requires children to be destroyed before their parent.
//
// # Driver boundary
//
// Every driver call is made through the Driver, Entry, Instance and
// DebugUtils interfaces. VulkanDriver binds them to the system Vulkan loader
// through package vk; tests substitute their own implementation with
// WithDriver.
package cvk
