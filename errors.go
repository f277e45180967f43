package cvk

import "errors"

// Package errors. Panics raised by Init, Get and GetMut carry an error that
// wraps one of these.
var (
	// ErrDriverUnavailable is returned when the driver entry point cannot be loaded.
	ErrDriverUnavailable = errors.New("cvk: graphics driver unavailable")

	// ErrUnsupportedExtension is returned when a required instance extension
	// is not offered by the driver.
	ErrUnsupportedExtension = errors.New("cvk: required extension is not supported")

	// ErrUnsupportedVersion is returned, together with ErrInstanceCreation,
	// when the driver rejects the requested API version at instance creation.
	ErrUnsupportedVersion = errors.New("cvk: requested API version is not supported")

	// ErrInstanceCreation is returned when the driver rejects instance creation.
	ErrInstanceCreation = errors.New("cvk: instance creation failed")

	// ErrAlreadyInitialized is returned when Init is called more than once.
	ErrAlreadyInitialized = errors.New("cvk: context already initialized")

	// ErrNotInitialized is returned when the context is accessed before Init.
	ErrNotInitialized = errors.New("cvk: context is not initialized")

	// ErrContextDestroyed is returned when the context is accessed after Shutdown.
	ErrContextDestroyed = errors.New("cvk: context has been destroyed")

	// ErrSurfaceCreation is returned when a window cannot be turned into a surface.
	ErrSurfaceCreation = errors.New("cvk: surface creation failed")

	// errLockBusy is returned by the non-blocking accessors.
	errLockBusy = errors.New("cvk: context lock is held")
)
