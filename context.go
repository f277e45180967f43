package cvk

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gogpu/cvk/vk"
)

// Context is the process-wide graphics context: the driver entry point, the
// instance created from it and the objects that hang off the instance.
//
// A Context is reached only through a ReadHandle or WriteHandle, which
// embed it. Its methods must not be used after the handle is released.
type Context struct {
	info     ContextInfo
	entry    Entry
	instance Instance
	debug    *debugObjects
	surface  *Surface

	layers     []string
	extensions []string
	devices    []vk.PhysicalDeviceProperties

	destroyed bool
}

// Entry returns the loaded driver entry point.
func (c *Context) Entry() Entry { return c.entry }

// Instance returns the driver instance.
func (c *Context) Instance() Instance { return c.instance }

// Surface returns the attached surface, or vk.NullSurface.
func (c *Context) Surface() vk.SurfaceKHR {
	if c.surface == nil {
		return vk.NullSurface
	}
	return c.surface.Handle()
}

// Info returns the ContextInfo the context was created with.
func (c *Context) Info() ContextInfo { return c.info.clone() }

// Debugging reports whether the debug messenger is installed.
func (c *Context) Debugging() bool { return c.debug != nil }

// Layers returns the instance layers that were enabled.
func (c *Context) Layers() []string { return slices.Clone(c.layers) }

// Extensions returns the instance extensions that were enabled.
func (c *Context) Extensions() []string { return slices.Clone(c.extensions) }

// Devices returns the physical devices found during Init.
func (c *Context) Devices() []vk.PhysicalDeviceProperties { return slices.Clone(c.devices) }

// newContext performs the full creation sequence. Objects created before a
// failing step are destroyed before it returns.
func newContext(info ContextInfo, drv Driver) (*Context, error) {
	entry, err := drv.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDriverUnavailable, err)
	}

	// The loader version is informational only: a 1.1+ loader accepts any
	// apiVersion, and CreateInstance reports an incompatible driver.
	if have, err := entry.InstanceVersion(); err != nil {
		Logger().Debug("cvk: instance version query failed", "err", err)
	} else {
		Logger().Debug("cvk: loader", "instance_version", have.String(), "requested", info.Version.String())
	}

	var layers []string
	if info.Debugging {
		available, err := entry.EnumerateInstanceLayerProperties()
		if err != nil {
			return nil, fmt.Errorf("%w: enumerate layers: %w", ErrDriverUnavailable, err)
		}
		if hasLayer(available, vk.LayerKhronosValidation) {
			layers = append(layers, vk.LayerKhronosValidation)
		} else {
			Logger().Warn("cvk: validation layer not installed, continuing without it",
				"layer", vk.LayerKhronosValidation)
		}
	}

	exts := info.requiredExtensions()
	if err := checkExtensions(entry, layers, exts); err != nil {
		return nil, err
	}

	ci := &vk.InstanceCreateInfo{
		ApplicationName:    info.AppName,
		ApplicationVersion: info.AppVersion,
		EngineName:         info.EngineName,
		EngineVersion:      info.EngineVersion,
		APIVersion:         info.Version.Packed(),
		EnabledLayers:      layers,
		EnabledExtensions:  exts,
	}
	if info.Debugging {
		ci.DebugMessenger = messengerInfo()
	}

	inst, err := entry.CreateInstance(ci)
	if errors.Is(err, vk.ErrorIncompatibleDriver) {
		return nil, fmt.Errorf("%w: %w: %s: %w", ErrInstanceCreation, ErrUnsupportedVersion, info.Version, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInstanceCreation, err)
	}

	ctx := &Context{
		info:       info,
		entry:      entry,
		instance:   inst,
		layers:     layers,
		extensions: exts,
	}

	if info.Debugging {
		utils, err := inst.DebugUtils()
		if err != nil {
			ctx.destroy()
			return nil, fmt.Errorf("%w: load debug utils: %w", ErrInstanceCreation, err)
		}
		m, err := utils.CreateMessenger(messengerInfo())
		if err != nil {
			ctx.destroy()
			return nil, fmt.Errorf("%w: create debug messenger: %w", ErrInstanceCreation, err)
		}
		ctx.debug = &debugObjects{utils: utils, messenger: m}
	}

	pds, err := inst.EnumeratePhysicalDevices()
	if err != nil {
		ctx.destroy()
		return nil, fmt.Errorf("%w: enumerate physical devices: %w", ErrInstanceCreation, err)
	}
	for _, pd := range pds {
		props := inst.GetPhysicalDeviceProperties(pd)
		Logger().Info("device: "+props.DeviceName,
			"type", props.DeviceType.String(), "api", props.APIVersion.String())
		ctx.devices = append(ctx.devices, props)
	}

	return ctx, nil
}

// checkExtensions verifies that every name in required is offered globally
// or by one of the enabled layers.
func checkExtensions(entry Entry, layers, required []string) error {
	if len(required) == 0 {
		return nil
	}
	available := make(map[string]struct{})
	for _, layer := range append([]string{""}, layers...) {
		props, err := entry.EnumerateInstanceExtensionProperties(layer)
		if err != nil {
			return fmt.Errorf("%w: enumerate extensions: %w", ErrDriverUnavailable, err)
		}
		for _, p := range props {
			available[p.Name] = struct{}{}
		}
	}
	for _, name := range required {
		if _, ok := available[name]; !ok {
			return fmt.Errorf("%w: %s", ErrUnsupportedExtension, name)
		}
	}
	return nil
}

func hasLayer(props []vk.LayerProperties, name string) bool {
	return slices.ContainsFunc(props, func(p vk.LayerProperties) bool { return p.Name == name })
}

// destroy tears down in dependency order: surface, messenger, instance.
func (c *Context) destroy() {
	if c.destroyed {
		return
	}
	if c.surface != nil {
		c.surface.Destroy()
		c.surface = nil
	}
	if c.debug != nil {
		c.debug.destroy()
		c.debug = nil
	}
	c.instance.Destroy()
	c.destroyed = true
	Logger().Debug("cvk: context destroyed")
}

// contextCell holds at most one Context for its lifetime.
//
// claimed is set by the first Init to get past the check and cleared again
// if that Init fails. ready is set once ctx is installed and never cleared.
type contextCell struct {
	claimed atomic.Bool
	ready   atomic.Bool

	mu  sync.RWMutex
	ctx *Context
}

func (cell *contextCell) init(info ContextInfo, opts initOptions) error {
	if !cell.claimed.CompareAndSwap(false, true) {
		return ErrAlreadyInitialized
	}
	ctx, err := newContext(info.clone(), opts.driver)
	if err != nil {
		cell.claimed.Store(false)
		return err
	}
	cell.mu.Lock()
	cell.ctx = ctx
	cell.mu.Unlock()
	cell.ready.Store(true)
	return nil
}

func (cell *contextCell) read(block bool) (*ReadHandle, error) {
	if !cell.ready.Load() {
		return nil, ErrNotInitialized
	}
	if block {
		cell.mu.RLock()
	} else if !cell.mu.TryRLock() {
		return nil, errLockBusy
	}
	if cell.ctx.destroyed {
		cell.mu.RUnlock()
		return nil, ErrContextDestroyed
	}
	return &ReadHandle{Context: cell.ctx, unlock: cell.mu.RUnlock}, nil
}

func (cell *contextCell) write(block bool) (*WriteHandle, error) {
	if !cell.ready.Load() {
		return nil, ErrNotInitialized
	}
	if block {
		cell.mu.Lock()
	} else if !cell.mu.TryLock() {
		return nil, errLockBusy
	}
	if cell.ctx.destroyed {
		cell.mu.Unlock()
		return nil, ErrContextDestroyed
	}
	return &WriteHandle{Context: cell.ctx, unlock: cell.mu.Unlock}, nil
}

func (cell *contextCell) shutdown() {
	if !cell.ready.Load() {
		return
	}
	cell.mu.Lock()
	defer cell.mu.Unlock()
	cell.ctx.destroy()
}

// global is the process-wide context.
var global contextCell

// Init creates the process-wide context. It panics if a context was already
// created in this process or if any creation step fails; the panic value is
// an error wrapping one of the package sentinels.
//
// A failed Init leaves the package uninitialized.
func Init(info ContextInfo, opts ...InitOption) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := global.init(info, o); err != nil {
		panic(err)
	}
}

// Get returns a shared handle to the context, blocking while a WriteHandle
// is held. It panics with ErrNotInitialized before Init and with
// ErrContextDestroyed after Shutdown.
func Get() *ReadHandle {
	h, err := global.read(true)
	if err != nil {
		panic(err)
	}
	return h
}

// TryGet is like Get but returns nil instead of panicking or blocking.
func TryGet() *ReadHandle {
	h, _ := global.read(false)
	return h
}

// GetMut returns the exclusive handle to the context, blocking until every
// other handle is released. It panics like Get.
func GetMut() *WriteHandle {
	h, err := global.write(true)
	if err != nil {
		panic(err)
	}
	return h
}

// TryGetMut is like GetMut but returns nil instead of panicking or blocking.
func TryGetMut() *WriteHandle {
	h, _ := global.write(false)
	return h
}

// Shutdown destroys the context: the attached surface first, then the debug
// messenger, then the instance. It waits for outstanding handles. Calling it
// before Init or more than once is a no-op. A destroyed context cannot be
// replaced; Init keeps panicking with ErrAlreadyInitialized.
func Shutdown() {
	global.shutdown()
}

// IsInitialized reports whether Init has completed.
func IsInitialized() bool {
	return global.ready.Load()
}

// ReadHandle is shared access to the context. Release must be called when
// done; further calls to Release are no-ops.
type ReadHandle struct {
	*Context
	unlock func()
	once   sync.Once
}

// Release gives up the handle.
func (h *ReadHandle) Release() { h.once.Do(h.unlock) }

// WriteHandle is exclusive access to the context.
type WriteHandle struct {
	*Context
	unlock func()
	once   sync.Once
}

// Release gives up the handle.
func (h *WriteHandle) Release() { h.once.Do(h.unlock) }

// AttachSurface creates a surface for w and makes it the context surface,
// destroying any surface attached before. The context must have been
// created with WindowSystem set to w.System.
func (h *WriteHandle) AttachSurface(w vk.WindowHandle) error {
	exts := vk.SurfaceExtensions(w.System)
	for _, ext := range exts {
		if !slices.Contains(h.extensions, ext) {
			return fmt.Errorf("%w: extension %s not enabled", ErrSurfaceCreation, ext)
		}
	}
	s, err := NewSurface(h.instance, w)
	if err != nil {
		return err
	}
	h.DetachSurface()
	h.surface = s
	return nil
}

// DetachSurface destroys the attached surface, if any.
func (h *WriteHandle) DetachSurface() {
	if h.surface != nil {
		h.surface.Destroy()
		h.surface = nil
	}
}

// IsDriverUnavailable reports whether err, or a value recovered from an
// Init panic, means no graphics driver could be loaded.
func IsDriverUnavailable(v any) bool {
	err, ok := v.(error)
	return ok && errors.Is(err, ErrDriverUnavailable)
}
