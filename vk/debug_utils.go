package vk

import (
	"fmt"
	"runtime"
	"sync"

	raw "github.com/gogpu/wgpu/hal/vulkan/vk"
)

// DebugUtils is the VK_EXT_debug_utils instance-level interface.
// The extension must have been enabled when the instance was created.
type DebugUtils struct {
	instance Instance
	cmds     *raw.Commands

	mu        sync.Mutex
	callbacks map[DebugUtilsMessengerEXT]callbackID
}

// NewDebugUtils checks that the debug-utils entry points were resolved for inst.
func NewDebugUtils(inst *InstanceFuncs) (*DebugUtils, error) {
	for _, name := range []string{"vkCreateDebugUtilsMessengerEXT", "vkDestroyDebugUtilsMessengerEXT"} {
		if raw.GetInstanceProcAddr(inst.handle, name) == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingFunction, name)
		}
	}
	return &DebugUtils{
		instance:  inst.handle,
		cmds:      inst.cmds,
		callbacks: make(map[DebugUtilsMessengerEXT]callbackID),
	}, nil
}

// CreateMessenger installs a debug messenger that forwards to info.Callback.
func (d *DebugUtils) CreateMessenger(info *DebugUtilsMessengerCreateInfo) (DebugUtilsMessengerEXT, error) {
	id := registerCallback(info.Callback)
	ci := newDebugUtilsMessengerCreateInfo(info, id)

	var m DebugUtilsMessengerEXT
	res := d.cmds.CreateDebugUtilsMessengerEXT(d.instance, ci, nil, &m)
	runtime.KeepAlive(ci)
	if err := check(res); err != nil {
		unregisterCallback(id)
		return NullMessenger, err
	}

	d.mu.Lock()
	d.callbacks[m] = id
	d.mu.Unlock()
	return m, nil
}

// DestroyMessenger destroys m and drops its callback.
func (d *DebugUtils) DestroyMessenger(m DebugUtilsMessengerEXT) {
	if m == NullMessenger {
		return
	}
	d.cmds.DestroyDebugUtilsMessengerEXT(d.instance, m, nil)

	d.mu.Lock()
	id := d.callbacks[m]
	delete(d.callbacks, m)
	d.mu.Unlock()
	unregisterCallback(id)
}
