package vk

import (
	"sync"
	"unsafe"

	"github.com/go-webgpu/goffi/ffi"
	raw "github.com/gogpu/wgpu/hal/vulkan/vk"
)

// callbackID identifies a registered DebugCallback. The driver receives a
// pointer to a heap copy of the id as pUserData, so no closure crosses into C.
type callbackID uintptr

type registration struct {
	fn   DebugCallback
	slot *callbackID
}

var (
	trampolineOnce sync.Once
	trampoline     uintptr

	callbacksMu    sync.RWMutex
	callbacks      = make(map[callbackID]registration)
	nextCallbackID callbackID
)

// debugTrampoline returns the C function pointer used as pfnUserCallback.
// goffi callbacks live for the process, so a single one is shared by every
// messenger.
func debugTrampoline() uintptr {
	trampolineOnce.Do(func() {
		trampoline = ffi.NewCallback(dispatchDebugMessage)
	})
	return trampoline
}

func registerCallback(fn DebugCallback) callbackID {
	callbacksMu.Lock()
	defer callbacksMu.Unlock()
	nextCallbackID++
	slot := new(callbackID)
	*slot = nextCallbackID
	callbacks[nextCallbackID] = registration{fn: fn, slot: slot}
	return nextCallbackID
}

func unregisterCallback(id callbackID) {
	if id == 0 {
		return
	}
	callbacksMu.Lock()
	delete(callbacks, id)
	callbacksMu.Unlock()
}

func lookupCallback(id callbackID) DebugCallback {
	callbacksMu.RLock()
	defer callbacksMu.RUnlock()
	return callbacks[id].fn
}

// userData returns the pUserData value for id. The slot stays reachable
// through the registry until id is unregistered.
func userData(id callbackID) *uintptr {
	callbacksMu.RLock()
	defer callbacksMu.RUnlock()
	return (*uintptr)(unsafe.Pointer(callbacks[id].slot))
}

// dispatchDebugMessage is the PFN_vkDebugUtilsMessengerCallbackEXT
// implementation. Arguments are taken as full registers and narrowed here.
func dispatchDebugMessage(severity, types, data, pUserData uintptr) uintptr {
	if data == 0 || pUserData == 0 {
		return raw.False
	}
	slot := *(**callbackID)(unsafe.Pointer(&pUserData))
	fn := lookupCallback(*slot)
	if fn == nil {
		return raw.False
	}
	msg := decodeCallbackData(
		DebugUtilsMessageSeverityFlags(uint32(severity)),
		DebugUtilsMessageTypeFlags(uint32(types)),
		*(**raw.DebugUtilsMessengerCallbackDataEXT)(unsafe.Pointer(&data)),
	)
	if invokeCallback(fn, msg) {
		return raw.True
	}
	return raw.False
}

// invokeCallback runs fn and keeps a panic from unwinding into driver frames.
func invokeCallback(fn DebugCallback, msg DebugMessage) (abort bool) {
	defer func() {
		if r := recover(); r != nil {
			slogger().Error("vk: debug callback panicked", "panic", r)
			abort = false
		}
	}()
	return fn(msg)
}

func decodeCallbackData(severity DebugUtilsMessageSeverityFlags, types DebugUtilsMessageTypeFlags,
	data *raw.DebugUtilsMessengerCallbackDataEXT) DebugMessage {
	return DebugMessage{
		Severity: severity,
		Type:     types,
		IDName:   goStringPtr(data.PMessageIdName),
		IDNumber: data.MessageIdNumber,
		Message:  goStringPtr(data.PMessage),
	}
}

func newDebugUtilsMessengerCreateInfo(info *DebugUtilsMessengerCreateInfo, id callbackID) *raw.DebugUtilsMessengerCreateInfoEXT {
	return &raw.DebugUtilsMessengerCreateInfoEXT{
		SType:           raw.StructureTypeDebugUtilsMessengerCreateInfoExt,
		MessageSeverity: raw.DebugUtilsMessageSeverityFlagsEXT(info.Severity),
		MessageType:     raw.DebugUtilsMessageTypeFlagsEXT(info.Type),
		PfnUserCallback: debugTrampoline(),
		PUserData:       userData(id),
	}
}
