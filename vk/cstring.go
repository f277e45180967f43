package vk

import "unsafe"

// cString returns a NUL-terminated copy of s.
func cString(s string) *byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return &b[0]
}

// cStrings is a C array of NUL-terminated strings. It must be kept alive
// for the duration of the call that reads it.
type cStrings []*byte

func cStringArray(ss []string) cStrings {
	if len(ss) == 0 {
		return nil
	}
	arr := make(cStrings, len(ss))
	for i, s := range ss {
		arr[i] = cString(s)
	}
	return arr
}

// ptr returns the address of the first element, or 0 for an empty array.
func (a cStrings) ptr() uintptr {
	if len(a) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&a[0]))
}

// goString converts a fixed-size, NUL-terminated C char array.
func goString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// goStringPtr converts a NUL-terminated C string owned by the driver.
func goStringPtr(p uintptr) string {
	if p == 0 {
		return ""
	}
	base := ptrFromUintptr(p)
	n := 0
	for *(*byte)(unsafe.Add(base, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(base), n))
}

// ptrFromUintptr converts an address handed over by the driver or the
// caller. The double indirection keeps go vet quiet about uintptr misuse.
func ptrFromUintptr(p uintptr) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&p))
}
