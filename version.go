package cvk

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/cvk/vk"
)

// APIVersion selects the Vulkan API version requested at instance creation.
// The zero value is Vulkan10.
type APIVersion int

const (
	Vulkan10 APIVersion = iota
	Vulkan11
	Vulkan12
	Vulkan13
)

var apiVersions = [...]struct {
	name   string
	packed vk.Version
}{
	Vulkan10: {"1.0", vk.APIVersion10},
	Vulkan11: {"1.1", vk.APIVersion11},
	Vulkan12: {"1.2", vk.APIVersion12},
	Vulkan13: {"1.3", vk.APIVersion13},
}

func (v APIVersion) valid() bool {
	return v >= 0 && int(v) < len(apiVersions)
}

// Packed returns the packed form passed to the driver.
// Unknown values map to 1.0.
func (v APIVersion) Packed() vk.Version {
	if !v.valid() {
		return vk.APIVersion10
	}
	return apiVersions[v].packed
}

func (v APIVersion) String() string {
	if !v.valid() {
		return fmt.Sprintf("APIVersion(%d)", int(v))
	}
	return apiVersions[v].name
}

// ParseAPIVersion parses "1.0" through "1.3". A "v" prefix and a patch
// component ("1.2.0") are accepted.
func ParseAPIVersion(s string) (APIVersion, error) {
	str := s
	if strings.HasPrefix(str, "v") || strings.HasPrefix(str, "V") {
		str = str[1:]
	}
	parts := strings.Split(str, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Vulkan10, fmt.Errorf("cvk: invalid API version %q", s)
	}
	var nums [3]uint32
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return Vulkan10, fmt.Errorf("cvk: invalid API version %q", s)
		}
		nums[i] = uint32(n)
	}
	// Out-of-range components would alias a valid packed version.
	if nums[0] >= 1<<7 || nums[1] >= 1<<10 {
		return Vulkan10, fmt.Errorf("cvk: unsupported API version %q", s)
	}
	want := vk.MakeVersion(nums[0], nums[1], 0)
	for i, av := range apiVersions {
		if av.packed == want {
			return APIVersion(i), nil
		}
	}
	return Vulkan10, fmt.Errorf("cvk: unsupported API version %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (v APIVersion) MarshalText() ([]byte, error) {
	if !v.valid() {
		return nil, fmt.Errorf("cvk: invalid API version %d", int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *APIVersion) UnmarshalText(b []byte) error {
	parsed, err := ParseAPIVersion(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
