package cvk

// InitOption configures Init.
type InitOption func(*initOptions)

// initOptions holds optional configuration for Init.
type initOptions struct {
	driver Driver
}

// defaultOptions returns the default Init options.
func defaultOptions() initOptions {
	return initOptions{driver: VulkanDriver()}
}

// WithDriver sets the driver used to create the context.
//
// By default Init loads the system Vulkan loader. Pass a different Driver
// to run against another loader binding or a test double.
//
// Example:
//
//	cvk.Init(info, cvk.WithDriver(myDriver))
func WithDriver(d Driver) InitOption {
	return func(o *initOptions) {
		if d != nil {
			o.driver = d
		}
	}
}
