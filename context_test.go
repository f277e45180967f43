package cvk

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/gogpu/cvk/vk"
)

// initCell creates a context in a fresh cell and shuts it down at cleanup.
func initCell(t *testing.T, info ContextInfo, d *fakeDriver) *contextCell {
	t.Helper()
	cell := &contextCell{}
	if err := cell.init(info, initOptions{driver: d}); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(cell.shutdown)
	return cell
}

func TestInitCallOrder(t *testing.T) {
	d := newFakeDriver()
	cell := initCell(t, DefaultContextInfo(), d)

	want := []string{
		"load",
		"instance_version",
		"create_instance",
		"enumerate_physical_devices",
		"get_physical_device_properties",
	}
	if got := d.log(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}

	if d.created.ApplicationName != "Vulkan App" || d.created.EngineName != "Engine" {
		t.Errorf("names = %q/%q", d.created.ApplicationName, d.created.EngineName)
	}
	if d.created.APIVersion != vk.APIVersion10 {
		t.Errorf("APIVersion = %v, want 1.0.0", d.created.APIVersion)
	}
	if len(d.created.EnabledLayers) != 0 || len(d.created.EnabledExtensions) != 0 {
		t.Errorf("layers=%v extensions=%v, want none", d.created.EnabledLayers, d.created.EnabledExtensions)
	}
	if d.created.DebugMessenger != nil {
		t.Error("debug messenger chained without debugging")
	}

	h, err := cell.read(true)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if h.Debugging() {
		t.Error("Debugging() = true")
	}
	if h.Surface() != vk.NullSurface {
		t.Errorf("Surface() = %v, want null", h.Surface())
	}
	if h.Instance().Handle() != vk.Instance(0x1000) {
		t.Errorf("Instance().Handle() = %#x", h.Instance().Handle())
	}
	if h.Entry() == nil {
		t.Error("Entry() = nil")
	}
	h.Release()

	// Without debugging or a surface only the instance is torn down.
	cell.shutdown()
	if got := d.log()[len(want):]; !slices.Equal(got, []string{"destroy_instance"}) {
		t.Errorf("teardown calls = %v, want [destroy_instance]", got)
	}
}

func TestInitNewerVersionThanLoader(t *testing.T) {
	d := newFakeDriver()
	d.version = vk.MakeVersion(1, 2, 198)
	initCell(t, DefaultContextInfo().WithVersion(Vulkan13), d)

	if !slices.Contains(d.log(), "create_instance") {
		t.Fatalf("instance not created, calls %v", d.log())
	}
	if d.created.APIVersion != vk.APIVersion13 {
		t.Errorf("APIVersion = %v, want 1.3.0", d.created.APIVersion)
	}
}

func TestInitVersionQueryFailure(t *testing.T) {
	d := newFakeDriver()
	d.versionErr = vk.ErrorOutOfHostMemory
	initCell(t, DefaultContextInfo(), d)

	if !slices.Contains(d.log(), "create_instance") {
		t.Errorf("instance not created after a failed version query, calls %v", d.log())
	}
}

func TestInitIncompatibleDriver(t *testing.T) {
	d := newFakeDriver()
	d.createErr = vk.ErrorIncompatibleDriver
	cell := &contextCell{}
	err := cell.init(DefaultContextInfo().WithVersion(Vulkan13), initOptions{driver: d})
	if !errors.Is(err, ErrInstanceCreation) || !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("err = %v, want ErrInstanceCreation and ErrUnsupportedVersion", err)
	}
	if !errors.Is(err, vk.ErrorIncompatibleDriver) {
		t.Errorf("err = %v, does not wrap the driver result", err)
	}
	if cell.claimed.Load() {
		t.Error("claim kept after failed init")
	}
}

func TestInitDebugging(t *testing.T) {
	d := newFakeDriver()
	info := DefaultContextInfo().WithAppName("viewer").WithVersion(Vulkan12).WithDebugging(true)
	cell := initCell(t, info, d)

	want := []string{
		"load",
		"instance_version",
		"enumerate_layers",
		"enumerate_extensions:",
		"enumerate_extensions:" + vk.LayerKhronosValidation,
		"create_instance",
		"load_debug_utils",
		"create_messenger",
		"enumerate_physical_devices",
		"get_physical_device_properties",
	}
	if got := d.log(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}

	if !slices.Equal(d.created.EnabledLayers, []string{vk.LayerKhronosValidation}) {
		t.Errorf("layers = %v", d.created.EnabledLayers)
	}
	if !slices.Equal(d.created.EnabledExtensions, []string{vk.ExtDebugUtilsExtensionName}) {
		t.Errorf("extensions = %v", d.created.EnabledExtensions)
	}
	if d.created.APIVersion != vk.APIVersion12 {
		t.Errorf("APIVersion = %v, want 1.2.0", d.created.APIVersion)
	}
	if d.created.DebugMessenger == nil {
		t.Fatal("no debug messenger chained into instance creation")
	}

	m := d.messenger
	wantSeverity := vk.DebugSeverityVerbose | vk.DebugSeverityWarning | vk.DebugSeverityError
	if m.Severity != wantSeverity {
		t.Errorf("severity = %#x, want %#x", m.Severity, wantSeverity)
	}
	wantType := vk.DebugTypeGeneral | vk.DebugTypeValidation | vk.DebugTypePerformance
	if m.Type != wantType {
		t.Errorf("type = %#x, want %#x", m.Type, wantType)
	}
	if m.Callback(vk.DebugMessage{Severity: vk.DebugSeverityError, Message: "boom"}) {
		t.Error("callback asked to abort")
	}

	h, _ := cell.read(true)
	defer h.Release()
	if !h.Debugging() {
		t.Error("Debugging() = false")
	}
	if got := h.Info().AppName; got != "viewer" {
		t.Errorf("Info().AppName = %q", got)
	}
}

func TestInitDebuggingWithoutValidationLayer(t *testing.T) {
	d := newFakeDriver()
	d.layers = nil
	d.extensions[""] = append(d.extensions[""], vk.ExtDebugUtilsExtensionName)
	cell := initCell(t, DefaultContextInfo().WithDebugging(true), d)

	h, _ := cell.read(true)
	defer h.Release()
	if len(h.Layers()) != 0 {
		t.Errorf("Layers() = %v, want none", h.Layers())
	}
	if !h.Debugging() {
		t.Error("messenger not installed")
	}
	if slices.Contains(d.log(), "enumerate_extensions:"+vk.LayerKhronosValidation) {
		t.Error("enumerated extensions of a layer that is not enabled")
	}
}

func TestInitMissingDebugUtils(t *testing.T) {
	d := newFakeDriver()
	delete(d.extensions, vk.LayerKhronosValidation)

	cell := &contextCell{}
	err := cell.init(DefaultContextInfo().WithDebugging(true), initOptions{driver: d})
	if !errors.Is(err, ErrUnsupportedExtension) {
		t.Fatalf("err = %v, want ErrUnsupportedExtension", err)
	}
	if slices.Contains(d.log(), "create_instance") {
		t.Error("instance created despite missing extension")
	}
	if cell.claimed.Load() || cell.ready.Load() {
		t.Error("failed init left the cell claimed")
	}

	// The cell stays usable for a later attempt.
	if err := cell.init(DefaultContextInfo(), initOptions{driver: newFakeDriver()}); err != nil {
		t.Fatalf("second init: %v", err)
	}
	cell.shutdown()
}

func TestInitErrors(t *testing.T) {
	tests := []struct {
		name   string
		info   ContextInfo
		setup  func(d *fakeDriver)
		want   error
		freed  bool // instance destroyed on the way out
		detail error
	}{
		{
			name:   "load",
			info:   DefaultContextInfo(),
			setup:  func(d *fakeDriver) { d.loadErr = vk.ErrLoaderNotFound },
			want:   ErrDriverUnavailable,
			detail: vk.ErrLoaderNotFound,
		},
		{
			name:  "extension",
			info:  DefaultContextInfo().WithExtensions("VK_KHR_portability_enumeration"),
			setup: func(*fakeDriver) {},
			want:  ErrUnsupportedExtension,
		},
		{
			name:  "window system",
			info:  DefaultContextInfo().WithWindowSystem(vk.WindowSystemWin32),
			setup: func(*fakeDriver) {},
			want:  ErrUnsupportedExtension,
		},
		{
			name:   "create instance",
			info:   DefaultContextInfo(),
			setup:  func(d *fakeDriver) { d.createErr = vk.ErrorLayerNotPresent },
			want:   ErrInstanceCreation,
			detail: vk.ErrorLayerNotPresent,
		},
		{
			name:   "debug utils",
			info:   DefaultContextInfo().WithDebugging(true),
			setup:  func(d *fakeDriver) { d.debugErr = vk.ErrMissingFunction },
			want:   ErrInstanceCreation,
			freed:  true,
			detail: vk.ErrMissingFunction,
		},
		{
			name:   "messenger",
			info:   DefaultContextInfo().WithDebugging(true),
			setup:  func(d *fakeDriver) { d.messengerErr = vk.ErrorOutOfHostMemory },
			want:   ErrInstanceCreation,
			freed:  true,
			detail: vk.ErrorOutOfHostMemory,
		},
		{
			name:   "devices",
			info:   DefaultContextInfo(),
			setup:  func(d *fakeDriver) { d.devicesErr = vk.ErrorInitializationFailed },
			want:   ErrInstanceCreation,
			freed:  true,
			detail: vk.ErrorInitializationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newFakeDriver()
			tt.setup(d)
			cell := &contextCell{}
			err := cell.init(tt.info, initOptions{driver: d})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if tt.detail != nil && !errors.Is(err, tt.detail) {
				t.Errorf("err = %v, does not wrap %v", err, tt.detail)
			}
			if got := slices.Contains(d.log(), "destroy_instance"); got != tt.freed {
				t.Errorf("instance destroyed = %v, want %v (calls %v)", got, tt.freed, d.log())
			}
			if _, err := cell.read(false); !errors.Is(err, ErrNotInitialized) {
				t.Errorf("read after failed init: %v, want ErrNotInitialized", err)
			}
		})
	}
}

func TestInitTwice(t *testing.T) {
	cell := initCell(t, DefaultContextInfo(), newFakeDriver())

	d := newFakeDriver()
	err := cell.init(DefaultContextInfo(), initOptions{driver: d})
	if !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("err = %v, want ErrAlreadyInitialized", err)
	}
	if len(d.log()) != 0 {
		t.Errorf("second init touched the driver: %v", d.log())
	}
}

func TestAccessBeforeInit(t *testing.T) {
	cell := &contextCell{}
	if _, err := cell.read(true); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("read: %v", err)
	}
	if _, err := cell.write(true); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("write: %v", err)
	}
	cell.shutdown()
}

func TestShutdownOrder(t *testing.T) {
	d := newFakeDriver()
	info := DefaultContextInfo().WithDebugging(true).WithWindowSystem(vk.WindowSystemXlib)
	cell := &contextCell{}
	if err := cell.init(info, initOptions{driver: d}); err != nil {
		t.Fatal(err)
	}

	w, err := cell.write(true)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.AttachSurface(vk.WindowHandle{System: vk.WindowSystemXlib, Display: 1, Window: 42}); err != nil {
		t.Fatalf("AttachSurface: %v", err)
	}
	if w.Surface() != vk.SurfaceKHR(42) {
		t.Errorf("Surface() = %v, want 42", w.Surface())
	}
	w.Release()

	before := len(d.log())
	cell.shutdown()
	cell.shutdown()

	got := d.log()[before:]
	want := []string{"destroy_surface", "destroy_messenger", "destroy_instance"}
	if !slices.Equal(got, want) {
		t.Errorf("teardown = %v, want %v", got, want)
	}

	if _, err := cell.read(false); !errors.Is(err, ErrContextDestroyed) {
		t.Errorf("read after shutdown: %v", err)
	}
	if _, err := cell.write(true); !errors.Is(err, ErrContextDestroyed) {
		t.Errorf("write after shutdown: %v", err)
	}
	if err := cell.init(info, initOptions{driver: newFakeDriver()}); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("init after shutdown: %v", err)
	}
}

func TestAttachSurface(t *testing.T) {
	d := newFakeDriver()
	cell := initCell(t, DefaultContextInfo().WithWindowSystem(vk.WindowSystemWayland), d)

	w, _ := cell.write(true)
	defer w.Release()

	if err := w.AttachSurface(vk.WindowHandle{System: vk.WindowSystemXlib, Window: 1}); !errors.Is(err, ErrSurfaceCreation) {
		t.Errorf("xlib on a wayland context: %v", err)
	}

	if err := w.AttachSurface(vk.WindowHandle{System: vk.WindowSystemWayland, Window: 7}); err != nil {
		t.Fatal(err)
	}
	if err := w.AttachSurface(vk.WindowHandle{System: vk.WindowSystemWayland, Window: 8}); err != nil {
		t.Fatal(err)
	}
	if w.Surface() != vk.SurfaceKHR(8) {
		t.Errorf("Surface() = %v, want 8", w.Surface())
	}
	if n := countCalls(d.log(), "destroy_surface"); n != 1 {
		t.Errorf("replaced surface destroyed %d times, want 1", n)
	}

	d.surfaceErr = vk.ErrorNativeWindowInUseKHR
	err := w.AttachSurface(vk.WindowHandle{System: vk.WindowSystemWayland, Window: 9})
	if !errors.Is(err, ErrSurfaceCreation) || !errors.Is(err, vk.ErrorNativeWindowInUseKHR) {
		t.Errorf("err = %v", err)
	}
	if w.Surface() != vk.SurfaceKHR(8) {
		t.Error("failed attach replaced the surface")
	}

	w.DetachSurface()
	if w.Surface() != vk.NullSurface {
		t.Error("surface still attached after DetachSurface")
	}
}

func countCalls(calls []string, name string) int {
	n := 0
	for _, c := range calls {
		if c == name {
			n++
		}
	}
	return n
}

func TestConcurrentReaders(t *testing.T) {
	cell := initCell(t, DefaultContextInfo(), newFakeDriver())

	r1, err := cell.read(false)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := cell.read(false)
	if err != nil {
		t.Fatalf("second reader: %v", err)
	}
	if _, err := cell.write(false); !errors.Is(err, errLockBusy) {
		t.Errorf("write with readers held: %v, want busy", err)
	}

	r1.Release()
	r1.Release()
	r2.Release()

	w, err := cell.write(false)
	if err != nil {
		t.Fatalf("write after release: %v", err)
	}
	if _, err := cell.read(false); !errors.Is(err, errLockBusy) {
		t.Errorf("read with writer held: %v, want busy", err)
	}
	if _, err := cell.write(false); !errors.Is(err, errLockBusy) {
		t.Errorf("second writer: %v, want busy", err)
	}
	w.Release()
}

func TestWriterWaitsForReaders(t *testing.T) {
	cell := initCell(t, DefaultContextInfo(), newFakeDriver())

	r, _ := cell.read(true)
	acquired := make(chan *WriteHandle)
	go func() {
		w, err := cell.write(true)
		if err != nil {
			t.Error(err)
		}
		acquired <- w
	}()

	select {
	case <-acquired:
		t.Fatal("writer acquired while a reader was held")
	case <-time.After(50 * time.Millisecond):
	}

	r.Release()
	select {
	case w := <-acquired:
		w.Release()
	case <-time.After(5 * time.Second):
		t.Fatal("writer never acquired")
	}
}

func TestContextAccessorsCopy(t *testing.T) {
	d := newFakeDriver()
	cell := initCell(t, DefaultContextInfo().WithExtensions(vk.KhrSurfaceExtensionName), d)

	h, _ := cell.read(true)
	defer h.Release()

	devs := h.Devices()
	if len(devs) != 1 || devs[0].DeviceName != "Fake GPU" {
		t.Fatalf("Devices() = %+v", devs)
	}
	devs[0].DeviceName = "changed"
	if h.Devices()[0].DeviceName != "Fake GPU" {
		t.Error("Devices() exposes internal slice")
	}

	exts := h.Extensions()
	exts[0] = "changed"
	if h.Extensions()[0] != vk.KhrSurfaceExtensionName {
		t.Error("Extensions() exposes internal slice")
	}

	info := h.Info()
	info.Extensions[0] = "changed"
	if h.Info().Extensions[0] != vk.KhrSurfaceExtensionName {
		t.Error("Info() exposes internal slice")
	}
}

// expectPanic runs fn and returns the recovered error.
func expectPanic(t *testing.T, fn func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		var ok bool
		if err, ok = r.(error); !ok {
			t.Fatalf("panic value %v is not an error", r)
		}
	}()
	fn()
	return nil
}

// TestGlobalLifecycle is the only test that touches the process-wide context.
func TestGlobalLifecycle(t *testing.T) {
	if IsInitialized() {
		t.Fatal("context initialized before the test")
	}
	if err := expectPanic(t, func() { Get() }); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Get before Init: %v", err)
	}
	if err := expectPanic(t, func() { GetMut() }); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("GetMut before Init: %v", err)
	}
	if TryGet() != nil || TryGetMut() != nil {
		t.Error("Try accessors returned a handle before Init")
	}
	Shutdown()

	failing := newFakeDriver()
	failing.loadErr = vk.ErrLoaderNotFound
	err := expectPanic(t, func() { Init(DefaultContextInfo(), WithDriver(failing)) })
	if !IsDriverUnavailable(err) {
		t.Errorf("Init with missing loader: %v", err)
	}
	if IsInitialized() {
		t.Fatal("failed Init left the context initialized")
	}

	d := newFakeDriver()
	Init(DefaultContextInfo().WithAppName("global"), WithDriver(d))
	if !IsInitialized() {
		t.Fatal("IsInitialized() = false after Init")
	}
	if err := expectPanic(t, func() { Init(DefaultContextInfo(), WithDriver(newFakeDriver())) }); !errors.Is(err, ErrAlreadyInitialized) {
		t.Errorf("second Init: %v", err)
	}

	r := Get()
	if r.Info().AppName != "global" {
		t.Errorf("AppName = %q", r.Info().AppName)
	}
	if TryGetMut() != nil {
		t.Error("TryGetMut succeeded while a reader is held")
	}
	r.Release()

	w := TryGetMut()
	if w == nil {
		t.Fatal("TryGetMut returned nil with no handles held")
	}
	if TryGet() != nil {
		t.Error("TryGet succeeded while the writer is held")
	}
	w.Release()

	Shutdown()
	if got := d.log(); got[len(got)-1] != "destroy_instance" {
		t.Errorf("last call = %q, want destroy_instance", got[len(got)-1])
	}
	if err := expectPanic(t, func() { Get() }); !errors.Is(err, ErrContextDestroyed) {
		t.Errorf("Get after Shutdown: %v", err)
	}
	if err := expectPanic(t, func() { GetMut() }); !errors.Is(err, ErrContextDestroyed) {
		t.Errorf("GetMut after Shutdown: %v", err)
	}
	if TryGet() != nil || TryGetMut() != nil {
		t.Error("Try accessors returned a handle after Shutdown")
	}
}
