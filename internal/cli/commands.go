package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/cvk"
	"github.com/gogpu/cvk/probe"
)

func newInstanceCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instance",
		Short: "Create the context and print what the driver reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := a.loadInfo(cmd)
			if err != nil {
				return err
			}
			if err := initContext(info, a.driver); err != nil {
				return err
			}
			defer cvk.Shutdown()

			h := cvk.Get()
			defer h.Release()
			return writeReport(cmd.OutOrStdout(), a.format, newReport(h.Context))
		},
	}
	cmd.Flags().StringVarP(&a.format, "format", "o", "text", "output format (text, yaml, json)")
	return cmd
}

// report is the machine-readable form of the instance command output.
type report struct {
	Application string   `json:"application" yaml:"application"`
	Engine      string   `json:"engine" yaml:"engine"`
	APIVersion  string   `json:"api_version" yaml:"api_version"`
	Loader      string   `json:"loader,omitempty" yaml:"loader,omitempty"`
	Debugging   bool     `json:"debugging" yaml:"debugging"`
	Layers      []string `json:"layers" yaml:"layers"`
	Extensions  []string `json:"extensions" yaml:"extensions"`
	Devices     []device `json:"devices" yaml:"devices"`
}

type device struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	APIVersion string `json:"api_version" yaml:"api_version"`
	VendorID   uint32 `json:"vendor_id" yaml:"vendor_id"`
	DeviceID   uint32 `json:"device_id" yaml:"device_id"`
}

func newReport(c *cvk.Context) report {
	info := c.Info()
	r := report{
		Application: info.AppName,
		Engine:      info.EngineName,
		APIVersion:  info.Version.String(),
		Debugging:   c.Debugging(),
		Layers:      c.Layers(),
		Extensions:  c.Extensions(),
	}
	if v, err := c.Entry().InstanceVersion(); err == nil {
		r.Loader = v.String()
	}
	for _, d := range c.Devices() {
		r.Devices = append(r.Devices, device{
			Name:       d.DeviceName,
			Type:       d.DeviceType.String(),
			APIVersion: d.APIVersion.String(),
			VendorID:   d.VendorID,
			DeviceID:   d.DeviceID,
		})
	}
	return r
}

func writeReport(w io.Writer, format string, r report) error {
	switch format {
	case "", "text":
		printReport(w, r)
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	default:
		return fmt.Errorf("unknown --format %q (want text, yaml or json)", format)
	}
}

// initContext turns an Init panic back into an error.
func initContext(info cvk.ContextInfo, d cvk.Driver) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				panic(r)
			}
			err = e
		}
	}()
	cvk.Init(info, cvk.WithDriver(d))
	return nil
}

func printReport(w io.Writer, r report) {
	fmt.Fprintf(w, "application: %s\n", r.Application)
	fmt.Fprintf(w, "engine:      %s\n", r.Engine)
	fmt.Fprintf(w, "api version: %s\n", r.APIVersion)
	if r.Loader != "" {
		fmt.Fprintf(w, "loader:      %s\n", r.Loader)
	}
	fmt.Fprintf(w, "debugging:   %t\n", r.Debugging)

	printList(w, "layers", r.Layers)
	printList(w, "extensions", r.Extensions)

	fmt.Fprintf(w, "devices (%d):\n", len(r.Devices))
	for i, d := range r.Devices {
		fmt.Fprintf(w, "  [%d] %s (%s, api %s)\n", i, d.Name, d.Type, d.APIVersion)
	}
}

func printList(w io.Writer, title string, items []string) {
	fmt.Fprintf(w, "%s (%d):\n", title, len(items))
	for _, item := range items {
		fmt.Fprintf(w, "  %s\n", item)
	}
}

func newAdaptersCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "adapters",
		Short: "List adapters seen by the gogpu HAL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := a.backend()
			if err != nil {
				return err
			}
			adapters, err := probe.Adapters(backend)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(adapters) == 0 {
				return errors.New("no adapters found")
			}
			for i, ad := range adapters {
				fmt.Fprintf(w, "[%d] %s\n", i, ad)
			}
			return nil
		},
	}
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cvkinfo %s (commit %s, built %s)\n",
				a.build.Version, a.build.Commit, a.build.Date)
		},
	}
}
