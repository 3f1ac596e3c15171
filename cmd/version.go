package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// BuildInfo is what the binary knows about the commit it was built from.
// `go run` and `go test` binaries carry no vcs information, they report "@latest".
type BuildInfo struct {
	Name      string `json:"name,omitempty"`
	Revision  string `json:"revision"`
	Time      string `json:"time"`
	Modified  bool   `json:"modified"`
	GoVersion string `json:"go"`
}

func (b BuildInfo) String() string {
	if b.Name == "" {
		return fmt.Sprintf("version: %s from %s", b.Revision, b.Time)
	}

	return fmt.Sprintf("%s version: %s from %s", b.Name, b.Revision, b.Time)
}

// ReadBuildInfo returns the BuildInfo of the running binary.
func ReadBuildInfo(name string) BuildInfo {
	info := BuildInfo{Name: strings.TrimSpace(name), GoVersion: runtime.Version()}

	if build, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range build.Settings {
			switch setting.Key {
			case "vcs.revision":
				info.Revision = setting.Value
			case "vcs.time":
				info.Time = setting.Value
			case "vcs.modified":
				info.Modified = setting.Value == "true"
			}
		}
	}

	if info.Modified || info.Revision == "" {
		info.Revision = "@latest"
		info.Time = time.Now().UTC().Format(time.RFC3339)
	}

	return info
}

// Version returns the `version` command. With --json the build info is printed as JSON.
func Version(name string) *cobra.Command {
	var asJSON bool

	short := "Print version"
	if n := strings.TrimSpace(name); n != "" {
		short = "Print " + n + " version"
	}

	command := &cobra.Command{
		Use:                   "version",
		Short:                 short,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := ReadBuildInfo(name)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")

				return enc.Encode(info) //nolint:wrapcheck // nothing to add
			}

			fmt.Fprintln(cmd.OutOrStdout(), info)

			return nil
		},
	}

	command.Flags().BoolVar(&asJSON, "json", false, "print the build info as JSON")

	return command
}
