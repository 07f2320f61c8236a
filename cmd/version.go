package cmd

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the crashtriage version",
		Long:  "Print the module version, the VCS revision it was built from and the Go toolchain.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok {
				cmd.Println("crashtriage version unknown")
				return
			}

			cmd.Print(formatVersion(info))
		},
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func formatVersion(info *debug.BuildInfo) string {
	version := info.Main.Version
	if version == "" {
		version = "(devel)"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "crashtriage %s\n", version)

	var revision, modified string

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value
		}
	}

	if revision != "" {
		if modified == "true" {
			revision += " (dirty)"
		}

		fmt.Fprintf(&b, "revision    %s\n", revision)
	}

	fmt.Fprintf(&b, "built with  %s\n", info.GoVersion)

	return b.String()
}
