package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.gitCommit=...".
var (
	gitCommit = "unknown"
	buildDate = "unknown"
)

type versionInfo struct {
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
}

func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Report version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := versionInfo{GitCommit: gitCommit, BuildDate: buildDate, GoVersion: runtime.Version()}

			const flag = "output"
			of, err := cmd.Flags().GetString(flag)
			if err != nil {
				return errors.Wrapf(err, "error accessing flag %s for command %s", flag, cmd.Name())
			}

			switch of {
			case "":
				fmt.Fprintf(os.Stdout, "quizhub built from %s\n", v.GitCommit)
			case "short":
				fmt.Fprintln(os.Stdout, v.GitCommit)
			case "json":
				out, err := json.MarshalIndent(&v, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stdout, string(out))
			default:
				return errors.Errorf("invalid output format: %s", of)
			}

			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output format; available options are 'json' and 'short'")
	return cmd
}
