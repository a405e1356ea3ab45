package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/itsatony/go-hoof"
	"github.com/spf13/pflag"
)

// versionConfig holds parsed version command configuration
type versionConfig struct {
	format string
}

// versionOutput represents JSON output for version
type versionOutput struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

func runVersion(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseVersionFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFormat, err)
		return ExitCodeUsageError
	}

	v := getVersionInfo()
	if cfg.format == OutputFormatJSON {
		jsonBytes, _ := json.MarshalIndent(v, "", "  ")
		fmt.Fprintln(stdout, string(jsonBytes))
		return ExitCodeSuccess
	}
	fmt.Fprintf(stdout, VersionTextTemplate+FmtNewline, v.Version, v.Commit, v.GoVersion)
	return ExitCodeSuccess
}

func parseVersionFlags(args []string) (*versionConfig, error) {
	fs := pflag.NewFlagSet(CmdNameVersion, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &versionConfig{}
	fs.StringVarP(&cfg.format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.format != OutputFormatText && cfg.format != OutputFormatJSON {
		return nil, errors.New(ErrMsgInvalidFormat)
	}

	return cfg, nil
}

// getVersionInfo reports the library version and the VCS revision stamped
// into the binary, when present.
func getVersionInfo() versionOutput {
	v := versionOutput{
		Version:   hoof.Version,
		Commit:    VersionUnknown,
		GoVersion: runtime.Version(),
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == BuildSettingCommit && s.Value != "" {
				v.Commit = s.Value
			}
		}
	}
	return v
}
