package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-hoof"
	"github.com/spf13/pflag"
)

// validateConfig holds parsed validate command configuration
type validateConfig struct {
	engineFlags
	format string
	fs     *pflag.FlagSet
}

// validationOutput is the JSON report of a validation run.
type validationOutput struct {
	View  string `json:"view"`
	Valid bool   `json:"valid"`
	Kind  string `json:"kind,omitempty"`
	Error string `json:"error,omitempty"`
}

// runValidate renders the view without data and reports whether it
// loads, links and evaluates.
func runValidate(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseValidateFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	opts, err := cfg.options(cfg.fs, stderr)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgConfigFailed, err)
		return ExitCodeInputError
	}
	opts = append(opts, hoof.WithStrictPlaceholders(true))
	engine, err := hoof.New(opts...)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgEngineFailed, err)
		return ExitCodeError
	}
	defer engine.Close()

	report := validationOutput{View: cfg.view, Valid: true}
	if _, err := engine.Render(context.Background(), cfg.view, nil, nil); err != nil {
		report.Valid = false
		report.Kind = errorKind(err)
		report.Error = err.Error()
	}

	if cfg.format == OutputFormatJSON {
		jsonBytes, _ := json.MarshalIndent(report, "", "  ")
		fmt.Fprintln(stdout, string(jsonBytes))
	} else if report.Valid {
		fmt.Fprintln(stdout, ValidationTextSuccess)
	} else {
		fmt.Fprintln(stdout, ValidationTextFailure)
		fmt.Fprintf(stdout, ValidationTextDetail+FmtNewline, report.Kind, report.Error)
	}

	if !report.Valid {
		return ExitCodeValidationError
	}
	return ExitCodeSuccess
}

func parseValidateFlags(args []string) (*validateConfig, error) {
	fs := pflag.NewFlagSet(CmdNameValidate, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &validateConfig{fs: fs}
	cfg.bind(fs)
	fs.StringVarP(&cfg.format, FlagFormat, FlagFormatShort, FlagDefaultFormat, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.format != OutputFormatText && cfg.format != OutputFormatJSON {
		return nil, errors.New(ErrMsgInvalidFormat)
	}
	if err := cfg.resolveView(fs); err != nil {
		return nil, err
	}
	return cfg, nil
}

// errorKind reads the kind recorded on a render error.
func errorKind(err error) string {
	var customErr *cuserr.CustomError
	if errors.As(err, &customErr) {
		if kind, ok := customErr.GetMetadata(hoof.MetaKeyKind); ok {
			return kind
		}
	}
	return hoof.KindRenderAbort
}
