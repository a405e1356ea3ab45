package main

import (
	"context"
	"fmt"
	"io"

	"github.com/itsatony/go-hoof"
	"github.com/spf13/pflag"
)

// renderConfig holds parsed render command configuration
type renderConfig struct {
	engineFlags
	dataJSON     string
	dataFilePath string
	requestPath  string
	locale       string
	outputPath   string
	fs           *pflag.FlagSet
}

func runRender(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseRenderFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	data, err := loadData(cfg.dataJSON, cfg.dataFilePath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidData, err)
		return ExitCodeInputError
	}

	opts, err := cfg.options(cfg.fs, stderr)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgConfigFailed, err)
		return ExitCodeInputError
	}
	engine, err := hoof.New(opts...)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgEngineFailed, err)
		return ExitCodeError
	}
	defer engine.Close()

	result, err := engine.Render(context.Background(), cfg.view, data, &hoof.Request{
		Path:   cfg.requestPath,
		Locale: cfg.locale,
	})
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgRenderFailed, err)
		return ExitCodeError
	}

	if err := writeOutput(cfg.outputPath, []byte(result), stdout); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
		return ExitCodeError
	}

	return ExitCodeSuccess
}

func parseRenderFlags(args []string) (*renderConfig, error) {
	fs := pflag.NewFlagSet(CmdNameRender, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &renderConfig{fs: fs}
	cfg.bind(fs)
	fs.StringVarP(&cfg.dataJSON, FlagData, FlagDataShort, "", "")
	fs.StringVarP(&cfg.dataFilePath, FlagDataFile, FlagDataFileShort, "", "")
	fs.StringVarP(&cfg.requestPath, FlagPath, FlagPathShort, FlagDefaultPath, "")
	fs.StringVarP(&cfg.locale, FlagLocale, FlagLocaleShort, "", "")
	fs.BoolVarP(&cfg.minify, FlagMinify, FlagMinifyShort, false, "")
	fs.BoolVar(&cfg.production, FlagProduction, false, "")
	fs.StringVarP(&cfg.outputPath, FlagOutput, FlagOutputShort, FlagDefaultOutput, "")
	fs.BoolVarP(&cfg.verbose, FlagVerbose, FlagVerboseShort, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.resolveView(fs); err != nil {
		return nil, err
	}

	return cfg, nil
}
