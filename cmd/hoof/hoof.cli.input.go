package main

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/itsatony/go-hoof"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// engineFlags are the flags shared by commands that build an engine.
type engineFlags struct {
	view       string
	viewsRoot  string
	configPath string
	production bool
	minify     bool
	verbose    bool
}

// bind registers the shared flags on fs.
func (f *engineFlags) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&f.view, FlagView, FlagViewShort, "", "")
	fs.StringVarP(&f.viewsRoot, FlagViews, FlagViewsShort, hoof.DefaultViewsRoot, "")
	fs.StringVarP(&f.configPath, FlagConfig, FlagConfigShort, "", "")
}

// resolveView takes the view from the first positional argument when the
// flag is unset.
func (f *engineFlags) resolveView(fs *pflag.FlagSet) error {
	if f.view == "" && fs.NArg() > 0 {
		f.view = fs.Arg(0)
	}
	if f.view == "" {
		return errors.New(ErrMsgMissingView)
	}
	return nil
}

// options maps the flags onto engine options. Config file options come
// first so explicitly set flags override them.
func (f *engineFlags) options(flags *pflag.FlagSet, stderr io.Writer) ([]hoof.Option, error) {
	var opts []hoof.Option
	if f.configPath != "" {
		cfg, err := hoof.LoadConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		cfgOpts, err := cfg.Options()
		if err != nil {
			return nil, err
		}
		opts = append(opts, cfgOpts...)
	}
	if f.configPath == "" || flags.Changed(FlagViews) {
		opts = append(opts, hoof.WithViewsRoot(f.viewsRoot))
	}
	if f.configPath == "" {
		translator, err := discoverTranslator(f.viewsRoot)
		if err != nil {
			return nil, err
		}
		if translator != nil {
			opts = append(opts, hoof.WithTranslator(translator))
		}
	}
	if f.production {
		opts = append(opts, hoof.WithProduction(true))
	}
	if f.minify {
		opts = append(opts, hoof.WithMinifyOutput(true))
	}
	if f.verbose {
		opts = append(opts, hoof.WithLogger(newLogger(stderr)))
	}
	return opts, nil
}

// discoverTranslator builds a translator whose supported locales are the
// folders below <views>/lang. It returns nil when there is no lang folder.
func discoverTranslator(viewsRoot string) (*hoof.YAMLTranslator, error) {
	entries, err := os.ReadDir(filepath.Join(viewsRoot, hoof.DefaultLangDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var locales []string
	for _, e := range entries {
		if e.IsDir() {
			locales = append(locales, e.Name())
		}
	}
	if len(locales) == 0 {
		return nil, nil
	}
	reader, err := hoof.NewFilesystemReader(viewsRoot)
	if err != nil {
		return nil, err
	}
	return hoof.NewYAMLTranslator(reader, hoof.DefaultLocale, locales)
}

// newLogger returns a development console logger writing to w.
func newLogger(w io.Writer) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

// loadData decodes render data from a file or an inline JSON string. Files
// ending in .yaml or .yml are YAML, everything else is JSON.
func loadData(jsonStr, filePath string, stdin io.Reader) (map[string]any, error) {
	var raw []byte
	isYAML := false

	switch {
	case filePath == InputSourceStdin:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		raw = data
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		raw = data
		ext := strings.ToLower(filepath.Ext(filePath))
		isYAML = ext == DataExtYAML || ext == DataExtYML
	case jsonStr != "":
		raw = []byte(jsonStr)
	default:
		return make(map[string]any), nil
	}

	var result map[string]any
	if isYAML {
		if err := yaml.Unmarshal(raw, &result); err != nil {
			return nil, err
		}
	} else if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, errors.New(ErrMsgDataNotObject)
	}
	return result, nil
}

// writeOutput writes content to a file or stdout
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == FlagDefaultOutput {
		_, err := stdout.Write(data)
		return err
	}

	return os.WriteFile(path, data, FilePermissions)
}
