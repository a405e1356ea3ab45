package main

// Command names
const (
	CmdNameRender   = "render"
	CmdNameValidate = "validate"
	CmdNameVersion  = "version"
	CmdNameHelp     = "help"

	// HelpTopicDirectives is a help topic, not a command.
	HelpTopicDirectives = "directives"
)

// Flag names - long form
const (
	FlagView       = "view"
	FlagViews      = "views"
	FlagConfig     = "config"
	FlagData       = "data"
	FlagDataFile   = "data-file"
	FlagPath       = "path"
	FlagLocale     = "locale"
	FlagMinify     = "minify"
	FlagProduction = "production"
	FlagOutput     = "output"
	FlagFormat     = "format"
	FlagVerbose    = "verbose"
)

// Flag names - short form
const (
	FlagViewShort     = "t"
	FlagViewsShort    = "V"
	FlagConfigShort   = "c"
	FlagDataShort     = "d"
	FlagDataFileShort = "f"
	FlagPathShort     = "p"
	FlagLocaleShort   = "l"
	FlagMinifyShort   = "m"
	FlagOutputShort   = "o"
	FlagFormatShort   = "F"
	FlagVerboseShort  = "v"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
	FlagDefaultPath   = "/"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Data file extensions decoded as YAML; everything else is JSON
const (
	DataExtYAML = ".yaml"
	DataExtYML  = ".yml"
)

// Error messages - ALL must be constants
const (
	ErrMsgUnknownCommand    = "unknown command"
	ErrMsgMissingView       = "view path required"
	ErrMsgInvalidFlags      = "invalid flags"
	ErrMsgInvalidData       = "invalid data"
	ErrMsgReadFileFailed    = "failed to read file"
	ErrMsgWriteOutputFailed = "failed to write output"
	ErrMsgConfigFailed      = "loading configuration failed"
	ErrMsgEngineFailed      = "creating engine failed"
	ErrMsgRenderFailed      = "rendering view failed"
	ErrMsgInvalidFormat     = "invalid output format"
	ErrMsgDataNotObject     = "data must be an object"
)

// Help text templates
const (
	HelpMainUsage = `hoof - HTML view templating CLI

Usage:
    hoof <command> [options]

Commands:
    render      Render a view with data
    validate    Check that a view renders
    version     Show version information
    help        Show help for a command

Use "hoof help <command>" for more information about a command.
Use "hoof help directives" for the view directive reference.`

	HelpRenderUsage = `Render a view with data

Usage:
    hoof render [options] [view]

Options:
    -t, --view <path>        View path below the views root, extension optional
    -V, --views <dir>        Views root directory (default: views)
    -c, --config <file>      YAML configuration file
    -d, --data <json>        JSON data string
    -f, --data-file <file>   JSON or YAML data file
    -p, --path <path>        Request path (default: /)
    -l, --locale <locale>    Request locale or Accept-Language value
    -m, --minify             Minify the output
        --production         Skip debug directives
    -o, --output <file>      Output file (default: stdout)
    -v, --verbose            Log render tracing to stderr

Examples:
    hoof render pages/home -d '{"title": "Home"}'
    hoof render -t pages/home -f data.yaml -l de
    hoof render -c hoof.yaml -t pages/home -o home.html`

	HelpValidateUsage = `Check that a view renders

Usage:
    hoof validate [options] [view]

Options:
    -t, --view <path>        View path below the views root
    -V, --views <dir>        Views root directory (default: views)
    -c, --config <file>      YAML configuration file
    -F, --format <format>    Output format: text, json (default: text)

Examples:
    hoof validate pages/home
    hoof validate -t pages/home -F json`

	HelpVersionUsage = `Show version information

Usage:
    hoof version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    hoof help [command]

Commands:
    render      Show help for render command
    validate    Show help for validate command
    version     Show help for version command
    directives  List view directives`

	HelpDirectivesUsage = `View directives

Elements:
    <if :="expr">, <elif :="expr">, <else>     First truthy branch renders
    <case :="expr"> <when :="v"> <default>      First matching when renders
    <for :="i from 1 to 3">                     Counted loop, "through" is inclusive
    <each :="item in items">                    Loop over a list or map
    <each :="value, key in expr">               Value and key or index
    <include file="path" else="path">           Optional partial
    <require file="path">                       Partial, render fails when missing
    <extends file="path"/> <block name="n">     Layout inheritance
    <cached key="k" ttl="3600">                 Fragment cache
    <lang key="file.key" default="text">        Translation
    <csrf>                                      Session CSRF token input
    <debug log|info|warn|error prod no-eval>    Log a message, dropped in production

Attributes:
    :class="{name: expr}"                       Add classes whose value is truthy
    :hide="expr"                                Drop the element when truthy
    :attr="expr"                                Bind any other attribute

Placeholders:
    {{ expr }}                                  Evaluated in text and attribute values`
)

// Version output format templates
const (
	VersionTextTemplate = "hoof version %s\nCommit: %s\nGo: %s"
	VersionUnknown      = "unknown"
	BuildSettingCommit  = "vcs.revision"
)

// Validation output
const (
	ValidationTextSuccess = "View is valid"
	ValidationTextFailure = "View is invalid"
	ValidationTextDetail  = "  [%s] %v"
)

// CLI metadata
const (
	CLIName = "hoof"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtNewline         = "\n"
)

// Input source indicators
const (
	InputSourceStdin = "-"
)
