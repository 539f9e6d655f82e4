package commands

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Generate build files from a source tree's build descriptions"
	MsgVersionShort    = "Print version information"
	MsgVersionLong     = "Print detailed version information including commit hash and build date"
	MsgBackendsShort   = "List the available build backends"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate the man page"

	// Version output
	MsgVersionFormat = "treegen version %s\n"
	MsgCommitFormat  = "Commit: %s\n"
	MsgBuiltFormat   = "Built:  %s\n"

	// Flag descriptions
	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun       = "Preview changes without writing any file"
	MsgFlagNotTopObjDir = "Do not use the current directory as the top object directory"
	MsgFlagDiff         = "Print a diff of every changed output file"
	MsgFlagBackend      = "Build backend to run (repeatable or comma separated)"
	MsgFlagConfig       = "Configure output file (default config.status.toml in the object directory)"
	MsgFlagTopSrcDir    = "Override the top source directory"
	MsgFlagFormat       = "Output format: auto, term, text or json"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/root-example.txt
	msgRootExampleRaw string
	MsgRootExample    = strings.TrimRight(msgRootExampleRaw, "\n")

	//go:embed msgs/backends-long.txt
	msgBackendsLongRaw string
	MsgBackendsLong    = strings.TrimSpace(msgBackendsLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)
)
