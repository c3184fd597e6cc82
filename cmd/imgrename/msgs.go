package imgrename

import (
	_ "embed"
	"strings"
)

// Short messages
const (
	MsgRootShort       = "Rename microscopy images from field templates"
	MsgRenameShort     = "Copy images to their new names"
	MsgPreviewShort    = "Show the new name of every image without copying"
	MsgValidateShort   = "Check every image can be renamed"
	MsgFieldsShort     = "List the configured fields"
	MsgGenConfigShort  = "Print the default configuration"
	MsgUndoShort       = "Move renamed files back using a rename log"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig     = "Project configuration file (.toml, .yaml or .yml)"
	MsgFlagSet        = "Set a field on every image, as Name=value (repeatable)"
	MsgFlagSheet      = "Per-file values from a csv, yaml or toml sheet"
	MsgFlagOut        = "Output directory (required in manual output mode)"
	MsgFlagDryRun     = "Validate and show new names without copying"
	MsgFlagKeepSource = "Leave source files in place"
	MsgFlagOverwrite  = "Replace files already at the destination"
	MsgFlagWrite      = "Write the configuration to the user config file"
	MsgFlagCommented  = "Comment out every value so the file documents the defaults"

	MsgRenameCancelled = "Cancelling after the current file..."
	MsgConfigWritten   = "Configuration written to %s\n"
	MsgConfigExists    = "%s already exists; remove it first"
	MsgUndoDone        = "%d files restored, %d failed\n"
	MsgUndoDryRun      = "Would restore %s -> %s\n"
	MsgUndoRestored    = "Restored %s -> %s\n"
	MsgUndoRemoved     = "Removed copy %s (source %s still present)\n"
	MsgUndoFailed      = "ERROR: %s: %v\n"

	MsgErrBadSet = "--set expects Name=value, got %q"
	MsgErrFailed = "%d of %d files could not be renamed"
)

// Long messages
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/rename-long.txt
	msgRenameLongRaw string
	MsgRenameLong    = strings.TrimSpace(msgRenameLongRaw)

	//go:embed msgs/rename-example.txt
	msgRenameExampleRaw string
	MsgRenameExample    = strings.TrimRight(msgRenameExampleRaw, "\n")

	//go:embed msgs/preview-long.txt
	msgPreviewLongRaw string
	MsgPreviewLong    = strings.TrimSpace(msgPreviewLongRaw)

	//go:embed msgs/validate-long.txt
	msgValidateLongRaw string
	MsgValidateLong    = strings.TrimSpace(msgValidateLongRaw)

	//go:embed msgs/genconfig-long.txt
	msgGenConfigLongRaw string
	MsgGenConfigLong    = strings.TrimSpace(msgGenConfigLongRaw)

	//go:embed msgs/undo-long.txt
	msgUndoLongRaw string
	MsgUndoLong    = strings.TrimSpace(msgUndoLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
