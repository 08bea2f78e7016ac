package aos

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "AliOS Things program and dependency manager"
	MsgImportShort     = "Import a program or library and its dependencies"
	MsgAddShort        = "Add a component to the program"
	MsgRmShort         = "Remove a component from the program"
	MsgDeployShort     = "Import missing libraries of the current repository"
	MsgCodesShort      = "Import an optional code reference"
	MsgUpdateShort     = "Update the current repository and its libraries"
	MsgSyncShort       = "Record the checked out revisions in reference files"
	MsgStatusShort     = "Show uncommitted changes of every checkout"
	MsgPublishShort    = "Commit and push every checkout, libraries first"
	MsgLsShort         = "List components of the program and the SDK"
	MsgConfigShort     = "Get, set or unset configuration values"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgNothingModified  = "Nothing modified"
	MsgComponentAdded   = "Added %s"
	MsgComponentRemoved = "Removed %s"
	MsgAlreadyAdded     = "%s is already part of the program"
	MsgNotAdded         = "%s is not part of the program"
	MsgConfigSet        = "%s=%s (%s)"
	MsgConfigUnset      = "%s unset (%s)"
	MsgConfigEmpty      = "%s is not set"
	MsgVersionFormat    = "aos version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrLoadConfig   = "failed to load configuration: %w"
	MsgErrUnknownKey   = "unknown configuration key %q, known keys: %s"
	MsgErrUnsetValue   = "--unset takes no value"
	MsgErrListWithArgs = "--list takes no arguments"
	MsgErrGlobalNeeds  = "--global needs a key to set or unset"

	// Flag descriptions
	MsgFlagVerbose    = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagQuiet      = "Only print warnings and errors"
	MsgFlagIgnore     = "Turn reference conflicts and VCS failures into warnings"
	MsgFlagDepth      = "Clone depth, 0 for the full history (default from DEPTH)"
	MsgFlagProtocol   = "Transport protocol for clones: https, http, ssh (default from PROTOCOL)"
	MsgFlagClean      = "Discard uncommitted changes"
	MsgFlagCleanFiles = "Also delete untracked and ignored files"
	MsgFlagCleanDeps  = "Allow removing local or unpublished libraries"
	MsgFlagKeepRefs   = "Keep references whose checkout is missing"
	MsgFlagAll        = "Push every branch instead of the current one"
	MsgFlagMessage    = "Commit message, asked for when omitted"
	MsgFlagFormat     = "Output format: table, json, yaml, xml"
	MsgFlagGlobal     = "Use the global configuration instead of the program's"
	MsgFlagUnset      = "Remove the value"
	MsgFlagList       = "List every value in effect"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/import-long.txt
	msgImportLongRaw string
	MsgImportLong    = strings.TrimSpace(msgImportLongRaw)

	//go:embed msgs/import-example.txt
	msgImportExampleRaw string
	MsgImportExample    = strings.TrimRight(msgImportExampleRaw, "\n")

	//go:embed msgs/add-long.txt
	msgAddLongRaw string
	MsgAddLong    = strings.TrimSpace(msgAddLongRaw)

	//go:embed msgs/add-example.txt
	msgAddExampleRaw string
	MsgAddExample    = strings.TrimRight(msgAddExampleRaw, "\n")

	//go:embed msgs/rm-long.txt
	msgRmLongRaw string
	MsgRmLong    = strings.TrimSpace(msgRmLongRaw)

	//go:embed msgs/deploy-long.txt
	msgDeployLongRaw string
	MsgDeployLong    = strings.TrimSpace(msgDeployLongRaw)

	//go:embed msgs/codes-long.txt
	msgCodesLongRaw string
	MsgCodesLong    = strings.TrimSpace(msgCodesLongRaw)

	//go:embed msgs/update-long.txt
	msgUpdateLongRaw string
	MsgUpdateLong    = strings.TrimSpace(msgUpdateLongRaw)

	//go:embed msgs/update-example.txt
	msgUpdateExampleRaw string
	MsgUpdateExample    = strings.TrimRight(msgUpdateExampleRaw, "\n")

	//go:embed msgs/sync-long.txt
	msgSyncLongRaw string
	MsgSyncLong    = strings.TrimSpace(msgSyncLongRaw)

	//go:embed msgs/status-long.txt
	msgStatusLongRaw string
	MsgStatusLong    = strings.TrimSpace(msgStatusLongRaw)

	//go:embed msgs/publish-long.txt
	msgPublishLongRaw string
	MsgPublishLong    = strings.TrimSpace(msgPublishLongRaw)

	//go:embed msgs/ls-long.txt
	msgLsLongRaw string
	MsgLsLong    = strings.TrimSpace(msgLsLongRaw)

	//go:embed msgs/ls-example.txt
	msgLsExampleRaw string
	MsgLsExample    = strings.TrimRight(msgLsExampleRaw, "\n")

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)

	//go:embed msgs/config-example.txt
	msgConfigExampleRaw string
	MsgConfigExample    = strings.TrimRight(msgConfigExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
