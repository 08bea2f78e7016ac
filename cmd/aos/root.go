// Package aos is the command line interface of aos-cube.
package aos

import (
	"embed"
	"fmt"

	"github.com/alios-things/aos-cube/internal/version"
	"github.com/alios-things/aos-cube/pkg/cobrax/topics"
	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/alios-things/aos-cube/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics
var topicFiles embed.FS

// NewRootCmd creates and returns the root command
func NewRootCmd(opts ...Option) *cobra.Command {
	initTemplateFormatting()

	a := newApp(opts...)
	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "aos",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return usageError(fmt.Errorf("no command specified"))
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, MsgFlagQuiet)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "repo",
		Title: "REPOSITORIES:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "component",
		Title: "COMPONENTS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newImportCmd(a))
	rootCmd.AddCommand(newDeployCmd(a))
	rootCmd.AddCommand(newCodesCmd(a))
	rootCmd.AddCommand(newUpdateCmd(a))
	rootCmd.AddCommand(newSyncCmd(a))
	rootCmd.AddCommand(newStatusCmd(a))
	rootCmd.AddCommand(newPublishCmd(a))
	rootCmd.AddCommand(newAddCmd(a))
	rootCmd.AddCommand(newRmCmd(a))
	rootCmd.AddCommand(newLsCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	tm, err := topics.InitializeWithOptions(rootCmd, topicFiles, "topics", topics.Options{
		Extensions: []string{".md"},
		Renderer:   topics.NewGlamourRenderer(ui.ColorEnabled(a.stdout)),
	})
	if err == nil {
		for _, c := range rootCmd.Commands() {
			if c.Name() == "topics" {
				c.GroupID = "misc"
			}
		}
		log.Trace().Int("topics", len(tm.ListTopics())).Msg("Help topics loaded")
	}

	return rootCmd
}
