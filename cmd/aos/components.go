package aos

import (
	"fmt"

	"github.com/alios-things/aos-cube/pkg/commands"
	"github.com/alios-things/aos-cube/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newAddCmd(a *app) *cobra.Command {
	var f walkFlags
	cmd := &cobra.Command{
		Use:               "add <name|url>",
		Short:             MsgAddShort,
		Long:              MsgAddLong,
		Example:           MsgAddExample,
		Args:              usageArgs(cobra.ExactArgs(1)),
		GroupID:           "component",
		ValidArgsFunction: a.componentCompletion(false),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			out := a.printer()

			log.Info().Str("program", cfg.ProgramRoot()).Str("component", args[0]).Msg("Adding component")
			result, err := commands.AddComponent(cmd.Context(), commands.AddComponentOptions{
				FS:       a.fs,
				Config:   cfg,
				Sync:     a.synchronizer(cfg, out),
				Out:      out,
				Name:     args[0],
				Ignore:   f.ignore,
				Depth:    f.resolveDepth(cmd, cfg),
				Protocol: f.protocol,
			})
			if err != nil {
				return err
			}

			if !result.Changed {
				out.Info(fmt.Sprintf(MsgAlreadyAdded, args[0]))
				return nil
			}
			for _, id := range result.Added {
				out.Info(fmt.Sprintf(MsgComponentAdded, id))
			}
			return nil
		},
	}
	f.register(cmd, true)
	return cmd
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:               "rm <name>",
		Short:             MsgRmShort,
		Long:              MsgRmLong,
		Args:              usageArgs(cobra.ExactArgs(1)),
		GroupID:           "component",
		ValidArgsFunction: a.componentCompletion(true),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			out := a.printer()

			log.Info().Str("program", cfg.ProgramRoot()).Str("component", args[0]).Msg("Removing component")
			result, err := commands.RemoveComponent(cmd.Context(), commands.RemoveComponentOptions{
				FS:     a.fs,
				Config: cfg,
				Out:    out,
				Name:   args[0],
			})
			if err != nil {
				return err
			}

			if !result.Changed {
				out.Info(fmt.Sprintf(MsgNotAdded, args[0]))
				return nil
			}
			for _, id := range result.Removed {
				out.Info(fmt.Sprintf(MsgComponentRemoved, id))
			}
			return nil
		},
	}
}

func newLsCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "ls",
		Short:   MsgLsShort,
		Long:    MsgLsLong,
		Example: MsgLsExample,
		Args:    usageArgs(cobra.NoArgs),
		GroupID: "component",
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := a.renderer(format)
			if err != nil {
				return err
			}
			result, err := a.listComponents()
			if err != nil {
				return err
			}
			return renderer.RenderResult(result)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", ui.FormatTable.String(), MsgFlagFormat)
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return ui.Formats, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func (a *app) listComponents() (*commands.ListComponentsResult, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	wd, err := a.dir()
	if err != nil {
		return nil, err
	}
	return commands.ListComponents(commands.ListComponentsOptions{
		FS:      a.fs,
		Config:  cfg,
		WorkDir: wd,
	})
}

// componentCompletion completes component names; added limits it to the
// components the program adds
func (a *app) componentCompletion(added bool) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		result, err := a.listComponents()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var names []string
		for _, c := range result.Components {
			if added && !c.CubeAdd {
				continue
			}
			names = append(names, c.Name)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	}
}
