package aos

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alios-things/aos-cube/pkg/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	var global, unset, list bool
	cmd := &cobra.Command{
		Use:     "config [var] [value]",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		Example: MsgConfigExample,
		Args:    usageArgs(cobra.MaximumNArgs(2)),
		GroupID: "misc",
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return config.Keys, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if list && len(args) > 0 {
				return usageError(fmt.Errorf(MsgErrListWithArgs))
			}
			if unset && len(args) != 1 {
				return usageError(fmt.Errorf(MsgErrUnsetValue))
			}
			if global && len(args) == 0 {
				return usageError(fmt.Errorf(MsgErrGlobalNeeds))
			}

			cfg, err := a.config()
			if err != nil {
				return fmt.Errorf(MsgErrLoadConfig, err)
			}
			out := a.printer()
			scope := config.ScopeProgram
			if global {
				scope = config.ScopeGlobal
			}

			switch {
			case len(args) == 0:
				return listConfig(cfg, out.Table)
			case unset:
				if err := checkKey(args[0]); err != nil {
					return err
				}
				if err := cfg.Unset(scope, args[0]); err != nil {
					return err
				}
				out.Info(fmt.Sprintf(MsgConfigUnset, args[0], scope))
			case len(args) == 2:
				if err := checkKey(args[0]); err != nil {
					return err
				}
				if err := cfg.Set(scope, args[0], args[1]); err != nil {
					return err
				}
				out.Info(fmt.Sprintf(MsgConfigSet, args[0], args[1], scope))
			default:
				if !cfg.Has(args[0]) {
					out.Info(fmt.Sprintf(MsgConfigEmpty, args[0]))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), cfg.Get(args[0]))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&global, "global", "G", false, MsgFlagGlobal)
	cmd.Flags().BoolVarP(&unset, "unset", "U", false, MsgFlagUnset)
	cmd.Flags().BoolVarP(&list, "list", "L", false, MsgFlagList)
	return cmd
}

func checkKey(key string) error {
	if config.IsKnownKey(key) {
		return nil
	}
	return usageError(fmt.Errorf(MsgErrUnknownKey, key, strings.Join(config.Keys, ", ")))
}

func listConfig(cfg *config.Config, table func(header []string, rows [][]string) error) error {
	values := cfg.All()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, values[k]})
	}
	return table([]string{"KEY", "VALUE"}, rows)
}
