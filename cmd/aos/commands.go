package aos

import (
	"github.com/alios-things/aos-cube/pkg/config"
	"github.com/alios-things/aos-cube/pkg/deps"
	"github.com/alios-things/aos-cube/pkg/filesystem"
	"github.com/alios-things/aos-cube/pkg/logging"
	"github.com/alios-things/aos-cube/pkg/vcs"
	"github.com/spf13/cobra"
)

// walkFlags are shared by the commands that clone
type walkFlags struct {
	ignore   bool
	depth    int
	protocol string
}

func (f *walkFlags) register(cmd *cobra.Command, protocol bool) {
	cmd.Flags().BoolVarP(&f.ignore, "ignore", "I", false, MsgFlagIgnore)
	cmd.Flags().IntVar(&f.depth, "depth", 0, MsgFlagDepth)
	if protocol {
		cmd.Flags().StringVar(&f.protocol, "protocol", "", MsgFlagProtocol)
	}
}

// resolveDepth falls back to the configured depth when --depth is absent
func (f *walkFlags) resolveDepth(cmd *cobra.Command, cfg *config.Config) int {
	if cmd.Flags().Changed("depth") {
		return f.depth
	}
	return cfg.GetInt(config.KeyDepth)
}

// walk is the part every synchronizer command starts with
type walk struct {
	cfg  *config.Config
	sync *deps.Synchronizer
	path string
}

func (a *app) startWalk(cmd *cobra.Command) (*walk, error) {
	logger := logging.GetLogger("cmd." + cmd.Name())
	logger.Info().
		Strs("args", cmd.Flags().Args()).
		Msg("Starting walk")
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	path, err := a.abs("")
	if err != nil {
		return nil, err
	}
	return &walk{cfg: cfg, sync: a.synchronizer(cfg, a.printer()), path: path}, nil
}

// source makes a relative local path absolute so it does not depend on
// the process working directory; URLs and bare names pass unchanged
func (a *app) source(raw string) (string, error) {
	url, rev := vcs.SplitRevision(raw)
	if vcs.IsURL(url) {
		return raw, nil
	}
	abs, err := a.abs(url)
	if err != nil {
		return "", err
	}
	if !filesystem.Exists(a.fs, abs) {
		return raw, nil
	}
	if rev != "" {
		abs += "#" + rev
	}
	return abs, nil
}

func newImportCmd(a *app) *cobra.Command {
	var f walkFlags
	cmd := &cobra.Command{
		Use:     "import <url> [path]",
		Short:   MsgImportShort,
		Long:    MsgImportLong,
		Example: MsgImportExample,
		Args:    usageArgs(cobra.RangeArgs(1, 2)),
		GroupID: "repo",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.startWalk(cmd)
			if err != nil {
				return err
			}
			url, err := a.source(args[0])
			if err != nil {
				return err
			}
			dest := vcs.RepoName(w.sync.ExpandURL(url))
			if len(args) > 1 {
				dest = args[1]
			}
			if dest, err = a.abs(dest); err != nil {
				return err
			}

			_, err = w.sync.Import(cmd.Context(), deps.ImportOptions{
				URL:      url,
				Path:     dest,
				Ignore:   f.ignore,
				Depth:    f.resolveDepth(cmd, w.cfg),
				Protocol: f.protocol,
			})
			return err
		},
	}
	f.register(cmd, true)
	return cmd
}

func newDeployCmd(a *app) *cobra.Command {
	var f walkFlags
	cmd := &cobra.Command{
		Use:     "deploy",
		Short:   MsgDeployShort,
		Long:    MsgDeployLong,
		Args:    usageArgs(cobra.NoArgs),
		GroupID: "repo",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.startWalk(cmd)
			if err != nil {
				return err
			}
			_, err = w.sync.Deploy(cmd.Context(), deps.DeployOptions{
				Path:     w.path,
				Ignore:   f.ignore,
				Depth:    f.resolveDepth(cmd, w.cfg),
				Protocol: f.protocol,
			})
			return err
		},
	}
	f.register(cmd, true)
	return cmd
}

func newCodesCmd(a *app) *cobra.Command {
	var f walkFlags
	cmd := &cobra.Command{
		Use:     "codes <name>",
		Short:   MsgCodesShort,
		Long:    MsgCodesLong,
		Args:    usageArgs(cobra.ExactArgs(1)),
		GroupID: "repo",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.startWalk(cmd)
			if err != nil {
				return err
			}
			_, err = w.sync.Codes(cmd.Context(), deps.CodesOptions{
				Path:     w.path,
				Name:     args[0],
				Ignore:   f.ignore,
				Depth:    f.resolveDepth(cmd, w.cfg),
				Protocol: f.protocol,
			})
			return err
		},
	}
	f.register(cmd, true)
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var (
		f          walkFlags
		clean      bool
		cleanFiles bool
		cleanDeps  bool
	)
	cmd := &cobra.Command{
		Use:     "update [rev]",
		Short:   MsgUpdateShort,
		Long:    MsgUpdateLong,
		Example: MsgUpdateExample,
		Args:    usageArgs(cobra.MaximumNArgs(1)),
		GroupID: "repo",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.startWalk(cmd)
			if err != nil {
				return err
			}
			opts := deps.UpdateOptions{
				Path:       w.path,
				Clean:      clean || cleanFiles,
				CleanFiles: cleanFiles,
				CleanDeps:  cleanDeps,
				Ignore:     f.ignore,
				Depth:      f.resolveDepth(cmd, w.cfg),
				Protocol:   f.protocol,
			}
			if len(args) > 0 {
				opts.Rev = args[0]
			}
			_, err = w.sync.Update(cmd.Context(), opts)
			return err
		},
	}
	f.register(cmd, true)
	cmd.Flags().BoolVarP(&clean, "clean", "C", false, MsgFlagClean)
	cmd.Flags().BoolVar(&cleanFiles, "clean-files", false, MsgFlagCleanFiles)
	cmd.Flags().BoolVar(&cleanDeps, "clean-deps", false, MsgFlagCleanDeps)
	return cmd
}

func newSyncCmd(a *app) *cobra.Command {
	var keepRefs bool
	cmd := &cobra.Command{
		Use:     "sync",
		Short:   MsgSyncShort,
		Long:    MsgSyncLong,
		Args:    usageArgs(cobra.NoArgs),
		GroupID: "repo",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.startWalk(cmd)
			if err != nil {
				return err
			}
			_, err = w.sync.Sync(cmd.Context(), deps.SyncOptions{Path: w.path, KeepRefs: keepRefs})
			return err
		},
	}
	cmd.Flags().BoolVar(&keepRefs, "keep-refs", false, MsgFlagKeepRefs)
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	var ignore bool
	cmd := &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
		Args:    usageArgs(cobra.NoArgs),
		GroupID: "repo",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.startWalk(cmd)
			if err != nil {
				return err
			}
			result, err := w.sync.Status(cmd.Context(), deps.StatusOptions{Path: w.path, Ignore: ignore})
			if err != nil {
				return err
			}

			renderer, err := a.renderer("")
			if err != nil {
				return err
			}
			if len(result.Modified) == 0 {
				return renderer.RenderMessage(MsgNothingModified)
			}
			return renderer.RenderResult(result)
		},
	}
	cmd.Flags().BoolVarP(&ignore, "ignore", "I", false, MsgFlagIgnore)
	return cmd
}

func newPublishCmd(a *app) *cobra.Command {
	var (
		all     bool
		message string
	)
	cmd := &cobra.Command{
		Use:     "publish",
		Short:   MsgPublishShort,
		Long:    MsgPublishLong,
		Args:    usageArgs(cobra.NoArgs),
		GroupID: "repo",
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.startWalk(cmd)
			if err != nil {
				return err
			}
			_, err = w.sync.Publish(cmd.Context(), deps.PublishOptions{
				Path:    w.path,
				All:     all,
				Message: message,
			})
			return err
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "A", false, MsgFlagAll)
	cmd.Flags().StringVarP(&message, "message", "M", "", MsgFlagMessage)
	return cmd
}
