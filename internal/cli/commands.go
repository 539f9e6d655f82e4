package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/arthur-debert/treegen/internal/commands"
	"github.com/arthur-debert/treegen/internal/version"
	"github.com/arthur-debert/treegen/pkg/backend"
	"github.com/arthur-debert/treegen/pkg/config"
	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/filesystem"
	"github.com/arthur-debert/treegen/pkg/logging"
	"github.com/arthur-debert/treegen/pkg/output/styles"
	"github.com/arthur-debert/treegen/pkg/pipeline"
	"github.com/arthur-debert/treegen/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

type rootOptions struct {
	verbosity    int
	dryRun       bool
	notTopObjDir bool
	diff         bool
	backends     []string
	configPath   string
	topSrcDir    string
	format       string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(filesystem.NewOS())
}

func newRootCmd(fsys afero.Fs) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "treegen",
		Short:   commands.MsgRootShort,
		Long:    commands.MsgRootLong,
		Example: commands.MsgRootExample,
		Version: version.Version,
		Args:    cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLoggerTo(opts.verbosity, cmd.ErrOrStderr())
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, fsys, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", commands.MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&opts.format, "format", ui.FormatAuto.String(), commands.MsgFlagFormat)

	flags := rootCmd.Flags()
	flags.BoolVar(&opts.dryRun, "dry-run", false, commands.MsgFlagDryRun)
	flags.BoolVarP(&opts.notTopObjDir, "no-topobjdir", "n", false, commands.MsgFlagNotTopObjDir)
	flags.BoolVarP(&opts.diff, "diff", "d", false, commands.MsgFlagDiff)
	flags.StringSliceVarP(&opts.backends, "backend", "b", nil, commands.MsgFlagBackend)
	flags.StringVar(&opts.configPath, "config", "", commands.MsgFlagConfig)
	flags.StringVar(&opts.topSrcDir, "topsrcdir", "", commands.MsgFlagTopSrcDir)

	_ = rootCmd.RegisterFlagCompletionFunc("backend", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return backend.Names(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{ui.FormatAuto.String(), ui.FormatTerminal.String(), ui.FormatText.String(), ui.FormatJSON.String()}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newBackendsCmd(opts))
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}

// renderer builds the output renderer. An unknown --format falls back to
// plain text so the error itself can still be printed.
func renderer(out io.Writer, format string) (*ui.Renderer, error) {
	f, err := ui.ParseFormat(format)
	if err != nil {
		return ui.NewRenderer(ui.FormatText, out), err
	}
	return ui.NewRenderer(f, out), nil
}

func runGenerate(cmd *cobra.Command, fsys afero.Fs, opts *rootOptions) error {
	logger := logging.GetLogger("cli")

	out, err := renderer(cmd.OutOrStdout(), opts.format)
	if err != nil {
		return fail(cmd, opts.format, err)
	}

	if err := pipeline.CheckEnvironment(os.LookupEnv); err != nil {
		return fail(cmd, opts.format, err)
	}

	configPath, optional, err := resolveConfigPath(opts.configPath)
	if err != nil {
		return fail(cmd, opts.format, err)
	}

	loaded, err := config.Load(config.Options{
		Fs:        fsys,
		Path:      configPath,
		Optional:  optional,
		TopSrcDir: opts.topSrcDir,
	})
	if err != nil {
		return fail(cmd, opts.format, err)
	}

	if path := loaded.Settings.Styles; path != "" {
		if err := styles.LoadStyles(path); err != nil {
			return fail(cmd, opts.format, err)
		}
	}

	logger.Info().
		Str("config", configPath).
		Strs("backends", opts.backends).
		Bool("dryRun", opts.dryRun).
		Bool("diff", opts.diff).
		Msg("Starting treegen")

	result, err := pipeline.Run(pipeline.Options{
		Config:              loaded.Config,
		Fs:                  fsys,
		Backends:            opts.backends,
		NotTopObjDir:        opts.notTopObjDir,
		DryRun:              opts.dryRun,
		Diff:                opts.diff,
		BuildFile:           loaded.Settings.BuildFile,
		FilesPerUnifiedFile: &loaded.Settings.FilesPerUnifiedFile,
	})
	if err != nil {
		return fail(cmd, opts.format, err)
	}

	if err := out.RenderResult(result, opts.dryRun); err != nil {
		return fail(cmd, opts.format, err)
	}
	return nil
}

// resolveConfigPath returns the configure output to load. The default file
// in the working directory may be absent; an explicit one may not.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		return path, false, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", false, errors.Wrap(err, errors.ErrFileAccess, "cannot determine the working directory")
	}
	return filepath.Join(wd, config.DefaultFileName), true, nil
}

// fail prints err on stderr in the selected format and returns it so the
// process exits non-zero.
func fail(cmd *cobra.Command, format string, err error) error {
	r, _ := renderer(cmd.ErrOrStderr(), format)
	r.RenderError(err)
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: commands.MsgVersionShort,
		Long:  commands.MsgVersionLong,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, commands.MsgVersionFormat, version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, commands.MsgCommitFormat, version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(out, commands.MsgBuiltFormat, version.Date)
			}
		},
	}
}

func newBackendsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: commands.MsgBackendsShort,
		Long:  commands.MsgBackendsLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := renderer(cmd.OutOrStdout(), opts.format)
			if err != nil {
				return fail(cmd, opts.format, err)
			}
			for _, name := range backend.Names() {
				out.RenderMessage(name)
			}
			return nil
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 commands.MsgCompletionShort,
		Long:                  commands.MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// newManCmd writes the man page of the whole command tree to stdout.
func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "man",
		Short:  commands.MsgManShort,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "TREEGEN",
				Section: "1",
				Source:  "treegen " + version.Version,
				Manual:  "treegen manual",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}
