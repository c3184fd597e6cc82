package imgrename

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/imgrename/internal/version"
	"github.com/arthur-debert/imgrename/pkg/config"
	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/filesystem"
	"github.com/arthur-debert/imgrename/pkg/paths"
	"github.com/arthur-debert/imgrename/pkg/plugins/renamelog"
	"github.com/arthur-debert/imgrename/pkg/style"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newFieldsCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "fields",
		Short:   MsgFieldsShort,
		GroupID: "config",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			template, err := cfg.Template()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), style.NewRenderer(cmd.OutOrStdout()).RenderFields(template))
			return nil
		},
	}
}

func newGenConfigCmd() *cobra.Command {
	var write, commented bool
	cmd := &cobra.Command{
		Use:     "genconfig",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		GroupID: "config",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if write {
				return writeUserConfig(cmd, paths.New().ConfigFile())
			}
			if commented {
				content, err := config.GenerateConfigContent()
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), content)
				return nil
			}
			data, err := config.Generate(config.Default())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, MsgFlagWrite)
	cmd.Flags().BoolVar(&commented, "commented", false, MsgFlagCommented)
	return cmd
}

func writeUserConfig(cmd *cobra.Command, path string) error {
	if _, err := os.Stat(path); err == nil {
		return errors.Newf(errors.ErrFileWrite, MsgConfigExists, path).WithDetail("file", path)
	}
	content, err := config.GenerateConfigContent()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(path)).WithDetail("path", filepath.Dir(path))
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path).WithDetail("file", path)
	}
	log.Info().Str("file", path).Msg("user configuration written")
	fmt.Fprintf(cmd.OutOrStdout(), MsgConfigWritten, path)
	return nil
}

func newUndoCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:     "undo <rename-log.csv>",
		Short:   MsgUndoShort,
		Long:    MsgUndoLong,
		GroupID: "rename",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys := filesystem.NewOS()
			entries, err := renamelog.Read(fsys, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			failed := 0
			results := renamelog.Undo(fsys, entries, dryRun)
			for _, r := range results {
				switch {
				case r.Err != nil:
					failed++
					fmt.Fprintf(out, MsgUndoFailed, r.NewPath, r.Err)
				case r.Removed:
					fmt.Fprintf(out, MsgUndoRemoved, r.NewPath, r.OldPath)
				case dryRun:
					fmt.Fprintf(out, MsgUndoDryRun, r.NewPath, r.OldPath)
				default:
					fmt.Fprintf(out, MsgUndoRestored, r.NewPath, r.OldPath)
				}
			}
			fmt.Fprintf(out, MsgUndoDone, len(results)-failed, failed)
			if failed > 0 {
				return errors.Newf(errors.ErrFileAccess, "%d files could not be restored", failed).
					WithDetail("log", args[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.String())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
		},
	}
}
