package imgrename

import (
	"fmt"

	"github.com/arthur-debert/imgrename/pkg/session"
	"github.com/arthur-debert/imgrename/pkg/style"
	"github.com/spf13/cobra"
)

func newRenameCmd(g *globalOptions) *cobra.Command {
	o := &batchOptions{globalOptions: g}
	cmd := &cobra.Command{
		Use:     "rename <dir>",
		Short:   MsgRenameShort,
		Long:    MsgRenameLong,
		Example: MsgRenameExample,
		GroupID: "rename",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, o, args[0], func(s *session.Session) error {
				res, err := runBatch(cmd, s, o, o.dryRun)
				if err != nil {
					return err
				}
				r := style.NewRenderer(cmd.OutOrStdout())
				if res.DryRun {
					fmt.Fprintln(cmd.OutOrStdout(), r.RenderPreview(res))
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), r.RenderSummary(res))
				}
				return res.Err()
			})
		},
	}
	o.addFlags(cmd, true)
	return cmd
}

func newPreviewCmd(g *globalOptions) *cobra.Command {
	o := &batchOptions{globalOptions: g}
	cmd := &cobra.Command{
		Use:     "preview <dir>",
		Short:   MsgPreviewShort,
		Long:    MsgPreviewLong,
		GroupID: "rename",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, o, args[0], func(s *session.Session) error {
				res, err := runBatch(cmd, s, o, true)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), style.NewRenderer(cmd.OutOrStdout()).RenderPreview(res))
				return res.Aborted
			})
		},
	}
	o.addFlags(cmd, false)
	return cmd
}

func newValidateCmd(g *globalOptions) *cobra.Command {
	o := &batchOptions{globalOptions: g}
	cmd := &cobra.Command{
		Use:     "validate <dir>",
		Short:   MsgValidateShort,
		Long:    MsgValidateLong,
		GroupID: "rename",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, o, args[0], func(s *session.Session) error {
				res, err := runBatch(cmd, s, o, true)
				if err != nil {
					return err
				}
				if err := res.Err(); err != nil {
					fmt.Fprintln(cmd.OutOrStdout(), style.NewRenderer(cmd.OutOrStdout()).RenderPreview(res))
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d files can be renamed\n", len(res.Rows))
				return nil
			})
		},
	}
	o.addFlags(cmd, false)
	return cmd
}
