// Package imgrename is the imgrename command line.
package imgrename

import (
	"fmt"
	"os"

	"github.com/arthur-debert/imgrename/internal/version"
	"github.com/arthur-debert/imgrename/pkg/cobrax/topics"
	"github.com/arthur-debert/imgrename/pkg/logging"
	"github.com/arthur-debert/imgrename/pkg/style"

	// registers every validator and listener type
	_ "github.com/arthur-debert/imgrename/pkg/plugins"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags
type globalOptions struct {
	verbosity  int
	configFile string
}

// NewRootCmd creates the command tree
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "imgrename",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			if !style.IsTerminal(os.Stdout) {
				style.Plain()
			}
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", MsgFlagConfig)

	rootCmd.AddGroup(&cobra.Group{ID: "rename", Title: "RENAME:"})
	rootCmd.AddGroup(&cobra.Group{ID: "config", Title: "CONFIGURATION:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newRenameCmd(opts))
	rootCmd.AddCommand(newPreviewCmd(opts))
	rootCmd.AddCommand(newValidateCmd(opts))
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newFieldsCmd(opts))
	rootCmd.AddCommand(newGenConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	if _, err := topics.InitializeWithOptions(rootCmd, helpTopics(), topics.Options{
		Extensions: []string{".md"},
		Renderer:   topics.NewGlamourRenderer(),
	}); err != nil {
		log.Warn().Err(err).Msg("help topics unavailable")
	}

	return rootCmd
}
