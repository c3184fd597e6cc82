package imgrename

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/arthur-debert/imgrename/pkg/config"
	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/filesystem"
	"github.com/arthur-debert/imgrename/pkg/session"
	"github.com/arthur-debert/imgrename/pkg/sheet"
	"github.com/arthur-debert/imgrename/pkg/task"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// batchOptions are the flags shared by rename, preview and validate
type batchOptions struct {
	*globalOptions
	sets       []string
	sheet      string
	out        string
	dryRun     bool
	keepSource bool
	overwrite  bool
}

func (o *batchOptions) addFlags(cmd *cobra.Command, copyFlags bool) {
	cmd.Flags().StringArrayVarP(&o.sets, "set", "s", nil, MsgFlagSet)
	cmd.Flags().StringVar(&o.sheet, "sheet", "", MsgFlagSheet)
	cmd.Flags().StringVarP(&o.out, "out", "o", "", MsgFlagOut)
	if copyFlags {
		cmd.Flags().BoolVarP(&o.dryRun, "dry-run", "n", false, MsgFlagDryRun)
		cmd.Flags().BoolVar(&o.keepSource, "keep-source", false, MsgFlagKeepSource)
		cmd.Flags().BoolVar(&o.overwrite, "overwrite", false, MsgFlagOverwrite)
	}
}

// loadConfig layers the flag overrides on top of the configuration files
func loadConfig(cmd *cobra.Command, g *globalOptions) (*config.Config, error) {
	overrides := map[string]interface{}{}
	if f := cmd.Flags().Lookup("keep-source"); f != nil && f.Changed {
		overrides["copy.keep_source"] = f.Value.String() == "true"
	}
	if f := cmd.Flags().Lookup("overwrite"); f != nil && f.Changed {
		overrides["copy.overwrite"] = f.Value.String() == "true"
	}
	return config.Load(config.LoadOptions{ProjectFile: g.configFile, Overrides: overrides})
}

// openSession loads the images under dir and applies the sheet, then the
// --set values
func openSession(cmd *cobra.Command, o *batchOptions, dir string) (*session.Session, error) {
	cfg, err := loadConfig(cmd, o.globalOptions)
	if err != nil {
		return nil, err
	}
	s, err := session.New(session.Options{Config: cfg})
	if err != nil {
		return nil, err
	}
	if err := fillSession(s, o, dir); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func fillSession(s *session.Session, o *batchOptions, dir string) error {
	n, err := s.Load(dir)
	if err != nil {
		return err
	}
	log.Info().Int("files", n).Str("dir", dir).Msg("images loaded")

	if o.sheet != "" {
		sh, err := sheet.Load(filesystem.NewOS(), o.sheet)
		if err != nil {
			return err
		}
		matched, err := s.ApplySheet(sh)
		if err != nil {
			return err
		}
		log.Info().Int("matched", matched).Str("sheet", o.sheet).Msg("sheet applied")
	}

	for _, kv := range o.sets {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return errors.Newf(errors.ErrInvalidInput, MsgErrBadSet, kv).WithDetail("flag", "set")
		}
		if err := s.Set(strings.TrimSpace(name), value); err != nil {
			return err
		}
	}
	return nil
}

// runBatch runs one task over the session rows and shows its progress.
// Interrupts cancel the task after the file in flight.
func runBatch(cmd *cobra.Command, s *session.Session, o *batchOptions, dryRun bool) (*task.Result, error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, err := s.Start(ctx, session.StartOptions{Dir: o.out, DryRun: dryRun})
	if err != nil {
		return nil, err
	}
	go func() {
		select {
		case <-ctx.Done():
			fmt.Fprintln(cmd.ErrOrStderr(), MsgRenameCancelled)
		case <-h.Done():
		}
	}()

	showProgress(cmd.ErrOrStderr(), h, !dryRun)
	return h.Wait(), nil
}

// withSession opens a session over dir, runs fn and closes the session
func withSession(cmd *cobra.Command, o *batchOptions, dir string, fn func(*session.Session) error) error {
	s, err := openSession(cmd, o, dir)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("closing plug-ins failed")
		}
	}()
	return fn(s)
}
