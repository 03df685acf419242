package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"artfiler/internal/config"
	"artfiler/internal/placement"
	"artfiler/internal/relocate"
	"artfiler/internal/services/kakasi"
)

func newMoveCommand(ctx *commandContext) *cobra.Command {
	var source string
	var destination string
	var postfix string
	var interactive bool

	cmd := &cobra.Command{
		Use:     "move",
		Aliases: []string{"move_pixiv"},
		Short:   "Relocate staged author folders into the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.runConfig()
			if err != nil {
				return err
			}
			applyOverride(&cfg.Paths.SourceDir, source)
			applyOverride(&cfg.Paths.DestinationDir, destination)
			applyOverride(&cfg.Behavior.MovePostfix, postfix)
			if interactive {
				cfg.Behavior.Interactive = true
			}
			if strings.TrimSpace(cfg.Paths.SourceDir) == "" {
				return fmt.Errorf("source folder is required (flag --source-folder or %s)", config.EnvSourceDir)
			}
			if strings.TrimSpace(cfg.Paths.DestinationDir) == "" {
				return fmt.Errorf("destination folder is required (flag --destination-folder or %s)", config.EnvDestinationDir)
			}

			rt, err := newRuntime(&cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			romanizer, err := kakasi.New(cfg.Tools.Kakasi)
			if err != nil {
				return err
			}

			pipelineOpts := []relocate.Option{}
			if rt.ledger != nil {
				pipelineOpts = append(pipelineOpts, relocate.WithLedger(rt.ledger))
			}
			pipeline := relocate.New(&cfg, rt.logger, placement.New(rt.logger), rt.authors, rt.prompter, romanizer, pipelineOpts...)

			summary, err := pipeline.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Moved %d file(s) from %d folder(s) (%d duplicate(s) discarded)\n",
				summary.Moved, summary.Folders, summary.Duplicates)
			if summary.Skipped > 0 {
				fmt.Fprintf(out, "%d folder(s) skipped (name not in <name>%s<id> form)\n",
					summary.Skipped, cfg.Behavior.Separator)
			}
			if summary.Failed > 0 {
				fmt.Fprintf(out, "%d folder(s) failed; see the log for details\n", summary.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source-folder", "s", "", "Staging area holding <name><sep><id> folders")
	cmd.Flags().StringVarP(&destination, "destination-folder", "d", "", "Library root for author folders")
	cmd.Flags().StringVarP(&postfix, "postfix", "p", "", "Postfix for created author folders")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt even when stdin is not a terminal")

	return cmd
}
