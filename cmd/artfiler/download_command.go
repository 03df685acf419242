package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"artfiler/internal/config"
	"artfiler/internal/download"
	"artfiler/internal/placement"
	"artfiler/internal/services/exiftool"
	"artfiler/internal/services/gallerydl"
	"artfiler/internal/services/transfer"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var linksFile string
	var destination string
	var postfix string
	var interactive bool
	var noSuppressOutput bool

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Resolve and download the links file into author folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.runConfig()
			if err != nil {
				return err
			}
			applyOverride(&cfg.Paths.LinksFile, linksFile)
			applyOverride(&cfg.Paths.DestinationDir, destination)
			applyOverride(&cfg.Behavior.DownloadPostfix, postfix)
			if interactive {
				cfg.Behavior.Interactive = true
			}
			if noSuppressOutput {
				cfg.Behavior.SuppressToolOutput = false
			}
			if strings.TrimSpace(cfg.Paths.DestinationDir) == "" {
				return fmt.Errorf("destination folder is required (flag --destination-folder or %s)", config.EnvDestinationDir)
			}

			rt, err := newRuntime(&cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			chatter := toolOutput(&cfg)
			resolver, err := gallerydl.New(cfg.Tools.GalleryDL, gallerydl.WithToolOutput(chatter))
			if err != nil {
				return err
			}
			fetcher, err := transfer.New(cfg.Tools.Wget, transfer.WithToolOutput(chatter))
			if err != nil {
				return err
			}

			placerOpts := []placement.Option{}
			if cfg.Behavior.ScrubMetadata || cfg.Behavior.WriteTags {
				meta, err := exiftool.New(cfg.Tools.Exiftool)
				if err != nil {
					return err
				}
				placerOpts = append(placerOpts,
					placement.WithMetadata(meta, cfg.Behavior.ScrubMetadata, cfg.Behavior.WriteTags))
			}
			placer := placement.New(rt.logger, placerOpts...)

			pipelineOpts := []download.Option{}
			if rt.ledger != nil {
				pipelineOpts = append(pipelineOpts, download.WithLedger(rt.ledger))
			}
			pipeline := download.New(&cfg, rt.logger, resolver, fetcher, placer, rt.authors, rt.prompter, pipelineOpts...)

			summary, err := pipeline.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Downloaded %d file(s) (%d duplicate(s) discarded)\n",
				summary.Downloaded, summary.Duplicates)
			if summary.Failed > 0 || summary.Remaining > 0 {
				fmt.Fprintf(out, "%d link(s) left in %s for the next run\n",
					summary.Remaining, cfg.Paths.LinksFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&linksFile, "links-file", "l", "", "Newline-delimited links file")
	cmd.Flags().StringVarP(&destination, "destination-folder", "d", "", "Library root for author folders")
	cmd.Flags().StringVarP(&postfix, "postfix", "p", "", "Postfix for created author folders")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Prompt even when stdin is not a terminal")
	cmd.Flags().BoolVar(&noSuppressOutput, "no-suppress-output", false, "Show external tool output")

	return cmd
}

func applyOverride(field *string, value string) {
	if strings.TrimSpace(value) != "" {
		*field = value
	}
}
