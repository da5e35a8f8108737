package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/palfa/commondb/pkg/config"
	"github.com/palfa/commondb/pkg/datafile"
	"github.com/palfa/commondb/pkg/diagnostic"
	"github.com/palfa/commondb/pkg/header"
	"github.com/palfa/commondb/pkg/upload"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var (
		beam        int
		target      string
		dryRun      bool
		diagnostics []string
	)

	cmd := &cobra.Command{
		Use:   "upload [flags] FILE...",
		Short: "Upload the header of a beam's data files",
		Long: "Parse the data files of one beam, write the header to the common DB, " +
			"verify it and upload any diagnostics against the new header_id. " +
			"Everything is written in one transaction that is rolled back on any error.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.log().Named("upload")

			var beamPtr *int
			if cmd.Flags().Changed("beamnum") {
				beamPtr = &beam
			}

			h, err := header.Get(cmd.Context(), datafile.NewManifestParser(logger), args, beamPtr)
			if err != nil {
				logger.Error("Failed to build header", zap.Strings("files", args), zap.Error(err))
				return err
			}

			for _, spec := range diagnostics {
				d, err := parseDiagnostic(spec)
				if err != nil {
					return err
				}
				h.Attach(d)
			}

			if dryRun {
				call, err := h.Call()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), call.String())
				return nil
			}

			endpoint, err := upload.EndpointFor(upload.LoaderMode(cfg.Loader))
			if err != nil {
				return err
			}

			conn, err := ctx.connect(cmd.Context(), target)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.Validate(cmd.Context()); err != nil {
				return err
			}

			tx, err := conn.DB().BeginTxx(cmd.Context(), nil)
			if err != nil {
				return fmt.Errorf("failed to begin transaction: %w", err)
			}

			uploader := upload.NewUploader(endpoint, logger)
			id, err := uploader.Upload(cmd.Context(), h, tx)
			if err != nil {
				logger.Warn("Rolling back...", zap.Error(err))
				fmt.Fprintln(cmd.ErrOrStderr(), "Rolling back...")
				if rbErr := tx.Rollback(); rbErr != nil {
					logger.Error("Rollback failed", zap.Error(rbErr))
				}
				return err
			}

			if err := tx.Commit(); err != nil {
				return fmt.Errorf("failed to commit: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "header_id=%d\n", id)
			return nil
		},
	}

	cmd.Flags().IntVarP(&beam, "beamnum", "b", 0,
		"ALFA beam number (0-7), required for multiplexed WAPP data")
	cmd.Flags().StringVar(&target, "target", config.DefaultTarget, "Logical database target")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the loader call instead of uploading")
	cmd.Flags().StringArrayVar(&diagnostics, "diagnostic", nil,
		`Diagnostic to upload with the header, as "type=value" (repeatable)`)

	return cmd
}

// parseDiagnostic parses a "type=value" diagnostic flag
func parseDiagnostic(spec string) (*diagnostic.Diagnostic, error) {
	name, raw, ok := strings.Cut(spec, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return nil, fmt.Errorf("invalid diagnostic %q, expected type=value", spec)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid diagnostic value in %q: %w", spec, err)
	}
	return diagnostic.New(name, value)
}
