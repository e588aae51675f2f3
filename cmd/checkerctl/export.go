package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/image/font"

	"github.com/pkordes/granblue-checker/internal/media"
	"github.com/pkordes/granblue-checker/internal/repo"
	"github.com/pkordes/granblue-checker/internal/service"
	"github.com/pkordes/granblue-checker/internal/snapshot"
)

var (
	exportFormat string
	exportFont   string
)

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Write the CSV or PDF export of a stored share link to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportFormat != "csv" && exportFormat != "pdf" {
			return fmt.Errorf("--format must be csv or pdf, got %q", exportFormat)
		}
		var face font.Face
		if exportFont != "" {
			var err error
			if face, err = snapshot.LoadFace(exportFont); err != nil {
				return err
			}
		}

		ctx := cmd.Context()
		pool, err := openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		sess, err := service.NewSessionService(repo.NewSessionRepo(pool)).Get(ctx, args[0])
		if err != nil {
			return err
		}
		store, err := media.NewStorage(imageDir)
		if err != nil {
			return err
		}
		exp := service.NewExportService(repo.NewItemRepo(pool), repo.NewInputRepo(pool), store, snapshot.NewRenderer(face), logger)
		if exportFormat == "pdf" {
			pages, err := exp.ExportPDF(ctx, cmd.OutOrStdout(), sess.State())
			if err != nil {
				return err
			}
			logger.Info("pdf written", "session_id", args[0], "pages", pages)
			return nil
		}
		return exp.ExportCSV(ctx, cmd.OutOrStdout(), sess.State())
	},
}
