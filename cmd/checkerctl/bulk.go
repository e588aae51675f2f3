package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/media"
	"github.com/pkordes/granblue-checker/internal/repo"
	"github.com/pkordes/granblue-checker/internal/service"
)

var (
	bulkType   string
	bulkCSV    string
	bulkImages string
)

var bulkUploadCmd = &cobra.Command{
	Use:     "bulk-upload",
	Short:   "Create items from a bulk sheet and a directory of images",
	Example: `  checkerctl bulk-upload --type character --csv characters.csv --images ./portraits`,
	Args:    cobra.NoArgs,
	RunE:    runBulkUpload,
}

func runBulkUpload(cmd *cobra.Command, args []string) error {
	t, ok := domain.ParseItemType(bulkType)
	if !ok {
		return fmt.Errorf("--type must be one of: character weapon summon, got %q", bulkType)
	}
	sheet, err := os.Open(bulkCSV)
	if err != nil {
		return err
	}
	defer sheet.Close()

	images, err := readImageDir(bulkImages)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pool, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	store, err := media.NewStorage(imageDir)
	if err != nil {
		return fmt.Errorf("open image storage: %w", err)
	}
	taxonomy := service.NewTaxonomyService(repo.NewCategoryRepo(pool), repo.NewValueRepo(pool))
	items := service.NewItemService(repo.NewItemRepo(pool), taxonomy, store, logger)
	bulk := service.NewBulkUploadService(items, taxonomy, logger)

	res, err := bulk.Upload(ctx, t, sheet, images)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d rows: %d created, %d failed\n", res.Total, res.Processed, res.Failed)
	for _, e := range res.Errors {
		fmt.Fprintf(out, "  row %d (%s): %s\n", e.Row, e.Name, e.Reason)
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d row(s) failed", res.Failed)
	}
	return nil
}

// readImageDir loads every regular file in dir, keyed by file name, which
// is how the sheet's image column refers to them. An empty dir means the
// sheet carries no images.
func readImageDir(dir string) (map[string][]byte, error) {
	images := map[string][]byte{}
	if dir == "" {
		return images, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read image dir: %w", err)
	}
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read image dir: %w", err)
		}
		images[e.Name()] = data
	}
	return images, nil
}
