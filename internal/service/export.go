package service

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/pkordes/granblue-checker/internal/domain"
	"github.com/pkordes/granblue-checker/internal/interchange"
	"github.com/pkordes/granblue-checker/internal/media"
	"github.com/pkordes/granblue-checker/internal/repo"
	"github.com/pkordes/granblue-checker/internal/snapshot"
)

// thumbnailSize is the edge length item images are scaled to for snapshots.
const thumbnailSize = 96

// ExportService turns a selection state into export files and merges
// imported files back into a state.
type ExportService struct {
	items  repo.ItemRepo
	inputs repo.InputRepo
	images ImageStore
	render *snapshot.Renderer
	log    *slog.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService backed by the provided repos.
// render draws image and PDF exports; nil uses the default face.
func NewExportService(items repo.ItemRepo, inputs repo.InputRepo, images ImageStore, render *snapshot.Renderer, log *slog.Logger) *ExportService {
	if render == nil {
		render = snapshot.NewRenderer(nil)
	}
	return &ExportService{items: items, inputs: inputs, images: images, render: render, log: log, now: time.Now}
}

// Document resolves state against the catalogue and the form schema.
func (s *ExportService) Document(ctx context.Context, state domain.SelectionState) (interchange.Document, error) {
	doc, _, err := s.resolve(ctx, state)
	if err != nil {
		return interchange.Document{}, fmt.Errorf("service.ExportService.Document: %w", err)
	}
	return doc, nil
}

func (s *ExportService) resolve(ctx context.Context, state domain.SelectionState) (interchange.Document, []domain.Item, error) {
	items, err := s.items.ListByIDs(ctx, state.Selected)
	if err != nil {
		return interchange.Document{}, nil, err
	}
	groups, err := s.inputs.ListGroups(ctx)
	if err != nil {
		return interchange.Document{}, nil, err
	}
	return interchange.BuildDocument(state, items, groups, s.now()), items, nil
}

// ExportCSV writes state in the versioned CSV format.
func (s *ExportService) ExportCSV(ctx context.Context, w io.Writer, state domain.SelectionState) error {
	doc, err := s.Document(ctx, state)
	if err != nil {
		return err
	}
	if err := interchange.EncodeCSV(w, doc); err != nil {
		return fmt.Errorf("service.ExportService.ExportCSV: %w", err)
	}
	return nil
}

// Layout builds the snapshot layout for state, with thumbnails for every
// selected item that has a readable image.
func (s *ExportService) Layout(ctx context.Context, state domain.SelectionState) (snapshot.Layout, error) {
	doc, items, err := s.resolve(ctx, state)
	if err != nil {
		return snapshot.Layout{}, fmt.Errorf("service.ExportService.Layout: %w", err)
	}

	thumbs := make(map[string]image.Image, len(items))
	for _, it := range items {
		if it.ImageRef == nil {
			continue
		}
		data, err := s.images.Get(*it.ImageRef)
		if err != nil {
			s.log.WarnContext(ctx, "snapshot image unavailable", "item_id", it.ID, "error", err)
			continue
		}
		img, err := media.Decode(data)
		if err != nil {
			s.log.WarnContext(ctx, "snapshot image undecodable", "item_id", it.ID, "error", err)
			continue
		}
		thumbs[it.ID] = media.Thumbnail(img, thumbnailSize)
	}
	return snapshot.Build(doc, thumbs), nil
}

// ExportImage writes state as a PNG snapshot. page 0 renders the whole
// layout; page n >= 1 renders the nth A4 page with its footer. It returns
// the number of A4 pages the layout spans.
func (s *ExportService) ExportImage(ctx context.Context, w io.Writer, state domain.SelectionState, page int) (int, error) {
	layout, err := s.Layout(ctx, state)
	if err != nil {
		return 0, err
	}
	pages := snapshot.Paginate(layout, snapshot.A4)

	if page == 0 {
		if err := s.render.RenderPNG(w, layout); err != nil {
			return 0, fmt.Errorf("service.ExportService.ExportImage: %w", err)
		}
		return len(pages), nil
	}
	if page < 0 || page > len(pages) {
		return len(pages), fmt.Errorf("%w: page %d out of range 1-%d", domain.ErrValidation, page, len(pages))
	}
	if err := s.render.RenderPage(w, layout, pages[page-1], snapshot.A4); err != nil {
		return 0, fmt.Errorf("service.ExportService.ExportImage: %w", err)
	}
	return len(pages), nil
}

// ExportPDF writes state as an A4 PDF with one page per A4 image page,
// footers included. It returns the page count.
func (s *ExportService) ExportPDF(ctx context.Context, w io.Writer, state domain.SelectionState) (int, error) {
	layout, err := s.Layout(ctx, state)
	if err != nil {
		return 0, err
	}
	n, err := s.render.RenderPDF(w, layout, "Granblue Checker export")
	if err != nil {
		return 0, fmt.Errorf("service.ExportService.ExportPDF: %w", err)
	}
	return n, nil
}

// ImportOutcome is an import result together with the merged state.
// When Result.Success is false, State is the caller's state unchanged.
type ImportOutcome struct {
	Result interchange.ImportResult
	State  domain.SelectionState
}

// ImportCSV decodes text and merges it into current. Imported ids that are
// not in the catalogue are still selected and reported as warnings.
// Repository failures while checking ids are logged, not returned, since
// the decode itself succeeded.
func (s *ExportService) ImportCSV(ctx context.Context, text string, current domain.SelectionState) ImportOutcome {
	res := interchange.DecodeCSV(text)
	if !res.Success {
		return ImportOutcome{Result: res, State: current}
	}

	known, err := s.items.ListByIDs(ctx, res.ItemIDs)
	if err != nil {
		s.log.WarnContext(ctx, "import: check item ids", "error", err)
	} else {
		found := make(map[string]struct{}, len(known))
		for _, it := range known {
			found[it.ID] = struct{}{}
		}
		for _, id := range res.ItemIDs {
			if _, ok := found[id]; !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf("item %s is not in the catalogue", id))
			}
		}
	}
	return ImportOutcome{Result: res, State: interchange.Merge(current, res)}
}
