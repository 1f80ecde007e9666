package validation

import (
	"context"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/eykd/tabvet/internal/domain"
)

// step is one unit of a folder's plan: either a fixed set of findings or
// a file to validate against a schema.
type step struct {
	loc    domain.Location
	path   string
	schema domain.Schema
	fixed  []domain.Finding
}

// checkFolders applies the same missing/empty policy in both modes.
func (s *Service) checkFolders(ctx context.Context, layout domain.Layout, basePath string) []domain.Finding {
	var findings []domain.Finding
	for _, folder := range layout.RequiredFolders {
		listing, err := s.reader.ReadFolder(ctx, filepath.Join(basePath, folder))
		switch {
		case !listing.Exists:
			findings = append(findings, domain.FolderMissing(folder))
		case err != nil:
			findings = append(findings, domain.FolderUnreadable(folder, err))
		case listing.Entries == 0:
			findings = append(findings, domain.FolderEmpty(folder))
		}
		s.logger.Debugw("folder checked", "folder", folder, "exists", listing.Exists, "entries", listing.Entries)
	}
	return findings
}

// planFolder lists the work for one folder rule. Absent folders yield no
// steps; the folder check already reported them when they are required.
func (s *Service) planFolder(ctx context.Context, mode domain.Mode, rule domain.FolderRule, basePath string, required bool) []step {
	dir := filepath.Join(basePath, rule.Folder)
	listing, err := s.reader.ReadFolder(ctx, dir)
	if !listing.Exists {
		s.logger.Debugw("folder skipped", "folder", rule.Folder, "reason", "missing")
		return nil
	}
	if err != nil {
		if required {
			return nil
		}
		return []step{{fixed: []domain.Finding{domain.FolderUnreadable(rule.Folder, err)}}}
	}

	if mode == domain.ModeRaw {
		return planRaw(rule, dir, listing.Files)
	}
	return s.planSource(ctx, rule, dir)
}

// planRaw applies the folder's shared schema to every file in it,
// whatever the file is called.
func planRaw(rule domain.FolderRule, dir string, files []string) []step {
	steps := make([]step, 0, len(files))
	for _, name := range files {
		steps = append(steps, step{
			loc:    domain.Location{Folder: rule.Folder, File: name},
			path:   filepath.Join(dir, name),
			schema: rule.Shared,
		})
	}
	return steps
}

// planSource expects each declared file by exact name.
func (s *Service) planSource(ctx context.Context, rule domain.FolderRule, dir string) []step {
	steps := make([]step, 0, len(rule.Files))
	for _, req := range rule.Files {
		loc := domain.Location{Folder: rule.Folder, File: req.Name}
		path := filepath.Join(dir, req.Name)

		exists, err := s.reader.FileExists(ctx, path)
		switch {
		case err != nil:
			steps = append(steps, step{fixed: []domain.Finding{loc.ReadFailed(path, err)}})
		case !exists:
			steps = append(steps, step{fixed: []domain.Finding{loc.FileMissing()}})
		default:
			steps = append(steps, step{loc: loc, path: path, schema: req.Schema})
		}
	}
	return steps
}

// execute validates the planned files, up to s.workers at a time. Each
// step writes only its own slot, and slots are merged in plan order so the
// result does not depend on scheduling.
func (s *Service) execute(ctx context.Context, mode domain.Mode, steps []step) ([]domain.Finding, error) {
	results := make([][]domain.Finding, len(steps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, st := range steps {
		if st.path == "" {
			results[i] = st.fixed
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.ValidateFile(gctx, mode, st.loc, st.path, st.schema)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var findings []domain.Finding
	for _, r := range results {
		findings = append(findings, r...)
	}
	return findings, nil
}
