package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/eykd/tabvet/internal/domain"
)

// ValidateFile loads the file at path and checks it against schema.
// Unsupported or unreadable files yield a single finding.
func (s *Service) ValidateFile(ctx context.Context, mode domain.Mode, loc domain.Location, path string, schema domain.Schema) []domain.Finding {
	if !s.loader.Supports(path) {
		return []domain.Finding{loc.UnsupportedFormat(path)}
	}

	table, err := s.loader.Load(ctx, path)
	if err != nil {
		s.logger.Debugw("file unreadable", "folder", loc.Folder, "file", loc.File, "error", err)
		return []domain.Finding{loc.ReadFailed(path, err)}
	}

	findings := s.ValidateTable(mode, loc, table, schema)
	s.logger.Debugw("file validated",
		"folder", loc.Folder,
		"file", loc.File,
		"rows", len(table.Rows),
		"findings", len(findings),
	)
	return findings
}

// ValidateTable checks column presence, unexpected columns (source mode
// only), and then each declared column in schema order. Any missing column
// stops the file's checks after reporting every missing one.
func (s *Service) ValidateTable(mode domain.Mode, loc domain.Location, table *domain.Table, schema domain.Schema) []domain.Finding {
	var findings []domain.Finding
	for _, col := range schema {
		if !table.HasColumn(col.Name) {
			findings = append(findings, loc.ColumnMissing(col.Name))
		}
	}
	if len(findings) > 0 {
		return findings
	}

	if mode.RejectsExtraColumns() {
		for _, col := range table.Columns() {
			if !schema.Has(col) {
				findings = append(findings, loc.ColumnUnexpected(col))
			}
		}
	}

	for _, col := range schema {
		findings = append(findings, s.ValidateColumn(mode, loc, table, col)...)
	}
	return findings
}

// ValidateColumn checks every cell of one column. A null cell in a
// nullable-aware mode is either allowed or reported, never type-checked.
func (s *Service) ValidateColumn(mode domain.Mode, loc domain.Location, table *domain.Table, req domain.ColumnRequirement) (findings []domain.Finding) {
	if !req.Type.Supported() {
		return []domain.Finding{loc.UnsupportedType(req.Name, req.Type)}
	}

	defer func() {
		if r := recover(); r != nil {
			findings = append(findings, loc.ColumnFailed(req.Name, fmt.Errorf("%v", r)))
		}
	}()

	cells, err := table.Column(req.Name)
	if err != nil {
		return []domain.Finding{loc.ColumnFailed(req.Name, err)}
	}

	for i, cell := range cells {
		line := domain.LineForRow(i)
		if cell.Null && mode.EnforcesNullability() {
			if !req.Nullable {
				findings = append(findings, loc.NullNotAllowed(line))
			}
			continue
		}
		err := s.checker.Check(cell, req.Type)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrTypeMismatch):
			findings = append(findings, loc.WrongType(req.Name, line))
		default:
			return append(findings, loc.ColumnFailed(req.Name, err))
		}
	}
	return findings
}
