package validation

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/eykd/tabvet/internal/domain"
)

// fakeFile is an in-memory file: either a loaded table or a load error.
type fakeFile struct {
	table *domain.Table
	err   error
}

// fakeTree is an in-memory folder tree keyed by full path.
type fakeTree struct {
	dirs    map[string][]string
	files   map[string]fakeFile
	readErr map[string]error
	statErr map[string]error
}

func newFakeTree() *fakeTree {
	return &fakeTree{
		dirs:    map[string][]string{},
		files:   map[string]fakeFile{},
		readErr: map[string]error{},
		statErr: map[string]error{},
	}
}

func (t *fakeTree) dir(path string, entries ...string) *fakeTree {
	t.dirs[path] = entries
	return t
}

func (t *fakeTree) file(path string, table *domain.Table) *fakeTree {
	t.files[path] = fakeFile{table: table}
	dir, name := filepath.Split(path)
	dir = filepath.Clean(dir)
	t.dirs[dir] = append(t.dirs[dir], name)
	return t
}

func (t *fakeTree) brokenFile(path string, err error) *fakeTree {
	t.files[path] = fakeFile{err: err}
	dir, name := filepath.Split(path)
	dir = filepath.Clean(dir)
	t.dirs[dir] = append(t.dirs[dir], name)
	return t
}

func (t *fakeTree) ReadFolder(_ context.Context, path string) (domain.FolderListing, error) {
	entries, ok := t.dirs[path]
	if !ok {
		return domain.FolderListing{}, nil
	}
	if err := t.readErr[path]; err != nil {
		return domain.FolderListing{Exists: true}, err
	}
	listing := domain.FolderListing{Exists: true, Entries: len(entries)}
	for _, name := range entries {
		if _, isFile := t.files[filepath.Join(path, name)]; isFile {
			listing.Files = append(listing.Files, name)
		}
	}
	return listing, nil
}

func (t *fakeTree) FileExists(_ context.Context, path string) (bool, error) {
	if err := t.statErr[path]; err != nil {
		return false, err
	}
	_, ok := t.files[path]
	return ok, nil
}

func (t *fakeTree) Supports(path string) bool {
	return filepath.Ext(path) == ".csv"
}

func (t *fakeTree) Load(ctx context.Context, path string) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, ok := t.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return f.table, f.err
}

// stubChecker rejects any value listed in bad and records every call.
type stubChecker struct {
	mu    sync.Mutex
	bad   map[string]bool
	err   error
	calls []domain.Cell
}

func (c *stubChecker) Check(value domain.Cell, t domain.ColumnType) error {
	c.mu.Lock()
	c.calls = append(c.calls, value)
	c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if t == domain.TypeStr {
		return nil
	}
	if c.bad[value.Value] {
		return fmt.Errorf("%w: %q", domain.ErrTypeMismatch, value.Value)
	}
	return nil
}

type panicChecker struct{}

func (panicChecker) Check(domain.Cell, domain.ColumnType) error {
	panic("checker exploded")
}

// table builds a table from a header and rows of raw strings; "<null>"
// marks a null cell.
func table(header []string, rows ...[]string) *domain.Table {
	t := &domain.Table{Header: header}
	for _, r := range rows {
		cells := make([]domain.Cell, len(r))
		for i, v := range r {
			if v == "<null>" {
				cells[i] = domain.Cell{Null: true}
			} else {
				cells[i] = domain.Cell{Value: v}
			}
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func newTestService(tree *fakeTree, checker TypeChecker, opts ...Option) *Service {
	opts = append([]Option{WithIDGenerator(func() string { return "run-1" })}, opts...)
	return NewService(tree, tree, checker, opts...)
}
