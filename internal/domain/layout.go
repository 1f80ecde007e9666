package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownMode is returned when a mode name is not raw or source.
var ErrUnknownMode = errors.New("unknown validation mode")

// Mode selects how folders map to column requirements.
type Mode string

const (
	// ModeRaw applies one shared schema to every file found in a folder.
	ModeRaw Mode = "raw"
	// ModeSource expects exactly named files, each with its own schema,
	// and flags columns no requirement declares.
	ModeSource Mode = "source"
)

// ParseMode converts a mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeRaw, ModeSource:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// RejectsExtraColumns reports whether columns outside the schema are flagged.
func (m Mode) RejectsExtraColumns() bool {
	return m == ModeSource
}

// EnforcesNullability reports whether the nullable flag is honored.
// Raw mode has no nullability concept; empty cells go straight to the
// type check.
func (m Mode) EnforcesNullability() bool {
	return m == ModeSource
}

// ColumnType is the declared type tag of a column.
type ColumnType string

const (
	TypeInt      ColumnType = "int"
	TypeFloat    ColumnType = "float"
	TypeDatetime ColumnType = "datetime"
	TypeStr      ColumnType = "str"
)

// Supported reports whether t is one of the known type tags.
func (t ColumnType) Supported() bool {
	switch t {
	case TypeInt, TypeFloat, TypeDatetime, TypeStr:
		return true
	}
	return false
}

// ColumnRequirement declares one required column.
type ColumnRequirement struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Schema is an ordered set of column requirements. The order determines
// the order findings are emitted in.
type Schema []ColumnRequirement

// Names returns the declared column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Has reports whether the schema declares a column with the given name.
func (s Schema) Has(name string) bool {
	for _, c := range s {
		if c.Name == name {
			return true
		}
	}
	return false
}

// FileRequirement binds an exact file name to its schema.
type FileRequirement struct {
	Name   string
	Schema Schema
}

// FolderRule describes what a folder must contain. In raw mode Shared
// applies to every file in the folder; in source mode Files lists the
// expected file names.
type FolderRule struct {
	Folder string
	Shared Schema
	Files  []FileRequirement
}

// Layout is the parsed validation rule set for one mode.
type Layout struct {
	Mode            Mode
	RequiredFolders []string
	Rules           []FolderRule
}

// FolderListing describes a folder on disk. Entries counts every entry,
// directories included; Files lists only the regular files directly
// inside the folder, in name order.
type FolderListing struct {
	Exists  bool
	Entries int
	Files   []string
}
