// Package schema parses validation rule files into domain layouts.
//
// Rule files are YAML. Mapping order is significant: folders are walked
// and columns are checked in the order they are declared, so parsing works
// on yaml.Node trees rather than Go maps.
package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/eykd/tabvet/internal/domain"
)

// ErrInvalidRules is returned when a rule file does not have the expected shape.
var ErrInvalidRules = errors.New("invalid validation rules")

const (
	keyRequiredFolders        = "required_folders"
	keyFileRequirements       = "file_requirements"
	keyFolderFileRequirements = "folder_file_requirements"
	keyRequiredColumns        = "required_columns"
	keyColumns                = "columns"
)

// columnSpec is the decoded form of one column leaf.
type columnSpec struct {
	Type     string `mapstructure:"type"`
	Nullable bool   `mapstructure:"nullable"`
}

// LoadFile reads and parses the rule file at path.
func LoadFile(path string, mode domain.Mode) (domain.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Layout{}, fmt.Errorf("reading rules %s: %w", path, err)
	}
	layout, err := Parse(data, mode)
	if err != nil {
		return domain.Layout{}, fmt.Errorf("%s: %w", path, err)
	}
	return layout, nil
}

// Dir is a directory holding one rule file per mode, named <mode>.yaml.
type Dir string

// Path returns the rule file for mode.
func (d Dir) Path(mode domain.Mode) string {
	return filepath.Join(string(d), string(mode)+".yaml")
}

// Layout loads the rules for mode.
func (d Dir) Layout(mode domain.Mode) (domain.Layout, error) {
	return LoadFile(d.Path(mode), mode)
}

// FromMapping builds a layout from an already-decoded nested mapping.
// Go maps carry no order, so keys are taken in sorted order.
func FromMapping(m map[string]any, mode domain.Mode) (domain.Layout, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return domain.Layout{}, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	return Parse(data, mode)
}

// Parse parses YAML rule content for the given mode. The rules may be
// wrapped in a single top-level key named after the mode.
func Parse(data []byte, mode domain.Mode) (domain.Layout, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.Layout{}, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return domain.Layout{}, fmt.Errorf("%w: empty document", ErrInvalidRules)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return domain.Layout{}, invalid(root, "top level must be a mapping")
	}
	if len(root.Content) == 2 && root.Content[0].Value == string(mode) && root.Content[1].Kind == yaml.MappingNode {
		root = root.Content[1]
	}

	layout := domain.Layout{Mode: mode}

	if folders := lookup(root, keyRequiredFolders); folders != nil {
		if err := folders.Decode(&layout.RequiredFolders); err != nil {
			return domain.Layout{}, invalid(folders, "%s must be a list of names: %v", keyRequiredFolders, err)
		}
	}

	var err error
	switch mode {
	case domain.ModeRaw:
		layout.Rules, err = parseRawRules(root)
	case domain.ModeSource:
		layout.Rules, err = parseSourceRules(root)
	default:
		err = fmt.Errorf("%w: %q", domain.ErrUnknownMode, mode)
	}
	if err != nil {
		return domain.Layout{}, err
	}
	return layout, nil
}

// parseRawRules reads folder → required_columns rules. Rules may live under
// file_requirements or directly at the top level next to required_folders.
func parseRawRules(root *yaml.Node) ([]domain.FolderRule, error) {
	var rules []domain.FolderRule
	for i := 0; i < len(root.Content)-1; i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case keyRequiredFolders:
			continue
		case keyFileRequirements:
			if val.Kind != yaml.MappingNode {
				return nil, invalid(val, "%s must be a mapping of folders", keyFileRequirements)
			}
			for j := 0; j < len(val.Content)-1; j += 2 {
				rule, err := parseRawFolder(val.Content[j], val.Content[j+1])
				if err != nil {
					return nil, err
				}
				rules = append(rules, rule)
			}
		default:
			if val.Kind != yaml.MappingNode || lookup(val, keyRequiredColumns) == nil {
				continue
			}
			rule, err := parseRawFolder(key, val)
			if err != nil {
				return nil, err
			}
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

func parseRawFolder(key, val *yaml.Node) (domain.FolderRule, error) {
	if val.Kind != yaml.MappingNode {
		return domain.FolderRule{}, invalid(val, "folder %q must be a mapping", key.Value)
	}
	rule := domain.FolderRule{Folder: key.Value}
	cols := lookup(val, keyRequiredColumns)
	if cols == nil {
		return rule, nil
	}
	schema, err := parseColumns(cols)
	if err != nil {
		return domain.FolderRule{}, err
	}
	rule.Shared = schema
	return rule, nil
}

// parseSourceRules reads folder_file_requirements: folder → file → columns.
func parseSourceRules(root *yaml.Node) ([]domain.FolderRule, error) {
	reqs := lookup(root, keyFolderFileRequirements)
	if reqs == nil {
		return nil, nil
	}
	if reqs.Kind != yaml.MappingNode {
		return nil, invalid(reqs, "%s must be a mapping of folders", keyFolderFileRequirements)
	}

	var rules []domain.FolderRule
	for i := 0; i < len(reqs.Content)-1; i += 2 {
		folderKey, files := reqs.Content[i], reqs.Content[i+1]
		if files.Kind != yaml.MappingNode {
			return nil, invalid(files, "folder %q must map file names to requirements", folderKey.Value)
		}
		rule := domain.FolderRule{Folder: folderKey.Value}
		for j := 0; j < len(files.Content)-1; j += 2 {
			fileKey, spec := files.Content[j], files.Content[j+1]
			req := domain.FileRequirement{Name: fileKey.Value}
			if cols := lookup(spec, keyColumns); cols != nil {
				schema, err := parseColumns(cols)
				if err != nil {
					return nil, err
				}
				req.Schema = schema
			}
			rule.Files = append(rule.Files, req)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// parseColumns accepts a mapping of column name → spec, or a plain list of
// column names that are only required to be present.
func parseColumns(node *yaml.Node) (domain.Schema, error) {
	var schema domain.Schema
	seen := map[string]bool{}
	add := func(at *yaml.Node, c domain.ColumnRequirement) error {
		if seen[c.Name] {
			return invalid(at, "column %q declared twice", c.Name)
		}
		seen[c.Name] = true
		schema = append(schema, c)
		return nil
	}

	switch node.Kind {
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, invalid(item, "column list entries must be names")
			}
			if err := add(item, domain.ColumnRequirement{Name: normalize(item.Value), Type: domain.TypeStr}); err != nil {
				return nil, err
			}
		}
	case yaml.MappingNode:
		for i := 0; i < len(node.Content)-1; i += 2 {
			key, leaf := node.Content[i], node.Content[i+1]
			c, err := parseColumn(normalize(key.Value), leaf)
			if err != nil {
				return nil, err
			}
			if err := add(key, c); err != nil {
				return nil, err
			}
		}
	default:
		return nil, invalid(node, "columns must be a mapping or a list")
	}
	return schema, nil
}

func parseColumn(name string, leaf *yaml.Node) (domain.ColumnRequirement, error) {
	c := domain.ColumnRequirement{Name: name}
	switch {
	case leaf.Kind == yaml.ScalarNode && leaf.Tag == "!!null":
		c.Type = domain.TypeStr
	case leaf.Kind == yaml.ScalarNode:
		c.Type = domain.ColumnType(leaf.Value)
	case leaf.Kind == yaml.MappingNode:
		var raw map[string]any
		if err := leaf.Decode(&raw); err != nil {
			return c, invalid(leaf, "column %q: %v", name, err)
		}
		var spec columnSpec
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &spec,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			return c, err
		}
		if err := dec.Decode(raw); err != nil {
			return c, invalid(leaf, "column %q: %v", name, err)
		}
		c.Type = domain.ColumnType(spec.Type)
		c.Nullable = spec.Nullable
	default:
		return c, invalid(leaf, "column %q must be a type name or a mapping", name)
	}
	return c, nil
}

// lookup returns the value node for key in a mapping node, or nil.
func lookup(mapping *yaml.Node, key string) *yaml.Node {
	if mapping == nil || mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func normalize(name string) string {
	return norm.NFC.String(name)
}

func invalid(at *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidRules, at.Line, fmt.Sprintf(format, args...))
}
