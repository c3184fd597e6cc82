// Package sheet loads per-file field values from CSV, YAML or TOML files and
// applies them to rows.
//
// A CSV sheet has a header "file,<field>,<field>..." and one line per file.
// YAML and TOML sheets map each file to a table of field values:
//
//	["slide1/a.tif"]
//	Line = "GMR_57C10"
//	Age = 3
//
// Files are matched by path relative to the scan root, then by base name.
package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/imgrename/pkg/errors"
	"github.com/arthur-debert/imgrename/pkg/row"
	"github.com/arthur-debert/imgrename/pkg/types"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a sheet file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the format from a file extension
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unsupported sheet format %q (use .csv, .yaml or .toml)", filepath.Ext(path)).
		WithDetail("path", path)
}

// Sheet holds field values per file
type Sheet struct {
	source  string
	entries map[string]map[string]string
}

// Load reads and parses a sheet file
func Load(fsys types.FS, path string) (*Sheet, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound, "cannot read sheet %s", path).
			WithDetail("path", path)
	}
	s, err := Parse(format, data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "cannot parse sheet %s", path).
			WithDetail("path", path)
	}
	s.source = path
	return s, nil
}

// Parse decodes sheet content
func Parse(format Format, data []byte) (*Sheet, error) {
	var (
		entries map[string]map[string]string
		err     error
	)
	switch format {
	case FormatCSV:
		entries, err = parseCSV(data)
	case FormatYAML:
		var raw map[string]map[string]interface{}
		if err = yaml.Unmarshal(data, &raw); err == nil {
			entries = stringify(raw)
		}
	case FormatTOML:
		var raw map[string]map[string]interface{}
		if err = toml.Unmarshal(data, &raw); err == nil {
			entries = stringify(raw)
		}
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unsupported sheet format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = map[string]map[string]string{}
	}
	return &Sheet{entries: normalise(entries)}, nil
}

func parseCSV(data []byte) (map[string]map[string]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.Comment = '#'

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(header) == 0 || !strings.EqualFold(strings.TrimSpace(header[0]), "file") {
		return nil, fmt.Errorf("first column must be 'file', got %q", header[0])
	}

	entries := make(map[string]map[string]string)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		values := make(map[string]string)
		for i := 1; i < len(rec) && i < len(header); i++ {
			if v := strings.TrimSpace(rec[i]); v != "" {
				values[strings.TrimSpace(header[i])] = v
			}
		}
		entries[strings.TrimSpace(rec[0])] = values
	}
	return entries, nil
}

func stringify(raw map[string]map[string]interface{}) map[string]map[string]string {
	out := make(map[string]map[string]string, len(raw))
	for file, values := range raw {
		m := make(map[string]string, len(values))
		for k, v := range values {
			if v == nil {
				continue
			}
			m[k] = fmt.Sprint(v)
		}
		out[file] = m
	}
	return out
}

func normalise(entries map[string]map[string]string) map[string]map[string]string {
	out := make(map[string]map[string]string, len(entries))
	for file, values := range entries {
		out[filepath.ToSlash(filepath.Clean(file))] = values
	}
	return out
}

// Files lists the files the sheet has values for, sorted
func (s *Sheet) Files() []string {
	files := make([]string, 0, len(s.entries))
	for f := range s.entries {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// Lookup returns the values for t, matched by relative path then base name
func (s *Sheet) Lookup(t types.Target) (map[string]string, bool) {
	if v, ok := s.entries[t.RelativePath()]; ok {
		return v, true
	}
	v, ok := s.entries[t.Name()]
	return v, ok
}

// Apply sets the sheet values on every matching row and returns how many
// rows matched. A value for an unknown field or a value a field rejects is
// an error naming the sheet and file.
func (s *Sheet) Apply(rows []*row.Row) (int, error) {
	matched := 0
	for _, r := range rows {
		values, ok := s.Lookup(r.Target())
		if !ok {
			continue
		}
		matched++
		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := r.Set(name, values[name]); err != nil {
				return matched, errors.Wrapf(err, errors.GetErrorCode(err), "sheet %s: %s", s.source, r.Target().RelativePath()).
					WithDetail("sheet", s.source).
					WithDetail("field", name).
					WithDetail("file", r.Target().Path())
			}
		}
	}
	return matched, nil
}
