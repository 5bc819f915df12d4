package uischema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formwidgets/pkg/model"
)

// Store keeps the UI schemas parsed from documents, keyed by form id. It is
// safe for concurrent readers when treated as immutable after construction.
type Store struct {
	defaults map[string]any
	forms    map[string]map[string]any
}

type documentFile struct {
	Defaults map[string]any            `json:"defaults" yaml:"defaults"`
	Forms    map[string]map[string]any `json:"forms" yaml:"forms"`
}

// LoadFS walks the provided filesystem and parses JSON/YAML UI schema files.
// When fsys is nil or no schema files are present, the returned store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{
		defaults: make(map[string]any),
		forms:    make(map[string]map[string]any),
	}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("uischema: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}
		return store.merge(doc, path)
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Parse reads a single JSON or YAML document.
func Parse(data []byte, source string) (*Store, error) {
	doc, err := parseDocument(data, source)
	if err != nil {
		return nil, err
	}
	store := &Store{
		defaults: make(map[string]any),
		forms:    make(map[string]map[string]any),
	}
	if err := store.merge(doc, source); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) merge(doc documentFile, source string) error {
	for key, value := range doc.Defaults {
		key = strings.TrimPrefix(strings.TrimSpace(key), uiPrefix)
		if key == "" {
			return fmt.Errorf("uischema: file %s defines an empty default key", source)
		}
		if _, exists := s.defaults[key]; exists {
			return fmt.Errorf("uischema: duplicate default %q (file %s)", key, source)
		}
		s.defaults[key] = value
	}
	for formID, ui := range doc.Forms {
		id := strings.TrimSpace(formID)
		if id == "" {
			return fmt.Errorf("uischema: file %s defines an empty form id", source)
		}
		if _, exists := s.forms[id]; exists {
			return fmt.Errorf("uischema: duplicate form %q (file %s)", id, source)
		}
		normalised, err := normaliseUISchema(ui, source, id)
		if err != nil {
			return err
		}
		s.forms[id] = normalised
	}
	return nil
}

// Defaults returns a copy of the global option defaults.
func (s *Store) Defaults() map[string]any {
	if s == nil {
		return nil
	}
	return cloneMap(s.defaults)
}

// Form returns the UI schema for the form id.
func (s *Store) Form(id string) (map[string]any, bool) {
	if s == nil {
		return nil, false
	}
	ui, ok := s.forms[id]
	if !ok {
		return nil, false
	}
	return cloneMap(ui), true
}

// Forms lists the known form ids in sorted order.
func (s *Store) Forms() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.forms))
	for id := range s.forms {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

// Decorate overlays the stored UI schema onto form: form-level ui:* keys
// land in form.UI and each child key is merged into the matching field's UI.
// Keys already set on the form win over stored ones.
func (s *Store) Decorate(form *model.Form) error {
	if form == nil {
		return nil
	}
	ui, ok := s.Form(form.ID)
	if !ok {
		return nil
	}

	fields := make(map[string]int, len(form.Fields))
	for idx, field := range form.Fields {
		fields[field.Name] = idx
	}

	for key, value := range ui {
		if strings.HasPrefix(key, uiPrefix) {
			form.UI = mergeMissing(form.UI, map[string]any{key: value})
			continue
		}
		idx, ok := fields[key]
		if !ok {
			return fmt.Errorf("uischema: form %q configures unknown field %q", form.ID, key)
		}
		child, _ := asMap(value)
		form.Fields[idx].UI = mergeMissing(form.Fields[idx].UI, child)
	}
	return nil
}

var _ model.Decorator = (*Store)(nil)

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("uischema: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("uischema: parse %s: invalid JSON or YAML", source)
}

// normaliseUISchema validates that child entries are maps so later lookups
// can assume the shape.
func normaliseUISchema(ui map[string]any, source, formID string) (map[string]any, error) {
	out := make(map[string]any, len(ui))
	for key, value := range ui {
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("uischema: form %q (file %s) has an empty key", formID, source)
		}
		if strings.HasPrefix(key, uiPrefix) {
			if key == uiOptionsKey {
				nested, ok := asMap(value)
				if !ok {
					return nil, fmt.Errorf("uischema: form %q (file %s) ui:options must be a map", formID, source)
				}
				value = nested
			}
			out[key] = value
			continue
		}
		child, ok := asMap(value)
		if !ok {
			return nil, fmt.Errorf("uischema: form %q (file %s) field %q must be a map", formID, source, key)
		}
		out[key] = child
	}
	return out, nil
}

func mergeMissing(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, value := range src {
		if _, exists := dst[key]; !exists {
			dst[key] = value
		}
	}
	return dst
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		if nested, ok := value.(map[string]any); ok {
			out[key] = cloneMap(nested)
			continue
		}
		out[key] = value
	}
	return out
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
