package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceKind says where an effective value came from.
type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

// Source locates a value: a position in a config file, or the built-in
// defaults.
type Source struct {
	Kind   SourceKind
	Name   string
	File   string
	Line   int
	Column int
}

func (s Source) String() string {
	if s.Kind != SourceFile {
		return string(s.Kind)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// LoadResult is an effective config plus where each file-set value came from.
type LoadResult struct {
	Path    string // requested top-level file; may not exist
	Config  *Config
	Sources map[string]Source // dotted YAML path -> file that set it last
	Files   []string          // files read, includes before their includer
}

// DefaultConfigPath returns ~/.config/sizepeek/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "sizepeek", "config.yaml"), nil
}

// LoadWithSources loads the config at DefaultConfigPath.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads path and its includes, fills in defaults and validates
// the result. A missing path yields the defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	l := &fileLoader{
		seen:    make(map[string]bool),
		sources: make(map[string]Source),
	}

	raw := RawConfig{}
	if _, err := os.Stat(path); err == nil {
		if raw, err = l.load(path, nil); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg, err := BuildEffectiveConfig(raw)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, l.withSource(err)
	}
	return &LoadResult{Path: path, Config: cfg, Sources: l.sources, Files: l.files}, nil
}

// fileLoader walks one include tree. A file reached twice through different
// includes is merged once, at its first position.
type fileLoader struct {
	seen    map[string]bool
	sources map[string]Source
	files   []string
}

// load returns the raw config of path with its includes merged underneath.
// chain holds the includers of path, outermost first.
func (l *fileLoader) load(path string, chain []string) (RawConfig, error) {
	file, err := canonicalPath(path)
	if err != nil {
		return RawConfig{}, err
	}
	if slices.Contains(chain, file) {
		return RawConfig{}, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(chain, " -> "), file)
	}
	if l.seen[file] {
		return RawConfig{}, nil
	}
	l.seen[file] = true

	data, err := os.ReadFile(file)
	if err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to read: %w", file, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	var own RawConfig
	if err := decodeStrict(data, &own); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", file, err)
	}

	merged := RawConfig{}
	for _, ref := range includeRefs(rootNode(&doc), file) {
		paths, err := expandInclude(file, ref.value)
		if err != nil {
			return RawConfig{}, fmt.Errorf("%s: include %q: %w", ref.at, ref.value, err)
		}
		for _, p := range paths {
			inc, err := l.load(p, append(chain, file))
			if err != nil {
				return RawConfig{}, err
			}
			merged = merged.merge(inc)
		}
	}

	// The including file wins over everything it includes.
	recordSources(rootNode(&doc), file, "", l.sources)
	l.files = append(l.files, file)
	return merged.merge(own), nil
}

// withSource points a validation error at the file position that set the
// offending key.
func (l *fileLoader) withSource(err error) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := l.sources[verr.Path]; ok {
		verr.Source = src
	}
	return verr
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// canonicalPath resolves symlinks when it can, so the same file reached by
// two names is detected.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

// expandInclude resolves an include entry against the including file. A
// directory expands to its *.yaml and *.yml files in name order.
func expandInclude(from, include string) ([]string, error) {
	path, err := includePath(from, include)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		ext := strings.ToLower(filepath.Ext(ent.Name()))
		if ent.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		files = append(files, filepath.Join(path, ent.Name()))
	}
	// ReadDir already sorts by name.
	return files, nil
}

func includePath(from, include string) (string, error) {
	if include == "" {
		return "", errors.New("path is empty")
	}
	if include == "~" || strings.HasPrefix(include, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		include = filepath.Join(home, strings.TrimPrefix(include[1:], "/"))
	}
	if filepath.IsAbs(include) {
		return include, nil
	}
	return filepath.Join(filepath.Dir(from), include), nil
}

func rootNode(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return doc.Content[0]
	}
	return doc
}

// recordSources stores the position of every mapping key under prefix.
// Sequences are recorded as a whole.
func recordSources(node *yaml.Node, file, prefix string, out map[string]Source) {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i].Value, node.Content[i+1]
			if prefix != "" {
				key = prefix + "." + key
			}
			out[key] = Source{Kind: SourceFile, File: file, Line: val.Line, Column: val.Column}
			recordSources(val, file, key, out)
		}
	case yaml.SequenceNode:
		if prefix != "" {
			out[prefix] = Source{Kind: SourceFile, File: file, Line: node.Line, Column: node.Column}
		}
	}
}

type includeRef struct {
	value string
	at    Source
}

// includeRefs returns the entries of the top-level include key, which may be
// a single path or a list of paths.
func includeRefs(root *yaml.Node, file string) []includeRef {
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "include" {
			continue
		}
		val := root.Content[i+1]
		items := []*yaml.Node{val}
		if val.Kind == yaml.SequenceNode {
			items = val.Content
		}
		var refs []includeRef
		for _, item := range items {
			if item.Kind != yaml.ScalarNode {
				continue
			}
			refs = append(refs, includeRef{
				value: item.Value,
				at:    Source{Kind: SourceFile, File: file, Line: item.Line, Column: item.Column},
			})
		}
		return refs
	}
	return nil
}
