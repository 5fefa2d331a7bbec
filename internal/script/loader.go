package script

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/inputecho/internal/input"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// ErrNotFound is returned when no script matches a reference.
var ErrNotFound = errors.New("script: not found")

// SourceBuiltin marks scripts that ship with the binary.
const SourceBuiltin = "builtin"

// Dirs returns the directories searched for user scripts, in order.
func Dirs() []string {
	var dirs []string
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".inputecho", "scripts"))
	}
	return append(dirs, "scripts")
}

// Parse decodes and validates a script. source is recorded on the result.
func Parse(data []byte, source string) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("script: yaml unmarshal: %w", err)
	}
	s.Source = source
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every step converts to events and that offsets never go
// backwards.
func (s *Script) Validate() error {
	if len(s.Events) == 0 {
		return fmt.Errorf("script %q: no events", s.Name)
	}
	for i, step := range s.Events {
		if _, err := step.Events(input.Meta{}); err != nil {
			return fmt.Errorf("script %q: step %d: %w", s.Name, i, err)
		}
		if i > 0 && step.At < s.Events[i-1].At {
			return fmt.Errorf("script %q: step %d: offset %v is before the previous step", s.Name, i, step.At)
		}
	}
	return nil
}

// Encode renders the script as YAML.
func Encode(s *Script) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("script: yaml marshal: %w", err)
	}
	return data, nil
}

// LoadFile loads a script from a file. A script without a name takes the
// file's base name.
func LoadFile(file string) (*Script, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", file, err)
	}
	s, err := Parse(data, file)
	if err != nil {
		return nil, fmt.Errorf("parsing file %s: %w", file, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
	return s, nil
}

// Load resolves ref to a script. An existing file path is loaded directly;
// otherwise ref is looked up by name in Dirs(), then among the built-ins.
func Load(ref string) (*Script, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty name", ErrNotFound)
	}

	if isPath(ref) {
		return LoadFile(ref)
	}

	for _, dir := range Dirs() {
		for _, ext := range []string{".yaml", ".yml"} {
			p := filepath.Join(dir, ref+ext)
			if _, err := os.Stat(p); err == nil {
				return LoadFile(p)
			}
		}
	}

	data, err := builtinFS.ReadFile(path.Join("builtin", ref+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, ref)
	}
	return Parse(data, SourceBuiltin)
}

func isPath(ref string) bool {
	if strings.ContainsRune(ref, os.PathSeparator) || strings.Contains(ref, "/") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(ref))
	return ext == ".yaml" || ext == ".yml"
}

// Info describes an available script.
type Info struct {
	Name   string
	Source string
	Events int
}

// List returns the built-in scripts and the valid scripts found in Dirs(),
// sorted by name. A user script shadows a built-in of the same name, the
// way Load resolves them. Invalid files are skipped.
func List() ([]Info, error) {
	byName := make(map[string]Info)

	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("script: reading built-ins: %w", err)
	}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".yaml")
		data, err := builtinFS.ReadFile(path.Join("builtin", e.Name()))
		if err != nil {
			continue
		}
		s, err := Parse(data, SourceBuiltin)
		if err != nil {
			continue
		}
		byName[name] = Info{Name: name, Source: SourceBuiltin, Events: len(s.Events)}
	}

	dirs := Dirs()
	for i := len(dirs) - 1; i >= 0; i-- {
		files, err := os.ReadDir(dirs[i])
		if err != nil {
			continue
		}
		for _, f := range files {
			ext := strings.ToLower(filepath.Ext(f.Name()))
			if f.IsDir() || (ext != ".yaml" && ext != ".yml") {
				continue
			}
			p := filepath.Join(dirs[i], f.Name())
			s, err := LoadFile(p)
			if err != nil {
				continue
			}
			name := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
			byName[name] = Info{Name: name, Source: p, Events: len(s.Events)}
		}
	}

	result := make([]Info, 0, len(byName))
	for _, info := range byName {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}
