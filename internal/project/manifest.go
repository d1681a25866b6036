// Package project locates and parses plugin.toml manifests. A manifest
// names one plugin, points at its parsed AST document, and says where the
// two generated backends go.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file the root walk looks for.
const ManifestName = "plugin.toml"

// Manifest is one parsed plugin.toml.
type Manifest struct {
	Plugin PluginSection `toml:"plugin"`
	Output OutputSection `toml:"output"`

	// Dir is the directory the manifest was loaded from. Relative paths
	// inside the manifest resolve against it.
	Dir string `toml:"-"`
}

// PluginSection is the [plugin] table.
type PluginSection struct {
	Name string `toml:"name"`
	// Entry is the path of the JSON AST document the parser produced.
	Entry string `toml:"entry"`
}

// OutputSection is the [output] table. Babel and Swc default to
// <name>.babel.js and <name>.swc.rs inside Dir.
type OutputSection struct {
	Dir   string `toml:"dir"`
	Babel string `toml:"babel"`
	Swc   string `toml:"swc"`
}

var (
	ErrPluginSectionMissing = errors.New("missing [plugin]")
	ErrPluginEntryMissing   = errors.New("missing [plugin].entry")
)

// Load parses and validates one manifest file.
func Load(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("plugin") {
		return nil, fmt.Errorf("%s: %w", path, ErrPluginSectionMissing)
	}
	if !IsValidPluginName(m.Plugin.Name) {
		return nil, fmt.Errorf("%s: invalid plugin name %q", path, m.Plugin.Name)
	}
	if m.Plugin.Entry == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrPluginEntryMissing)
	}
	m.Dir = filepath.Dir(path)
	if m.Output.Dir == "" {
		m.Output.Dir = "dist"
	}
	if m.Output.Babel == "" {
		m.Output.Babel = m.Plugin.Name + ".babel.js"
	}
	if m.Output.Swc == "" {
		m.Output.Swc = m.Plugin.Name + ".swc.rs"
	}
	return &m, nil
}

// EntryPath resolves the AST document path against the manifest directory.
func (m *Manifest) EntryPath() string {
	return m.resolve(m.Plugin.Entry)
}

// BabelPath resolves the dynamic backend output path.
func (m *Manifest) BabelPath() string {
	return m.resolve(filepath.Join(m.Output.Dir, m.Output.Babel))
}

// SwcPath resolves the static backend output path.
func (m *Manifest) SwcPath() string {
	return m.resolve(filepath.Join(m.Output.Dir, m.Output.Swc))
}

func (m *Manifest) resolve(path string) string {
	if filepath.IsAbs(path) || m.Dir == "" {
		return path
	}
	return filepath.Join(m.Dir, path)
}

// IsValidPluginName accepts ASCII identifiers: a letter or underscore
// followed by letters, digits and underscores.
func IsValidPluginName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// FindManifest walks up from startDir to locate plugin.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// FindRoot returns the directory containing plugin.toml, if any.
func FindRoot(startDir string) (root string, ok bool, err error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return "", ok, err
	}
	return filepath.Dir(manifestPath), true, nil
}
