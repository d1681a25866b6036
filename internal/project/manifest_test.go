package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[plugin]
name = "rename_foo"
entry = "rename_foo.ast.json"
`)
	m, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Plugin.Name != "rename_foo" {
		t.Errorf("name = %q", m.Plugin.Name)
	}
	if got, want := m.BabelPath(), filepath.Join(dir, "dist", "rename_foo.babel.js"); got != want {
		t.Errorf("babel path = %q, want %q", got, want)
	}
	if got, want := m.SwcPath(), filepath.Join(dir, "dist", "rename_foo.swc.rs"); got != want {
		t.Errorf("swc path = %q, want %q", got, want)
	}
	if got, want := m.EntryPath(), filepath.Join(dir, "rename_foo.ast.json"); got != want {
		t.Errorf("entry path = %q, want %q", got, want)
	}
}

func TestLoadExplicitOutputs(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[plugin]
name = "strip_console"
entry = "ast.json"

[output]
dir = "build"
babel = "plugin.js"
swc = "plugin.rs"
`)
	m, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got, want := m.BabelPath(), filepath.Join(dir, "build", "plugin.js"); got != want {
		t.Errorf("babel path = %q, want %q", got, want)
	}
}

func TestLoadRejectsBadManifests(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name    string
		content string
	}{
		{"no plugin section", `[output]` + "\n" + `dir = "dist"`},
		{"bad name", "[plugin]\nname = \"9lives\"\nentry = \"x.json\""},
		{"no entry", "[plugin]\nname = \"ok\""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := filepath.Join(dir, tc.name)
			if err := os.MkdirAll(sub, 0o755); err != nil {
				t.Fatal(err)
			}
			path := writeManifest(t, sub, tc.content)
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFindRootWalksUp(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "[plugin]\nname = \"p\"\nentry = \"p.json\"")
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	root, ok, err := FindRoot(nested)
	if err != nil {
		t.Fatalf("find root: %v", err)
	}
	if !ok {
		t.Fatal("manifest not found")
	}
	// TempDir may sit behind a symlink, so compare resolved paths.
	wantRoot, _ := filepath.EvalSymlinks(dir)
	gotRoot, _ := filepath.EvalSymlinks(root)
	if gotRoot != wantRoot {
		t.Errorf("root = %q, want %q", gotRoot, wantRoot)
	}
}

func TestHashFileDetectsChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	before, err := HashFile(path)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := os.WriteFile(path, []byte(`{"kind":"plugin"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	after, err := HashFile(path)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if before == after {
		t.Error("digest unchanged after rewrite")
	}
	if same := HashBytes([]byte(`{"kind":"plugin"}`)); same != after {
		t.Error("HashFile and HashBytes disagree")
	}
}
