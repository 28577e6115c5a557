package arch_test

import (
	"path/filepath"
	"testing"
)

// allowedImports pins the internal dependency graph. The leaf packages
// (manifest, journal, config) import nothing internal; everything else
// layers strictly on top of them. A new edge here should be a deliberate
// design decision, not an accident of convenience.
var allowedImports = map[string][]string{
	"manifest": {},
	"journal":  {},
	"config":   {},
	"plan":     {"manifest"},
	"command":  {"journal"},
	"ui":       {"plan"},
	"backend":  {"command", "manifest", "plan"},
	"sync":     {"backend", "journal", "manifest", "plan"},
}

func TestInternalLayering(t *testing.T) {
	t.Parallel()

	dir := internalDirPath(t)

	for _, pkg := range internalPackages(t) {
		pkg := pkg
		t.Run(pkg, func(t *testing.T) {
			t.Parallel()

			allowed, ok := allowedImports[pkg]
			if !ok {
				t.Fatalf("package internal/%s is not registered in allowedImports", pkg)
			}

			allowSet := make(map[string]bool, len(allowed))
			for _, a := range allowed {
				allowSet[a] = true
			}

			for _, imp := range importsOf(t, filepath.Join(dir, pkg)) {
				if !allowSet[imp] {
					t.Errorf("internal/%s imports internal/%s, which is not an allowed edge", pkg, imp)
				}
			}
		})
	}
}

// TestAllowedImportsAreReal catches stale entries: every package named in
// allowedImports (as key or edge) must exist on disk.
func TestAllowedImportsAreReal(t *testing.T) {
	t.Parallel()

	exists := make(map[string]bool)
	for _, pkg := range internalPackages(t) {
		exists[pkg] = true
	}

	for pkg, edges := range allowedImports {
		if !exists[pkg] {
			t.Errorf("allowedImports names package %q which does not exist", pkg)
		}
		for _, edge := range edges {
			if !exists[edge] {
				t.Errorf("allowedImports[%q] allows %q which does not exist", pkg, edge)
			}
		}
	}
}
