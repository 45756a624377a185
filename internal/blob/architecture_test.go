package blob

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestInfraImportBoundaries keeps backend packages behind their facades:
// blob backends are reached through internal/blob and snapshot stores through
// internal/core.
func TestInfraImportBoundaries(t *testing.T) {
	rules := []struct {
		infra   string
		allowed []string
	}{
		{infra: "haccpcore/internal/infra/blob", allowed: []string{"haccpcore/internal/blob"}},
		{infra: "haccpcore/internal/infra/persistence", allowed: []string{"haccpcore/internal/core"}},
	}

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "haccpcore/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var violations []string
	for _, pkg := range pkgs {
		path := strings.TrimSuffix(strings.Fields(pkg.ID)[0], "_test")
		for _, rule := range rules {
			if hasPathPrefix(path, rule.infra) || allowed(path, rule.allowed) {
				continue
			}
			for importPath := range pkg.Imports {
				if hasPathPrefix(importPath, rule.infra) {
					violations = append(violations, path+": "+importPath)
				}
			}
		}
	}
	if len(violations) > 0 {
		sort.Strings(violations)
		for _, v := range violations {
			t.Errorf("forbidden infra import: %s", v)
		}
		t.Fatalf("found %d forbidden infra imports", len(violations))
	}
}

func allowed(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if hasPathPrefix(path, p) {
			return true
		}
	}
	return false
}

func hasPathPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
