package core

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestEngineStaysTransportAndStorageFree ensures the engine never grows a
// direct dependency on HTTP, SQL, or the storage adapters. Persistence and
// transport reach the engine only through the domain interfaces.
func TestEngineStaysTransportAndStorageFree(t *testing.T) {
	forbidden := []string{
		"net/http",
		"database/sql",
		"mazecore/internal/adapters",
		"mazecore/internal/archive",
		"mazecore/internal/blob",
	}

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, "mazecore/internal/core")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var violations []string
	for _, pkg := range pkgs {
		for importPath := range pkg.Imports {
			for _, bad := range forbidden {
				if importPath == bad || strings.HasPrefix(importPath, bad+"/") {
					violations = append(violations, pkg.PkgPath+": "+importPath)
				}
			}
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		for _, v := range violations {
			t.Errorf("forbidden engine import: %s", v)
		}
		t.Fatalf("found %d forbidden engine imports", len(violations))
	}
}

// TestDomainPackageStaysLeaf ensures pkg/domain imports nothing from
// internal; every package in the module may depend on it, never the reverse.
func TestDomainPackageStaysLeaf(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, "mazecore/pkg/domain")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	for _, pkg := range pkgs {
		for importPath := range pkg.Imports {
			if strings.HasPrefix(importPath, "mazecore/internal") {
				t.Errorf("domain must not import internal packages: %s", importPath)
			}
		}
	}
}
