package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("MkdirAll returned error: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile returned error: %v", err)
		}
	}
}

func collectedNames(found []Type) []string {
	names := make([]string, 0, len(found))
	for _, typ := range found {
		names = append(names, typ.Name)
	}
	return names
}

func TestLoadTree(t *testing.T) {
	t.Setenv("GOCACHE", t.TempDir())
	log := zap.NewNop()

	t.Run("skips broken packages and keeps going", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"go.mod":        "module fixture\n\ngo 1.24\n",
			"good/good.go":  "package good\n\ntype Widget struct{}\n",
			"broken/bad.go": "package broken\n\nfunc oops() { undefined() }\n",
		})

		pkgs, err := LoadTree(root, log)
		if err != nil {
			t.Fatalf("LoadTree returned error: %v", err)
		}

		paths := make([]string, 0, len(pkgs))
		for _, pkg := range pkgs {
			paths = append(paths, pkg.PkgPath)
		}
		if diff := cmp.Diff([]string{"fixture/good"}, paths); diff != "" {
			t.Errorf("loaded packages mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		if _, err := LoadTree(filepath.Join(t.TempDir(), "nope"), log); err == nil {
			t.Fatal("LoadTree returned nil error for missing directory")
		}
	})
}

func TestCollectTypes(t *testing.T) {
	t.Setenv("GOCACHE", t.TempDir())
	log := zap.NewNop()
	base := TypeRef{Name: "Schema"}

	t.Run("collects embedders including transitive", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"go.mod":           "module fixture\n\ngo 1.24\n",
			"schema/schema.go": "package schema\n\ntype Schema struct{}\n",
			"api/schemas.go": `package api

import "fixture/schema"

type UserSchema struct {
	schema.Schema
	UUID string
}

type AdminSchema struct {
	UserSchema
	Role string
}

type Plain struct {
	UUID string
}
`,
		})

		pkgs, err := LoadTree(root, log)
		if err != nil {
			t.Fatalf("LoadTree returned error: %v", err)
		}
		found := CollectTypes(pkgs, base, log)
		want := []string{"AdminSchema", "UserSchema"}
		if diff := cmp.Diff(want, collectedNames(found)); diff != "" {
			t.Errorf("collected types mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("re-exported types are not collected twice", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"go.mod":           "module fixture\n\ngo 1.24\n",
			"schema/schema.go": "package schema\n\ntype Schema struct{}\n",
			"a/a.go": `package a

import "fixture/schema"

type WidgetSchema struct {
	schema.Schema
	Name string
}
`,
			"b/b.go": `package b

import "fixture/a"

type WidgetSchema = a.WidgetSchema
`,
		})

		pkgs, err := LoadTree(root, log)
		if err != nil {
			t.Fatalf("LoadTree returned error: %v", err)
		}
		found := CollectTypes(pkgs, base, log)
		if len(found) != 1 {
			t.Fatalf("collected %d types, want 1: %v", len(found), collectedNames(found))
		}
		if found[0].Pkg.PkgPath != "fixture/a" {
			t.Errorf("type attributed to %s, want fixture/a", found[0].Pkg.PkgPath)
		}
	})

	t.Run("the base marker itself is not collected", func(t *testing.T) {
		root := t.TempDir()
		writeTree(t, root, map[string]string{
			"go.mod":           "module fixture\n\ngo 1.24\n",
			"schema/schema.go": "package schema\n\ntype Schema struct{}\n",
		})

		pkgs, err := LoadTree(root, log)
		if err != nil {
			t.Fatalf("LoadTree returned error: %v", err)
		}
		if found := CollectTypes(pkgs, base, log); len(found) != 0 {
			t.Errorf("collected %v, want none", collectedNames(found))
		}
	})
}
