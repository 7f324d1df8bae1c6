// Package analysis loads the Go packages of a scanned source tree and
// collects the types the generator cares about. It replaces the source
// ecosystem's runtime import-and-reflect pass with go/types inspection:
// packages are type-checked, never executed.
package analysis

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"
)

// Package bundles the syntax and type information of one loaded package.
type Package struct {
	PkgPath   string
	Types     *types.Package
	TypesInfo *types.Info
	Syntax    []*ast.File
	Fset      *token.FileSet
}

// LoadTree loads every package under root. Packages that fail to load or
// type-check are logged and skipped; the run continues with the rest.
func LoadTree(root string, log *zap.Logger) ([]*Package, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve package path %s: %w", root, err)
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo |
			packages.NeedModule | packages.NeedDeps,
		Dir: abs,
	}

	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, fmt.Errorf("failed to load packages in %s: %w", abs, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found in %s", abs)
	}

	loaded := make([]*Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			msgs := make([]string, 0, len(pkg.Errors))
			for _, pkgErr := range pkg.Errors {
				msgs = append(msgs, pkgErr.Error())
			}
			log.Warn("cannot load package, skipping",
				zap.String("package", pkg.PkgPath),
				zap.String("errors", strings.Join(msgs, "; ")))
			continue
		}
		if pkg.TypesInfo == nil {
			log.Warn("no type information for package, skipping",
				zap.String("package", pkg.PkgPath))
			continue
		}
		loaded = append(loaded, &Package{
			PkgPath:   pkg.PkgPath,
			Types:     pkg.Types,
			TypesInfo: pkg.TypesInfo,
			Syntax:    pkg.Syntax,
			Fset:      pkg.Fset,
		})
	}
	return loaded, nil
}

// TypeRef names a base type. An empty PkgPath matches the type name in
// any package.
type TypeRef struct {
	PkgPath string
	Name    string
}

func (r TypeRef) matches(obj *types.TypeName) bool {
	if obj == nil || obj.Name() != r.Name {
		return false
	}
	if r.PkgPath == "" {
		return true
	}
	return obj.Pkg() != nil && obj.Pkg().Path() == r.PkgPath
}

// Type is a struct type collected from a scanned package.
type Type struct {
	Name   string
	Named  *types.Named
	Struct *types.Struct
	Pkg    *Package
}

// CollectTypes returns the struct types that embed base, directly or
// through a chain of embedded structs. Only types declared in the
// package itself are collected: an alias re-exporting a type declared
// elsewhere is filtered out, so every type appears once, attributed to
// its declaring package. Results are sorted by name for stable logs.
func CollectTypes(pkgs []*Package, base TypeRef, log *zap.Logger) []Type {
	var found []Type
	for _, pkg := range pkgs {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			obj, ok := scope.Lookup(name).(*types.TypeName)
			if !ok {
				continue
			}
			named, ok := types.Unalias(obj.Type()).(*types.Named)
			if !ok {
				continue
			}
			// ownership check: the declaring package must be the
			// one being scanned
			owner := named.Obj()
			if owner.Pkg() == nil || owner.Pkg().Path() != pkg.PkgPath {
				continue
			}
			if base.matches(owner) {
				continue
			}
			structType, ok := named.Underlying().(*types.Struct)
			if !ok {
				continue
			}
			if !EmbedsBase(named, base) {
				continue
			}
			log.Debug("collected type",
				zap.String("package", pkg.PkgPath),
				zap.String("type", owner.Name()),
				zap.String("base", base.Name))
			found = append(found, Type{
				Name:   owner.Name(),
				Named:  named,
				Struct: structType,
				Pkg:    pkg,
			})
		}
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].Name != found[j].Name {
			return found[i].Name < found[j].Name
		}
		return found[i].Pkg.PkgPath < found[j].Pkg.PkgPath
	})
	return found
}

// EmbedsBase reports whether named embeds base, directly or through a
// chain of embedded structs.
func EmbedsBase(named *types.Named, base TypeRef) bool {
	return embedsBase(named, base, make(map[*types.Named]bool))
}

func embedsBase(named *types.Named, base TypeRef, seen map[*types.Named]bool) bool {
	structType, ok := named.Underlying().(*types.Struct)
	if !ok {
		return false
	}
	for i := 0; i < structType.NumFields(); i++ {
		field := structType.Field(i)
		if !field.Embedded() {
			continue
		}
		fieldType := field.Type()
		if ptr, ok := fieldType.(*types.Pointer); ok {
			fieldType = ptr.Elem()
		}
		embedded, ok := types.Unalias(fieldType).(*types.Named)
		if !ok {
			continue
		}
		if base.matches(embedded.Obj()) {
			return true
		}
		if seen[embedded] {
			continue
		}
		seen[embedded] = true
		if embedsBase(embedded, base, seen) {
			return true
		}
	}
	return false
}

// IsBaseField reports whether a struct field is the embedded base marker
// itself, so schema derivation can leave it out of the properties.
func IsBaseField(field *types.Var, base TypeRef) bool {
	if !field.Embedded() {
		return false
	}
	fieldType := field.Type()
	if ptr, ok := fieldType.(*types.Pointer); ok {
		fieldType = ptr.Elem()
	}
	named, ok := types.Unalias(fieldType).(*types.Named)
	if !ok {
		return false
	}
	return base.matches(named.Obj())
}
