// Package routes registers the HTTP resources of a scanned tree as
// OpenAPI paths. A resource is declared by a package-level Resources
// variable mapping a resource type to its URL rules:
//
//	var Resources = map[any][]string{
//		UserResource{}: {"/users", "/users/<user_uuid>"},
//	}
//
// The resource type's exported verb methods (Get, Post, ...) become the
// operations of each rule. A verb method's doc comment may carry a
// docstring-style YAML block describing the operation.
package routes

import (
	"encoding/json"
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wazo-platform/wazo-openapi-generator/internal/analysis"
	"github.com/wazo-platform/wazo-openapi-generator/internal/fragments"
	"github.com/wazo-platform/wazo-openapi-generator/internal/spec"
	"github.com/wazo-platform/wazo-openapi-generator/internal/strcase"
)

const resourcesVarName = "Resources"

var verbs = map[string]string{
	"Get":     "get",
	"Post":    "post",
	"Put":     "put",
	"Delete":  "delete",
	"Patch":   "patch",
	"Head":    "head",
	"Options": "options",
}

type resource struct {
	named *types.Named
	rules []string
}

// Register scans every loaded package for Resources declarations and
// adds the resulting paths to doc. Declarations that do not have the
// expected map shape are silently skipped, entry by entry. Unlike the
// schema pass there is no ownership filter: a Resources map may route
// types declared in another package.
func Register(pkgs []*analysis.Package, doc *spec.Document, prefix string, log *zap.Logger) error {
	resources := collectResources(pkgs, log)
	methods := indexMethods(pkgs)

	for _, res := range resources {
		name := res.named.Obj().Name()
		ops, err := operationsFor(res.named, methods[res.named.Obj()])
		if err != nil {
			return fmt.Errorf("resource %s: %w", name, err)
		}

		for _, rule := range res.rules {
			path := prefix + ConvertRule(rule)
			log.Debug("registering path",
				zap.String("resource", name),
				zap.String("path", path))
			doc.EnsurePath(path)
			for verb, op := range ops {
				doc.AddOperation(path, verb, op)
			}
		}
	}
	return nil
}

func collectResources(pkgs []*analysis.Package, log *zap.Logger) []resource {
	var found []resource
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			for _, decl := range file.Decls {
				genDecl, ok := decl.(*ast.GenDecl)
				if !ok || genDecl.Tok != token.VAR {
					continue
				}
				for _, s := range genDecl.Specs {
					valueSpec, ok := s.(*ast.ValueSpec)
					if !ok {
						continue
					}
					found = append(found, resourcesFromSpec(valueSpec, pkg, log)...)
				}
			}
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].named.Obj().Name() < found[j].named.Obj().Name()
	})
	return found
}

func resourcesFromSpec(valueSpec *ast.ValueSpec, pkg *analysis.Package, log *zap.Logger) []resource {
	var found []resource
	for i, ident := range valueSpec.Names {
		if ident.Name != resourcesVarName || i >= len(valueSpec.Values) {
			continue
		}
		lit, ok := valueSpec.Values[i].(*ast.CompositeLit)
		if !ok {
			continue
		}
		for _, elt := range lit.Elts {
			entry, ok := elt.(*ast.KeyValueExpr)
			if !ok {
				continue
			}
			named, ok := resourceType(entry.Key, pkg.TypesInfo)
			if !ok {
				continue
			}
			rules, ok := stringRules(entry.Value, pkg.TypesInfo)
			if !ok {
				log.Debug("resource entry has no usable rules, skipping",
					zap.String("resource", named.Obj().Name()))
				continue
			}
			found = append(found, resource{named: named, rules: rules})
		}
	}
	return found
}

func resourceType(expr ast.Expr, info *types.Info) (*types.Named, bool) {
	tv, ok := info.Types[expr]
	if !ok || tv.Type == nil {
		return nil, false
	}
	t := tv.Type
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, ok := types.Unalias(t).(*types.Named)
	return named, ok
}

func stringRules(expr ast.Expr, info *types.Info) ([]string, bool) {
	lit, ok := expr.(*ast.CompositeLit)
	if !ok {
		return nil, false
	}
	rules := make([]string, 0, len(lit.Elts))
	for _, elt := range lit.Elts {
		tv, ok := info.Types[elt]
		if !ok || tv.Value == nil || tv.Value.Kind() != constant.String {
			return nil, false
		}
		rules = append(rules, constant.StringVal(tv.Value))
	}
	if len(rules) == 0 {
		return nil, false
	}
	return rules, true
}

// indexMethods maps every named type to the verb method declarations
// found in the loaded syntax.
func indexMethods(pkgs []*analysis.Package) map[*types.TypeName]map[string]*ast.FuncDecl {
	index := make(map[*types.TypeName]map[string]*ast.FuncDecl)
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			for _, decl := range file.Decls {
				funcDecl, ok := decl.(*ast.FuncDecl)
				if !ok || funcDecl.Recv == nil {
					continue
				}
				if _, ok := verbs[funcDecl.Name.Name]; !ok {
					continue
				}
				fn, ok := pkg.TypesInfo.Defs[funcDecl.Name].(*types.Func)
				if !ok {
					continue
				}
				recv := fn.Signature().Recv()
				if recv == nil {
					continue
				}
				recvType := recv.Type()
				if ptr, ok := recvType.(*types.Pointer); ok {
					recvType = ptr.Elem()
				}
				named, ok := types.Unalias(recvType).(*types.Named)
				if !ok {
					continue
				}
				owner := named.Obj()
				if index[owner] == nil {
					index[owner] = make(map[string]*ast.FuncDecl)
				}
				index[owner][funcDecl.Name.Name] = funcDecl
			}
		}
	}
	return index
}

func operationsFor(named *types.Named, decls map[string]*ast.FuncDecl) (map[string]*openapi3.Operation, error) {
	ops := make(map[string]*openapi3.Operation)
	for methodName, verb := range verbs {
		decl, ok := decls[methodName]
		if !ok {
			continue
		}
		op, err := operationFromDoc(decl.Doc.Text())
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", methodName, err)
		}
		if op.OperationID == "" {
			op.OperationID = strcase.ToCamelCase(methodName + named.Obj().Name())
		}
		if op.Responses == nil {
			op.Responses = openapi3.NewResponses()
		}
		ops[verb] = op
	}
	return ops, nil
}

func operationFromDoc(doc string) (*openapi3.Operation, error) {
	op := openapi3.NewOperation()
	body, ok := fragments.ExtractDocstring(expandDocTabs(doc))
	if !ok {
		return op, nil
	}

	var decoded any
	if err := yaml.Unmarshal([]byte(body), &decoded); err != nil {
		return nil, err
	}
	if decoded == nil {
		return op, nil
	}
	data, err := json.Marshal(decoded)
	if err != nil {
		return nil, err
	}
	if err := op.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return op, nil
}

// expandDocTabs replaces the leading tabs of every doc-comment line
// with spaces. gofmt indents the nested lines of a doc-comment block
// with tabs, which YAML refuses as indentation; expanding each tab to a
// fixed width keeps the relative nesting intact.
func expandDocTabs(doc string) string {
	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		tabs := 0
		for tabs < len(line) && line[tabs] == '\t' {
			tabs++
		}
		if tabs > 0 {
			lines[i] = strings.Repeat("    ", tabs) + line[tabs:]
		}
	}
	return strings.Join(lines, "\n")
}

// ConvertRule rewrites Flask-style rule placeholders to the OpenAPI
// form: /users/<uuid:user_uuid> becomes /users/{user_uuid}.
func ConvertRule(rule string) string {
	var b strings.Builder
	rest := rule
	for {
		open := strings.IndexByte(rest, '<')
		if open < 0 {
			b.WriteString(rest)
			return b.String()
		}
		closing := strings.IndexByte(rest[open:], '>')
		if closing < 0 {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:open])
		inner := rest[open+1 : open+closing]
		if idx := strings.LastIndexByte(inner, ':'); idx >= 0 {
			inner = inner[idx+1:]
		}
		b.WriteString("{" + inner + "}")
		rest = rest[open+closing+1:]
	}
}
