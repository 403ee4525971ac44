package sandbox

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// allowedImports is the fixed set generated code may import, mapping
// the spec's language-agnostic categories (numeric, tabular, math,
// regex, random, datetime, json, iter/collections) onto their Go
// equivalents, generalized from yaegi_executor.go's allowedPackages map.
var allowedImports = map[string]bool{
	"math":            true,
	"math/rand":       true,
	"regexp":          true,
	"time":            true,
	"encoding/json":   true,
	"sort":            true,
	"strings":         true,
	"strconv":         true,
	"fmt":             true,
	"errors":          true,
}

// deniedIdentifiers mirrors the spec's open/exec/eval/compile/globals/
// locals/subprocess/filesystem deny-list, expressed as the Go
// selectors that would give generated code the equivalent capability.
var deniedIdentifiers = []string{
	"os.", "os/exec", "exec.", "syscall.", "unsafe.", "reflect.",
	"net.", "net/http", "ioutil.", "plugin.",
}

// ValidationError is returned by Validate for any rejected program,
// carrying enough detail for the Engine to surface Error(validation, …).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "sandbox: " + e.Reason }

// Validate parses code and checks its import list against the
// allow-list and its body against the identifier deny-list. It is the
// syntactic-validation half of invariant I5: generated code is never
// executed before this succeeds.
func Validate(code string) error {
	wrapped := wrapPackage(code)

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "generated.go", wrapped, parser.ImportsOnly)
	if err != nil {
		return &ValidationError{Reason: fmt.Sprintf("syntax error: %v", err)}
	}

	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		if !allowedImports[path] {
			return &ValidationError{Reason: fmt.Sprintf("import %q is not in the allow-list", path)}
		}
	}

	full, err := parser.ParseFile(fset, "generated.go", wrapped, parser.AllErrors)
	if err != nil {
		return &ValidationError{Reason: fmt.Sprintf("syntax error: %v", err)}
	}

	if err := checkDeniedIdentifiers(wrapped); err != nil {
		return err
	}

	var visitErr error
	ast.Inspect(full, func(n ast.Node) bool {
		if visitErr != nil {
			return false
		}
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if pkg, ok := sel.X.(*ast.Ident); ok {
				candidate := pkg.Name + "." + sel.Sel.Name
				for _, denied := range deniedIdentifiers {
					if strings.HasPrefix(candidate, strings.TrimSuffix(denied, ".")+".") {
						visitErr = &ValidationError{Reason: fmt.Sprintf("use of %q is forbidden", candidate)}
						return false
					}
				}
			}
		}
		return true
	})
	return visitErr
}

func checkDeniedIdentifiers(code string) error {
	for _, denied := range deniedIdentifiers {
		if strings.Contains(code, denied) {
			return &ValidationError{Reason: fmt.Sprintf("use of %q is forbidden", strings.TrimSuffix(denied, "."))}
		}
	}
	return nil
}

// wrapPackage ensures code parses as a standalone file, matching
// yaegi_executor.go's wrapCode: the LLM is prompted to emit a bare
// function body, not a full source file.
func wrapPackage(code string) string {
	if strings.Contains(code, "package ") {
		return code
	}
	return "package main\n\n" + code
}
