package architecture_test

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// catalogWriteOwners lists the only non-test files allowed to call each
// whole-catalog write on the product repo.
var catalogWriteOwners = map[string][]string{
	"DeleteAll":      {"internal/data/aggregates/promotion.go"},
	"LockForReplace": {"internal/data/aggregates/promotion.go"},
}

func TestWholeCatalogWritesOwnedByPromotion(t *testing.T) {
	root, _ := moduleRoot(t)
	internalDir := filepath.Join(root, "internal")
	fset := token.NewFileSet()

	calls := map[string]map[string]int{}
	walkErr := filepath.WalkDir(internalDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "testutil" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		f, err := parser.ParseFile(fset, path, nil, 0)
		if err != nil {
			return err
		}
		ast.Inspect(f, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok || sel.Sel == nil {
				return true
			}
			if _, tracked := catalogWriteOwners[sel.Sel.Name]; !tracked {
				return true
			}
			if calls[sel.Sel.Name] == nil {
				calls[sel.Sel.Name] = map[string]int{}
			}
			calls[sel.Sel.Name][rel]++
			return true
		})
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk internal/: %v", walkErr)
	}

	var violations []string
	for method, files := range calls {
		allowed := map[string]bool{}
		for _, f := range catalogWriteOwners[method] {
			allowed[f] = true
		}
		for file, n := range files {
			if !allowed[file] {
				violations = append(violations, fmt.Sprintf("- %s calls %s %d time(s)", file, method, n))
			}
		}
	}
	if len(violations) > 0 {
		sort.Strings(violations)
		t.Fatalf("whole-catalog writes outside the promotion aggregate:\n%s", strings.Join(violations, "\n"))
	}
	for method, owners := range catalogWriteOwners {
		for _, owner := range owners {
			if calls[method][owner] == 0 {
				t.Fatalf("expected %s to call %s", owner, method)
			}
		}
	}
}
