package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// tenant_guard scans the query constants in the db package and ensures every
// statement that reads a table filters on tenant_id. Procedure calls must take
// the tenant as their first argument.
// Exit code 0 = ok, 1 = violation, 2 = other error.
func main() {
	root := flag.String("dir", "internal/db", "directory holding the query layer")
	flag.Parse()

	violations, err := scan(*root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tenant_guard error: %v\n", err)
		os.Exit(2)
	}
	if len(violations) > 0 {
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "VIOLATION: %s\n", v)
		}
		os.Exit(1)
	}
	fmt.Println("tenant_guard: OK")
}

// crossTenant lists queries that are allowed to span tenants.
var crossTenant = map[string]bool{
	"ListTenantIDs": true,
}

var (
	reQuery     = regexp.MustCompile("(?s)`-- name: (\\w+) :\\w+\\n(.*?)`")
	reFrom      = regexp.MustCompile(`(?i)\bfrom\b`)
	reTenant    = regexp.MustCompile(`(?i)tenant_id\s*=\s*\$[0-9]+`)
	reProcedure = regexp.MustCompile(`(?i)^\s*select\s+\w+\(\s*\$1\b`)
)

func scan(dir string) ([]string, error) {
	var violations []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".go" || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, name := range checkSource(string(src)) {
			violations = append(violations, path+": "+name)
		}
		return nil
	})
	return violations, err
}

// checkSource returns the names of queries in src that are not tenant scoped.
func checkSource(src string) []string {
	var bad []string
	for _, m := range reQuery.FindAllStringSubmatch(src, -1) {
		name, stmt := m[1], m[2]
		if crossTenant[name] {
			continue
		}
		switch {
		case reProcedure.MatchString(stmt):
		case reFrom.MatchString(stmt) && reTenant.MatchString(stmt):
		case !reFrom.MatchString(stmt):
		default:
			bad = append(bad, name)
		}
	}
	return bad
}
