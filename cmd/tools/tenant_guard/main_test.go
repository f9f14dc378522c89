package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckSource(t *testing.T) {
	src := "package db\n\n" +
		"const a = `-- name: GetShop :one\nSELECT * FROM shop_settings WHERE tenant_id = $1\n`\n" +
		"const b = `-- name: ListAll :many\nSELECT * FROM invoices ORDER BY id\n`\n" +
		"const c = `-- name: CloseLoan :one\nSELECT close_loan($1, $2, $3)::jsonb\n`\n" +
		"const d = `-- name: ListTenantIDs :many\nSELECT id FROM tenants\n`\n"

	bad := checkSource(src)
	if len(bad) != 1 || bad[0] != "ListAll" {
		t.Fatalf("expected only ListAll to be flagged, got %v", bad)
	}
}

func TestScanRepositoryQueries(t *testing.T) {
	dir := filepath.Join("..", "..", "..", "internal", "db")
	if _, err := os.Stat(dir); err != nil {
		t.Skipf("db package not found: %v", err)
	}
	violations, err := scan(dir)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(violations) > 0 {
		t.Fatalf("unscoped queries: %v", violations)
	}
}
