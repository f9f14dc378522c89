package main

import (
	"testing"

	"github.com/noah-isme/backend-jewelry/internal/config"
)

func TestCORSOptionsWildcardWithoutCredentials(t *testing.T) {
	opts := corsOptions(&config.Config{TenantHeader: "X-Tenant-ID"})
	if len(opts.AllowedOrigins) != 1 || opts.AllowedOrigins[0] != "*" {
		t.Fatalf("expected wildcard origin, got %v", opts.AllowedOrigins)
	}
	if opts.AllowCredentials {
		t.Fatal("wildcard origin must not allow credentials")
	}
}

func TestCORSOptionsExplicitOriginsAllowCredentials(t *testing.T) {
	opts := corsOptions(&config.Config{
		TenantHeader:       "X-Tenant-ID",
		CORSAllowedOrigins: []string{"https://pos.example.com"},
	})
	if len(opts.AllowedOrigins) != 1 || opts.AllowedOrigins[0] != "https://pos.example.com" {
		t.Fatalf("unexpected origins %v", opts.AllowedOrigins)
	}
	if !opts.AllowCredentials {
		t.Fatal("explicit origins should allow credentials")
	}
}
