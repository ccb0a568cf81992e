package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRoles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roles.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write roles file: %v", err)
	}
	return path
}

func TestLoadRolesParsesMapping(t *testing.T) {
	path := writeRoles(t, `
default_role: user
roles:
  user:
    - ./docs/general.pdf
  lawyer:
    - ./docs/contracts.pdf
    - ./docs/statutes.txt
`)

	cfg, err := LoadRoles(path)
	if err != nil {
		t.Fatalf("LoadRoles() error = %v", err)
	}
	if cfg.DefaultRole != "user" {
		t.Fatalf("default role = %q", cfg.DefaultRole)
	}
	if len(cfg.Roles["lawyer"]) != 2 {
		t.Fatalf("lawyer paths = %v", cfg.Roles["lawyer"])
	}
}

func TestLoadRolesRequiresDefaultRole(t *testing.T) {
	path := writeRoles(t, `
roles:
  user:
    - ./docs/general.pdf
`)

	if _, err := LoadRoles(path); err == nil {
		t.Fatal("expected error for missing default_role")
	}
}

func TestLoadRolesRequiresDefaultRoleMapping(t *testing.T) {
	path := writeRoles(t, `
default_role: user
roles:
  lawyer:
    - ./docs/contracts.pdf
`)

	if _, err := LoadRoles(path); err == nil {
		t.Fatal("expected error when default role has no documents")
	}
}

func TestLoadRolesRejectsEmptyRole(t *testing.T) {
	path := writeRoles(t, `
default_role: user
roles:
  user:
    - ./docs/general.pdf
  empty: []
`)

	if _, err := LoadRoles(path); err == nil {
		t.Fatal("expected error for role without documents")
	}
}

func TestLoadRolesMissingFile(t *testing.T) {
	if _, err := LoadRoles(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
