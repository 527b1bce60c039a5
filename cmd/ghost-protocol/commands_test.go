package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	for _, key := range []string{"GHOST_SLOT_COUNT", "GHOST_LOG_FILE", "GHOST_SEED", "GHOST_PLAYER_NAME"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("GHOST_SAVE_DIR", dir)
	t.Setenv("GHOST_LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const legacySave = `{"player_name": "neo", "experience": 250, "sanity": 80, "completed_challenges": ["welcome"]}`

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "Ghost Protocol dev") {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestImportThenListAndExport(t *testing.T) {
	dir := setupEnv(t)
	file := filepath.Join(t.TempDir(), "legacy.json")
	if err := os.WriteFile(file, []byte(legacySave), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := run(t, "", "import", "--slot", "2", file)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported neo (level 2)") {
		t.Fatalf("unexpected import output %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "save_slot_1.json")); err != nil {
		t.Fatalf("expected slot file: %v", err)
	}

	out, err = run(t, "", "slots")
	if err != nil {
		t.Fatalf("slots: %v", err)
	}
	if !strings.Contains(out, "primary  empty") || !strings.Contains(out, "neo L2 (250 xp)") {
		t.Fatalf("unexpected slots output %q", out)
	}

	out, err = run(t, "", "export", "--slot", "2")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, `"version": 3`) || !strings.Contains(out, `"player_name": "neo"`) {
		t.Fatalf("unexpected export output %q", out)
	}
}

func TestImportFromStdinToPrimary(t *testing.T) {
	dir := setupEnv(t)
	if _, err := run(t, legacySave, "import", "-"); err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "game_save.json")); err != nil {
		t.Fatalf("expected primary save: %v", err)
	}
}

func TestImportRejectsCorruptDocument(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "{not json", "import", "-"); err == nil {
		t.Fatalf("expected corrupt import to fail")
	}
}

func TestExportMissingSave(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "", "export"); err == nil {
		t.Fatalf("expected export of empty primary to fail")
	}
}

func TestSlotFlagRange(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "", "export", "--slot", "6"); err == nil {
		t.Fatalf("expected slot 6 to be rejected with 5 slots")
	}
}

func TestCatalogCommand(t *testing.T) {
	setupEnv(t)
	out, err := run(t, "", "catalog")
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if !strings.Contains(out, "welcome") || !strings.Contains(out, "practice") {
		t.Fatalf("unexpected catalog output %q", out)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	setupEnv(t)
	t.Setenv("GHOST_SLOT_COUNT", "0")
	if _, err := run(t, "", "slots"); err == nil {
		t.Fatalf("expected invalid slot count to fail")
	}
}
