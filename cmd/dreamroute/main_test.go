package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/pavelanni/dreamroute/internal/flow"
	"github.com/pavelanni/dreamroute/internal/model"
	"github.com/pavelanni/dreamroute/internal/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNormalizeBasePath(t *testing.T) {
	tests := map[string]string{
		"":          "",
		"/":         "",
		"careers":   "/careers",
		"/careers/": "/careers",
		" /ru ":     "/ru",
	}
	for in, want := range tests {
		if got := normalizeBasePath(in); got != want {
			t.Errorf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSeedAdmin(t *testing.T) {
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := seedAdmin(db, ""); err == nil {
		t.Fatal("expected error without password and without admin")
	}
	if err := seedAdmin(db, "secret"); err != nil {
		t.Fatalf("seedAdmin: %v", err)
	}
	n, err := db.UserCount(model.UserRoleAdmin)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("admin count = %d, want 1", n)
	}
	// Existing admin: an empty password is fine, a new one replaces the hash.
	if err := seedAdmin(db, ""); err != nil {
		t.Fatalf("seedAdmin with existing admin: %v", err)
	}
	before, _ := db.GetUserByUsername(adminUsername)
	if err := seedAdmin(db, "secret"); err != nil {
		t.Fatal(err)
	}
	same, _ := db.GetUserByUsername(adminUsername)
	if same.PasswordHash != before.PasswordHash {
		t.Error("unchanged password was re-hashed")
	}
	if err := seedAdmin(db, "rotated"); err != nil {
		t.Fatal(err)
	}
	after, _ := db.GetUserByUsername(adminUsername)
	if before.PasswordHash == after.PasswordHash {
		t.Error("password hash was not rotated")
	}
	if n, _ := db.UserCount(model.UserRoleAdmin); n != 1 {
		t.Errorf("admin count after rotation = %d, want 1", n)
	}
}

func TestFlowValidateBuiltIn(t *testing.T) {
	out, err := execute(t, "flow", "validate")
	if err != nil {
		t.Fatalf("flow validate: %v\n%s", err, out)
	}
	def := flow.Default()
	if !strings.Contains(out, def.Hash) {
		t.Errorf("output does not mention flow hash:\n%s", out)
	}
	if !strings.Contains(out, string(def.Table.Root())) {
		t.Errorf("output does not mention root node:\n%s", out)
	}
}

func TestFlowValidateRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	doc := "version: 1\nroot: a\nnodes:\n  - id: a\n    text: A?\n    options: [x]\n    next: {x: missing}\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "flow", "validate", path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestFlowPathsClassifiesEveryPath(t *testing.T) {
	out, err := execute(t, "flow", "paths")
	if err != nil {
		t.Fatalf("flow paths: %v\n%s", err, out)
	}
	if !strings.Contains(out, flow.FallbackCategory) {
		t.Errorf("expected at least one fallback classification:\n%s", out)
	}
	if !strings.Contains(out, "q1=Strongly Agree") {
		t.Errorf("expected the q1 answers to be listed:\n%s", out)
	}
}

func TestExportEmptyLog(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.json")
	_, err := execute(t, "export",
		"--responses", filepath.Join(dir, "responses.csv"),
		"--output", outPath,
	)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"responses": []`) {
		t.Errorf("unexpected export:\n%s", data)
	}
}

func TestOCRRejectsOutOfRangeThreshold(t *testing.T) {
	t.Run("flag", func(t *testing.T) {
		_, err := execute(t, "ocr", "--threshold=-1", "sheet.png")
		if err == nil || !strings.Contains(err.Error(), "out of range") {
			t.Errorf("err = %v, want out of range", err)
		}
	})
	t.Run("env", func(t *testing.T) {
		t.Setenv("DREAMROUTE_THRESHOLD", "300")
		_, err := execute(t, "ocr", "sheet.png")
		if err == nil || !strings.Contains(err.Error(), "out of range") {
			t.Errorf("err = %v, want out of range", err)
		}
	})
}

func TestPreprocessOptions(t *testing.T) {
	v := viper.New()
	v.Set("threshold", 255)
	v.Set("invert", true)
	v.Set("scale", 2.0)
	opts, err := preprocessOptions(v)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Threshold != 255 || !opts.Invert || opts.Scale != 2 || opts.Skip {
		t.Errorf("opts = %+v", opts)
	}
}
