package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"news_alert/internal/trigger"
)

func writeRules(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}
}

func TestLoad(t *testing.T) {
	h, err := Load("../../testdata/triggers.txt", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{"t6", "t7", "t5"}, h.Current().Names); diff != "" {
		t.Errorf("selected names mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.txt"), nil); err == nil {
		t.Fatal("expected error for missing rule file")
	}
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triggers.txt")
	writeRules(t, path, "a,TITLE,election\nADD,a\n")

	h, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	writeRules(t, path, "a,TITLE,election\nb,DESCRIPTION,market\nc,OR,a,b\nADD,c\n")
	if err := h.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if diff := cmp.Diff([]string{"c"}, h.Current().Names); diff != "" {
		t.Errorf("names after reload mismatch (-want +got):\n%s", diff)
	}
}

func TestReloadFailureKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triggers.txt")
	writeRules(t, path, "a,TITLE,election\nADD,a\n")

	h, err := Load(path, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	before := h.Current()

	writeRules(t, path, "a,AFTER,yesterday\nADD,a\n")
	err = h.Reload()
	if !errors.Is(err, trigger.ErrInvalidTimeFormat) {
		t.Fatalf("expected ErrInvalidTimeFormat, got %v", err)
	}
	if h.Current() != before {
		t.Error("failed reload replaced the active rule set")
	}
}

func TestStatic(t *testing.T) {
	rs := &trigger.RuleSet{Names: []string{"x"}, Triggers: []trigger.Trigger{trigger.NewTitle("x")}}
	h := Static(rs)
	if err := h.Reload(); err != nil {
		t.Fatalf("reload static: %v", err)
	}
	if h.Current() != rs {
		t.Error("static holder changed its rule set")
	}
}
