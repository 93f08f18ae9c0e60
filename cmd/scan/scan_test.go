package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	xml, err := os.ReadFile("../../testdata/sample.xml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/rss", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(xml)
	})
	mux.HandleFunc("/mirror", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(xml)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runScan(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	base := []string{"scan", "--tz", "EST", "--retries", "0", "--log-level", "error"}
	err := app.Run(append(base, args...))
	return out.String(), err
}

func TestScanPrintsMatchesOnce(t *testing.T) {
	srv := newFeedServer(t)

	out, err := runScan(t, "--triggers", "../../testdata/triggers.txt", srv.URL+"/rss", srv.URL+"/mirror")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	var titles []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "[") {
			titles = append(titles, line)
		}
	}
	want := []string{
		"[World News Wire] Election Results Announced",
		"[World News Wire] Market Rally Continues",
		"[World News Wire] Debate Night Recap",
	}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("printed stories mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out, "  3 Oct 2016 20:00:00 EST\n") {
		t.Errorf("expected publication time in reference zone, got:\n%s", out)
	}
}

func TestScanReportsFailedFeeds(t *testing.T) {
	srv := newFeedServer(t)

	out, err := runScan(t, "--triggers", "../../testdata/triggers.txt", srv.URL+"/rss", srv.URL+"/gone")
	if err == nil {
		t.Fatal("expected error for unreachable feed")
	}
	if !strings.Contains(err.Error(), "1 of 2 feeds") {
		t.Errorf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Election Results Announced") {
		t.Errorf("healthy feed should still be scanned, got:\n%s", out)
	}
}

func TestScanCheck(t *testing.T) {
	out, err := runScan(t, "--triggers", "../../testdata/triggers.txt", "--check")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	want := "../../testdata/triggers.txt: 7 trigger(s) defined, 3 selected\n" +
		"  t6: AND(DESCRIPTION \"Trump\", DESCRIPTION \"Clinton\")\n" +
		"  t7: AND(TITLE \"election\", AFTER 3 Oct 2016 17:00:10)\n" +
		"  t5: DESCRIPTION \"market\"\n"
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("check output mismatch (-want +got):\n%s", diff)
	}
}

func TestScanErrors(t *testing.T) {
	dir := t.TempDir()
	bad := dir + "/bad.txt"
	if err := os.WriteFile(bad, []byte("a,AND,a,a\nADD,a\n"), 0o600); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no feeds", args: []string{"--triggers", "../../testdata/triggers.txt"}, wantErr: "feed URL is required"},
		{name: "missing rule file", args: []string{"--triggers", dir + "/absent.txt", "--check"}, wantErr: "open trigger config"},
		{name: "cyclic rules", args: []string{"--triggers", bad, "--check"}, wantErr: "cyclic trigger reference"},
		{name: "bad zone", args: []string{"--tz", "Nowhere/Land", "--triggers", "../../testdata/triggers.txt", "--check"}, wantErr: "TRIGGER_TIMEZONE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runScan(t, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
