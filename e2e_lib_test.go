package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVectorApp(t *testing.T) {
	out := filepath.Join(t.TempDir(), "vector.msm")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-run", "_mapps/vector.mind", out}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout.String(), stderr.String())
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	want, err := os.ReadFile("_mapps/vector.msm")
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("output differs from _mapps/vector.msm:\n%s", got)
	}

	for _, line := range []string{"compiled 6 statements (1 skipped)", "  dist = 5\n", "  area = 25\n"} {
		if !strings.Contains(stdout.String(), line) {
			t.Errorf("stdout missing %q:\n%s", line, stdout.String())
		}
	}
	if !strings.Contains(stderr.String(), "skipped \"#pragma once#\"") {
		t.Errorf("stderr missing skip warning:\n%s", stderr.String())
	}
}

func TestVectorAppCheck(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-check", "_mapps/vector.mind", "_mapps/vector.msm"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout.String(), stderr.String())
	}
	if !strings.Contains(stdout.String(), "is up to date") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestCheckReportsDiff(t *testing.T) {
	stale := filepath.Join(t.TempDir(), "stale.msm")
	if err := os.WriteFile(stale, []byte("set x 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"-check", "_mapps/vector.mind", stale}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code %d; want 1", code)
	}
	diff := stdout.String()
	if !strings.Contains(diff, "+++ compiled") || !strings.Contains(diff, "+set area s0") {
		t.Errorf("unexpected diff:\n%s", diff)
	}

	data, err := os.ReadFile(stale)
	if err != nil || string(data) != "set x 3\n" {
		t.Errorf("-check rewrote the output file: %q, %v", data, err)
	}
}

func TestBrokenApp(t *testing.T) {
	out := filepath.Join(t.TempDir(), "broken.msm")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"_mapps/broken.mind", out}, &stdout, &stderr); code != 1 {
		t.Fatalf("exit code %d; want 1", code)
	}
	if !strings.Contains(stderr.String(), "statement 1 (b = (a + 2)") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output written despite error: %v", err)
	}

	stdout.Reset()
	stderr.Reset()
	if code := run([]string{"-keep-going", "_mapps/broken.mind", out}, &stdout, &stderr); code != 1 {
		t.Fatalf("-keep-going exit code %d; want 1", code)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("-keep-going did not write output: %v", err)
	}
	if !strings.Contains(string(data), "set a 1\nop mul c a 3\n") {
		t.Errorf("partial output:\n%s", data)
	}
}
