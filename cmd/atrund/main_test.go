package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"atrund/internal/jobfile"
	"atrund/internal/spool"
	"atrund/internal/testsupport"
)

func writeTestConfig(t *testing.T, jobDir, outputDir, logDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[paths]\n" +
		"job_dir = \"" + jobDir + "\"\n" +
		"output_dir = \"" + outputDir + "\"\n" +
		"log_dir = \"" + logDir + "\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRootRejectsPositionalArgs(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"extra"})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected non-option arguments to be rejected")
	}
}

func TestQueueCommandListsSpoolAsJSON(t *testing.T) {
	base := t.TempDir()
	jobDir := filepath.Join(base, "jobs")
	outputDir := filepath.Join(base, "output")
	logDir := filepath.Join(base, "logs")
	for _, dir := range []string{jobDir, outputDir, logDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}

	uid := uint32(os.Getuid())
	ready := spool.FromTime('a', 1, time.Now().Add(time.Hour))
	testsupport.WriteJob(t, jobDir, ready, jobfile.Header{UID: uid, GID: uid, Login: "alice", SendMail: 0}, "true\n")

	preparing := spool.FromTime('B', 2, time.Now().Add(time.Hour))
	if err := os.WriteFile(filepath.Join(jobDir, preparing.String()), []byte("#!/bin/sh\n"), 0o600); err != nil {
		t.Fatalf("write preparing job: %v", err)
	}

	cfgPath := writeTestConfig(t, jobDir, outputDir, logDir)

	out := new(bytes.Buffer)
	cmd := newRootCommand()
	cmd.SetArgs([]string{"queue", "--json", "--config", cfgPath})
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("queue command failed: %v", err)
	}

	var rows []queueRow
	if err := json.Unmarshal(out.Bytes(), &rows); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	byJob := map[uint32]queueRow{}
	for _, row := range rows {
		byJob[row.Job] = row
	}
	if byJob[1].Class != "immediate" || byJob[1].State != "ready" {
		t.Fatalf("unexpected row for job 1: %+v", byJob[1])
	}
	if byJob[2].Class != "batch" || byJob[2].State != "preparing" {
		t.Fatalf("unexpected row for job 2: %+v", byJob[2])
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out := new(bytes.Buffer)
	cmd := newRootCommand()
	cmd.SetArgs([]string{"config", "init", "--path", target})
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[daemon]") {
		t.Fatalf("sample missing daemon section:\n%s", data)
	}

	// A second init without --overwrite must refuse.
	cmd = newRootCommand()
	cmd.SetArgs([]string{"config", "init", "--path", target})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}

func TestConfigShowPrintsResolvedConfig(t *testing.T) {
	base := t.TempDir()
	cfgPath := writeTestConfig(t,
		filepath.Join(base, "jobs"),
		filepath.Join(base, "output"),
		filepath.Join(base, "logs"),
	)

	out := new(bytes.Buffer)
	cmd := newRootCommand()
	cmd.SetArgs([]string{"config", "show", "--config", cfgPath})
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "# loaded from") {
		t.Fatalf("missing source comment: %s", text)
	}
	if !strings.Contains(text, "batch_interval = 60") {
		t.Fatalf("missing defaulted batch interval: %s", text)
	}
}
