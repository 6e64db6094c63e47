package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chantierpro/finance/internal/config"
	reportingdomain "github.com/chantierpro/finance/internal/reporting/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "2024-T1")
	artifacts := []reportingdomain.Artifact{
		{Kind: reportingdomain.KindFEC, FileName: "123456789FEC20240331.txt", Data: []byte("JournalCode|JournalLib")},
		{Kind: reportingdomain.KindCA3CSV, FileName: "../escape.csv", Data: []byte("Ligne;Libelle;Montant\n")},
	}

	paths, err := writeArtifacts(dir, artifacts)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "escape.csv"), paths[1])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "JournalCode|JournalLib", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files left")
}

func TestApplyFlags(t *testing.T) {
	base := config.Config{DatasetPath: "dataset.json", OutputDir: "exports", ExportEncoding: "utf-8"}

	cfg := applyFlags(base, options{})
	assert.Equal(t, base.DatasetPath, cfg.DatasetPath)
	assert.Equal(t, base.OutputDir, cfg.OutputDir)
	assert.Equal(t, base.ExportEncoding, cfg.ExportEncoding)
	assert.Equal(t, "stderr", cfg.Observability.LogOutput)

	cfg = applyFlags(base, options{dataset: "q1.json", out: " out ", encoding: "Windows-1252"})
	assert.Equal(t, "q1.json", cfg.DatasetPath)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "windows-1252", cfg.ExportEncoding)
}
