package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicebank/internal/repository"
	"voicebank/internal/repository/csvlog"
	"voicebank/internal/storage"
)

// These tests run the full ingestion path against a real blob store and a
// real CSV log to verify the commit contract: audio file and metadata row
// exist together or not at all.

type fixture struct {
	svc      SampleService
	audioDir string
	log      *csvlog.Log
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	audioDir := filepath.Join(dir, "audio")

	store, err := storage.NewLocal(audioDir)
	require.NoError(t, err)
	l, err := csvlog.New(filepath.Join(dir, "metadata.csv"))
	require.NoError(t, err)

	return &fixture{
		svc:      NewSampleService(store, l, nil, Options{}),
		audioDir: audioDir,
		log:      l,
	}
}

func (f *fixture) rows(t *testing.T) []string {
	t.Helper()
	res, err := f.log.List(context.Background(), repository.PageQuery{})
	require.NoError(t, err)
	names := make([]string, 0, len(res.Items))
	for _, s := range res.Items {
		names = append(names, s.Filename)
	}
	return names
}

func (f *fixture) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.audioDir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestIngestion_CommitWritesFileAndRow(t *testing.T) {
	f := newFixture(t)
	payload := bytes.Repeat([]byte("a"), 10*1024)

	sample, err := f.svc.Submit(context.Background(), bytes.NewReader(payload), int64(len(payload)),
		"hello world", "English", "Quiet")
	require.NoError(t, err)

	// The file exists under exactly the name the row references.
	content, err := os.ReadFile(filepath.Join(f.audioDir, sample.Filename))
	require.NoError(t, err)
	assert.Len(t, content, 10*1024)

	rows := f.rows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, sample.Filename, rows[0])
	assert.False(t, sample.CreatedAt.IsZero())
}

func TestIngestion_RejectedSubmissionsLeaveNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name        string
		payload     []byte
		language    string
		environment string
	}{
		{name: "zero-length audio", payload: nil, language: "English", environment: "Quiet"},
		{name: "language out of set", payload: []byte("audio"), language: "Spanish", environment: "Quiet"},
		{name: "environment out of set", payload: []byte("audio"), language: "English", environment: "Windy"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Submit(ctx, bytes.NewReader(tc.payload), int64(len(tc.payload)),
				"text", tc.language, tc.environment)
			assert.Error(t, err)
		})
	}

	assert.Empty(t, f.files(t), "rejected submissions must not create files")
	assert.Empty(t, f.rows(t), "rejected submissions must not append rows")
}

func TestIngestion_ConcurrentSubmissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			payload := []byte(fmt.Sprintf("recording %d", i))
			_, err := f.svc.Submit(ctx, bytes.NewReader(payload), int64(len(payload)),
				fmt.Sprintf("transcript %d, with commas\nand newlines", i), "Mixed", "Noisy")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	files := f.files(t)
	rows := f.rows(t)
	assert.Len(t, files, n)
	assert.Len(t, rows, n)

	// Every row references an existing file and vice versa.
	onDisk := make(map[string]bool, n)
	for _, name := range files {
		onDisk[name] = true
	}
	referenced := make(map[string]bool, n)
	for _, name := range rows {
		assert.True(t, onDisk[name], "row references missing file %s", name)
		assert.False(t, referenced[name], "file %s referenced twice", name)
		referenced[name] = true
	}

	stats, err := f.log.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, stats.Total)
}
