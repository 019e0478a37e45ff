package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ferlint/internal/analyzer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingAnalyzer struct {
	mu    sync.Mutex
	paths []string
}

func (c *countingAnalyzer) Analyze(_ context.Context, path string) analyzer.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, path)
	return analyzer.Result{Status: analyzer.StatusReferToMentor}
}

func (c *countingAnalyzer) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.paths...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func startWatcher(t *testing.T, path string, a Analyzer) (*SubmissionWatcher, chan analyzer.Result) {
	t.Helper()
	results := make(chan analyzer.Result, 16)
	sw, err := New(path, a, 50*time.Millisecond, func(r analyzer.Result) { results <- r })
	require.NoError(t, err)
	require.NoError(t, sw.Start(context.Background()))
	t.Cleanup(sw.Stop)
	return sw, results
}

func TestWatcher_AnalyzesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "two_fer.py")
	writeFile(t, path, "def two_fer(name='you'):\n    return name\n")

	a := &countingAnalyzer{}
	sw, results := startWatcher(t, path, a)

	writeFile(t, path, "def two_fer(name='you'):\n    return f'One for {name}, one for me.'\n")

	select {
	case r := <-results:
		assert.Equal(t, analyzer.StatusReferToMentor, r.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("no analysis after write")
	}
	assert.Equal(t, []string{path}, a.calls())

	stats := sw.Stats()
	assert.GreaterOrEqual(t, stats.Events, 1)
	assert.Equal(t, 1, stats.Analyses)
	assert.False(t, stats.LastEvent.IsZero())
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "two_fer.py")
	writeFile(t, path, "")

	a := &countingAnalyzer{}
	_, results := startWatcher(t, path, a)

	for i := 0; i < 5; i++ {
		writeFile(t, path, "def two_fer():\n    pass\n")
	}

	select {
	case <-results:
	case <-time.After(5 * time.Second):
		t.Fatal("no analysis after burst")
	}
	time.Sleep(200 * time.Millisecond)
	assert.Len(t, a.calls(), 1)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "two_fer.py")
	writeFile(t, path, "")

	a := &countingAnalyzer{}
	_, results := startWatcher(t, path, a)

	writeFile(t, filepath.Join(dir, "notes.txt"), "hello")
	writeFile(t, filepath.Join(dir, "helper.py"), "x = 1\n")

	select {
	case <-results:
		t.Fatal("analysis triggered by unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
	assert.Empty(t, a.calls())
}

func TestWatcher_DirectoryMatchesPythonFiles(t *testing.T) {
	dir := t.TempDir()

	a := &countingAnalyzer{}
	_, results := startWatcher(t, dir, a)

	writeFile(t, filepath.Join(dir, "README.md"), "# two fer")
	writeFile(t, filepath.Join(dir, "two_fer.py"), "def two_fer(name='you'):\n    return name\n")

	select {
	case <-results:
	case <-time.After(5 * time.Second):
		t.Fatal("no analysis after .py write")
	}
	assert.Equal(t, []string{dir}, a.calls(), "directory submissions are analyzed by directory")
}

func TestWatcher_NewMissingPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), &countingAnalyzer{}, 0, nil)
	assert.Error(t, err)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	sw, err := New(dir, &countingAnalyzer{}, 0, nil)
	require.NoError(t, err)
	require.NoError(t, sw.Start(context.Background()))
	require.NoError(t, sw.Start(context.Background()), "second Start is a no-op")

	sw.Stop()
	sw.Stop()

	select {
	case <-sw.Done():
	default:
		t.Fatal("event loop still running after Stop")
	}
}

func TestWatcher_ContextCancelStopsLoop(t *testing.T) {
	dir := t.TempDir()
	sw, err := New(dir, &countingAnalyzer{}, 0, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sw.Start(ctx))
	cancel()

	select {
	case <-sw.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("event loop ignored context cancellation")
	}
	sw.Stop()
}
