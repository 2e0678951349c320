package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForEachFilePreservesOrder(t *testing.T) {
	tmpDir := t.TempDir()
	files := make([]string, 100)
	for i := range files {
		files[i] = createTestFile(t, tmpDir, fmt.Sprintf("file%d.go", i), "package main")
	}

	results, errs := ForEachFile(context.Background(), files, func(path string) (string, error) {
		return filepath.Base(path), nil
	})

	assert.Nil(t, errs)
	require.Len(t, results, len(files))
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("file%d.go", i), r)
	}
}

func TestForEachFileEmpty(t *testing.T) {
	results, errs := ForEachFile(context.Background(), nil, func(path string) (string, error) {
		return path, nil
	})
	assert.Nil(t, results)
	assert.Nil(t, errs)
}

func TestForEachFileWithErrors(t *testing.T) {
	files := []string{"a", "b", "c", "d"}
	boom := errors.New("boom")

	results, errs := ForEachFileN(context.Background(), files, 2, func(path string) (string, error) {
		if path == "b" || path == "d" {
			return "", boom
		}
		return path, nil
	}, nil)

	assert.Equal(t, []string{"a", "c"}, results)
	require.NotNil(t, errs)
	assert.Equal(t, 2, errs.Len())
	for _, e := range errs.Errors {
		assert.ErrorIs(t, e.Err, boom)
	}
}

func TestForEachFileProgress(t *testing.T) {
	files := []string{"a", "b", "c"}
	var calls atomic.Int32

	_, _ = ForEachFileN(context.Background(), files, 0, func(path string) (string, error) {
		if path == "b" {
			return "", errors.New("fail")
		}
		return path, nil
	}, func() { calls.Add(1) })

	assert.Equal(t, int32(3), calls.Load(), "progress ticks for failures too")
}

func TestForEachFileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int32
	results, errs := ForEachFileN(ctx, []string{"a", "b", "c"}, 1, func(path string) (string, error) {
		ran.Add(1)
		return path, nil
	}, nil)

	assert.Empty(t, results)
	require.NotNil(t, errs)
	assert.Equal(t, 3, errs.Len())
	assert.Zero(t, ran.Load())
	assert.ErrorIs(t, errs.Errors[0].Err, context.Canceled)
}

func TestForEachFileRespectsWorkerLimit(t *testing.T) {
	files := make([]string, 32)
	for i := range files {
		files[i] = fmt.Sprint(i)
	}

	var mu sync.Mutex
	active, peak := 0, 0
	_, errs := ForEachFileN(context.Background(), files, 3, func(path string) (int, error) {
		mu.Lock()
		active++
		peak = max(peak, active)
		mu.Unlock()

		mu.Lock()
		active--
		mu.Unlock()
		return 0, nil
	}, nil)

	assert.Nil(t, errs)
	assert.LessOrEqual(t, peak, 3)
}

func TestProcessingErrors(t *testing.T) {
	errs := &ProcessingErrors{}
	assert.False(t, errs.HasErrors())
	assert.Equal(t, "no errors", errs.Error())

	errs.Add("a.go", errors.New("bad"))
	assert.True(t, errs.HasErrors())
	assert.Equal(t, "a.go: bad", errs.Error())

	errs.Add("b.go", errors.New("worse"))
	assert.Equal(t, "2 files failed to process (first: a.go: bad)", errs.Error())
}

func TestProcessingErrorsThreadSafe(t *testing.T) {
	errs := &ProcessingErrors{}
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs.Add(fmt.Sprintf("file%d", i), errors.New("x"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, errs.Len())
}

func TestDefaultWorkers(t *testing.T) {
	assert.GreaterOrEqual(t, DefaultWorkers(), DefaultWorkerMultiplier)
}

func createTestFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
