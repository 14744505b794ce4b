package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func TestForEachFile(t *testing.T) {
	files := []string{"a.js", "b.py", "c.go", "d.rb", "e.rs"}

	results, errs := ForEachFile(context.Background(), files, func(path string) (string, error) {
		return strings.ToUpper(path), nil
	}, nil)

	if errs != nil {
		t.Fatalf("Unexpected errors: %v", errs)
	}
	want := []string{"A.JS", "B.PY", "C.GO", "D.RB", "E.RS"}
	if len(results) != len(want) {
		t.Fatalf("Expected %d results, got %d", len(want), len(results))
	}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %s, want %s (input order must be kept)", i, results[i], want[i])
		}
	}
}

func TestForEachFile_EmptyFileList(t *testing.T) {
	results, errs := ForEachFile(context.Background(), nil, func(path string) (int, error) {
		return 1, nil
	}, nil)

	if results != nil {
		t.Errorf("Expected nil for empty file list, got %v", results)
	}
	if errs != nil {
		t.Errorf("Expected nil errors for empty file list, got %v", errs)
	}
}

func TestForEachFile_WithErrors(t *testing.T) {
	files := []string{"ok1", "bad", "ok2"}

	results, errs := ForEachFile(context.Background(), files, func(path string) (string, error) {
		if path == "bad" {
			return "", errors.New("boom")
		}
		return path, nil
	}, nil)

	if len(results) != 2 || results[0] != "ok1" || results[1] != "ok2" {
		t.Errorf("results = %v, want [ok1 ok2]", results)
	}
	if errs == nil || len(errs.Errors) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
	if errs.Errors[0].Path != "bad" || errs.Error() != "bad: boom" {
		t.Errorf("error = %v", errs.Errors[0])
	}
}

func TestForEachFile_Progress(t *testing.T) {
	files := make([]string, 50)
	for i := range files {
		files[i] = fmt.Sprintf("file%d", i)
	}

	var ticks atomic.Int32
	ForEachFileN(context.Background(), files, 4, func(path string) (int, error) {
		if strings.HasSuffix(path, "7") {
			return 0, errors.New("fail")
		}
		return 1, nil
	}, func() { ticks.Add(1) })

	if n := ticks.Load(); n != int32(len(files)) {
		t.Errorf("progress ticked %d times, want %d (failures count too)", n, len(files))
	}
}

func TestForEachFile_BoundedWorkers(t *testing.T) {
	files := make([]string, 40)
	for i := range files {
		files[i] = fmt.Sprintf("f%d", i)
	}

	var active, peak atomic.Int32
	ForEachFileN(context.Background(), files, 3, func(path string) (int, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer active.Add(-1)
		return 0, nil
	}, nil)

	if p := peak.Load(); p > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", p)
	}
}

func TestForEachFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results, errs := ForEachFile(ctx, []string{"a", "b", "c"}, func(path string) (int, error) {
		calls.Add(1)
		return 1, nil
	}, nil)

	if calls.Load() != 0 {
		t.Errorf("fn ran %d times after cancellation", calls.Load())
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want none", results)
	}
	if errs == nil || len(errs.Errors) != 3 {
		t.Fatalf("expected three errors, got %v", errs)
	}
	if !errors.Is(errs.Errors[0], context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", errs.Errors[0])
	}
}

func TestMapSources(t *testing.T) {
	tmpDir := t.TempDir()
	small := createTestFile(t, tmpDir, "small.py", "x = 1\n")
	large := createTestFile(t, tmpDir, "large.js", strings.Repeat("a", 100))
	missing := filepath.Join(tmpDir, "missing.go")

	results, errs := MapSources(context.Background(), []string{small, large, missing}, 50, func(src Source) (int, error) {
		return len(src.Content), nil
	}, nil)

	if len(results) != 1 || results[0] != 6 {
		t.Errorf("results = %v, want [6]", results)
	}
	if errs == nil || len(errs.Errors) != 2 {
		t.Fatalf("expected two errors, got %v", errs)
	}

	var tooLarge bool
	for _, e := range errs.Errors {
		if e.Path == large && errors.Is(e, ErrFileTooLarge) {
			tooLarge = true
		}
	}
	if !tooLarge {
		t.Errorf("large file should fail with ErrFileTooLarge: %v", errs.Errors)
	}

	results, errs = MapSources(context.Background(), []string{large}, 0, func(src Source) (int, error) {
		return len(src.Content), nil
	}, nil)
	if errs != nil || len(results) != 1 || results[0] != 100 {
		t.Errorf("no size limit: results = %v, errs = %v", results, errs)
	}
}

func TestProcessingErrors(t *testing.T) {
	errs := &ProcessingErrors{}
	if errs.HasErrors() {
		t.Error("HasErrors() should be false for empty collection")
	}
	if errs.Error() != "no errors" {
		t.Errorf("Error() = %q", errs.Error())
	}

	errs.Add("a.go", errors.New("first"))
	errs.Add("b.go", errors.New("second"))
	if !errs.HasErrors() {
		t.Error("HasErrors() should be true")
	}
	if got := errs.Error(); got != "2 files failed to process (first: a.go: first)" {
		t.Errorf("Error() = %q", got)
	}
}

func TestProcessingErrors_ThreadSafe(t *testing.T) {
	errs := &ProcessingErrors{}
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs.Add(fmt.Sprintf("file%d", i), errors.New("x"))
		}(i)
	}
	wg.Wait()

	if len(errs.Errors) != 100 {
		t.Errorf("collected %d errors, want 100", len(errs.Errors))
	}
}
