// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed, successfully or not.
type ProgressFunc func()

// ErrFileTooLarge is reported for files above the size limit of MapSources.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// Source is a file and its contents.
type Source struct {
	Path    string
	Content string
}

// ForEachFile runs fn for every file in a bounded pool. Results keep the
// order of files; failed files are left out and reported in the returned
// errors, which are nil when every file succeeded. Files not yet started
// when ctx is cancelled fail with the context error.
func ForEachFile[T any](ctx context.Context, files []string, fn func(string) (T, error), onProgress ProgressFunc) ([]T, *ProcessingErrors) {
	return ForEachFileN(ctx, files, 0, fn, onProgress)
}

// ForEachFileN is ForEachFile with a worker count. If maxWorkers is <= 0,
// defaults to 2x NumCPU.
func ForEachFileN[T any](ctx context.Context, files []string, maxWorkers int, fn func(string) (T, error), onProgress ProgressFunc) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	slots := make([]T, len(files))
	done := make([]bool, len(files))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			if onProgress != nil {
				defer onProgress()
			}
			if err := ctx.Err(); err != nil {
				errs.Add(path, err)
				return nil
			}

			result, err := fn(path)
			if err != nil {
				errs.Add(path, err)
				return nil // Don't stop pool on individual file errors
			}
			slots[i] = result
			done[i] = true
			return nil
		})
	}
	_ = p.Wait()

	results := make([]T, 0, len(files))
	for i, ok := range done {
		if ok {
			results = append(results, slots[i])
		}
	}
	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}

// MapSources reads every file and runs fn over its contents. Files larger
// than maxSize bytes fail with ErrFileTooLarge; a maxSize of 0 disables
// the limit.
func MapSources[T any](ctx context.Context, files []string, maxSize int64, fn func(Source) (T, error), onProgress ProgressFunc) ([]T, *ProcessingErrors) {
	return ForEachFile(ctx, files, func(path string) (T, error) {
		var zero T
		if maxSize > 0 {
			info, err := os.Stat(path)
			if err != nil {
				return zero, err
			}
			if info.Size() > maxSize {
				return zero, fmt.Errorf("%w (%d > %d bytes)", ErrFileTooLarge, info.Size(), maxSize)
			}
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return zero, err
		}
		return fn(Source{Path: path, Content: string(content)})
	}, onProgress)
}
