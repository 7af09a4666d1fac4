package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrInjected is the error returned by injected faults unless a Fault sets
// its own.
var ErrInjected = errors.New("injected fault")

// Fault defines the failures applied to files whose name matches a rule.
type Fault struct {
	// FailOnOpen fails OpenFile itself.
	FailOnOpen bool
	// FailAfterBytes fails writes once this many bytes have been written to
	// the file. -1 disables the limit.
	FailAfterBytes int64
	// TornWrite writes the bytes that still fit under FailAfterBytes before
	// failing, simulating a crash in the middle of a write.
	TornWrite  bool
	FailOnSync bool
	// FailOnClose still closes the underlying file.
	FailOnClose bool
	Err         error
}

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrInjected
}

// FaultyFS wraps a FileSystem and injects faults into files whose name
// contains a rule pattern.
type FaultyFS struct {
	FS FileSystem

	mu        sync.Mutex
	rules     map[string]Fault
	opened    int
	written   int64
	truncated int
}

// NewFaultyFS wraps fsys, or Default when fsys is nil.
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{
		FS:    fsys,
		rules: make(map[string]Fault),
	}
}

// AddRule applies fault to every file opened afterwards whose name contains
// pattern. Later rules for the same pattern replace earlier ones.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// ClearRules removes all rules.
func (f *FaultyFS) ClearRules() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = make(map[string]Fault)
}

// Opened returns the number of files opened through f.
func (f *FaultyFS) Opened() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened
}

// Written returns the number of bytes successfully written through f.
func (f *FaultyFS) Written() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written
}

// Truncated returns the number of FileSystem.Truncate calls made through f.
// Truncates through an open File are not counted.
func (f *FaultyFS) Truncated() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.truncated
}

func (f *FaultyFS) match(name string) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) {
			return rule, true
		}
	}
	return Fault{FailAfterBytes: -1}, false
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	fault, _ := f.match(name)
	if fault.FailOnOpen {
		return nil, &os.PathError{Op: "open", Path: name, Err: fault.err()}
	}

	file, err := f.FS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.opened++
	f.mu.Unlock()

	return &faultyFile{File: file, fs: f, fault: fault}, nil
}

func (f *FaultyFS) Stat(name string) (os.FileInfo, error)  { return f.FS.Stat(name) }
func (f *FaultyFS) Rename(oldpath, newpath string) error   { return f.FS.Rename(oldpath, newpath) }
func (f *FaultyFS) Remove(name string) error               { return f.FS.Remove(name) }
func (f *FaultyFS) Truncate(name string, size int64) error {
	f.mu.Lock()
	f.truncated++
	f.mu.Unlock()
	return f.FS.Truncate(name, size)
}
func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error {
	return f.FS.MkdirAll(path, perm)
}

type faultyFile struct {
	File
	fs      *FaultyFS
	fault   Fault
	written int64
}

func (ff *faultyFile) Write(p []byte) (int, error) {
	limit := ff.fault.FailAfterBytes
	if limit >= 0 && ff.written+int64(len(p)) > limit {
		if !ff.fault.TornWrite {
			return 0, ff.fault.err()
		}
		room := max(limit-ff.written, 0)
		n, err := ff.File.Write(p[:room])
		ff.account(n)
		if err != nil {
			return n, err
		}
		return n, ff.fault.err()
	}

	n, err := ff.File.Write(p)
	ff.account(n)
	return n, err
}

func (ff *faultyFile) account(n int) {
	if n <= 0 {
		return
	}
	ff.written += int64(n)
	ff.fs.mu.Lock()
	ff.fs.written += int64(n)
	ff.fs.mu.Unlock()
}

func (ff *faultyFile) Sync() error {
	if ff.fault.FailOnSync {
		return ff.fault.err()
	}
	return ff.File.Sync()
}

func (ff *faultyFile) Close() error {
	if ff.fault.FailOnClose {
		_ = ff.File.Close()
		return ff.fault.err()
	}
	return ff.File.Close()
}
