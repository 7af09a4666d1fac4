package recstore

import (
	"os"

	"github.com/Arstat/recstore/internal/fs"
	"github.com/Arstat/recstore/record"
)

// DefaultFileMode is the permission used when Append creates a store.
const DefaultFileMode os.FileMode = 0o600

type options struct {
	fs         fs.FileSystem
	logger     *Logger
	metrics    MetricsCollector
	maxTextLen int
	sync       bool
	fileMode   os.FileMode
	codec      *record.Codec
}

// Option configures store operations.
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{
		fs:         fs.Default,
		logger:     NoopLogger(),
		metrics:    NoopMetricsCollector{},
		maxTextLen: record.DefaultMaxTextLen,
		fileMode:   DefaultFileMode,
	}
	for _, fn := range opts {
		fn(o)
	}
	o.codec = record.NewCodec(func(ro *record.Options) {
		ro.MaxTextLen = o.maxTextLen
	})
	return o
}

// WithFileSystem sets the filesystem used for every file operation.
//
// If nil is passed, the local filesystem is used.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = fs.Default
		}
		o.fs = fsys
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithMaxTextLen bounds the length of text fields accepted by Append. Values
// above record.MaxTextLen are clamped to it. Scans always accept fields up to
// record.MaxTextLen, so readers need not agree with writers on this setting.
func WithMaxTextLen(n int) Option {
	return func(o *options) {
		o.maxTextLen = n
	}
}

// WithSync makes Append fsync the file before closing it.
//
// Without it a successful Append only guarantees that the bytes reached the
// operating system.
func WithSync(enabled bool) Option {
	return func(o *options) {
		o.sync = enabled
	}
}

// WithFileMode sets the permission bits used when a store file is created.
func WithFileMode(mode os.FileMode) Option {
	return func(o *options) {
		o.fileMode = mode
	}
}
