// Package fs abstracts the filesystem operations used by the record store so
// that tests can inject I/O failures.
//
//   - [FileSystem]: open, stat, rename, remove, truncate, mkdir
//   - [LocalFS]: the os-backed implementation, exposed as [Default]
//   - [FaultyFS]: a wrapper that fails opens, writes, syncs or closes on demand
//   - [Lock]: an exclusive advisory lock on an open file (flock on Unix)
//
// Typical fault injection:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("people.rcs", fs.Fault{FailAfterBytes: 10, TornWrite: true})
//	err := recstore.Append(ctx, path, rec, recstore.WithFileSystem(ffs))
//
// Operations take no context.Context. Local file operations cannot be
// interrupted at the syscall level.
package fs
