// Package recstore implements an append-only, single-file store of
// fixed-schema records.
//
// A store file is written incrementally, one record per Append call, and read
// back as one continuous sequence by a forward-only scan. There is no index
// and no stored record count: the file is a one-time header followed by
// self-describing record encodings laid end to end.
//
// # File Layout
//
//	[Header:8] [Record] [Record] ... [Record]
//
// The header ("RCST", version, flags) is written exactly once, by the Append
// that creates the store, together with the first record. Every later Append
// validates the header and writes only the new record after the existing
// bytes. See package record for the record encoding.
//
// # Basic Usage
//
//	err := recstore.Append(ctx, "people.rcs", record.Record{
//	    ID: 101, Name: "Alice Johnson", Designation: "Engineer", Amount: 85.5,
//	})
//
//	for rec, err := range recstore.Scan(ctx, "people.rcs") {
//	    if err != nil {
//	        // ErrBadHeader, ErrCorruptTrailingRecord or an I/O error.
//	        break
//	    }
//	    fmt.Println(rec)
//	}
//
// # Errors
//
//   - [ErrWriteFailed]: an Append could not open, write, sync or close the file.
//   - [ErrBadHeader]: the file exists but does not start with a valid header.
//   - [ErrCorruptTrailingRecord]: a partial or invalid record follows the
//     valid ones, typically after a crash during Append. Records before it
//     are still yielded.
//
// Reaching the end of the file on a record boundary is not an error.
//
// # Concurrency
//
// Each Append and each scan is a self-contained open, read or write, close
// cycle. On Unix, Append holds an exclusive advisory lock on the file while
// it writes, so concurrent appends are serialized. Scans take no lock: a scan
// that overlaps an Append may report the record being written as a corrupt
// trailing record.
package recstore
