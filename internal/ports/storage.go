package ports

import "time"

// BuildCache remembers which native outputs were compiled from which sources,
// so a stale build/Release artifact can be detected and rebuilt.
//
// Implementations must make Record transactional: a crash mid-write must not
// corrupt previously committed records.
type BuildCache interface {
	// Record stores rec under rec.Output, overwriting any prior record.
	Record(rec *BuildRecord) error

	// Lookup returns the record for output, or nil, nil if none exists.
	Lookup(output string) (*BuildRecord, error)

	// Forget removes the record for output. Idempotent.
	Forget(output string) error

	Close() error
}

// BuildRecord describes one compiled native output.
type BuildRecord struct {
	Output       string    `json:"output"`        // absolute path of the .node file
	SourceDigest string    `json:"source_digest"` // sha256 over all source files, in order
	Compiler     string    `json:"compiler"`
	BuiltAt      time.Time `json:"built_at"`
}
