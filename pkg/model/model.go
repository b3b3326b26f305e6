// Package model builds the unified in-memory model of an Iceberg table:
// metadata versions, snapshots, manifests, and data-file entries, with
// per-stage captured errors instead of aborted loads.
//
// The model is tree-shaped but shares sub-nodes: a snapshot that appears in
// several metadata versions is one *Snapshot instance referenced from each
// of them. Apart from the lazily cached sample rows, the model is immutable
// after Load returns; anything positional or presentational lives in the
// derived graph, never here.
package model

import (
	"context"
	"sync"
	"time"

	"github.com/icemap-dev/icemap/pkg/iceberg"
	"github.com/icemap-dev/icemap/pkg/sample"
)

// Stage identifies the load stage at which an error was captured.
type Stage string

// Load stages, ordered from coarse to fine.
const (
	StageListing      Stage = "listing"
	StageMetadata     Stage = "metadata"
	StageManifestList Stage = "manifest-list"
	StageManifest     Stage = "manifest"
	StageSampling     Stage = "sampling"
)

// ReadError is a captured, non-fatal failure attached to the nearest
// enclosing model node. It carries enough detail to diagnose the failure
// without consulting logs.
type ReadError struct {
	Stage   Stage  `json:"stage"`
	Path    string `json:"path"`
	Message string `json:"message"`
	Trace   string `json:"trace,omitempty"`
}

// Table is the root of one table load. It is exclusively owned by the load
// that produced it and is never mutated afterwards.
type Table struct {
	Path        string
	Name        string
	VersionHint string
	Versions    []*MetadataVersion
	Errors      []ReadError
}

// MetadataVersion is one parsed metadata-version file together with the
// snapshots it references. Snapshot pointers may be shared with other
// versions; identity is keyed by snapshot id across the whole load.
type MetadataVersion struct {
	Path      string
	Meta      *iceberg.TableMetadata
	Snapshots []*Snapshot

	// ModTime is the metadata file's last-modified time, used only as an
	// ordering tie-breaker.
	ModTime time.Time
}

// VersionNumber returns the version parsed from the filename.
func (v *MetadataVersion) VersionNumber() (int64, bool) {
	return iceberg.MetadataVersionNumber(v.Path)
}

// Snapshot is one point in the table's history. At most one instance exists
// per snapshot id within a load, however many metadata versions reference it.
type Snapshot struct {
	ID               int64
	Info             *iceberg.Snapshot
	ManifestListPath string
	Manifests        []*Manifest
	Errors           []ReadError
}

// Manifest is one manifest-list entry with its decoded manifest file.
type Manifest struct {
	Entry      iceberg.ManifestListEntry
	Path       string
	SnapshotID int64 // owning snapshot
	Files      []*DataFileEntry
	Errors     []ReadError
}

// DataFileEntry is one manifest entry (a data or delete file) with its
// resolved local path and lazily fetched sample rows.
type DataFileEntry struct {
	Entry      iceberg.ManifestEntry
	Path       string // resolved local path, used for sampling
	SnapshotID int64  // owning snapshot

	rowsOnce sync.Once
	rows     []sample.Row
}

// RecordedPath returns the file path as recorded in the manifest, which may
// reference a different historical filesystem root than Path.
func (e *DataFileEntry) RecordedPath() string {
	return e.Entry.DataFile.FilePath
}

// IsDelete reports whether the entry encodes delete rows.
func (e *DataFileEntry) IsDelete() bool {
	return e.Entry.DataFile.IsDelete()
}

// Rows returns up to limit sample rows for the file, fetching them through
// s on first access and caching the result for the lifetime of the entry.
// Sampling failures degrade silently to zero rows; the cached result is
// never invalidated without replacing the whole model.
func (e *DataFileEntry) Rows(ctx context.Context, s sample.Sampler, limit int) []sample.Row {
	e.rowsOnce.Do(func() {
		rows, err := s.Sample(ctx, e.Path, limit)
		if err != nil {
			rows = nil
		}
		e.rows = rows
	})
	return e.rows
}

// Reader parses on-disk Iceberg structures. The production implementation
// is iceberg.FileReader; tests substitute fakes.
type Reader interface {
	TableMetadata(path string) (*iceberg.TableMetadata, error)
	ManifestList(path string) (*iceberg.ManifestList, error)
	ManifestFile(path string) (*iceberg.ManifestFile, error)
}
