package model

import (
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/icemap-dev/icemap/pkg/errors"
	"github.com/icemap-dev/icemap/pkg/iceberg"
)

// Builder walks a table directory into a Table model.
//
// Per-file problems never abort the walk: parse failures, unresolvable
// references, and partial manifest decodes are captured as ReadErrors on
// the nearest enclosing node and processing continues with the siblings.
// The only fatal condition is being unable to list the table root itself.
type Builder struct {
	reader Reader
	logger *log.Logger
}

// NewBuilder creates a builder. A nil reader defaults to the filesystem
// reader; a nil logger defaults to the global logger.
func NewBuilder(reader Reader, logger *log.Logger) *Builder {
	if reader == nil {
		reader = iceberg.NewFileReader()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{reader: reader, logger: logger}
}

// Load builds the unified model for the table at dir.
//
// Only an inaccessible table root returns an error; every other failure
// degrades to a partial model with captured ReadErrors.
func (b *Builder) Load(dir string) (*Table, error) {
	if err := errors.ValidateTableDir(dir); err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, errors.Wrap(errors.ErrCodeListingFailed, err, "table root %s", dir)
	}

	table := &Table{Path: dir, Name: filepath.Base(dir)}
	if hint, ok := iceberg.ReadVersionHint(dir); ok {
		table.VersionHint = hint
	}

	metaDir := filepath.Join(dir, "metadata")
	b.loadVersions(table, metaDir)
	b.loadSnapshots(table, dir, metaDir)

	b.logger.Debug("model loaded",
		"table", table.Name,
		"versions", len(table.Versions),
		"errors", len(table.Errors))
	return table, nil
}

// loadVersions lists and parses all metadata-version files, ordering them
// chronologically. A listing failure on the metadata directory is recorded
// and leaves the table with zero versions.
func (b *Builder) loadVersions(table *Table, metaDir string) {
	entries, err := os.ReadDir(metaDir)
	if err != nil {
		table.Errors = append(table.Errors, capture(StageListing, metaDir,
			errors.Wrap(errors.ErrCodeListingFailed, err, "list metadata directory")))
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !iceberg.IsMetadataFile(entry.Name()) {
			continue
		}
		path := filepath.Join(metaDir, entry.Name())

		meta, err := b.reader.TableMetadata(path)
		if err != nil {
			table.Errors = append(table.Errors, capture(StageMetadata, path, err))
			continue
		}

		var modTime time.Time
		if info, err := entry.Info(); err == nil {
			modTime = info.ModTime()
		}
		table.Versions = append(table.Versions, &MetadataVersion{
			Path:    path,
			Meta:    meta,
			ModTime: modTime,
		})
	}

	slices.SortStableFunc(table.Versions, CompareVersions)
}

// loadSnapshots collects the union of snapshot records across all parsed
// versions, deduplicated by snapshot id (first occurrence wins, in version
// order), and expands each unique snapshot exactly once.
func (b *Builder) loadSnapshots(table *Table, tableDir, metaDir string) {
	byID := make(map[int64]*Snapshot)

	for _, version := range table.Versions {
		inVersion := make(map[int64]bool)
		for _, info := range version.Meta.Snapshots {
			if info == nil || info.SnapshotID == nil {
				continue // records without an id cannot be anchored anywhere
			}
			id := *info.SnapshotID
			if inVersion[id] {
				continue // same id listed twice in one file; first record wins
			}
			inVersion[id] = true

			snap, ok := byID[id]
			if !ok {
				snap = b.expandSnapshot(id, info, tableDir, metaDir)
				byID[id] = snap
			}
			version.Snapshots = append(version.Snapshots, snap)
		}

		slices.SortStableFunc(version.Snapshots, CompareSnapshots)
	}
}

// expandSnapshot reads a snapshot's manifest list and manifest files.
// Failures at either level are captured on the snapshot or manifest and
// leave that subtree empty.
func (b *Builder) expandSnapshot(id int64, info *iceberg.Snapshot, tableDir, metaDir string) *Snapshot {
	snap := &Snapshot{
		ID:               id,
		Info:             info,
		ManifestListPath: resolveSibling(metaDir, info.ManifestList),
	}
	if info.ManifestList == "" {
		snap.Errors = append(snap.Errors, capture(StageManifestList, "",
			errors.New(errors.ErrCodeResolutionFailed, "snapshot %d has no manifest list", id)))
		return snap
	}

	list, err := b.reader.ManifestList(snap.ManifestListPath)
	if err != nil {
		snap.Errors = append(snap.Errors, capture(StageManifestList, snap.ManifestListPath, err))
		return snap
	}
	for _, entryErr := range list.EntryErrors {
		snap.Errors = append(snap.Errors, capture(StageManifestList, snap.ManifestListPath, entryErr))
	}

	for _, entry := range list.Entries {
		snap.Manifests = append(snap.Manifests, b.expandManifest(entry, snap.ID, tableDir, metaDir))
	}
	slices.SortStableFunc(snap.Manifests, CompareManifests)

	return snap
}

// expandManifest reads one manifest file into its data-file entries.
func (b *Builder) expandManifest(entry iceberg.ManifestListEntry, snapshotID int64, tableDir, metaDir string) *Manifest {
	manifest := &Manifest{
		Entry:      entry,
		Path:       resolveSibling(metaDir, entry.ManifestPath),
		SnapshotID: snapshotID,
	}

	mf, err := b.reader.ManifestFile(manifest.Path)
	if err != nil {
		manifest.Errors = append(manifest.Errors, capture(StageManifest, manifest.Path, err))
		return manifest
	}
	for _, entryErr := range mf.EntryErrors {
		manifest.Errors = append(manifest.Errors, capture(StageManifest, manifest.Path, entryErr))
	}

	dataDir := filepath.Join(tableDir, "data")
	for _, fe := range mf.Entries {
		manifest.Files = append(manifest.Files, &DataFileEntry{
			Entry:      fe,
			Path:       resolveSibling(dataDir, fe.DataFile.FilePath),
			SnapshotID: snapshotID,
		})
	}
	slices.SortStableFunc(manifest.Files, CompareFiles)

	return manifest
}

// resolveSibling resolves a recorded file reference against a local parent
// directory. Only the final path segment of the reference is kept: recorded
// references often point at a historical filesystem root that no longer
// matches the local copy, so they are never used verbatim. A reference with
// no final segment (empty, or ending in a separator) is returned unchanged
// so the failure surfaces at read time instead of pointing at a directory.
func resolveSibling(parentDir, recorded string) string {
	norm := recorded
	for i := len(norm) - 1; i >= 0; i-- {
		if norm[i] == '/' || norm[i] == '\\' {
			norm = norm[i+1:]
			break
		}
	}
	if norm == "" {
		return recorded
	}
	return filepath.Join(parentDir, norm)
}

// capture converts an error into a ReadError record for the model.
func capture(stage Stage, path string, err error) ReadError {
	return ReadError{
		Stage:   stage,
		Path:    path,
		Message: errors.UserMessage(err),
		Trace:   err.Error(),
	}
}

// SortedSnapshotIDs returns all unique snapshot ids in the model, sorted.
// Mostly useful for diagnostics and tests.
func SortedSnapshotIDs(table *Table) []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, v := range table.Versions {
		for _, s := range v.Snapshots {
			if !seen[s.ID] {
				seen[s.ID] = true
				out = append(out, s.ID)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
