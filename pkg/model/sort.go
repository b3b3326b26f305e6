package model

import (
	"cmp"
	"path/filepath"

	"github.com/icemap-dev/icemap/pkg/iceberg"
)

// Content ranks used when ordering manifests. Delete manifests sort before
// data manifests when every earlier criterion ties.
const (
	manifestRankDeletes = 0
	manifestRankData    = 1
	manifestRankOther   = 2
)

// Content ranks used when ordering files within a manifest.
const (
	fileRankEqualityDeletes = 0
	fileRankData            = 1
	fileRankPositionDeletes = 2
	fileRankOther           = 3
)

// CompareVersions orders metadata versions chronologically: parseable
// filename versions first (ascending), then the metadata's own last-updated
// timestamp, then file modification time, then filename.
func CompareVersions(a, b *MetadataVersion) int {
	av, aok := a.VersionNumber()
	bv, bok := b.VersionNumber()
	if aok != bok {
		if aok {
			return -1
		}
		return 1
	}
	if aok {
		if c := cmp.Compare(av, bv); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(a.Meta.LastUpdatedMs, b.Meta.LastUpdatedMs); c != 0 {
		return c
	}
	if c := a.ModTime.Compare(b.ModTime); c != 0 {
		return c
	}
	return cmp.Compare(filepath.Base(a.Path), filepath.Base(b.Path))
}

// CompareSnapshots orders snapshots by (timestamp, sequence number,
// snapshot id) ascending, with missing values sorting last.
func CompareSnapshots(a, b *Snapshot) int {
	if c := comparePtr(a.Info.TimestampMs, b.Info.TimestampMs); c != 0 {
		return c
	}
	if c := comparePtr(a.Info.SequenceNumber, b.Info.SequenceNumber); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// CompareManifests orders manifests by (sequence number, minimum sequence
// number, added-snapshot id, content rank, manifest path) ascending,
// missing values last. Content rank distinguishes manifests only when all
// sequence criteria tie: deletes before data before anything else.
func CompareManifests(a, b *Manifest) int {
	if c := comparePtr(a.Entry.SequenceNumber, b.Entry.SequenceNumber); c != 0 {
		return c
	}
	if c := comparePtr(a.Entry.MinSequenceNumber, b.Entry.MinSequenceNumber); c != 0 {
		return c
	}
	if c := comparePtr(a.Entry.AddedSnapshotID, b.Entry.AddedSnapshotID); c != 0 {
		return c
	}
	if c := cmp.Compare(ManifestContentRank(&a.Entry), ManifestContentRank(&b.Entry)); c != 0 {
		return c
	}
	return cmp.Compare(a.Entry.ManifestPath, b.Entry.ManifestPath)
}

// CompareFiles orders file entries by (data sequence number, file sequence
// number, content rank, status, file path) ascending, missing values last.
func CompareFiles(a, b *DataFileEntry) int {
	if c := comparePtr(a.Entry.SequenceNumber, b.Entry.SequenceNumber); c != 0 {
		return c
	}
	if c := comparePtr(a.Entry.FileSequenceNumber, b.Entry.FileSequenceNumber); c != 0 {
		return c
	}
	if c := cmp.Compare(FileContentRank(a.Entry.DataFile.Content), FileContentRank(b.Entry.DataFile.Content)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Entry.Status, b.Entry.Status); c != 0 {
		return c
	}
	return cmp.Compare(a.Entry.DataFile.FilePath, b.Entry.DataFile.FilePath)
}

// ManifestContentRank maps a manifest's content type to its ordering rank.
func ManifestContentRank(e *iceberg.ManifestListEntry) int {
	switch e.ContentOrData() {
	case iceberg.ManifestContentDeletes:
		return manifestRankDeletes
	case iceberg.ManifestContentData:
		return manifestRankData
	default:
		return manifestRankOther
	}
}

// FileContentRank maps a data file's content type to its ordering rank:
// equality deletes, then data, then position deletes.
func FileContentRank(content int32) int {
	switch content {
	case iceberg.DataContentEqualityDeletes:
		return fileRankEqualityDeletes
	case iceberg.DataContentData:
		return fileRankData
	case iceberg.DataContentPositionDeletes:
		return fileRankPositionDeletes
	default:
		return fileRankOther
	}
}

// comparePtr compares two optional int64s ascending with nil sorting last.
func comparePtr(a, b *int64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*a, *b)
	}
}
