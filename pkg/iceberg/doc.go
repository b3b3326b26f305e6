// Package iceberg reads the on-disk Apache Iceberg table format into typed
// records: table metadata JSON files, Avro manifest lists, and Avro manifest
// files.
//
// The readers are strict about file-level failures (a missing or undecodable
// file returns an error) but lenient about entry-level failures inside Avro
// container files: successfully decoded entries are always returned, and
// per-entry decode errors are collected alongside them. Callers decide how
// to surface those.
//
// # Usage
//
//	r := iceberg.NewFileReader()
//	meta, err := r.TableMetadata("warehouse/db/events/metadata/v3.metadata.json")
//	if err != nil {
//	    return err
//	}
//	for _, snap := range meta.Snapshots {
//	    list, err := r.ManifestList(resolved(snap.ManifestList))
//	    ...
//	}
package iceberg
