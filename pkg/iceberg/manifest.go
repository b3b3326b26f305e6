package iceberg

import (
	"os"

	"github.com/hamba/avro/v2/ocf"

	"github.com/icemap-dev/icemap/pkg/errors"
)

// ReadManifestList decodes an Avro manifest-list file.
// A file-level failure (missing file, bad container header) returns an
// error. Entry-level decode failures are collected in EntryErrors without
// discarding entries that decoded cleanly.
func ReadManifestList(path string) (*ManifestList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailed, err, "open manifest list %s", path)
	}
	defer f.Close()

	dec, err := ocf.NewDecoder(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailed, err, "decode manifest list %s", path)
	}

	list := &ManifestList{Path: path}
	for dec.HasNext() {
		var entry ManifestListEntry
		if err := dec.Decode(&entry); err != nil {
			list.EntryErrors = append(list.EntryErrors,
				errors.Wrap(errors.ErrCodeDecodeFailed, err, "manifest list entry %d in %s", len(list.Entries)+len(list.EntryErrors), path))
			continue
		}
		list.Entries = append(list.Entries, entry)
	}
	if err := dec.Error(); err != nil {
		list.EntryErrors = append(list.EntryErrors,
			errors.Wrap(errors.ErrCodeDecodeFailed, err, "manifest list stream %s", path))
	}
	return list, nil
}

// ReadManifestFile decodes an Avro manifest file into its entries.
// Error semantics match ReadManifestList.
func ReadManifestFile(path string) (*ManifestFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailed, err, "open manifest %s", path)
	}
	defer f.Close()

	dec, err := ocf.NewDecoder(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailed, err, "decode manifest %s", path)
	}

	mf := &ManifestFile{Path: path}
	for dec.HasNext() {
		var entry ManifestEntry
		if err := dec.Decode(&entry); err != nil {
			mf.EntryErrors = append(mf.EntryErrors,
				errors.Wrap(errors.ErrCodeDecodeFailed, err, "manifest entry %d in %s", len(mf.Entries)+len(mf.EntryErrors), path))
			continue
		}
		mf.Entries = append(mf.Entries, entry)
	}
	if err := dec.Error(); err != nil {
		mf.EntryErrors = append(mf.EntryErrors,
			errors.Wrap(errors.ErrCodeDecodeFailed, err, "manifest stream %s", path))
	}
	return mf, nil
}

// FileReader reads Iceberg structures from the local filesystem. It is the
// production implementation of the model package's Reader interface; tests
// substitute fakes.
type FileReader struct{}

// NewFileReader creates a filesystem-backed reader.
func NewFileReader() *FileReader { return &FileReader{} }

// TableMetadata implements model.Reader.
func (r *FileReader) TableMetadata(path string) (*TableMetadata, error) {
	return ReadTableMetadata(path)
}

// ManifestList implements model.Reader.
func (r *FileReader) ManifestList(path string) (*ManifestList, error) {
	return ReadManifestList(path)
}

// ManifestFile implements model.Reader.
func (r *FileReader) ManifestFile(path string) (*ManifestFile, error) {
	return ReadManifestFile(path)
}
