package iceberg

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/icemap-dev/icemap/pkg/errors"
)

// VersionHintFile is the conventional name of the current-version hint file
// inside a table's metadata directory.
const VersionHintFile = "version-hint.text"

// ReadTableMetadata parses one metadata-version JSON file.
// Returns a DECODE_FAILED error for missing or malformed input.
func ReadTableMetadata(path string) (*TableMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailed, err, "read metadata file %s", path)
	}

	var meta TableMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecodeFailed, err, "parse metadata file %s", path)
	}
	if meta.FormatVersion == 0 {
		return nil, errors.New(errors.ErrCodeDecodeFailed, "metadata file %s has no format-version", path)
	}

	meta.Raw = string(data)
	return &meta, nil
}

// ReadVersionHint reads the version-hint.text file from a table's metadata
// directory. Returns ("", false) when the hint is absent; a missing hint is
// normal for tables written by engines that do not maintain one.
func ReadVersionHint(tableDir string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(tableDir, "metadata", VersionHintFile))
	if err != nil {
		return "", false
	}
	hint := strings.TrimSpace(string(data))
	if hint == "" {
		return "", false
	}
	return hint, true
}

// IsMetadataFile reports whether filename looks like a metadata-version
// file (v3.metadata.json, 00012-<uuid>.metadata.json, ...).
func IsMetadataFile(filename string) bool {
	return strings.HasSuffix(filename, ".metadata.json")
}

// MetadataVersionNumber extracts the numeric version from a metadata
// filename. Both naming schemes are recognized: "v12.metadata.json" yields
// 12, and the Hadoop-style "00012-<uuid>.metadata.json" yields 12.
// Returns (0, false) when no version number can be parsed.
func MetadataVersionNumber(filename string) (int64, bool) {
	base := strings.TrimSuffix(filepath.Base(filename), ".metadata.json")
	if base == filepath.Base(filename) {
		return 0, false
	}

	if strings.HasPrefix(base, "v") {
		return parseDigits(base[1:])
	}
	if i := strings.IndexByte(base, '-'); i > 0 {
		return parseDigits(base[:i])
	}
	return parseDigits(base)
}

func parseDigits(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int64(r-'0')
	}
	return n, true
}
