package iceberg

// Manifest content types (manifest-list entry "content" field).
const (
	ManifestContentData    int32 = 0
	ManifestContentDeletes int32 = 1
)

// Data file content types (data_file "content" field).
const (
	DataContentData            int32 = 0
	DataContentPositionDeletes int32 = 1
	DataContentEqualityDeletes int32 = 2
)

// Manifest entry statuses.
const (
	EntryStatusExisting int32 = 0
	EntryStatusAdded    int32 = 1
	EntryStatusDeleted  int32 = 2
)

// TableMetadata is one parsed metadata-version file.
// Optional fields differ between format v1 and v2; absent values stay zero
// or nil.
type TableMetadata struct {
	FormatVersion     int               `json:"format-version"`
	TableUUID         string            `json:"table-uuid"`
	Location          string            `json:"location"`
	LastSequenceNum   int64             `json:"last-sequence-number"`
	LastUpdatedMs     int64             `json:"last-updated-ms"`
	LastColumnID      int               `json:"last-column-id"`
	CurrentSchemaID   int               `json:"current-schema-id"`
	Schemas           []Schema          `json:"schemas"`
	CurrentSnapshotID *int64            `json:"current-snapshot-id"`
	Snapshots         []*Snapshot       `json:"snapshots"`
	Properties        map[string]string `json:"properties"`
	Refs              map[string]Ref    `json:"refs"`
	SnapshotLog       []SnapshotLog     `json:"snapshot-log"`
	MetadataLog       []MetadataLog     `json:"metadata-log"`

	// Raw holds the original file text for display purposes.
	Raw string `json:"-"`
}

// Schema is a table schema with its field list.
type Schema struct {
	SchemaID int     `json:"schema-id"`
	Fields   []Field `json:"fields"`
}

// Field is one column of a schema.
type Field struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Type     any    `json:"type"` // string for primitives, object for nested types
	Required bool   `json:"required"`
}

// Snapshot is a named point in a table's history pointing at a manifest list.
// Identity fields are pointers: a snapshot record with a null id is invalid
// and gets filtered by the model builder rather than failing the whole file.
type Snapshot struct {
	SnapshotID       *int64            `json:"snapshot-id"`
	ParentSnapshotID *int64            `json:"parent-snapshot-id"`
	SequenceNumber   *int64            `json:"sequence-number"`
	TimestampMs      *int64            `json:"timestamp-ms"`
	ManifestList     string            `json:"manifest-list"`
	SchemaID         *int              `json:"schema-id"`
	Summary          map[string]string `json:"summary"`
}

// Ref is a named snapshot reference (branch or tag).
type Ref struct {
	SnapshotID int64  `json:"snapshot-id"`
	Type       string `json:"type"`
}

// SnapshotLog records when a snapshot became current.
type SnapshotLog struct {
	SnapshotID  int64 `json:"snapshot-id"`
	TimestampMs int64 `json:"timestamp-ms"`
}

// MetadataLog records a previous metadata file location.
type MetadataLog struct {
	MetadataFile string `json:"metadata-file"`
	TimestampMs  int64  `json:"timestamp-ms"`
}

// ManifestListEntry is one entry of a manifest list, describing a manifest
// file that contributes to a snapshot. Sequence fields are pointers because
// format v1 manifest lists do not carry them; missing values sort last.
type ManifestListEntry struct {
	ManifestPath       string `avro:"manifest_path"`
	ManifestLength     int64  `avro:"manifest_length"`
	PartitionSpecID    int32  `avro:"partition_spec_id"`
	Content            *int32 `avro:"content"`
	SequenceNumber     *int64 `avro:"sequence_number"`
	MinSequenceNumber  *int64 `avro:"min_sequence_number"`
	AddedSnapshotID    *int64 `avro:"added_snapshot_id"`
	AddedFilesCount    *int32 `avro:"added_files_count"`
	ExistingFilesCount *int32 `avro:"existing_files_count"`
	DeletedFilesCount  *int32 `avro:"deleted_files_count"`
	AddedRowsCount     *int64 `avro:"added_rows_count"`
	ExistingRowsCount  *int64 `avro:"existing_rows_count"`
	DeletedRowsCount   *int64 `avro:"deleted_rows_count"`
}

// ContentOrData returns the entry content, defaulting to data for v1
// manifests that predate the content field.
func (e *ManifestListEntry) ContentOrData() int32 {
	if e.Content == nil {
		return ManifestContentData
	}
	return *e.Content
}

// IsDeletes reports whether the manifest tracks delete files.
func (e *ManifestListEntry) IsDeletes() bool {
	return e.ContentOrData() == ManifestContentDeletes
}

// ManifestEntry is one entry of a manifest file, describing a data or delete
// file with its lifecycle status and sequence numbers.
type ManifestEntry struct {
	Status             int32    `avro:"status"`
	SnapshotID         *int64   `avro:"snapshot_id"`
	SequenceNumber     *int64   `avro:"sequence_number"`
	FileSequenceNumber *int64   `avro:"file_sequence_number"`
	DataFile           DataFile `avro:"data_file"`
}

// DataFile holds the per-file statistics embedded in a manifest entry.
// Column-level stats maps are intentionally omitted; the explorer only
// needs identity, content type, and coarse counts.
type DataFile struct {
	Content         int32   `avro:"content"`
	FilePath        string  `avro:"file_path"`
	FileFormat      string  `avro:"file_format"`
	RecordCount     int64   `avro:"record_count"`
	FileSizeInBytes int64   `avro:"file_size_in_bytes"`
	SplitOffsets    []int64 `avro:"split_offsets"`
	EqualityIDs     []int32 `avro:"equality_ids"`
	SortOrderID     *int32  `avro:"sort_order_id"`
}

// IsDelete reports whether the file encodes delete rows rather than data.
func (f *DataFile) IsDelete() bool {
	return f.Content == DataContentPositionDeletes || f.Content == DataContentEqualityDeletes
}

// ManifestList is the decoded content of one manifest-list file.
type ManifestList struct {
	Path        string
	Entries     []ManifestListEntry
	EntryErrors []error // per-entry decode failures, index-independent
}

// ManifestFile is the decoded content of one manifest file.
type ManifestFile struct {
	Path        string
	Entries     []ManifestEntry
	EntryErrors []error
}
