package graph

// Kind identifies what a node represents.
type Kind string

// Node kinds.
const (
	KindTable    Kind = "table"
	KindMetadata Kind = "metadata"
	KindSnapshot Kind = "snapshot"
	KindManifest Kind = "manifest"
	KindDataFile Kind = "file"
	KindRow      Kind = "row"
	KindError    Kind = "error"
)

// Fixed node dimensions per kind, in layout units. The layout engine must
// treat these as non-shrinkable.
var nodeSizes = map[Kind][2]float64{
	KindTable:    {240, 64},
	KindMetadata: {220, 56},
	KindSnapshot: {220, 56},
	KindManifest: {220, 56},
	KindDataFile: {200, 48},
	KindRow:      {280, 40},
	KindError:    {260, 48},
}

// SizeFor returns the fixed width and height for a node kind.
func SizeFor(kind Kind) (w, h float64) {
	s, ok := nodeSizes[kind]
	if !ok {
		s = nodeSizes[KindDataFile]
	}
	return s[0], s[1]
}

// OrderKey carries the domain ordering inputs for a node. Which fields are
// populated depends on the kind; nil pointers mean "missing, sorts last".
type OrderKey struct {
	Version   *int64 `json:"version,omitempty"`    // metadata: filename version number
	Timestamp *int64 `json:"timestamp,omitempty"`  // snapshot: timestamp-ms
	Seq       *int64 `json:"seq,omitempty"`        // manifest/file: (data) sequence number
	MinSeq    *int64 `json:"min_seq,omitempty"`    // manifest: minimum sequence number
	FileSeq   *int64 `json:"file_seq,omitempty"`   // file: file sequence number
	Added     *int64 `json:"added,omitempty"`      // manifest: added-snapshot id
	SnapID    *int64 `json:"snap_id,omitempty"`    // snapshot: id tie-breaker
	Rank      int    `json:"rank,omitempty"`       // manifest/file: content rank
	Status    int32  `json:"status,omitempty"`     // file: manifest-entry status
	Path      string `json:"path,omitempty"`       // final path tie-breaker
	RowKey    string `json:"row_key,omitempty"`    // row: synthetic stable identifier
}

// ErrorInfo is the payload of an error node: a captured read failure
// surfaced in the diagram instead of being silently dropped.
type ErrorInfo struct {
	Stage   string `json:"stage"`
	Path    string `json:"path"`
	Message string `json:"message"`
	Trace   string `json:"trace,omitempty"`
}

// Node is one vertex of the derived graph.
type Node struct {
	ID    string `json:"id"`
	Kind  Kind   `json:"kind"`
	Label string `json:"label,omitempty"`

	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// X and Y are mutated in place by layout, reordering, and dragging.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// SimpleID is the short numeric label of a data file; zero when unset.
	SimpleID int `json:"simple_id,omitempty"`
	// TargetID is the simple id of a delete row's target file; zero when
	// the target could not be resolved.
	TargetID int `json:"target_id,omitempty"`
	// SnapshotID is the owning snapshot for manifest, file, and row nodes.
	SnapshotID *int64 `json:"snapshot_id,omitempty"`
	// FilePath is the recorded (unresolved) data-file reference for file
	// and row nodes; used for delete-to-target matching.
	FilePath string `json:"file_path,omitempty"`
	// DeleteContent marks rows of position/equality delete files.
	DeleteContent int32 `json:"delete_content,omitempty"`

	// Cells holds a sampled row's column values, keyed by column name.
	Cells map[string]string `json:"cells,omitempty"`

	Err *ErrorInfo `json:"error,omitempty"`

	Order OrderKey `json:"order"`
}

// Point is one coordinate of a routed edge path.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a directed edge between two nodes.
type Edge struct {
	ID      string  `json:"id"`
	From    string  `json:"from"`
	To      string  `json:"to"`
	Sibling bool    `json:"sibling,omitempty"` // links peers (delete row → anchor), not parent → child
	Points  []Point `json:"points,omitempty"`  // optional routed path from the layout engine
}
