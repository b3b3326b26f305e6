package graph

import (
	"context"
	"fmt"
	"testing"

	"github.com/icemap-dev/icemap/pkg/iceberg"
	"github.com/icemap-dev/icemap/pkg/model"
	"github.com/icemap-dev/icemap/pkg/sample"
)

func i64(v int64) *int64 { return &v }

// fixedSampler returns the same rows for every file.
type fixedSampler struct {
	rows []sample.Row
}

func (s fixedSampler) Sample(ctx context.Context, path string, limit int) ([]sample.Row, error) {
	if len(s.rows) > limit {
		return s.rows[:limit], nil
	}
	return s.rows, nil
}

func fileEntry(path string, content int32, seq int64) *model.DataFileEntry {
	return &model.DataFileEntry{
		Entry: iceberg.ManifestEntry{
			Status:         iceberg.EntryStatusAdded,
			SequenceNumber: i64(seq),
			DataFile: iceberg.DataFile{
				Content:  content,
				FilePath: path,
			},
		},
		Path: path,
	}
}

func manifest(path string, seq int64, files ...*model.DataFileEntry) *model.Manifest {
	return &model.Manifest{
		Entry: iceberg.ManifestListEntry{
			ManifestPath:   path,
			SequenceNumber: i64(seq),
		},
		Path:  path,
		Files: files,
	}
}

func snapshot(id int64, ts int64, manifests ...*model.Manifest) *model.Snapshot {
	return &model.Snapshot{
		ID:        id,
		Info:      &iceberg.Snapshot{SnapshotID: i64(id), TimestampMs: i64(ts)},
		Manifests: manifests,
	}
}

func version(path string, snaps ...*model.Snapshot) *model.MetadataVersion {
	return &model.MetadataVersion{
		Path:      path,
		Meta:      &iceberg.TableMetadata{FormatVersion: 2},
		Snapshots: snaps,
	}
}

func TestBuildSharedSnapshotIsOneNode(t *testing.T) {
	shared := snapshot(7, 1000)
	table := &model.Table{
		Name: "orders",
		Versions: []*model.MetadataVersion{
			version("/t/metadata/v1.metadata.json", shared),
			version("/t/metadata/v2.metadata.json", shared),
		},
	}

	g, err := Build(context.Background(), table, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	snaps := g.NodesOfKind(KindSnapshot)
	if len(snaps) != 1 {
		t.Fatalf("snapshot nodes = %d, want 1", len(snaps))
	}
	if parents := g.Parents(snaps[0].ID); len(parents) != 2 {
		t.Errorf("snapshot parents = %d, want 2", len(parents))
	}
}

func TestBuildSharedFileFanIn(t *testing.T) {
	f1 := fileEntry("/wh/data/a.parquet", iceberg.DataContentData, 1)
	f2 := fileEntry("file:///wh/data/a.parquet", iceberg.DataContentData, 2)
	table := &model.Table{
		Name: "t",
		Versions: []*model.MetadataVersion{
			version("/t/metadata/v1.metadata.json",
				snapshot(1, 100, manifest("/t/metadata/m1.avro", 1, f1)),
				snapshot(2, 200, manifest("/t/metadata/m2.avro", 2, f2)),
			),
		},
	}

	g, err := Build(context.Background(), table, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	files := g.NodesOfKind(KindDataFile)
	if len(files) != 1 {
		t.Fatalf("file nodes = %d, want 1 (aliases of one path)", len(files))
	}
	if files[0].SimpleID != 1 {
		t.Errorf("SimpleID = %d, want 1", files[0].SimpleID)
	}
	if parents := g.Parents(files[0].ID); len(parents) != 2 {
		t.Errorf("file parents = %d, want 2", len(parents))
	}
}

// One version listing the same snapshot twice must build, not abort: the
// second reference is the first one over again.
func TestBuildRepeatedSnapshotReference(t *testing.T) {
	shared := snapshot(7, 1000)
	table := &model.Table{
		Name: "t",
		Versions: []*model.MetadataVersion{
			version("/t/metadata/v1.metadata.json", shared, shared),
		},
	}

	g, err := Build(context.Background(), table, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	snaps := g.NodesOfKind(KindSnapshot)
	if len(snaps) != 1 {
		t.Fatalf("snapshot nodes = %d, want 1", len(snaps))
	}
	if parents := g.Parents(snaps[0].ID); len(parents) != 1 {
		t.Errorf("snapshot parents = %d, want 1", len(parents))
	}
}

// Same shape one level down: a manifest listing the same file path twice.
func TestBuildRepeatedFileInManifest(t *testing.T) {
	table := &model.Table{
		Name: "t",
		Versions: []*model.MetadataVersion{
			version("/t/metadata/v1.metadata.json",
				snapshot(1, 100, manifest("/t/metadata/m1.avro", 1,
					fileEntry("/wh/data/a.parquet", iceberg.DataContentData, 1),
					fileEntry("/wh/data/a.parquet", iceberg.DataContentData, 1),
				)),
			),
		},
	}

	g, err := Build(context.Background(), table, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	files := g.NodesOfKind(KindDataFile)
	if len(files) != 1 {
		t.Fatalf("file nodes = %d, want 1", len(files))
	}
	if parents := g.Parents(files[0].ID); len(parents) != 1 {
		t.Errorf("file parents = %d, want 1", len(parents))
	}
}

func TestBuildSimpleIDsFollowModelOrder(t *testing.T) {
	table := &model.Table{
		Name: "t",
		Versions: []*model.MetadataVersion{
			version("/t/metadata/v1.metadata.json",
				snapshot(1, 100, manifest("/t/metadata/m1.avro", 1,
					fileEntry("/wh/data/b.parquet", iceberg.DataContentData, 1),
					fileEntry("/wh/data/a.parquet", iceberg.DataContentData, 1),
				)),
			),
		},
	}

	g, err := Build(context.Background(), table, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// Ids follow model order (the slice as given), not lexical path order.
	for _, n := range g.NodesOfKind(KindDataFile) {
		switch n.FilePath {
		case "/wh/data/b.parquet":
			if n.SimpleID != 1 {
				t.Errorf("b.parquet SimpleID = %d, want 1", n.SimpleID)
			}
		case "/wh/data/a.parquet":
			if n.SimpleID != 2 {
				t.Errorf("a.parquet SimpleID = %d, want 2", n.SimpleID)
			}
		}
	}
}

func TestBuildCapsManifestFanOut(t *testing.T) {
	var files []*model.DataFileEntry
	for i := 0; i < 15; i++ {
		files = append(files, fileEntry(fmt.Sprintf("/wh/data/f%02d.parquet", i), iceberg.DataContentData, 1))
	}
	table := &model.Table{
		Name: "t",
		Versions: []*model.MetadataVersion{
			version("/t/metadata/v1.metadata.json",
				snapshot(1, 100, manifest("/t/metadata/m1.avro", 1, files...)),
			),
		},
	}

	g, err := Build(context.Background(), table, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := len(g.NodesOfKind(KindDataFile)); got != DefaultMaxFilesPerManifest {
		t.Errorf("file nodes = %d, want %d", got, DefaultMaxFilesPerManifest)
	}
}

func TestBuildRowsAndDeleteTargets(t *testing.T) {
	data := fileEntry("/wh/data/a.parquet", iceberg.DataContentData, 1)
	del := fileEntry("/wh/data/del-1.parquet", iceberg.DataContentPositionDeletes, 2)
	table := &model.Table{
		Name: "t",
		Versions: []*model.MetadataVersion{
			version("/t/metadata/v1.metadata.json",
				snapshot(1, 100,
					manifest("/t/metadata/m1.avro", 1, data),
					manifest("/t/metadata/m2.avro", 2, del),
				),
			),
		},
	}

	sampler := fixedSampler{rows: []sample.Row{
		{"file_path": "file:///wh/data/a.parquet", "pos": int64(0)},
	}}
	g, err := Build(context.Background(), table, Options{IncludeRows: true, Sampler: sampler})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var deleteRow *Node
	for _, n := range g.NodesOfKind(KindRow) {
		if n.DeleteContent == iceberg.DataContentPositionDeletes {
			deleteRow = n
		}
	}
	if deleteRow == nil {
		t.Fatal("no delete row node built")
	}
	if deleteRow.TargetID != 1 {
		t.Errorf("delete row TargetID = %d, want 1 (a.parquet was assigned first)", deleteRow.TargetID)
	}
	if deleteRow.FilePath != "file:///wh/data/a.parquet" {
		t.Errorf("delete row FilePath = %q", deleteRow.FilePath)
	}
}

// Equality-delete rows carrying a file_path cell get a target annotation
// just like position-delete rows.
func TestBuildEqualityDeleteRowTarget(t *testing.T) {
	data := fileEntry("/wh/data/a.parquet", iceberg.DataContentData, 1)
	del := fileEntry("/wh/data/eq-del.parquet", iceberg.DataContentEqualityDeletes, 2)
	table := &model.Table{
		Name: "t",
		Versions: []*model.MetadataVersion{
			version("/t/metadata/v1.metadata.json",
				snapshot(1, 100,
					manifest("/t/metadata/m1.avro", 1, data),
					manifest("/t/metadata/m2.avro", 2, del),
				),
			),
		},
	}

	sampler := fixedSampler{rows: []sample.Row{
		{"file_path": "/wh/data/a.parquet", "id": int64(3)},
	}}
	g, err := Build(context.Background(), table, Options{IncludeRows: true, Sampler: sampler})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var eqRow *Node
	for _, n := range g.NodesOfKind(KindRow) {
		if n.DeleteContent == iceberg.DataContentEqualityDeletes {
			eqRow = n
		}
	}
	if eqRow == nil {
		t.Fatal("no equality-delete row node built")
	}
	if eqRow.TargetID != 1 {
		t.Errorf("equality-delete row TargetID = %d, want 1", eqRow.TargetID)
	}
	if eqRow.FilePath != "/wh/data/a.parquet" {
		t.Errorf("equality-delete row FilePath = %q", eqRow.FilePath)
	}
}

func TestBuildErrorNodes(t *testing.T) {
	snap := snapshot(1, 100)
	snap.Errors = []model.ReadError{{
		Stage:   model.StageManifestList,
		Path:    "/t/metadata/snap-1.avro",
		Message: "decode failed",
	}}
	table := &model.Table{
		Name:     "t",
		Versions: []*model.MetadataVersion{version("/t/metadata/v1.metadata.json", snap)},
		Errors: []model.ReadError{{
			Stage:   model.StageListing,
			Path:    "/t/metadata",
			Message: "permission denied",
		}},
	}

	g, err := Build(context.Background(), table, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	errNodes := g.NodesOfKind(KindError)
	if len(errNodes) != 2 {
		t.Fatalf("error nodes = %d, want 2", len(errNodes))
	}
	if children := g.Children("snap:1"); len(children) != 1 || children[0].Kind != KindError {
		t.Errorf("snapshot children = %+v, want one error node", children)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestBuildDeterministicIDs(t *testing.T) {
	build := func() *Graph {
		table := &model.Table{
			Name: "t",
			Versions: []*model.MetadataVersion{
				version("/t/metadata/v1.metadata.json",
					snapshot(1, 100, manifest("/t/metadata/m1.avro", 1,
						fileEntry("/wh/data/a.parquet", iceberg.DataContentData, 1)))),
			},
		}
		g, err := Build(context.Background(), table, Options{})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		return g
	}

	a, b := build(), build()
	an, bn := a.Nodes(), b.Nodes()
	if len(an) != len(bn) {
		t.Fatalf("node counts differ: %d vs %d", len(an), len(bn))
	}
	for i := range an {
		if an[i].ID != bn[i].ID {
			t.Errorf("node [%d] id %q vs %q", i, an[i].ID, bn[i].ID)
		}
	}
}
