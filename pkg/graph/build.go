package graph

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/icemap-dev/icemap/pkg/ids"
	"github.com/icemap-dev/icemap/pkg/model"
	"github.com/icemap-dev/icemap/pkg/sample"
)

// Expansion defaults.
const (
	DefaultMaxFilesPerManifest = 10
	DefaultMaxRowsPerFile      = 5
)

// Options controls graph construction.
type Options struct {
	// IncludeRows expands sampled content rows under each data file.
	IncludeRows bool
	// MaxFilesPerManifest caps the file fan-out of one manifest; zero means
	// the default.
	MaxFilesPerManifest int
	// MaxRowsPerFile caps the sampled rows per file; zero means the default.
	MaxRowsPerFile int
	// Sampler fetches content rows; nil disables sampling.
	Sampler sample.Sampler
	// Registry assigns simple numeric ids to data files. A nil registry gets
	// created internally; passing one in lets callers reuse the assignment.
	Registry *ids.Registry
	Logger   *log.Logger
}

func (o *Options) defaults() {
	if o.MaxFilesPerManifest <= 0 {
		o.MaxFilesPerManifest = DefaultMaxFilesPerManifest
	}
	if o.MaxRowsPerFile <= 0 {
		o.MaxRowsPerFile = DefaultMaxRowsPerFile
	}
	if o.Sampler == nil {
		o.Sampler = sample.NullSampler{}
	}
	if o.Registry == nil {
		o.Registry = ids.NewRegistry()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// Build derives the graph from a loaded table model.
//
// Snapshots, manifests, and files are deduplicated by domain identity: the
// second reference to an already-built node adds an edge and stops, so
// shared subtrees are expanded exactly once. Simple file ids are assigned
// in a pre-pass over the full model in traversal order, which keeps them
// stable regardless of which parent expands a shared file first.
func Build(ctx context.Context, table *model.Table, opts Options) (*Graph, error) {
	opts.defaults()
	g := New()
	b := &builder{graph: g, opts: opts}

	b.assignSimpleIDs(table)

	tableID := "table:" + table.Name
	label := table.Name
	if table.VersionHint != "" {
		label = fmt.Sprintf("%s (hint %s)", table.Name, table.VersionHint)
	}
	if err := g.AddNode(&Node{ID: tableID, Kind: KindTable, Label: label, Order: OrderKey{Path: table.Path}}); err != nil {
		return nil, err
	}
	b.addErrors(tableID, table.Errors)

	for _, version := range table.Versions {
		if err := b.addVersion(ctx, tableID, version); err != nil {
			return nil, err
		}
	}

	opts.Logger.Debug("graph built",
		"table", table.Name,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount())
	return g, nil
}

type builder struct {
	graph *Graph
	opts  Options
}

// link adds a parent edge to an already-built node, tolerating one that
// exists. Duplicate references are valid input: a version can list the same
// snapshot twice and a manifest the same file path; the first reference
// wins and later ones must not abort the build.
func (b *builder) link(from, to string) error {
	err := b.graph.AddEdge(from, to)
	if stderrors.Is(err, ErrDuplicateEdge) {
		return nil
	}
	return err
}

// assignSimpleIDs walks the model in its sorted traversal order and assigns
// a simple id to every data-file reference, delete files included.
func (b *builder) assignSimpleIDs(table *model.Table) {
	for _, version := range table.Versions {
		for _, snap := range version.Snapshots {
			for _, manifest := range snap.Manifests {
				for _, file := range manifest.Files {
					b.opts.Registry.Assign(file.RecordedPath())
				}
			}
		}
	}
}

func (b *builder) addVersion(ctx context.Context, tableID string, version *model.MetadataVersion) error {
	base := filepath.Base(version.Path)
	id := "meta:" + base

	key := OrderKey{Path: base}
	if v, ok := version.VersionNumber(); ok {
		key.Version = &v
	}
	node := &Node{
		ID:    id,
		Kind:  KindMetadata,
		Label: base,
		Order: key,
	}
	if err := b.graph.AddNode(node); err != nil {
		return err
	}
	if err := b.graph.AddEdge(tableID, id); err != nil {
		return err
	}

	for _, snap := range version.Snapshots {
		if err := b.addSnapshot(ctx, id, snap); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addSnapshot(ctx context.Context, parentID string, snap *model.Snapshot) error {
	id := fmt.Sprintf("snap:%d", snap.ID)
	if b.graph.Has(id) {
		// Shared snapshot: link the new parent, children already expanded.
		return b.link(parentID, id)
	}

	snapID := snap.ID
	node := &Node{
		ID:         id,
		Kind:       KindSnapshot,
		Label:      fmt.Sprintf("snapshot %d", snap.ID),
		SnapshotID: &snapID,
		Order: OrderKey{
			Timestamp: snap.Info.TimestampMs,
			Seq:       snap.Info.SequenceNumber,
			SnapID:    &snapID,
		},
	}
	if err := b.graph.AddNode(node); err != nil {
		return err
	}
	if err := b.graph.AddEdge(parentID, id); err != nil {
		return err
	}
	b.addErrors(id, snap.Errors)

	for _, manifest := range snap.Manifests {
		if err := b.addManifest(ctx, id, manifest); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addManifest(ctx context.Context, parentID string, manifest *model.Manifest) error {
	base := filepath.Base(manifest.Path)
	id := "manifest:" + base
	if b.graph.Has(id) {
		return b.link(parentID, id)
	}

	snapID := manifest.SnapshotID
	node := &Node{
		ID:         id,
		Kind:       KindManifest,
		Label:      base,
		SnapshotID: &snapID,
		Order: OrderKey{
			Seq:    manifest.Entry.SequenceNumber,
			MinSeq: manifest.Entry.MinSequenceNumber,
			Added:  manifest.Entry.AddedSnapshotID,
			Rank:   model.ManifestContentRank(&manifest.Entry),
			Path:   manifest.Entry.ManifestPath,
		},
	}
	if err := b.graph.AddNode(node); err != nil {
		return err
	}
	if err := b.graph.AddEdge(parentID, id); err != nil {
		return err
	}
	b.addErrors(id, manifest.Errors)

	files := manifest.Files
	if len(files) > b.opts.MaxFilesPerManifest {
		b.opts.Logger.Debug("capping manifest fan-out",
			"manifest", base,
			"files", len(files),
			"cap", b.opts.MaxFilesPerManifest)
		files = files[:b.opts.MaxFilesPerManifest]
	}
	for _, file := range files {
		if err := b.addFile(ctx, id, file); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) addFile(ctx context.Context, parentID string, file *model.DataFileEntry) error {
	recorded := file.RecordedPath()
	id := "file:" + ids.Normalize(recorded)
	if b.graph.Has(id) {
		// Same file referenced again: fan-in, no re-expansion.
		return b.link(parentID, id)
	}

	simple := b.opts.Registry.Assign(recorded)
	snapID := file.SnapshotID
	df := &file.Entry.DataFile
	node := &Node{
		ID:         id,
		Kind:       KindDataFile,
		Label:      fmt.Sprintf("#%d %s", simple, filepath.Base(recorded)),
		SimpleID:   simple,
		SnapshotID: &snapID,
		FilePath:   recorded,
		Order: OrderKey{
			Seq:     file.Entry.SequenceNumber,
			FileSeq: file.Entry.FileSequenceNumber,
			Rank:    model.FileContentRank(df.Content),
			Status:  file.Entry.Status,
			Path:    recorded,
		},
	}
	if df.IsDelete() {
		node.DeleteContent = df.Content
	}
	if err := b.graph.AddNode(node); err != nil {
		return err
	}
	if err := b.graph.AddEdge(parentID, id); err != nil {
		return err
	}

	if b.opts.IncludeRows {
		b.addRows(ctx, node, file)
	}
	return nil
}

// addRows expands up to MaxRowsPerFile sampled rows under a file node. Row
// ids are ordinal within the file, which keeps them stable across rebuilds
// as long as the file content does not change.
func (b *builder) addRows(ctx context.Context, fileNode *Node, file *model.DataFileEntry) {
	rows := file.Rows(ctx, b.opts.Sampler, b.opts.MaxRowsPerFile)
	for i, row := range rows {
		if i >= b.opts.MaxRowsPerFile {
			break
		}
		id := fmt.Sprintf("%s:row:%d", fileNode.ID, i)
		cells := make(map[string]string, len(row))
		for _, col := range row.Columns() {
			cells[col] = sample.CellString(row[col])
		}

		node := &Node{
			ID:            id,
			Kind:          KindRow,
			Label:         fmt.Sprintf("row %d", i),
			SnapshotID:    fileNode.SnapshotID,
			Cells:         cells,
			DeleteContent: fileNode.DeleteContent,
			Order:         OrderKey{RowKey: id},
		}
		// Rows of position and equality delete files name a target file in
		// their file_path cell. Annotate when the cell resolves; equality
		// deletes usually carry no such cell and stay untagged.
		if fileNode.DeleteContent != 0 {
			if target, ok := cells["file_path"]; ok {
				node.FilePath = target
				if simple, found := b.opts.Registry.Lookup(target); found {
					node.TargetID = simple
				}
			}
		}

		if err := b.graph.AddNode(node); err != nil {
			continue // ordinal collision cannot happen within one expansion
		}
		_ = b.graph.AddEdge(fileNode.ID, id)
	}
}

// addErrors attaches captured read errors as child error nodes.
func (b *builder) addErrors(parentID string, errs []model.ReadError) {
	for i, re := range errs {
		id := fmt.Sprintf("%s:err:%d", parentID, i)
		node := &Node{
			ID:    id,
			Kind:  KindError,
			Label: fmt.Sprintf("%s error", re.Stage),
			Err: &ErrorInfo{
				Stage:   string(re.Stage),
				Path:    re.Path,
				Message: re.Message,
				Trace:   re.Trace,
			},
			Order: OrderKey{Path: re.Path, RowKey: id},
		}
		if err := b.graph.AddNode(node); err != nil {
			continue
		}
		_ = b.graph.AddEdge(parentID, id)
	}
}
