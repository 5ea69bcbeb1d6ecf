package importer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/studio"
	"github.com/gogpu/studio/imagesource"
	"github.com/gogpu/studio/layer"
	"github.com/gogpu/studio/scene"
)

// DefaultConcurrency bounds parallel image resolution.
const DefaultConcurrency = 4

// FloralClusterName names a floral group whose reference member has no name.
const FloralClusterName = "Floral Cluster"

var errNoSource = errors.New("importer: parsed layer has no image source")

// Options control one import.
type Options struct {
	// ClearExisting removes every scene object before inserting the batch,
	// even when none of its layers materializes. A batch without
	// descriptors never clears.
	ClearExisting bool
}

// Result reports the outcome of an import.
type Result struct {
	// Descriptors is the number of planned layer descriptors.
	Descriptors int
	// Cleared is the number of top-level objects removed by ClearExisting.
	Cleared int
	// Inserted is the number of top-level objects added to the scene.
	Inserted int
	// Groups is the number of floral groups among the inserted objects.
	Groups int
	// Skipped lists layers that were planned or parsed but not materialized.
	Skipped []Skipped
	// Empty is set when the batch produced no descriptors.
	Empty bool
}

// Changed reports whether the import modified the scene.
func (r Result) Changed() bool { return r.Cleared > 0 || r.Inserted > 0 }

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithConcurrency sets the number of images resolved in parallel.
func WithConcurrency(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// Pipeline imports parsed layer batches into a scene.
type Pipeline struct {
	factory     *scene.Factory
	concurrency int
}

// NewPipeline returns a pipeline creating objects with factory.
func NewPipeline(factory *scene.Factory, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{factory: factory, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type item struct {
	obj scene.Object
	md  *layer.Metadata
}

// Batch is a parsed layer batch materialized into scene objects that are
// not yet part of any scene.
type Batch struct {
	res   Result
	items []item
}

// Result returns the outcome known before insertion.
func (b *Batch) Result() Result { return b.res }

// Prepare plans batch for a canvas of the given size and materializes its
// layers. It does not touch any scene, so callers may run it without
// holding the scene's lock. Layers whose image cannot be resolved are
// skipped. The only error returned is the context's.
func (p *Pipeline) Prepare(ctx context.Context, batch *layer.ParsedLayerBatch, width, height float64) (*Batch, error) {
	descs, skipped := Descriptors(batch, width, height)
	b := &Batch{res: Result{Descriptors: len(descs), Skipped: skipped}}
	if len(descs) == 0 {
		b.res.Empty = true
		studio.Logger().Info("importer: no parsed layers to import", "err", studio.ErrEmptyImportBatch)
		return b, nil
	}

	items, failed, err := p.materialize(ctx, descs)
	if err != nil {
		return nil, err
	}
	b.res.Skipped = append(b.res.Skipped, failed...)
	b.items = items
	if len(items) == 0 {
		studio.Logger().Warn("importer: no layer materialized", "skipped", len(b.res.Skipped))
	}
	return b, nil
}

// Apply inserts a prepared batch into sc, clearing sc first when
// opts.ClearExisting is set. An empty batch leaves sc untouched. A batch
// must be applied at most once.
func (p *Pipeline) Apply(sc *scene.Scene, b *Batch, opts Options) (Result, error) {
	res := b.res
	if res.Empty {
		return res, nil
	}
	if opts.ClearExisting {
		res.Cleared = sc.Len()
		sc.Clear()
	}
	top, groups, err := cluster(sc, b.items)
	if err != nil {
		return res, err
	}
	slices.SortStableFunc(top, func(x, y item) int { return cmp.Compare(x.md.ZIndex, y.md.ZIndex) })
	for _, it := range top {
		if err := sc.Add(it.obj, it.md); err != nil {
			return res, fmt.Errorf("importer: insert %s: %w", it.md.ID, err)
		}
		sc.MoveTo(it.obj, it.md.ZIndex)
	}
	res.Inserted = len(top)
	res.Groups = groups

	studio.Logger().Info("importer: batch imported",
		"descriptors", res.Descriptors, "cleared", res.Cleared, "inserted", res.Inserted,
		"groups", res.Groups, "skipped", len(res.Skipped))
	return res, nil
}

// Import prepares batch for sc's canvas size and applies it.
func (p *Pipeline) Import(ctx context.Context, sc *scene.Scene, batch *layer.ParsedLayerBatch, opts Options) (Result, error) {
	b, err := p.Prepare(ctx, batch, sc.Width(), sc.Height())
	if err != nil {
		return Result{}, err
	}
	return p.Apply(sc, b, opts)
}

// materialize builds objects in descriptor order. Image sources are
// resolved concurrently first.
func (p *Pipeline) materialize(ctx context.Context, descs []layer.Descriptor) ([]item, []Skipped, error) {
	infos := make([]imagesource.Info, len(descs))
	errs := make([]error, len(descs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, d := range descs {
		img, ok := d.(*layer.ImageLayer)
		if !ok {
			continue
		}
		g.Go(func() error {
			info, err := p.factory.Resolver().Resolve(gctx, img.Source)
			infos[i], errs[i] = info, err
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	items := make([]item, 0, len(descs))
	var skipped []Skipped
	for i, d := range descs {
		var obj scene.Object
		switch l := d.(type) {
		case *layer.ImageLayer:
			if errs[i] != nil {
				var loadErr *studio.ImageLoadError
				if !errors.As(errs[i], &loadErr) {
					errs[i] = &studio.ImageLoadError{Source: l.Source, Err: errs[i]}
				}
				studio.Logger().Warn("importer: skipped layer", "err", errs[i])
				parsedID, _ := l.Metadata[layer.KeyParsedLayerID].(string)
				skipped = append(skipped, Skipped{ParsedLayerID: parsedID, Source: l.Source, Err: errs[i]})
				continue
			}
			obj = scene.NewImage(infos[i], l)
		case *layer.TextLayer:
			obj = p.factory.CreateText(l)
		}
		items = append(items, item{obj: obj, md: layer.BuildMetadata(d, layer.Overrides{})})
	}
	return items, skipped, nil
}

// cluster merges floral buckets with more than one member into groups. It
// returns the top-level items to insert and the number of groups formed.
// Group children are attached to sc.
func cluster(sc *scene.Scene, items []item) ([]item, int, error) {
	buckets := make(map[string][]int)
	var order []string
	for i, it := range items {
		if it.md.SemanticTag != layer.TagFloral {
			continue
		}
		key := cmp.Or(it.md.GroupID, DefaultBucket)
		if _, ok := buckets[key]; !ok {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], i)
	}

	grouped := make(map[int]bool)
	var groups []item
	for _, key := range order {
		members := buckets[key]
		if len(members) < 2 {
			continue
		}
		children := make([]scene.Object, len(members))
		childIDs := make([]string, len(members))
		zIndex := items[members[0]].md.ZIndex
		for j, idx := range members {
			children[j] = items[idx].obj
			childIDs[j] = items[idx].md.ID
			zIndex = min(zIndex, items[idx].md.ZIndex)
			grouped[idx] = true
		}
		for _, idx := range members {
			if err := sc.Attach(items[idx].obj, items[idx].md); err != nil {
				return nil, 0, fmt.Errorf("importer: attach %s: %w", items[idx].md.ID, err)
			}
		}

		ref := items[members[0]].md
		md := ref.Clone()
		md.ID = layer.NewID(layer.TagFloral)
		md.Name = cmp.Or(ref.Name, FloralClusterName)
		md.ZIndex = zIndex
		md.GroupID = key
		md.IsGroup = true
		md.CreatedAt = layer.Now()
		md.Additional[layer.KeyGroupedChildIDs] = childIDs

		groups = append(groups, item{obj: scene.NewGroup(children), md: md})
		studio.Logger().Debug("importer: floral cluster grouped", "bucket", key, "members", len(members))
	}

	top := make([]item, 0, len(items)-len(grouped)+len(groups))
	for i, it := range items {
		if !grouped[i] {
			top = append(top, it)
		}
	}
	return append(top, groups...), len(groups), nil
}
