package dualtree

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/dualtree/metric"
	"github.com/hupe1980/dualtree/tree"
)

// Mode selects the traversal strategy used to execute a search.
type Mode int

const (
	// ModeDual recurses over a query tree and the reference tree
	// simultaneously, sharing pruning work across query points.
	ModeDual Mode = iota

	// ModeSingle recurses over the reference tree once per query point.
	ModeSingle

	// ModeNaive scans all pairs. Exact like the others, with no tree
	// acceleration; mostly useful as an oracle.
	ModeNaive
)

func (m Mode) String() string {
	switch m {
	case ModeDual:
		return "dual"
	case ModeSingle:
		return "single"
	case ModeNaive:
		return "naive"
	default:
		return "unknown"
	}
}

type options struct {
	treeKind    tree.Kind
	metricKind  metric.Kind
	leafSize    int
	base        float32
	furthest    bool
	mode        Mode
	parallelism int
	filter      *roaring.Bitmap
	logger      *Logger
}

// Option configures a Searcher.
type Option func(*options)

// WithTree selects the tree variant built over the reference set.
// The default is the kd-tree.
func WithTree(kind tree.Kind) Option {
	return func(o *options) {
		o.treeKind = kind
	}
}

// WithMetric selects the distance metric. The default is Euclidean.
func WithMetric(kind metric.Kind) Option {
	return func(o *options) {
		o.metricKind = kind
	}
}

// WithLeafSize sets the kd-tree leaf size. Values <= 0 select the
// default.
func WithLeafSize(leafSize int) Option {
	return func(o *options) {
		o.leafSize = leafSize
	}
}

// WithBase sets the cover-tree expansion constant. Values <= 1 select
// the default.
func WithBase(base float32) Option {
	return func(o *options) {
		o.base = base
	}
}

// WithFurthest switches the searcher from k-nearest to k-furthest
// neighbor search. The ordering policy is fixed at construction time.
func WithFurthest() Option {
	return func(o *options) {
		o.furthest = true
	}
}

// WithMode selects the traversal strategy. The default is ModeDual.
func WithMode(mode Mode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithParallelism fans independent query points out over up to n
// goroutines in ModeSingle. Centroid trees share per-node scoring state
// on the reference side and always run sequentially; ModeDual likewise.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithFilter restricts results to the given set of reference ids.
// Filtered points never enter candidate lists; unfilled slots keep their
// sentinel entries.
func WithFilter(filter *roaring.Bitmap) Option {
	return func(o *options) {
		o.filter = filter
	}
}

// WithLogger configures structured logging. Pass nil to disable.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		treeKind:    tree.KindKD,
		metricKind:  metric.KindEuclidean,
		mode:        ModeDual,
		parallelism: 1,
		logger:      NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}
