// Command knn runs exact k-nearest (or k-furthest) neighbor searches
// over CSV datasets, optionally snapshotting the built tree for reuse.
//
// Examples:
//
//	knn --ref data.csv --query queries.csv -k 5
//	knn --ref data.csv --self -k 3 --tree cover --metric manhattan
//	knn --ref data.csv --snapshot-out tree.snap
//	knn --snapshot-in tree.snap --query queries.csv -k 5
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/hupe1980/dualtree"
	"github.com/hupe1980/dualtree/matrix"
	"github.com/hupe1980/dualtree/metric"
	"github.com/hupe1980/dualtree/neighbor"
	"github.com/hupe1980/dualtree/snapshot"
	"github.com/hupe1980/dualtree/store"
	"github.com/hupe1980/dualtree/store/s3"
	"github.com/hupe1980/dualtree/tree"
)

var flags struct {
	refPath     string
	queryPath   string
	self        bool
	k           int
	metricName  string
	treeName    string
	leafSize    int
	base        float32
	mode        string
	furthest    bool
	parallelism int
	snapshotIn  string
	snapshotOut string
	compression string
	verbose     bool
}

var rootCmd = &cobra.Command{
	Use:          "knn",
	Short:        "Exact k-nearest neighbor search over CSV datasets",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flags.refPath, "ref", "", "reference dataset CSV (one point per row)")
	f.StringVar(&flags.queryPath, "query", "", "query dataset CSV")
	f.BoolVar(&flags.self, "self", false, "search the reference set against itself")
	f.IntVarP(&flags.k, "neighbors", "k", 1, "number of neighbors per query")
	f.StringVar(&flags.metricName, "metric", "euclidean", "metric: euclidean, manhattan or chebyshev")
	f.StringVar(&flags.treeName, "tree", "kd", "tree variant: kd or cover")
	f.IntVar(&flags.leafSize, "leaf-size", tree.DefaultLeafSize, "kd-tree leaf size")
	f.Float32Var(&flags.base, "base", tree.DefaultBase, "cover-tree expansion base")
	f.StringVar(&flags.mode, "mode", "dual", "traversal mode: dual, single or naive")
	f.BoolVar(&flags.furthest, "furthest", false, "search for furthest instead of nearest neighbors")
	f.IntVar(&flags.parallelism, "parallelism", 1, "concurrent queries in single mode")
	f.StringVar(&flags.snapshotIn, "snapshot-in", "", "load the reference tree from this snapshot")
	f.StringVar(&flags.snapshotOut, "snapshot-out", "", "write the built reference tree to this snapshot")
	f.StringVar(&flags.compression, "compression", "zstd", "snapshot compression: none, zstd or lz4")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "log build and search details")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	opts, err := searchOptions()
	if err != nil {
		return err
	}

	searcher, err := makeSearcher(ctx, opts)
	if err != nil {
		return err
	}

	if flags.snapshotOut != "" {
		if err := saveSnapshot(ctx, searcher.Tree()); err != nil {
			return err
		}
	}

	switch {
	case flags.self:
		res, err := searcher.SearchSelf(ctx, flags.k)
		if err != nil {
			return err
		}
		return writeResult(cmd.OutOrStdout(), res)
	case flags.queryPath != "":
		querySet, err := readCSV(flags.queryPath)
		if err != nil {
			return err
		}
		res, err := searcher.Search(ctx, querySet, flags.k)
		if err != nil {
			return err
		}
		return writeResult(cmd.OutOrStdout(), res)
	case flags.snapshotOut != "":
		return nil
	default:
		return fmt.Errorf("nothing to do: pass --query, --self or --snapshot-out")
	}
}

func searchOptions() ([]dualtree.Option, error) {
	_, metricKind, ok := metric.ByName(flags.metricName)
	if !ok {
		return nil, fmt.Errorf("unknown metric %q", flags.metricName)
	}

	treeKind, ok := tree.ByName(flags.treeName)
	if !ok {
		return nil, fmt.Errorf("unknown tree variant %q", flags.treeName)
	}

	opts := []dualtree.Option{
		dualtree.WithMetric(metricKind),
		dualtree.WithTree(treeKind),
		dualtree.WithLeafSize(flags.leafSize),
		dualtree.WithBase(flags.base),
		dualtree.WithParallelism(flags.parallelism),
	}

	switch flags.mode {
	case "dual":
		opts = append(opts, dualtree.WithMode(dualtree.ModeDual))
	case "single":
		opts = append(opts, dualtree.WithMode(dualtree.ModeSingle))
	case "naive":
		opts = append(opts, dualtree.WithMode(dualtree.ModeNaive))
	default:
		return nil, fmt.Errorf("unknown mode %q", flags.mode)
	}

	if flags.furthest {
		opts = append(opts, dualtree.WithFurthest())
	}
	if flags.verbose {
		opts = append(opts, dualtree.WithLogger(dualtree.NewTextLogger(slog.LevelDebug)))
	}

	return opts, nil
}

// snapshotStore resolves a snapshot path to a store and object name.
// Paths of the form s3://bucket/key go to S3 with ambient AWS
// credentials; everything else is a local file path.
func snapshotStore(ctx context.Context, path string) (store.Store, string, error) {
	if rest, ok := strings.CutPrefix(path, "s3://"); ok {
		bucket, key, ok := strings.Cut(rest, "/")
		if !ok || bucket == "" || key == "" {
			return nil, "", fmt.Errorf("malformed s3 path %q", path)
		}
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("load aws config: %w", err)
		}
		return s3.New(awss3.NewFromConfig(cfg), bucket, ""), key, nil
	}

	st, err := store.NewLocal(filepath.Dir(path))
	if err != nil {
		return nil, "", err
	}

	return st, filepath.Base(path), nil
}

func makeSearcher(ctx context.Context, opts []dualtree.Option) (*dualtree.Searcher, error) {
	if flags.snapshotIn != "" {
		st, name, err := snapshotStore(ctx, flags.snapshotIn)
		if err != nil {
			return nil, err
		}
		t, err := snapshot.Load(ctx, st, name)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		return dualtree.FromTree(t, opts...)
	}

	if flags.refPath == "" {
		return nil, fmt.Errorf("either --ref or --snapshot-in is required")
	}

	refSet, err := readCSV(flags.refPath)
	if err != nil {
		return nil, err
	}

	return dualtree.NewSearcher(refSet, opts...)
}

func saveSnapshot(ctx context.Context, t *tree.Tree) error {
	var c snapshot.Compression
	switch flags.compression {
	case "none":
		c = snapshot.CompressionNone
	case "zstd":
		c = snapshot.CompressionZstd
	case "lz4":
		c = snapshot.CompressionLZ4
	default:
		return fmt.Errorf("unknown compression %q", flags.compression)
	}

	st, name, err := snapshotStore(ctx, flags.snapshotOut)
	if err != nil {
		return err
	}

	return snapshot.Save(ctx, st, name, t, c)
}

// readCSV loads a dataset with one point per row.
func readCSV(path string) (*matrix.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	points := make([][]float32, 0, len(records))
	for i, record := range records {
		point := make([]float32, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d column %d: %w", path, i+1, j+1, err)
			}
			point[j] = float32(v)
		}
		points = append(points, point)
	}

	m, err := matrix.FromColumns(points)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return m, nil
}

// writeResult prints one row per query: neighbor,distance pairs, best
// first. Unfilled slots are left empty.
func writeResult(out io.Writer, res *dualtree.Result) error {
	w := csv.NewWriter(out)

	for qi := range res.Neighbors {
		record := make([]string, 0, 2*len(res.Neighbors[qi]))
		for j, id := range res.Neighbors[qi] {
			if id == neighbor.InvalidNeighbor {
				record = append(record, "", "")
				continue
			}
			record = append(record,
				strconv.FormatInt(int64(id), 10),
				strconv.FormatFloat(float64(res.Distances[qi][j]), 'g', -1, 32),
			)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()

	return w.Error()
}
