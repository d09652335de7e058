// Package snapshot serializes built trees so searchers can be restored
// without rebuilding. A snapshot is a small header followed by an
// optionally compressed gob stream of the tree's flattened form.
package snapshot

import (
	"bufio"
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/dualtree/store"
	"github.com/hupe1980/dualtree/tree"
)

// Compression selects the codec applied to the tree payload.
type Compression uint8

const (
	// CompressionNone stores the payload uncompressed.
	CompressionNone Compression = 0
	// CompressionZstd favors ratio, for snapshots shipped to object
	// storage.
	CompressionZstd Compression = 1
	// CompressionLZ4 favors speed, for local snapshots.
	CompressionLZ4 Compression = 2
)

const formatVersion = 1

var magic = [4]byte{'d', 't', 's', 'n'}

var (
	// ErrBadMagic is returned when the input is not a snapshot.
	ErrBadMagic = errors.New("snapshot: bad magic")
	// ErrBadVersion is returned for snapshots written by a newer format.
	ErrBadVersion = errors.New("snapshot: unsupported version")
)

// Write serializes t to w.
func Write(w io.Writer, t *tree.Tree, c Compression) error {
	header := []byte{magic[0], magic[1], magic[2], magic[3], formatVersion, byte(c)}
	if _, err := w.Write(header); err != nil {
		return err
	}

	var (
		payload io.Writer
		finish  func() error
	)

	switch c {
	case CompressionNone:
		payload = w
		finish = func() error { return nil }
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		payload = zw
		finish = zw.Close
	case CompressionLZ4:
		lw := lz4.NewWriter(w)
		payload = lw
		finish = lw.Close
	default:
		return fmt.Errorf("snapshot: unknown compression %d", c)
	}

	if err := gob.NewEncoder(payload).Encode(t.Flatten()); err != nil {
		return err
	}

	return finish()
}

// Read deserializes a tree written by Write.
func Read(r io.Reader) (*tree.Tree, error) {
	header := make([]byte, 6)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}

	if !bytes.Equal(header[:4], magic[:]) {
		return nil, ErrBadMagic
	}
	if header[4] != formatVersion {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, header[4])
	}

	var payload io.Reader

	switch Compression(header[5]) {
	case CompressionNone:
		payload = r
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		payload = zr
	case CompressionLZ4:
		payload = lz4.NewReader(r)
	default:
		return nil, fmt.Errorf("snapshot: unknown compression %d", header[5])
	}

	var f tree.Flat
	if err := gob.NewDecoder(payload).Decode(&f); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}

	return tree.FromFlat(&f)
}

// Save writes a snapshot of t into st under name.
func Save(ctx context.Context, st store.Store, name string, t *tree.Tree, c Compression) error {
	pr, pw := io.Pipe()

	go func() {
		bw := bufio.NewWriter(pw)
		err := Write(bw, t, c)
		if err == nil {
			err = bw.Flush()
		}
		_ = pw.CloseWithError(err)
	}()

	if err := st.Put(ctx, name, pr); err != nil {
		_ = pr.CloseWithError(err)
		return err
	}

	return nil
}

// Load reads the snapshot stored under name and reconstructs the tree.
func Load(ctx context.Context, st store.Store, name string) (*tree.Tree, error) {
	r, err := st.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return Read(bufio.NewReader(r))
}
