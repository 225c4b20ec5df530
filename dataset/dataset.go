// Package dataset loads the columnar digit datasets consumed by the
// training commands: parquet files with a "data" feature-vector column
// and a "labels" column, or npz archives of uint8 image and label
// arrays.
package dataset

import (
	"fmt"
	"math/rand"

	"github.com/parquet-go/parquet-go"
	"github.com/sbinet/npyio/npz"
)

// Digits is a dense in-memory dataset of fixed-length feature vectors
// with integer class labels.
type Digits struct {
	X      [][]float64
	Labels []int

	Features int
	Classes  int
}

type parquetRow struct {
	Data   []float64 `parquet:"data"`
	Labels int64     `parquet:"labels"`
}

// FromParquet reads a parquet file with one row per example: a "data"
// list-of-double column holding the feature vector and a "labels" int64
// column holding the class.
func FromParquet(path string) (*Digits, error) {
	rows, err := parquet.ReadFile[parquetRow](path)
	if err != nil {
		return nil, fmt.Errorf("while reading %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows in %s", path)
	}

	d := &Digits{
		X:        make([][]float64, 0, len(rows)),
		Labels:   make([]int, 0, len(rows)),
		Features: len(rows[0].Data),
	}
	seen := map[int]bool{}
	for i, row := range rows {
		if len(row.Data) != d.Features {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row.Data), d.Features)
		}
		d.X = append(d.X, row.Data)
		d.Labels = append(d.Labels, int(row.Labels))
		seen[int(row.Labels)] = true
	}
	d.Classes = len(seen)

	return d, nil
}

// FromNPZ reads an npz archive holding a uint8 image array under
// imagesKey (shape (n, h, w) or (n, features)) and a uint8 label array
// under labelsKey.  Pixel values are normalised to [0, 1].
func FromNPZ(path, imagesKey, labelsKey string) (*Digits, error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, fmt.Errorf("while opening %s: %w", path, err)
	}
	defer r.Close()

	imgHeader := r.Header(imagesKey)
	if imgHeader == nil {
		return nil, fmt.Errorf("no %q entry in %s", imagesKey, path)
	}
	shape := imgHeader.Descr.Shape
	var count, features int
	switch len(shape) {
	case 2:
		count, features = shape[0], shape[1]
	case 3:
		count, features = shape[0], shape[1]*shape[2]
	default:
		return nil, fmt.Errorf("unsupported image array shape %v", shape)
	}

	var rawImages []uint8
	if err := r.Read(imagesKey, &rawImages); err != nil {
		return nil, fmt.Errorf("while reading %s: %w", imagesKey, err)
	}

	var rawLabels []uint8
	if err := r.Read(labelsKey, &rawLabels); err != nil {
		return nil, fmt.Errorf("while reading %s: %w", labelsKey, err)
	}
	if len(rawLabels) != count {
		return nil, fmt.Errorf("got %d labels for %d images", len(rawLabels), count)
	}

	d := &Digits{
		X:        make([][]float64, count),
		Labels:   make([]int, count),
		Features: features,
	}
	seen := map[int]bool{}
	for k := 0; k < count; k++ {
		x := make([]float64, features)
		for j := 0; j < features; j++ {
			x[j] = float64(rawImages[k*features+j]) / 255
		}
		d.X[k] = x
		d.Labels[k] = int(rawLabels[k])
		seen[int(rawLabels[k])] = true
	}
	d.Classes = len(seen)

	return d, nil
}

// Shuffle permutes examples and labels together.
func (d *Digits) Shuffle(r *rand.Rand) {
	r.Shuffle(len(d.X), func(i, j int) {
		d.X[i], d.X[j] = d.X[j], d.X[i]
		d.Labels[i], d.Labels[j] = d.Labels[j], d.Labels[i]
	})
}

// Len reports the number of examples.
func (d *Digits) Len() int {
	return len(d.X)
}
