package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/sersmask/pkg/errors"
	"github.com/matzehuels/sersmask/pkg/geom"
	"github.com/matzehuels/sersmask/pkg/mask"
	"github.com/matzehuels/sersmask/pkg/waveguide"
	"github.com/matzehuels/sersmask/pkg/xsection"
)

func testDesign(t *testing.T, n int) *mask.Design {
	t.Helper()
	b := waveguide.NewBuilder(xsection.NewRegistry())
	d := mask.New("chip")
	for i := 0; i < n; i++ {
		spec := waveguide.DefaultSpec()
		spec.Width, spec.Gap, spec.Length, spec.Buffer = 0.5, 0.2, 100, 3
		spec.Entrance = 10
		wg, err := b.Plan(spec)
		require.NoError(t, err)
		require.NoError(t, d.Place(b, wg, geom.Pt(0, float64(i)*50)))
	}
	return d
}

func openTemp(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)
	d := testDesign(t, 3)

	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	first, err := c.Record(ctx, d, RunMeta{BatchHash: "abc", Formats: []string{"gds", "svg"}, Now: t0})
	require.NoError(t, err)
	second, err := c.Record(ctx, d, RunMeta{Now: t0.Add(time.Minute)})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	runs, err := c.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID, "newest first")

	got := runs[1]
	assert.Equal(t, "chip", got.Name)
	assert.Equal(t, "abc", got.BatchHash)
	assert.Equal(t, []string{"gds", "svg"}, got.Formats)
	assert.Equal(t, 3, got.Waveguides)
	assert.Equal(t, first.Polygons, got.Polygons)
	assert.True(t, got.CreatedAt.Equal(t0))
	assert.Equal(t, d.Bounds(), got.Bounds)

	limited, err := c.Runs(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestWaveguides(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)
	d := testDesign(t, 2)

	run, err := c.Record(ctx, d, RunMeta{})
	require.NoError(t, err)

	wgs, err := c.Waveguides(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, wgs, 2)

	placed := d.Waveguides()
	for i, w := range wgs {
		assert.Equal(t, i, w.Index)
		assert.Equal(t, placed[i].ID, w.ID)
		assert.Equal(t, placed[i].Start, w.Start)
		assert.Equal(t, placed[i].End, w.End)
		assert.Equal(t, len(placed[i].Shapes), w.Shapes)
		assert.InDelta(t, placed[i].Length(), w.Length, 1e-9)
		assert.Equal(t, placed[i].Spec, w.Spec)
	}
}

func TestRunNotFound(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)

	_, err := c.Run(ctx, "missing")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	err = c.Delete(ctx, "missing")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	c := openTemp(t)

	run, err := c.Record(ctx, testDesign(t, 2), RunMeta{})
	require.NoError(t, err)

	got, err := c.Run(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)

	require.NoError(t, c.Delete(ctx, run.ID))
	wgs, err := c.Waveguides(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, wgs)
}

func TestReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	c, err := Open(path)
	require.NoError(t, err)
	_, err = c.Record(ctx, testDesign(t, 1), RunMeta{})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = Open(path)
	require.NoError(t, err)
	defer c.Close()
	runs, err := c.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
