package synth

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthward-labs/synthward/internal/schema"
	"github.com/synthward-labs/synthward/internal/seed"
	"github.com/synthward-labs/synthward/internal/table"
)

func newRand(s uint64) *rand.Rand {
	return rand.New(rand.NewPCG(s, s))
}

func buildSeed(t *testing.T, s uint64) (*schema.Registry, table.Set) {
	t.Helper()
	reg := schema.Clinical()
	b := seed.NewBuilder(reg, newRand(s), nil)
	set, err := b.Build(seed.DefaultCounts())
	require.NoError(t, err)
	return reg, set
}

func TestMetadataRoundTrip(t *testing.T) {
	reg := schema.Clinical()
	meta := DetectMetadata(reg)

	path := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, meta.Save(path))

	loaded, err := LoadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, meta, loaded)

	tm, ok := loaded.Table("admissions")
	require.True(t, ok)
	assert.Equal(t, "admission_id", tm.PrimaryKey)
	assert.Equal(t, "ADM", tm.KeyPrefix)
}

func TestLoadMetadataMissingFile(t *testing.T) {
	_, err := LoadMetadata(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestBootstrapFitRejectsPartialSeed(t *testing.T) {
	reg, set := buildSeed(t, 42)
	delete(set, "devices")

	b := NewBootstrap(reg, newRand(1), nil)
	_, err := b.Fit(context.Background(), set)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "devices")
}

func TestBootstrapSampleKeysAndClosure(t *testing.T) {
	reg, set := buildSeed(t, 42)
	b := NewBootstrap(reg, newRand(1), nil)

	model, err := b.Fit(context.Background(), set)
	require.NoError(t, err)
	out, err := b.Sample(context.Background(), model, 1.0)
	require.NoError(t, err)

	for _, name := range reg.TableNames() {
		spec, ok := reg.Table(name)
		require.True(t, ok)
		got, present := out[name]
		require.True(t, present, "table %s missing from sample", name)
		assert.Equal(t, set[name].Len(), got.Len())

		seen := make(map[string]struct{}, got.Len())
		for _, row := range got.Rows {
			v, ok := table.AsString(row[spec.PrimaryKey])
			require.True(t, ok)
			_, dup := seen[v]
			require.False(t, dup, "%s: duplicate key %s", name, v)
			seen[v] = struct{}{}
		}
	}

	// Foreign keys must resolve within the sampled set, not the seed.
	for _, rel := range reg.Relationships() {
		parents := make(map[string]struct{})
		for _, row := range out[rel.ParentTable].Rows {
			v, _ := table.AsString(row[rel.ParentColumn])
			parents[v] = struct{}{}
		}
		for _, row := range out[rel.ChildTable].Rows {
			v, ok := table.AsString(row[rel.ChildColumn])
			require.True(t, ok)
			_, found := parents[v]
			assert.True(t, found, "%s: value %s has no parent", rel.Name(), v)
		}
	}
}

func TestBootstrapSampleScaling(t *testing.T) {
	reg, set := buildSeed(t, 42)
	b := NewBootstrap(reg, newRand(1), nil)
	model, err := b.Fit(context.Background(), set)
	require.NoError(t, err)

	out, err := b.Sample(context.Background(), model, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 100, out["patients"].Len())
	assert.Equal(t, 5, out["wards"].Len())

	_, err = b.Sample(context.Background(), model, 0)
	require.Error(t, err)
	_, err = b.Sample(context.Background(), model, -2)
	require.Error(t, err)
}
