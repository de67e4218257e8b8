package paramfile

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cftellezc/ecc-evolve/pkg/weierstrass"
)

func sampleParams() weierstrass.Parameters {
	return weierstrass.Parameters{
		A: big.NewInt(1),
		B: big.NewInt(5),
		P: big.NewInt(23),
		G: &weierstrass.Point{X: big.NewInt(3), Y: big.NewInt(9)},
		N: big.NewInt(22),
		H: big.NewInt(1),
	}
}

func TestWriteReadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.txt")
	want := sampleParams()

	require.NoError(t, Write(path, want))

	got, err := Read(path)
	require.NoError(t, err)

	assert.Zero(t, got.A.Cmp(want.A))
	assert.Zero(t, got.B.Cmp(want.B))
	assert.Zero(t, got.P.Cmp(want.P))
	assert.True(t, got.G.Equal(want.G))
	assert.Zero(t, got.N.Cmp(want.N))
	assert.Zero(t, got.H.Cmp(want.H))
}

func TestWriteLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.txt")
	require.NoError(t, Write(path, sampleParams()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	want := "p: 23\n" +
		"a: 1\n" +
		"b: 5\n" +
		"G_x: 3\n" +
		"G_y: 9\n" +
		"n: 22\n" +
		"h: 1\n"
	assert.Equal(t, want, string(raw))
}

func TestReadSkipsCommentsAndBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.txt")
	content := "# search result\n\np: 23\na: 1\nb: 5\nG_x: 3\nG_y: 9\nn: 22\nh: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := Read(path)
	require.NoError(t, err)
	assert.EqualValues(t, 23, got.P.Int64())
}

func TestReadMissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.txt")
	content := "p: 23\na: 1\nb: 5\nG_x: 3\nG_y: 9\nn: 22\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"h"`)
}

func TestReadInvalidValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.txt")
	content := "p: twenty-three\na: 1\nb: 5\nG_x: 3\nG_y: 9\nn: 22\nh: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Read(path)
	assert.Error(t, err)
}

func TestReadDuplicateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.txt")
	content := "p: 23\np: 29\na: 1\nb: 5\nG_x: 3\nG_y: 9\nn: 22\nh: 1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Read(path)
	assert.Error(t, err)
}

func TestReadMissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}
