package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestSaveAndLoadJson(t *testing.T) {
	ds := NewDiskStorage("ca", t.TempDir())
	in := sample{Name: "Loblaws", Items: []string{"KitKat", "Aero"}}

	require.NoError(t, ds.SaveJson(in, "stores.json"))
	assert.True(t, ds.Exists("stores.json"))

	var out sample
	require.NoError(t, ds.LoadJson(&out, "stores.json"))
	assert.Equal(t, in, out)

	leftovers, err := filepath.Glob(filepath.Join(ds.RootFolder, "ca", "*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestSaveAndLoadGzippedJson(t *testing.T) {
	ds := NewDiskStorage("ca", t.TempDir())
	in := []sample{{Name: "Metro"}, {Name: "Sobeys"}}
	require.NoError(t, ds.SaveGzippedJson(in, "stores.json.gz"))

	var out []sample
	require.NoError(t, ds.LoadGzippedJson(&out, "stores.json.gz"))
	assert.Equal(t, in, out)
}

func TestLoadJsonMissing(t *testing.T) {
	ds := NewDiskStorage("ca", t.TempDir())
	var out sample
	err := ds.LoadJson(&out, "missing.json")
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}

func TestSaveRawAndStream(t *testing.T) {
	ds := NewDiskStorage("se", t.TempDir())
	require.NoError(t, ds.SaveRaw(strings.NewReader("hello"), "raw.txt"))

	var buf bytes.Buffer
	n, err := ds.StreamContent(&buf, "raw.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, "hello", buf.String())
}

func TestGetFileName(t *testing.T) {
	ds := NewDiskStorage("no", "data")
	name, tmp := ds.GetFileName("stores.json")
	assert.Equal(t, "data/no/stores.json", name)
	assert.True(t, strings.HasPrefix(tmp, "data/no/stores.json.tmp-"))
	assert.Equal(t, "data/GeoLite2-City.mmdb", ds.GetSharedFileName("GeoLite2-City.mmdb"))
}
