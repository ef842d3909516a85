package decode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WarpZephyr/DSMapStudio/decode"
	"github.com/WarpZephyr/DSMapStudio/locator"
)

// fakeProvider records how it was asked to open a binder.
type fakeProvider struct {
	path       string
	headerPath string
	dataPath   string
	dialect    decode.BinderDialect
	split      bool
}

func (f *fakeProvider) OpenBinder(path string, dialect decode.BinderDialect) (decode.BinderReader, error) {
	f.path = path
	f.dialect = dialect
	return fakeReader{}, nil
}

func (f *fakeProvider) OpenSplitBinder(headerPath, dataPath string, dialect decode.BinderDialect) (decode.BinderReader, error) {
	f.headerPath = headerPath
	f.dataPath = dataPath
	f.dialect = dialect
	f.split = true
	return fakeReader{}, nil
}

type fakeReader struct{}

func (fakeReader) Entries() []decode.BinderEntry { return nil }
func (fakeReader) Close() error                  { return nil }

func TestDialectFor(t *testing.T) {
	legacy := []locator.GameFamily{
		locator.GameFamilyDemonsSouls,
		locator.GameFamilyDarkSouls1PTDE,
		locator.GameFamilyDarkSouls1Remaster,
		locator.GameFamilyArmoredCoreV,
		locator.GameFamilyArmoredCoreVD,
	}
	for _, g := range legacy {
		assert.Equal(t, decode.BinderDialectLegacy, decode.DialectFor(g), "family %d", g)
	}

	v4 := []locator.GameFamily{
		locator.GameFamilyDarkSouls2,
		locator.GameFamilyDarkSouls3,
		locator.GameFamilyBloodborne,
		locator.GameFamilySekiro,
		locator.GameFamilyEldenRing,
		locator.GameFamilyArmoredCore6,
	}
	for _, g := range v4 {
		assert.Equal(t, decode.BinderDialectV4, decode.DialectFor(g), "family %d", g)
	}
}

func TestOpenBinderSingleFile(t *testing.T) {
	p := &fakeProvider{}
	_, err := decode.OpenBinder(p, "/game/chr/c0001.chrbnd.dcx", locator.GameFamilyDarkSouls3)

	require.NoError(t, err)
	assert.False(t, p.split)
	assert.Equal(t, "/game/chr/c0001.chrbnd.dcx", p.path)
	assert.Equal(t, decode.BinderDialectV4, p.dialect)
}

func TestOpenBinderSplitPair(t *testing.T) {
	p := &fakeProvider{}
	_, err := decode.OpenBinder(p, "/game/map/m10/m10_0000.tpfBHD", locator.GameFamilyDarkSouls1PTDE)

	require.NoError(t, err)
	assert.True(t, p.split)
	assert.Equal(t, "/game/map/m10/m10_0000.tpfBHD", p.headerPath)
	assert.Equal(t, "/game/map/m10/m10_0000.tpfbdt", p.dataPath)
	assert.Equal(t, decode.BinderDialectLegacy, p.dialect)
}
