package symbolref_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CRJFisher/ariadne-sub018/symbolref"
)

func TestParseRoundTrip(t *testing.T) {
	ref, err := symbolref.Parse("src/lib.ts:12#helper")
	assert.NoError(t, err)
	assert.Equal(t, symbolref.SymbolRef{FilePath: "src/lib.ts", StartLine: 12, Name: "helper"}, ref)
	assert.Equal(t, "src/lib.ts:12#helper", ref.String())
}

func TestParseFilePathWithColon(t *testing.T) {
	ref, err := symbolref.Parse(`C:\proj\lib.ts:12#helper`)
	assert.NoError(t, err)
	assert.Equal(t, `C:\proj\lib.ts`, ref.FilePath)
	assert.Equal(t, 12, ref.StartLine)
	assert.Equal(t, "helper", ref.Name)
}

func TestParseInvalid(t *testing.T) {
	for _, s := range []string{"no-hash-or-colon", "lib.ts#name", "lib.ts:notanumber#name", "#name"} {
		_, err := symbolref.Parse(s)
		assert.Error(t, err, s)
	}
}

func TestPathsMatch(t *testing.T) {
	assert.True(t, symbolref.PathsMatch("/root/proj/src/lib.ts", "src/lib.ts"))
	assert.True(t, symbolref.PathsMatch("./lib.ts", "lib.ts"))
	assert.False(t, symbolref.PathsMatch("/root/proj/src/lib.ts", "src/other.ts"))
	assert.False(t, symbolref.PathsMatch("/root/proj/src/lib.ts", "libb.ts"))
}
