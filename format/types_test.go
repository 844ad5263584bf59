package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryTypeString(t *testing.T) {
	tests := []struct {
		typ  MemoryType
		want string
	}{
		{TypeReserved, "Reserved"},
		{TypeConventional, "Conventional"},
		{TypeACPIReclaim, "ACPIReclaim"},
		{TypePersistent, "Persistent"},
		{TypeKernelImage, "KernelImage"},
		{MemoryType(0x80001000), "OSDefined(0x80001000)"},
		{MemoryType(0x42), "Unknown(0x42)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestParseMemoryType(t *testing.T) {
	require := require.New(t)

	for typ, name := range memoryTypeNames {
		got, err := ParseMemoryType(name)
		require.NoError(err)
		require.Equal(typ, got)
	}

	got, err := ParseMemoryType("conventional")
	require.NoError(err)
	require.Equal(TypeConventional, got)

	_, err = ParseMemoryType("bogus")
	require.Error(err)
}

func TestMemoryTypeClasses(t *testing.T) {
	require := require.New(t)

	require.True(TypeConventional.IsUsable())
	require.True(TypeBootServicesData.IsUsable())
	require.False(TypeRuntimeServicesCode.IsUsable())
	require.False(TypeKernelImage.IsUsable())
	require.True(TypeKernelImage.IsOSDefined())
	require.False(TypePersistent.IsOSDefined())
}

func TestAttributeString(t *testing.T) {
	tests := []struct {
		name string
		attr Attribute
		want string
	}{
		{"none", 0, "-"},
		{"single", AttrWB, "WB"},
		{"cacheability", AttrUC | AttrWC | AttrWT | AttrWB, "UC|WC|WT|WB"},
		{"runtime", AttrUC | AttrRuntime, "UC|RUNTIME"},
		{"unnamed bits", AttrWB | 0x100, "WB|0x100"},
		{"only unnamed", 0x100, "0x100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.attr.String())
		})
	}
}

func TestAttributeHasAndParse(t *testing.T) {
	require := require.New(t)

	a := AttrUC | AttrWB | AttrRuntime
	require.True(a.Has(AttrWB))
	require.True(a.Has(AttrUC | AttrRuntime))
	require.False(a.Has(AttrXP))

	got, err := ParseAttribute("runtime")
	require.NoError(err)
	require.Equal(AttrRuntime, got)

	_, err = ParseAttribute("XX")
	require.Error(err)
}

func TestCompressionType(t *testing.T) {
	require := require.New(t)

	for _, c := range []CompressionType{CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4} {
		got, err := ParseCompressionType(c.String())
		require.NoError(err)
		require.Equal(c, got)
	}
	require.Equal("Unknown", CompressionType(0x9).String())

	_, err := ParseCompressionType("gzip")
	require.Error(err)
}
