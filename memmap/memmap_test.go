package memmap

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/arloliu/physmap/errs"
	"github.com/arloliu/physmap/format"
	"github.com/arloliu/physmap/region"
	"github.com/stretchr/testify/require"
)

func conv(start, pages uint64) region.Descriptor {
	return region.New(format.TypeConventional, start, pages, format.AttrWB)
}

type span struct{ start, pages uint64 }

func spans(m *Map) []span {
	var out []span
	for _, d := range m.All() {
		out = append(out, span{d.PhysicalStart, d.PageCount})
	}

	return out
}

func requireFatal(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a fatal panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value should be an error, got %T", r)
		require.ErrorIs(t, err, errs.ErrMapFull)
	}()
	fn()
}

func TestNew(t *testing.T) {
	require := require.New(t)

	m := New()
	require.Equal(0, m.Len())
	require.Equal(Capacity, m.Remaining())
	require.False(m.Full())
	for i := range m.entries {
		require.True(m.entries[i].IsSentinel())
		require.Equal(region.Descriptor{}, m.entries[i])
	}
	require.NoError(m.Validate())

	var zero Map
	require.Equal(*m, zero)
}

func TestAddRegion_ScenarioA(t *testing.T) {
	require := require.New(t)

	m := New()
	m.AddRegion(conv(0, 1))
	m.AddRegion(conv(4096, 0))
	m.AddRegion(conv(2048, 1))

	require.Equal([]span{{0, 1}, {2048, 1}}, spans(m))
	require.Equal(2, m.Len())

	// The zero-page entry stays in backing storage, past the count.
	require.True(slices.ContainsFunc(m.entries[m.Len():], func(d region.Descriptor) bool {
		return d.PhysicalStart == 4096
	}))
	require.NoError(m.Validate())
}

func TestAddRegion_ScenarioB(t *testing.T) {
	m := New()
	m.AddRegion(conv(8192, 2))
	m.AddRegion(conv(0, 4))
	m.AddRegion(conv(8192, 1))

	require.Equal(t, []span{{0, 4}, {8192, 1}, {8192, 2}}, spans(m))
}

func TestAddRegion_ScenarioC(t *testing.T) {
	require := require.New(t)

	m := New()
	var want []region.Descriptor
	for i := range Capacity {
		d := conv(uint64(i)*region.PageSize*16, uint64(i%3)+1)
		want = append(want, d)
		m.AddRegion(d)
	}

	require.Equal(Capacity, m.Len())
	require.True(m.Full())
	require.Equal(0, m.Remaining())
	require.Equal(want, m.Regions())

	requireFatal(t, func() { m.AddRegion(conv(1<<40, 1)) })
	require.Equal(want, m.Regions(), "a failed append must not touch the map")
}

func TestAddRegion_FullMapRejectsSentinelToo(t *testing.T) {
	m := New()
	for i := range Capacity {
		m.AddRegion(conv(uint64(i)<<20, 1))
	}

	requireFatal(t, func() { m.AddRegion(region.Descriptor{}) })
}

func TestAddRegion_FreesSlotForSentinel(t *testing.T) {
	require := require.New(t)

	// A zero-page insert consumes no visible slot, so the map can still be
	// filled with Capacity real regions afterwards.
	m := New()
	m.AddRegion(conv(0x1000, 0))
	require.Equal(0, m.Len())

	for i := range Capacity {
		m.AddRegion(conv(uint64(i)<<20, 1))
	}
	require.Equal(Capacity, m.Len())
}

func TestAddRegion_PassesFieldsThrough(t *testing.T) {
	m := New()
	d := region.New(format.MemoryType(0x7fff0000), 0xfed00000, 1, format.AttrUC|format.AttrRuntime|0x200)
	d.VirtualStart = 0xdeadbeef000
	m.AddRegion(d)

	require.Equal(t, d, m.At(0))
}

func TestCapacityProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for round := range 200 {
		m := New()
		n := rng.IntN(Capacity + 1)
		for range n {
			m.AddRegion(conv(rng.Uint64N(1<<36), rng.Uint64N(4)))
		}
		require.LessOrEqual(t, m.Len(), n, "round %d", round)
		require.LessOrEqual(t, m.Len(), Capacity, "round %d", round)
	}
}

func TestSortOrderProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for round := range 200 {
		m := New()
		var inserted []region.Descriptor
		for range rng.IntN(Capacity) + 1 {
			// Small address space to force plenty of start-address ties.
			d := conv(rng.Uint64N(16)*region.PageSize, rng.Uint64N(8)+1)
			inserted = append(inserted, d)
			m.AddRegion(d)
		}

		got := m.Regions()
		require.Len(t, got, len(inserted), "round %d", round)
		for i := 1; i < len(got); i++ {
			prev, cur := got[i-1], got[i]
			require.LessOrEqual(t, prev.PhysicalStart, cur.PhysicalStart, "round %d", round)
			if prev.PhysicalStart == cur.PhysicalStart {
				require.LessOrEqual(t, prev.PageCount, cur.PageCount, "round %d", round)
			}
		}

		slices.SortFunc(inserted, region.Compare)
		require.Equal(t, inserted, got, "round %d", round)
		require.NoError(t, m.Validate())
	}
}

func TestSentinelExclusionProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))

	for round := range 200 {
		m := New()
		for range rng.IntN(Capacity - 1) {
			m.AddRegion(conv(rng.Uint64N(1<<30), rng.Uint64N(3)+1))
		}
		before := m.Len()

		sentinel := region.Descriptor{
			Type:          format.MemoryType(rng.Uint32()),
			PhysicalStart: rng.Uint64(),
			VirtualStart:  rng.Uint64(),
			Attribute:     format.Attribute(rng.Uint64()),
		}
		m.AddRegion(sentinel)

		require.Equal(t, before, m.Len(), "round %d", round)
		require.NoError(t, m.Validate())
	}
}

func TestSort_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))

	m := New()
	for range 40 {
		m.AddRegion(conv(rng.Uint64N(64)*region.PageSize, rng.Uint64N(3)))
	}

	m.Sort()
	first := *m
	m.Sort()
	require.Equal(t, first.Regions(), m.Regions())
	require.Equal(t, first.Len(), m.Len())
}

func TestSort_EmptyMap(t *testing.T) {
	m := New()
	m.Sort()
	require.Equal(t, 0, m.Len())
}

func TestSort_FullMapCountIsCapacity(t *testing.T) {
	m := New()
	for i := range Capacity {
		m.entries[i] = conv(uint64(Capacity-i)<<12, 1)
	}

	m.Sort()
	require.Equal(t, Capacity, m.Len())
	require.Equal(t, uint64(1<<12), m.At(0).PhysicalStart)
	require.NoError(t, m.Validate())
}

func TestMutable_HoleUntilSort(t *testing.T) {
	require := require.New(t)

	m := New()
	m.AddRegion(conv(0x1000, 1))
	m.AddRegion(conv(0x2000, 2))
	m.AddRegion(conv(0x3000, 3))

	view := m.Mutable()
	require.Len(view, 3)
	require.Equal(3, cap(view))

	view[1].Attribute |= format.AttrXP
	require.True(m.At(1).Attribute.Has(format.AttrXP))

	// Zeroing an entry leaves a visible hole until the next Sort.
	view[0].PageCount = 0
	require.Equal(3, m.Len())
	require.ErrorIs(m.Validate(), errs.ErrSentinelInPrefix)

	m.Sort()
	require.Equal([]span{{0x2000, 2}, {0x3000, 3}}, spans(m))
	require.NoError(m.Validate())
}

func TestMutable_ReorderThenSort(t *testing.T) {
	m := New()
	m.AddRegion(conv(0x1000, 1))
	m.AddRegion(conv(0x2000, 1))

	m.Mutable()[0].PhysicalStart = 0x9000
	require.ErrorIs(t, m.Validate(), errs.ErrUnsorted)

	m.Sort()
	require.Equal(t, []span{{0x2000, 1}, {0x9000, 1}}, spans(m))
}

func TestMutable_AppendDoesNotReachSentinels(t *testing.T) {
	m := New()
	m.AddRegion(conv(0x1000, 1))

	view := m.Mutable()
	_ = append(view, conv(0x5000, 5))

	require.Equal(t, 1, m.Len())
	require.True(t, m.entries[1].IsSentinel())
}

func TestReadViews(t *testing.T) {
	require := require.New(t)

	m := New()
	m.AddRegion(conv(0x3000, 1))
	m.AddRegion(conv(0x1000, 1))

	regions := m.Regions()
	regions[0].PageCount = 0
	require.Equal(uint64(1), m.At(0).PageCount, "Regions must return a copy")

	dst := make([]region.Descriptor, 8)
	require.Equal(2, m.CopyTo(dst))
	require.Equal(uint64(0x1000), dst[0].PhysicalStart)

	var seen int
	for i, d := range m.All() {
		require.Equal(m.At(i), d)
		seen++
		break
	}
	require.Equal(1, seen)

	require.Panics(func() { m.At(2) })
	require.Panics(func() { m.At(-1) })
}

func TestReset(t *testing.T) {
	m := New()
	m.AddRegion(conv(0x1000, 1))
	m.Reset()

	require.Equal(t, 0, m.Len())
	require.Equal(t, Map{}, *m)
}

func TestValidate_CountOutOfRange(t *testing.T) {
	m := New()
	m.count = Capacity + 1

	require.ErrorIs(t, m.Validate(), errs.ErrCountOutOfRange)
	require.Equal(t, Capacity, len(m.Regions()), "views clamp a corrupted count")
}

func BenchmarkAddRegion(b *testing.B) {
	descs := make([]region.Descriptor, Capacity)
	rng := rand.New(rand.NewPCG(1, 1))
	for i := range descs {
		descs[i] = conv(rng.Uint64N(1<<32), rng.Uint64N(16)+1)
	}

	b.ReportAllocs()
	for b.Loop() {
		var m Map
		for _, d := range descs {
			m.AddRegion(d)
		}
	}
}
