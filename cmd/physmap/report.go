package main

import (
	"fmt"

	"github.com/arloliu/physmap/loader"
	"github.com/arloliu/physmap/memmap"
	"github.com/arloliu/physmap/region"
)

// mapReport is the JSON form of a map image.
type mapReport struct {
	Path        string         `json:"path"`
	Regions     int            `json:"regions"`
	Capacity    int            `json:"capacity"`
	TotalPages  uint64         `json:"total_pages"`
	UsablePages uint64         `json:"usable_pages"`
	HighestEnd  string         `json:"highest_end"`
	Entries     []regionReport `json:"entries"`
}

type regionReport struct {
	Index      int    `json:"index"`
	Type       string `json:"type"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Pages      uint64 `json:"pages"`
	Attributes string `json:"attributes"`
}

func newMapReport(path string, m *memmap.Map) mapReport {
	s := loader.Summarize(m)
	r := mapReport{
		Path:        path,
		Regions:     s.Regions,
		Capacity:    memmap.Capacity,
		TotalPages:  s.TotalPages,
		UsablePages: s.UsablePages,
		HighestEnd:  fmt.Sprintf("%#x", s.HighestEnd),
		Entries:     make([]regionReport, 0, s.Regions),
	}
	for i, d := range m.All() {
		r.Entries = append(r.Entries, newRegionReport(i, d))
	}

	return r
}

func newRegionReport(i int, d region.Descriptor) regionReport {
	return regionReport{
		Index:      i,
		Type:       d.Type.String(),
		Start:      fmt.Sprintf("%#x", d.PhysicalStart),
		End:        fmt.Sprintf("%#x", d.PhysicalEnd()),
		Pages:      d.PageCount,
		Attributes: d.Attribute.String(),
	}
}
