package renderer

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

type TracerStat struct {
	// The tracer id.
	Id string

	// The number of traced rows and the percentage of total frame area they
	// represent.
	BlockH       uint32
	FramePercent float32

	// Query counters.
	Rays           uint64
	NodeVisits     uint64
	PrimitiveTests uint64

	// Render time for assigned blocks
	RenderTime time.Duration
}

type FrameStats struct {
	// Individual tracer stats.
	Tracers []TracerStat

	// Totals for the entire frame.
	Rays           uint64
	Hits           uint64
	NodeVisits     uint64
	PrimitiveTests uint64

	// Total render time for entire frame.
	RenderTime time.Duration
}

// Get the average number of node visits per ray.
func (fs FrameStats) NodeVisitsPerRay() float64 {
	if fs.Rays == 0 {
		return 0
	}
	return float64(fs.NodeVisits) / float64(fs.Rays)
}

// Get the average number of primitive tests per ray.
func (fs FrameStats) PrimitiveTestsPerRay() float64 {
	if fs.Rays == 0 {
		return 0
	}
	return float64(fs.PrimitiveTests) / float64(fs.Rays)
}

// Render the statistics as a table.
func (fs FrameStats) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Rows", "% of frame", "Rays", "Node visits", "Primitive tests", "Render time"})
	for _, stat := range fs.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%d", stat.Rays),
			fmt.Sprintf("%d", stat.NodeVisits),
			fmt.Sprintf("%d", stat.PrimitiveTests),
			stat.RenderTime.String(),
		})
	}
	table.SetFooter([]string{
		"",
		"",
		"TOTAL",
		fmt.Sprintf("%d", fs.Rays),
		fmt.Sprintf("%.1f / ray", fs.NodeVisitsPerRay()),
		fmt.Sprintf("%.1f / ray", fs.PrimitiveTestsPerRay()),
		fs.RenderTime.String(),
	})

	table.Render()
}
