package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/jzx17/gothreadpool/pkg/pool"
	"github.com/jzx17/gothreadpool/pkg/worker"
)

// Table is a fixed-width text table with a colored header
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table
func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{headers: headers, widths: widths}
}

// AddRow appends a row, widening columns as needed
func (t *Table) AddRow(row ...string) {
	for i, cell := range row {
		if i < len(t.widths) && len(cell) > t.widths[i] {
			t.widths[i] = len(cell)
		}
	}
	t.rows = append(t.rows, row)
}

// Render writes the table to w
func (t *Table) Render(w io.Writer) {
	header := color.New(color.FgCyan, color.Bold)
	for i, h := range t.headers {
		_, _ = header.Fprintf(w, "%-*s  ", t.widths[i], h)
	}
	writef(w, "\n")

	for i := range t.headers {
		writef(w, "%s  ", strings.Repeat("-", t.widths[i]))
	}
	writef(w, "\n")

	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(t.widths) {
				writef(w, "%-*s  ", t.widths[i], cell)
			}
		}
		writef(w, "\n")
	}
}

// RenderStats writes the pool summary and one row per worker
func RenderStats(w io.Writer, stats pool.Stats, workers []worker.Stats) {
	_, _ = color.New(color.Bold).Fprintf(w, "pool %s", stats.State)
	writef(w, "  strategy=%s  workers=%d  queued=%d/%d  executed=%d  failed=%d  admitted=%d  ",
		stats.Strategy, stats.Workers, stats.QueueSize, stats.QueueCapacity,
		stats.ExecutedTasks, stats.FailedTasks, stats.Admitted)
	rejected := color.New(color.FgGreen)
	if stats.Rejected > 0 {
		rejected = color.New(color.FgRed)
	}
	_, _ = rejected.Fprintf(w, "rejected=%d\n", stats.Rejected)

	t := NewTable("WORKER", "STATUS", "CPU", "QUEUE", "UTIL", "EXECUTED", "FAILED")
	for _, ws := range workers {
		cpu := "-"
		if ws.Affinity != worker.NoAffinity {
			cpu = strconv.Itoa(ws.Affinity)
		}
		t.AddRow(
			strconv.Itoa(ws.ID),
			ws.Status.String(),
			cpu,
			fmt.Sprintf("%d/%d", ws.QueueSize, ws.Capacity),
			fmt.Sprintf("%.1f%%", ws.Utilization()*100),
			strconv.FormatUint(ws.ExecutedTasks, 10),
			strconv.FormatUint(ws.FailedTasks, 10),
		)
	}
	t.Render(w)
}
