package report

import (
	"fmt"
	"io"
	"time"

	"fixity/internal/engine"
	"fixity/internal/model"
)

// summaryOrder fixes the footer's line order so summaries are stable
// across runs and comparable in golden files.
var summaryOrder = []model.EventKind{
	model.KindNew,
	model.KindOk,
	model.KindUpdatedAllowed,
	model.KindRehashed,
	model.KindForcedOverride,
	model.KindRemoved,
	model.KindUnexpectedModification,
	model.KindPossibleFilesystemCorruption,
	model.KindBitRot,
	model.KindSkippedUnreadable,
}

// Summary writes the end-of-run footer: per-outcome counts, volume, and
// timing for the run.
func Summary(w io.Writer, stats *engine.Stats) {
	fmt.Fprintf(w, "\nrun %s complete\n", stats.RunID)
	fmt.Fprintf(w, "  %-28s %d\n", "files checked", stats.FilesSeen)
	fmt.Fprintf(w, "  %-28s %s\n", "bytes digested", byteSize(stats.BytesRead))
	for _, kind := range summaryOrder {
		fmt.Fprintf(w, "  %-28s %d\n", kind.String(), stats.Count(kind))
	}
	fmt.Fprintf(w, "  %-28s %d\n", "anomalies", stats.Anomalies())
	if stats.Elapsed > 0 {
		fmt.Fprintf(w, "  %-28s %s\n", "elapsed", stats.Elapsed.Round(time.Millisecond))
		perSec := float64(stats.BytesRead) / stats.Elapsed.Seconds()
		fmt.Fprintf(w, "  %-28s %s/s\n", "throughput", byteSize(int64(perSec)))
	}
}

// byteSize renders a byte count in the largest sensible unit.
func byteSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
