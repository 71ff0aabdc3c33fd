package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"

	"fixity/internal/engine"
	"fixity/internal/model"
)

func TestSummary_Golden(t *testing.T) {
	stats := &engine.Stats{
		RunID:     "test-run",
		Elapsed:   2 * time.Second,
		FilesSeen: 6,
		BytesRead: 1572864, // 1.5 MB
		Counts: map[model.EventKind]int64{
			model.KindNew:               2,
			model.KindOk:                1,
			model.KindUpdatedAllowed:    1,
			model.KindBitRot:            1,
			model.KindSkippedUnreadable: 1,
		},
	}

	var buf bytes.Buffer
	Summary(&buf, stats)

	g := goldie.New(t)
	g.Assert(t, "summary", buf.Bytes())
}

func TestSummary_ZeroElapsedOmitsTiming(t *testing.T) {
	stats := &engine.Stats{
		RunID:  "test-run",
		Counts: map[model.EventKind]int64{},
	}

	var buf bytes.Buffer
	Summary(&buf, stats)

	out := buf.String()
	assert.NotContains(t, out, "elapsed")
	assert.NotContains(t, out, "throughput")
}

func TestByteSize(t *testing.T) {
	cases := map[int64]string{
		0:           "0 B",
		512:         "512 B",
		1024:        "1.0 KB",
		1536:        "1.5 KB",
		1048576:     "1.0 MB",
		5368709120:  "5.0 GB",
		1099511627776: "1.0 TB",
	}
	for in, want := range cases {
		assert.Equal(t, want, byteSize(in), "byteSize(%d)", in)
	}
}
