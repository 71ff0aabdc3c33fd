package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"fixity/internal/model"
)

func TestText_SuppressesConfirmationsByDefault(t *testing.T) {
	var buf bytes.Buffer
	sink := NewText(&buf, false)

	sink.Report(model.Event{Kind: model.KindOk, Key: "/data/a"})
	sink.Report(model.Event{Kind: model.KindUpdatedAllowed, Key: "/data/b"})
	sink.Report(model.Event{Kind: model.KindRehashed, Key: "/data/c"})

	assert.Empty(t, buf.String())
}

func TestText_VerboseShowsEverything(t *testing.T) {
	var buf bytes.Buffer
	sink := NewText(&buf, true)

	sink.Report(model.Event{Kind: model.KindOk, Key: "/data/a"})
	sink.Report(model.Event{Kind: model.KindNew, Key: "/data/b"})

	out := buf.String()
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "/data/a")
	assert.Contains(t, out, "new")
	assert.Contains(t, out, "/data/b")
}

func TestText_AnomaliesAlwaysRendered(t *testing.T) {
	anomalies := []model.EventKind{
		model.KindBitRot,
		model.KindUnexpectedModification,
		model.KindPossibleFilesystemCorruption,
	}
	for _, kind := range anomalies {
		var buf bytes.Buffer
		sink := NewText(&buf, false)
		sink.Report(model.Event{Kind: kind, Key: "/data/x"})

		line := buf.String()
		assert.True(t, strings.HasPrefix(line, "!! "), "%s: %q", kind, line)
		assert.Contains(t, line, "/data/x")
	}
}

func TestText_UnreadableIncludesError(t *testing.T) {
	var buf bytes.Buffer
	sink := NewText(&buf, false)

	sink.Report(model.Event{
		Kind: model.KindSkippedUnreadable,
		Key:  "/data/x",
		Err:  errors.New("permission denied"),
	})

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "!! "))
	assert.Contains(t, line, "permission denied")
}

func TestText_NonAnomalousEventsUnmarked(t *testing.T) {
	var buf bytes.Buffer
	sink := NewText(&buf, false)

	sink.Report(model.Event{Kind: model.KindNew, Key: "/data/a"})
	sink.Report(model.Event{Kind: model.KindRemoved, Key: "/data/b"})
	sink.Report(model.Event{Kind: model.KindForcedOverride, Key: "/data/c"})

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		assert.True(t, strings.HasPrefix(line, "   "), "line %q", line)
	}
}
