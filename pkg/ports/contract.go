package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/typeguard/pkg/violation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunReportSinkContract runs a suite of tests to verify that a ReportSink
// implementation adheres to the defined interface contract. The sink should
// start empty.
func RunReportSinkContract(t *testing.T, sink ReportSink) {
	ctx := context.Background()
	subject := violation.Subject{Kind: "function", Name: "contract"}
	failing := []violation.Violation{&violation.Simple{
		Subject:  subject,
		Category: "type of argument",
		Path:     "x",
		Expected: "int",
		Got:      "string",
	}}

	newReport := func(offset time.Duration) violation.Report {
		r := violation.NewReport(subject, violation.ModeRaise, failing)
		r.CreatedAt = r.CreatedAt.Add(offset)
		return r
	}

	t.Run("Record and Load", func(t *testing.T) {
		report := newReport(0)

		err := sink.Record(ctx, report)
		require.NoError(t, err, "Record should not return error")

		loaded, err := sink.Load(ctx, report.ID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, report.ID, loaded.ID)
		assert.Equal(t, report.Subject, loaded.Subject)
		require.Len(t, loaded.Violations, 1)
		assert.Equal(t, report.Violations[0].Message, loaded.Violations[0].Message)
		assert.True(t, report.CreatedAt.Equal(loaded.CreatedAt))

		require.NoError(t, sink.Delete(ctx, report.ID))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := sink.Load(ctx, "non-existent-report")
		assert.ErrorIs(t, err, ErrReportNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		report := newReport(0)
		require.NoError(t, sink.Record(ctx, report))

		err := sink.Delete(ctx, report.ID)
		require.NoError(t, err, "Delete should not return error")

		_, err = sink.Load(ctx, report.ID)
		assert.ErrorIs(t, err, ErrReportNotFound, "Load after Delete should return ErrReportNotFound")

		assert.NoError(t, sink.Delete(ctx, report.ID), "Delete of an unknown report is a no-op")
	})

	t.Run("Recent", func(t *testing.T) {
		older := newReport(-2 * time.Second)
		middle := newReport(-time.Second)
		newer := newReport(0)
		for _, r := range []violation.Report{middle, newer, older} {
			require.NoError(t, sink.Record(ctx, r))
		}
		defer func() {
			for _, r := range []violation.Report{older, middle, newer} {
				_ = sink.Delete(ctx, r.ID)
			}
		}()

		all, err := sink.Recent(ctx, 0)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{newer.ID, middle.ID, older.ID}, ids(all))

		limited, err := sink.Recent(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{newer.ID, middle.ID}, ids(limited))
	})
}

func ids(reports []violation.Report) []string {
	out := make([]string, len(reports))
	for i, r := range reports {
		out[i] = r.ID
	}
	return out
}
