package numbering

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPad(t *testing.T) {
	tests := []struct {
		n      int64
		digits int
		want   string
	}{
		{1, 3, "001"},
		{42, 3, "042"},
		{999, 3, "999"},
		{1000, 3, "1000"},
		{7, 1, "7"},
		{12345, 2, "12345"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Pad(tt.n, tt.digits))
	}
}

func TestRender_ExampleFebruary(t *testing.T) {
	tmpl := Template{
		Segments:  []Segment{Static{Value: "S"}, Year{Digits: 2}, Month{Digits: 2}, GlobalSeq{Digits: 3}},
		Separator: "-",
	}
	now := time.Date(2026, time.February, 14, 10, 0, 0, 0, time.UTC)

	got, err := Render(context.Background(), tmpl, now, func(context.Context, Segment) (int64, error) {
		return 5, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "S-26-02-005", got)
}

func TestRender_EmptyStaticWrittenToStorage(t *testing.T) {
	tmpl := Template{Segments: []Segment{Static{}, GlobalSeq{Digits: 3}}, Separator: "-"}

	got, err := Render(context.Background(), tmpl, time.Now(), func(context.Context, Segment) (int64, error) {
		return 9, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "-009", got)
}

func TestRender_UsesUTC(t *testing.T) {
	tmpl := Template{Segments: []Segment{Year{Digits: 4}, Month{Digits: 1}}, Separator: "/"}
	// 2025-12-31 23:30 in UTC-5 is already January 2026 in UTC.
	loc := time.FixedZone("EST", -5*3600)
	now := time.Date(2025, time.December, 31, 23, 30, 0, 0, loc)

	got, err := Render(context.Background(), tmpl, now, nil)

	require.NoError(t, err)
	assert.Equal(t, "2026/1", got)
}

func TestRender_TripSeqResolvedBeforeGlobalSeq(t *testing.T) {
	tmpl := Template{
		Segments:  []Segment{GlobalSeq{Digits: 3}, Static{Value: "T"}, TripSeq{Digits: 2}},
		Separator: "",
	}
	var order []SegmentType

	got, err := Render(context.Background(), tmpl, time.Now(), func(_ context.Context, s Segment) (int64, error) {
		order = append(order, s.Type())
		if s.Type() == SegmentTripSeq {
			return 3, nil
		}
		return 17, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "017T03", got)
	assert.Equal(t, []SegmentType{SegmentTripSeq, SegmentGlobalSeq}, order)
}

func TestRender_StopsOnFirstSequenceError(t *testing.T) {
	tmpl := Template{Segments: []Segment{TripSeq{Digits: 3}, GlobalSeq{Digits: 3}}, Separator: "-"}
	calls := 0

	_, err := Render(context.Background(), tmpl, time.Now(), func(context.Context, Segment) (int64, error) {
		calls++
		return 0, ErrScopeNotFound
	})

	assert.ErrorIs(t, err, ErrScopeNotFound)
	assert.Equal(t, 1, calls)
}

func TestRender_InvalidTemplateNeverCallsSequence(t *testing.T) {
	tmpl := Template{Segments: []Segment{GlobalSeq{Digits: 3}, Year{Digits: 3}}, Separator: "-"}

	_, err := Render(context.Background(), tmpl, time.Now(), func(context.Context, Segment) (int64, error) {
		return 0, errors.New("must not be called")
	})

	assert.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestPreview(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		tmpl Template
		want string
	}{
		{
			name: "default invoice",
			tmpl: DefaultTemplate(KindInvoice),
			want: "INV-2026-XXX",
		},
		{
			name: "default trip",
			tmpl: DefaultTemplate(KindTrip),
			want: "TRP-2026-XXXX",
		},
		{
			name: "trip and global",
			tmpl: Template{
				Segments:  []Segment{Static{Value: "B"}, Month{Digits: 2}, TripSeq{Digits: 2}, GlobalSeq{Digits: 5}},
				Separator: ".",
			},
			want: "B.03.XX.XXXXX",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Preview(tt.tmpl, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreview_RejectsInvalid(t *testing.T) {
	_, err := Preview(Template{}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}
