package numbering

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SequenceFunc returns the next value for a TripSeq or GlobalSeq segment.
type SequenceFunc func(ctx context.Context, seg Segment) (int64, error)

// Pad zero-pads n to digits width. Values wider than digits are never truncated.
func Pad(n int64, digits int) string {
	return fmt.Sprintf("%0*d", digits, n)
}

// Render validates t and produces a document number for the instant now.
//
// Static, Year and Month segments are rendered first. Sequence segments are
// resolved afterwards through next, TripSeq before GlobalSeq, so a missing
// trip fails the call before the tenant counter moves.
func Render(ctx context.Context, t Template, now time.Time, next SequenceFunc) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	now = now.UTC()

	parts := make([]string, len(t.Segments))
	var pending []int
	for i, s := range t.Segments {
		switch v := s.(type) {
		case Static, Year, Month:
			parts[i] = renderClock(v, now)
		case TripSeq, GlobalSeq:
			pending = append(pending, i)
		default:
			return "", fmt.Errorf("%w: %T", ErrUnknownSegment, s)
		}
	}

	sort.SliceStable(pending, func(a, b int) bool {
		return seqOrder(t.Segments[pending[a]]) < seqOrder(t.Segments[pending[b]])
	})

	for _, i := range pending {
		val, err := next(ctx, t.Segments[i])
		if err != nil {
			return "", err
		}
		parts[i] = Pad(val, seqDigits(t.Segments[i]))
	}

	return strings.Join(parts, t.Separator), nil
}

// Preview renders t without touching any counter: sequence segments become
// "X" repeated to their width.
func Preview(t Template, now time.Time) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	now = now.UTC()

	parts := make([]string, len(t.Segments))
	for i, s := range t.Segments {
		switch v := s.(type) {
		case Static, Year, Month:
			parts[i] = renderClock(v, now)
		case TripSeq, GlobalSeq:
			parts[i] = strings.Repeat("X", seqDigits(v))
		default:
			return "", fmt.Errorf("%w: %T", ErrUnknownSegment, s)
		}
	}
	return strings.Join(parts, t.Separator), nil
}

func renderClock(s Segment, now time.Time) string {
	switch v := s.(type) {
	case Static:
		return v.Value
	case Year:
		y := strconv.Itoa(now.Year())
		if v.Digits == 2 && len(y) > 2 {
			y = y[len(y)-2:]
		}
		return y
	case Month:
		return Pad(int64(now.Month()), v.Digits)
	}
	return ""
}

func seqDigits(s Segment) int {
	switch v := s.(type) {
	case TripSeq:
		return v.Digits
	case GlobalSeq:
		return v.Digits
	}
	return 0
}

func seqOrder(s Segment) int {
	if _, ok := s.(TripSeq); ok {
		return 0
	}
	return 1
}
