// Package numbering provides the domain model of configurable document numbers:
// templates made of segments, their validation and rendering.
// Storage of counters and templates lives in the infrastructure layer.
package numbering

import (
	"encoding/json"
	"fmt"
)

// SegmentType is the wire name of a segment variant.
type SegmentType string

const (
	SegmentStatic    SegmentType = "static"
	SegmentYear      SegmentType = "year"
	SegmentMonth     SegmentType = "month"
	SegmentTripSeq   SegmentType = "trip_seq"
	SegmentGlobalSeq SegmentType = "global_seq"
)

// MaxSeqDigits bounds the pad width of sequence segments.
// An int64 never needs more than 19 digits.
const MaxSeqDigits = 19

// Segment is one piece of a numbering template.
// The set of implementations is closed: Static, Year, Month, TripSeq, GlobalSeq.
type Segment interface {
	Type() SegmentType
	isSegment()
}

// Static is literal text.
type Static struct {
	Value string
}

// Year renders the current UTC year with 2 or 4 digits.
type Year struct {
	Digits int
}

// Month renders the current UTC month, zero-padded when Digits is 2.
type Month struct {
	Digits int
}

// TripSeq is a counter stored on the trip the number is generated for.
type TripSeq struct {
	Digits int
}

// GlobalSeq is a tenant-wide counter kept in the counter store.
type GlobalSeq struct {
	Digits int
}

func (Static) Type() SegmentType    { return SegmentStatic }
func (Year) Type() SegmentType      { return SegmentYear }
func (Month) Type() SegmentType     { return SegmentMonth }
func (TripSeq) Type() SegmentType   { return SegmentTripSeq }
func (GlobalSeq) Type() SegmentType { return SegmentGlobalSeq }

func (Static) isSegment()    {}
func (Year) isSegment()      {}
func (Month) isSegment()     {}
func (TripSeq) isSegment()   {}
func (GlobalSeq) isSegment() {}

// segmentJSON is the storage and API representation of a segment.
type segmentJSON struct {
	Type   SegmentType `json:"type"`
	Value  string      `json:"value,omitempty"`
	Digits int         `json:"digits,omitempty"`
}

func encodeSegment(s Segment) (segmentJSON, error) {
	switch v := s.(type) {
	case Static:
		return segmentJSON{Type: SegmentStatic, Value: v.Value}, nil
	case Year:
		return segmentJSON{Type: SegmentYear, Digits: v.Digits}, nil
	case Month:
		return segmentJSON{Type: SegmentMonth, Digits: v.Digits}, nil
	case TripSeq:
		return segmentJSON{Type: SegmentTripSeq, Digits: v.Digits}, nil
	case GlobalSeq:
		return segmentJSON{Type: SegmentGlobalSeq, Digits: v.Digits}, nil
	default:
		return segmentJSON{}, fmt.Errorf("%w: %T", ErrUnknownSegment, s)
	}
}

func decodeSegment(raw segmentJSON) (Segment, error) {
	switch raw.Type {
	case SegmentStatic:
		return Static{Value: raw.Value}, nil
	case SegmentYear:
		return Year{Digits: raw.Digits}, nil
	case SegmentMonth:
		return Month{Digits: raw.Digits}, nil
	case SegmentTripSeq:
		return TripSeq{Digits: raw.Digits}, nil
	case SegmentGlobalSeq:
		return GlobalSeq{Digits: raw.Digits}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownSegment, raw.Type)
	}
}

// Template is an ordered list of segments joined by Separator.
type Template struct {
	Segments  []Segment
	Separator string
}

type templateJSON struct {
	Segments  []segmentJSON `json:"segments"`
	Separator string        `json:"separator"`
}

// MarshalJSON implements json.Marshaler.
func (t Template) MarshalJSON() ([]byte, error) {
	out := templateJSON{
		Segments:  make([]segmentJSON, 0, len(t.Segments)),
		Separator: t.Separator,
	}
	for _, s := range t.Segments {
		raw, err := encodeSegment(s)
		if err != nil {
			return nil, err
		}
		out.Segments = append(out.Segments, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
// An unrecognized segment type is an error, never skipped.
func (t *Template) UnmarshalJSON(data []byte) error {
	var in templateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	segments := make([]Segment, 0, len(in.Segments))
	for i, raw := range in.Segments {
		s, err := decodeSegment(raw)
		if err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		segments = append(segments, s)
	}
	t.Segments = segments
	t.Separator = in.Separator
	return nil
}

// HasTripSeq reports whether generating t needs a trip scope.
func (t Template) HasTripSeq() bool {
	for _, s := range t.Segments {
		if _, ok := s.(TripSeq); ok {
			return true
		}
	}
	return false
}
