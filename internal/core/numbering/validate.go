package numbering

import "fmt"

// Validate checks the structural rules every renderable template must satisfy.
// It is run before any counter is incremented.
func (t Template) Validate() error {
	if len(t.Segments) == 0 {
		return fmt.Errorf("%w: at least one segment is required", ErrInvalidTemplate)
	}

	var trips, globals int
	for i, s := range t.Segments {
		switch v := s.(type) {
		case Static:
		case Year:
			if v.Digits != 2 && v.Digits != 4 {
				return fmt.Errorf("%w: segment %d: year digits must be 2 or 4, got %d", ErrInvalidTemplate, i, v.Digits)
			}
		case Month:
			if v.Digits != 1 && v.Digits != 2 {
				return fmt.Errorf("%w: segment %d: month digits must be 1 or 2, got %d", ErrInvalidTemplate, i, v.Digits)
			}
		case TripSeq:
			if err := checkSeqDigits(i, v.Digits); err != nil {
				return err
			}
			trips++
		case GlobalSeq:
			if err := checkSeqDigits(i, v.Digits); err != nil {
				return err
			}
			globals++
		case nil:
			return fmt.Errorf("%w: segment %d is nil", ErrInvalidTemplate, i)
		default:
			return fmt.Errorf("%w: segment %d: %w: %T", ErrInvalidTemplate, i, ErrUnknownSegment, s)
		}
	}

	if trips > 1 {
		return fmt.Errorf("%w: at most one trip_seq segment is allowed", ErrInvalidTemplate)
	}
	if globals > 1 {
		return fmt.Errorf("%w: at most one global_seq segment is allowed", ErrInvalidTemplate)
	}
	return nil
}

// ValidateForSave applies Validate plus the rules enforced when a tenant
// stores a template: no empty static text, at least one sequence segment,
// and TripSeq only for kinds whose documents belong to a trip.
func (t Template) ValidateForSave(kind Kind) error {
	if err := t.Validate(); err != nil {
		return err
	}

	hasSeq := false
	for i, s := range t.Segments {
		switch v := s.(type) {
		case Static:
			if v.Value == "" {
				return fmt.Errorf("%w: segment %d: static value is empty", ErrInvalidTemplate, i)
			}
		case TripSeq, GlobalSeq:
			hasSeq = true
		}
	}
	if !hasSeq {
		return fmt.Errorf("%w: a sequence segment (trip_seq or global_seq) is required, otherwise numbers repeat", ErrInvalidTemplate)
	}
	if t.HasTripSeq() && !kind.AllowsTripSeq() {
		return fmt.Errorf("%w: trip_seq is not supported for %s numbers", ErrInvalidTemplate, kind)
	}
	return nil
}

func checkSeqDigits(i, digits int) error {
	if digits < 1 || digits > MaxSeqDigits {
		return fmt.Errorf("%w: segment %d: sequence digits must be between 1 and %d, got %d", ErrInvalidTemplate, i, MaxSeqDigits, digits)
	}
	return nil
}
