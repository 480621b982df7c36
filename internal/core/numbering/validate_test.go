package numbering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    Template
		wantErr bool
	}{
		{"default invoice", DefaultTemplate(KindInvoice), false},
		{"static only", Template{Segments: []Segment{Static{Value: "A"}}}, false},
		{"empty", Template{}, true},
		{"empty static renders", Template{Segments: []Segment{Static{}, GlobalSeq{Digits: 3}}}, false},
		{"year 3 digits", Template{Segments: []Segment{Year{Digits: 3}}}, true},
		{"month 0 digits", Template{Segments: []Segment{Month{}}}, true},
		{"seq 0 digits", Template{Segments: []Segment{GlobalSeq{}}}, true},
		{"seq too wide", Template{Segments: []Segment{GlobalSeq{Digits: MaxSeqDigits + 1}}}, true},
		{"two global", Template{Segments: []Segment{GlobalSeq{Digits: 3}, GlobalSeq{Digits: 3}}}, true},
		{"two trip", Template{Segments: []Segment{TripSeq{Digits: 3}, TripSeq{Digits: 3}}}, true},
		{"trip and global", Template{Segments: []Segment{TripSeq{Digits: 3}, GlobalSeq{Digits: 3}}}, false},
		{"nil segment", Template{Segments: []Segment{nil}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tmpl.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTemplate)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTemplate_ValidateForSave(t *testing.T) {
	noSeq := Template{Segments: []Segment{Static{Value: "INV"}, Year{Digits: 4}}, Separator: "-"}
	assert.ErrorIs(t, noSeq.ValidateForSave(KindInvoice), ErrInvalidTemplate)

	tripOnly := Template{Segments: []Segment{Static{Value: "INV"}, TripSeq{Digits: 3}}, Separator: "-"}
	assert.NoError(t, tripOnly.ValidateForSave(KindInvoice))
	assert.ErrorIs(t, tripOnly.ValidateForSave(KindTrip), ErrInvalidTemplate)

	assert.NoError(t, DefaultTemplate(KindTrip).ValidateForSave(KindTrip))

	emptyStatic := Template{Segments: []Segment{Static{}, GlobalSeq{Digits: 3}}, Separator: "-"}
	assert.ErrorIs(t, emptyStatic.ValidateForSave(KindInvoice), ErrInvalidTemplate)
}
