package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entryRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required"`
	EntryType  string  `json:"entry_type" validate:"required,oneof=login logout"`
	Rating     float64 `json:"rating" validate:"gte=0,lte=5"`
	Reason     string  `json:"reason,omitempty" validate:"max=5"`
	Internal   string  `json:"-" validate:"omitempty,min=2"`
	Note       string  `json:"note,omitempty" validate:"omitempty,notblank"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		input      entryRequest
		wantFields map[string]string
	}{
		{
			name:  "valid",
			input: entryRequest{EmployeeID: "EMP001", EntryType: "login", Rating: 4},
		},
		{
			name:  "missing fields use json names",
			input: entryRequest{},
			wantFields: map[string]string{
				"employee_id": "employee_id is required",
				"entry_type":  "entry_type is required",
			},
		},
		{
			name:  "range and oneof",
			input: entryRequest{EmployeeID: "EMP001", EntryType: "lunch", Rating: 6, Reason: "holiday"},
			wantFields: map[string]string{
				"entry_type": "entry_type must be one of: login logout",
				"rating":     "rating must be less than or equal to 5",
				"reason":     "reason must be at most 5",
			},
		},
		{
			name:  "blank note",
			input: entryRequest{EmployeeID: "EMP001", EntryType: "login", Note: "  "},
			wantFields: map[string]string{
				"note": "note must not be blank",
			},
		},
		{
			name:  "untagged name falls back to field name",
			input: entryRequest{EmployeeID: "EMP001", EntryType: "login", Internal: "x"},
			wantFields: map[string]string{
				"Internal": "Internal must be at least 2",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, "Validation failed", err.Error())
			assert.Equal(t, tt.wantFields, GetValidationFields(err))
		})
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	err := ValidateStruct("not a struct")
	require.Error(t, err)
	assert.False(t, IsValidationError(err))
	assert.Nil(t, GetValidationFields(errors.New("plain")))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "2024-06-10", want: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)},
		{input: " 2024-06-10T08:30:00Z ", want: time.Date(2024, 6, 10, 8, 30, 0, 0, time.UTC)},
		{input: "2024-06-10T08:30:00", want: time.Date(2024, 6, 10, 8, 30, 0, 0, time.UTC)},
		{input: "10/06/2024", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}
