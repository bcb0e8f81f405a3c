// Chaimap - Personalized Chai Spot Discovery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chaimap

package validation

import (
	"strings"
	"testing"
)

type testRecord struct {
	Name      *string  `json:"name" validate:"required,notblank"`
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	ChaiTypes []string `json:"chaiTypes" validate:"required"`
	Order     string   `json:"order" validate:"omitempty,oneof=name rating"`
	Value     int      `json:"value" validate:"gte=1,lte=5"`
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func validRecord() testRecord {
	return testRecord{
		Name:      strPtr("Chai Point"),
		Latitude:  floatPtr(37.77),
		Longitude: floatPtr(-122.41),
		ChaiTypes: []string{"masala"},
		Value:     4,
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	rec := validRecord()
	if err := ValidateStruct(&rec); err != nil {
		t.Fatalf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStruct_EmptyChaiTypesAllowed(t *testing.T) {
	rec := validRecord()
	rec.ChaiTypes = []string{}
	if err := ValidateStruct(&rec); err != nil {
		t.Fatalf("empty but present chaiTypes should pass, got %v", err)
	}
}

func TestValidateStruct_Failures(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *testRecord)
		wantField string
		wantTag   string
	}{
		{"missing name", func(r *testRecord) { r.Name = nil }, "name", "required"},
		{"blank name", func(r *testRecord) { r.Name = strPtr("   ") }, "name", "notblank"},
		{"missing latitude", func(r *testRecord) { r.Latitude = nil }, "latitude", "required"},
		{"bad latitude", func(r *testRecord) { r.Latitude = floatPtr(95) }, "latitude", "latitude"},
		{"bad longitude", func(r *testRecord) { r.Longitude = floatPtr(-200) }, "longitude", "longitude"},
		{"missing chaiTypes", func(r *testRecord) { r.ChaiTypes = nil }, "chaiTypes", "required"},
		{"bad order", func(r *testRecord) { r.Order = "distance" }, "order", "oneof"},
		{"value too high", func(r *testRecord) { r.Value = 6 }, "value", "lte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(&rec)

			err := ValidateStruct(&rec)
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if len(err.Errors()) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(err.Errors()), err)
			}
			fe := err.Errors()[0]
			if fe.Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", fe.Field(), tt.wantField)
			}
			if fe.Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", fe.Tag(), tt.wantTag)
			}
		})
	}
}

func TestRequestValidationError_ToAPIError(t *testing.T) {
	rec := validRecord()
	rec.Name = nil
	rec.Value = 0

	err := ValidateStruct(&rec)
	if err == nil {
		t.Fatal("expected error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "name is required") {
		t.Errorf("Message = %q, want it to mention name", apiErr.Message)
	}
	fields, ok := apiErr.Details["fields"].([]string)
	if !ok || len(fields) != 2 {
		t.Errorf("Details[fields] = %v, want 2 fields", apiErr.Details["fields"])
	}
}

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator should return the same instance")
	}
}
