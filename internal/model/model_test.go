package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"Flight", &Flight{}, "flights"},
		{"Sample", &Sample{}, "samples"},
		{"ImpactPrediction", &ImpactPrediction{}, "impact_predictions"},
		{"FlightPath", &FlightPath{}, "flight_paths"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func TestDatabaseModels(t *testing.T) {
	assert.Len(t, DatabaseModels, 4)
}
