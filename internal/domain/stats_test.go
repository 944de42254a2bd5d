package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOilChangeStatus(t *testing.T) {
	tests := []struct {
		name    string
		current int
		last    int
		want    OilStatus
	}{
		{"только что заменили", 10000, 10000, OilStatusNormal},
		{"чуть меньше порога", 13999, 10000, OilStatusNormal},
		{"порог скорой замены", 14000, 10000, OilStatusDueSoon},
		{"чуть меньше обязательной", 14999, 10000, OilStatusDueSoon},
		{"порог обязательной замены", 15000, 10000, OilStatusNeedsChange},
		{"сильно просрочено", 30000, 10000, OilStatusNeedsChange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OilChangeStatus(tt.current, tt.last))
		})
	}
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0, CompletionRate(0, 0))
	assert.Equal(t, 0, CompletionRate(5, 0))
	assert.Equal(t, 100, CompletionRate(3, 3))
	assert.Equal(t, 67, CompletionRate(2, 3))
	assert.Equal(t, 33, CompletionRate(1, 3))
	assert.Equal(t, 50, CompletionRate(1, 2))
}

func TestDeviationPercent(t *testing.T) {
	assert.Equal(t, 0, DeviationPercent(10, 0))
	assert.Equal(t, 25, DeviationPercent(10, 40))
	assert.Equal(t, -25, DeviationPercent(-10, 40))
}

func TestParseGroupDimension(t *testing.T) {
	dim, err := ParseGroupDimension("")
	assert.NoError(t, err)
	assert.Equal(t, GroupByMonth, dim)

	_, err = ParseGroupDimension("weekday")
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestStartOdometerFor(t *testing.T) {
	last := 15230
	v := &Vehicle{CurrentOdometer: 15000}

	assert.Equal(t, 15230, StartOdometerFor(&last, v))
	assert.Equal(t, 15000, StartOdometerFor(nil, v))
	assert.Equal(t, 0, StartOdometerFor(nil, nil))
}
