package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStruct(t *testing.T) {
	type capacityUpdate struct {
		TotalTables int `validate:"required,gte=1,lte=64"`
	}

	errs := ValidateStruct(capacityUpdate{TotalTables: 8})
	assert.Empty(t, errs)

	errs = ValidateStruct(capacityUpdate{TotalTables: 100})
	require.Len(t, errs, 1)
	assert.Equal(t, "TotalTables", errs[0].Field)
	assert.Equal(t, "lte", errs[0].Tag)
	assert.Contains(t, errs[0].Message, "less than or equal to 64")
}
