package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProductStatus(t *testing.T) {
	for _, s := range []string{"ACTIVE", "INACTIVE", "DAMAGED"} {
		status, err := ParseProductStatus(s)
		assert.NoError(t, err)
		assert.Equal(t, ProductStatus(s), status)
	}

	// The set is closed; anything else, including lowercase spellings
	// and statuses from other domains, is rejected.
	for _, s := range []string{"", "active", "AVAILABLE", "RETIRED"} {
		_, err := ParseProductStatus(s)
		assert.Error(t, err, s)
	}
}

func TestProductRentable(t *testing.T) {
	assert.True(t, ProductStatusActive.Rentable())
	assert.False(t, ProductStatusInactive.Rentable())
	assert.False(t, ProductStatusDamaged.Rentable())
}
