package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityErrors(t *testing.T) {
	notFound := fmt.Errorf("failed to get deal: %w", NotFound("Deal"))
	assert.ErrorIs(t, notFound, ErrNotFound)
	assert.NotErrorIs(t, notFound, ErrInvalidReference)
	assert.Contains(t, notFound.Error(), "Deal not found")

	missing := MissingReference("Company")
	assert.ErrorIs(t, missing, ErrInvalidReference)
	assert.Equal(t, "Company not found", missing.Error())

	entity, ok := EntityOf(notFound)
	assert.True(t, ok)
	assert.Equal(t, "Deal", entity)

	_, ok = EntityOf(errors.New("boom"))
	assert.False(t, ok)
}
