package errs

import (
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodes(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, Validation("amount", "must be positive").StatusCode())
	assert.Equal(t, http.StatusConflict, DuplicatePeriod("e1", "2026-01").StatusCode())
	assert.Equal(t, http.StatusConflict, DuplicateInvoice("c1", "INV-1").StatusCode())
	assert.Equal(t, http.StatusConflict, InvalidTransition("s1", "issued", "draft").StatusCode())
	assert.Equal(t, http.StatusConflict, OverAllocation("p1", "too much").StatusCode())
	assert.Equal(t, http.StatusNotFound, NotFound("client", "c1").StatusCode())
	assert.Equal(t, http.StatusInternalServerError, Database("load client", errors.New("boom")).StatusCode())
}

func TestSentinelMatching(t *testing.T) {
	err := DuplicatePeriod("e1", "2026-01")
	assert.True(t, errors.Is(err, ErrDuplicatePeriod))
	assert.False(t, errors.Is(err, ErrDuplicateInvoice))

	wrapped := errors.Wrap(err, "generating statement")
	de, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeDuplicatePeriod, de.Code)
	assert.Equal(t, "e1", de.Entity)
}

func TestDatabaseWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Database("load client", cause)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "load client failed")
}
