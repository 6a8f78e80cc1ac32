package repository

import (
	"errors"
	"net/http"
	"testing"

	"github.com/deppfellow/edufinance/internal/errs"
	"github.com/deppfellow/edufinance/internal/sqlerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional(t *testing.T) {
	assert.Nil(t, optional(""))
	assert.Equal(t, "active", optional("active"))
	assert.Nil(t, optional(0))
	assert.Equal(t, 3, optional(3))
}

func TestNotFoundNamesTable(t *testing.T) {
	err := sqlerr.HandleError(notFound("event_participations"))

	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Event Participation not found", httpErr.Message)
	assert.True(t, isNoRows(notFound("students")))
}
