package settings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memToggler struct {
	value bool
	err   error
}

func (m *memToggler) AutoApprove(ctx context.Context) bool { return m.value }

func (m *memToggler) SetAutoApprove(ctx context.Context, value bool) error {
	if m.err != nil {
		return m.err
	}
	m.value = value
	return nil
}

func TestHandlerGetAutoApprove(t *testing.T) {
	h := NewHandler(&memToggler{value: true}, nil)

	rec := httptest.NewRecorder()
	h.GetAutoApprove(rec, httptest.NewRequest(http.MethodGet, "/admin/settings/auto-approve", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"enabled":true}`, rec.Body.String())
}

func TestHandlerSetAutoApprove(t *testing.T) {
	store := &memToggler{}
	h := NewHandler(store, nil)

	req := httptest.NewRequest(http.MethodPut, "/admin/settings/auto-approve", strings.NewReader(`{"enabled":true}`))
	rec := httptest.NewRecorder()
	h.SetAutoApprove(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, store.value)
}

func TestHandlerSetAutoApproveBadBody(t *testing.T) {
	h := NewHandler(&memToggler{}, nil)

	req := httptest.NewRequest(http.MethodPut, "/admin/settings/auto-approve", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	h.SetAutoApprove(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerSetAutoApproveStoreError(t *testing.T) {
	h := NewHandler(&memToggler{err: assert.AnError}, nil)

	req := httptest.NewRequest(http.MethodPut, "/admin/settings/auto-approve", strings.NewReader(`{"enabled":false}`))
	rec := httptest.NewRecorder()
	h.SetAutoApprove(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
