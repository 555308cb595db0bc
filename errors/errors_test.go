package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewInvalidParamsError("bad input"), http.StatusBadRequest},
		{NewPaymentRejectedError("signature mismatch"), http.StatusBadRequest},
		{NewNotFoundError("missing"), http.StatusNotFound},
		{NewUnauthorizedError("no token"), http.StatusUnauthorized},
		{NewForbiddenError("not yours"), http.StatusForbidden},
		{NewConflictError("duplicate"), http.StatusConflict},
		{NewInternalServerError("boom"), http.StatusInternalServerError},
		{NewGatewayError("upstream down"), http.StatusInternalServerError},
		{NewError("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err))
	}
}

func TestKindOfAndMessageOf(t *testing.T) {
	err := E(NotFound, "Order not found")
	assert.Equal(t, NotFound, KindOf(err))
	assert.Equal(t, "Order not found", MessageOf(err))

	wrapped := E(Internal, "error loading order", NewError("db closed"))
	assert.Equal(t, Internal, KindOf(wrapped))
	assert.Equal(t, "error loading order", MessageOf(wrapped))

	plain := NewError("some failure")
	assert.Equal(t, Other, KindOf(plain))
	assert.Equal(t, "some failure", MessageOf(plain))
}
