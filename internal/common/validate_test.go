package common_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-material/internal/common"
)

type lineInput struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=1"`
}

type orderInput struct {
	Name  string      `json:"name" validate:"required,max=5"`
	Lines []lineInput `json:"lines" validate:"required,dive"`
}

func decode(body string) (orderInput, error) {
	var in orderInput
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	err := common.DecodeJSON(req, &in)
	return in, err
}

func appError(t *testing.T, err error) *common.AppError {
	t.Helper()
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr), "want AppError, got %v", err)
	return appErr
}

func TestDecodeJSONAccepts(t *testing.T) {
	in, err := decode(`{"name":"Budi","lines":[{"productId":7,"quantity":2}]}`)
	require.NoError(t, err)
	require.Equal(t, "Budi", in.Name)
	require.Equal(t, []lineInput{{ProductID: 7, Quantity: 2}}, in.Lines)
}

func TestDecodeJSONRejectsMalformedBodies(t *testing.T) {
	for name, body := range map[string]string{
		"unknown field": `{"name":"Budi","lines":[{"productId":7,"quantity":1}],"tenant":"x"}`,
		"trailing data": `{"name":"Budi","lines":[{"productId":7,"quantity":1}]} {}`,
		"not json":      `name=Budi`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := decode(body)
			appErr := appError(t, err)
			require.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
			require.Equal(t, "BAD_REQUEST", appErr.Code)
		})
	}
}

func TestDecodeJSONReportsFieldPaths(t *testing.T) {
	_, err := decode(`{"name":"Bangunan","lines":[{"productId":7,"quantity":1},{"productId":0,"quantity":0}]}`)
	appErr := appError(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	require.Equal(t, "VALIDATION_FAILED", appErr.Code)

	fields, ok := appErr.Details.([]common.FieldError)
	require.True(t, ok)
	require.Equal(t, []common.FieldError{
		{Field: "name", Rule: "max", Param: "5"},
		{Field: "lines[1].productId", Rule: "required"},
		{Field: "lines[1].quantity", Rule: "gte", Param: "1"},
	}, fields)
}

func TestValidateRendersDetails(t *testing.T) {
	err := common.Validate(orderInput{Name: "Budi"})
	rr := httptest.NewRecorder()
	common.WriteError(rr, err)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.JSONEq(t, `{"error":{"code":"VALIDATION_FAILED","message":"invalid payload",
		"details":[{"field":"lines","rule":"required"}]}}`, rr.Body.String())
}
