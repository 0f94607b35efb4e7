package binding

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surazdott/api-response/exception"
	"github.com/surazdott/api-response/json"
)

type address struct {
	City string `json:"city" validate:"required"`
}

type signup struct {
	Name    string   `json:"name" validate:"required,min=3"`
	Email   string   `json:"email" validate:"required,email"`
	Role    string   `json:"role,omitempty" validate:"omitempty,oneof=admin member"`
	Address *address `json:"address" validate:"required"`
	Note    string   `json:"-"`
}

func newRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestJSONValid(t *testing.T) {
	var in signup
	err := JSON(newRequest(`{"name":"Alice","email":"alice@example.com","address":{"city":"Kathmandu"}}`), &in)

	require.NoError(t, err)
	assert.Equal(t, "Alice", in.Name)
	assert.Equal(t, "Kathmandu", in.Address.City)
}

func TestJSONValidationErrors(t *testing.T) {
	var in signup
	err := JSON(newRequest(`{"name":"Al","email":"nope","role":"root","address":{}}`), &in)

	var verr *exception.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, http.StatusUnprocessableEntity, verr.StatusCode())

	details, ok := verr.Errors.(ValidationErrors)
	require.True(t, ok)
	assert.Equal(t, ValidationErrors{
		"name":         {"The name field must be at least 3 characters long."},
		"email":        {"The email field must be a valid email address."},
		"role":         {"The role field must be one of: admin member."},
		"address.city": {"The city field is required."},
	}, details)
}

func TestJSONValidationErrorEncodesByField(t *testing.T) {
	var in signup
	err := JSON(newRequest(`{"email":"a@b.co","address":{"city":"x"}}`), &in)

	var verr *exception.ValidationError
	require.ErrorAs(t, err, &verr)
	raw, merr := json.Marshal(verr.Errors)
	require.NoError(t, merr)
	assert.JSONEq(t, `{"name":["The name field is required."]}`, string(raw))
}

func TestJSONMalformedBody(t *testing.T) {
	var in signup
	err := JSON(newRequest(`{"name":}`), &in)

	var aerr *exception.APIError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, http.StatusBadRequest, aerr.StatusCode())
	assert.Equal(t, MalformedBodyMessage, aerr.Message)
	assert.NotNil(t, errors.Unwrap(aerr))
}

func TestJSONEmptyBody(t *testing.T) {
	var in signup
	for _, req := range []*http.Request{
		newRequest(""),
		httptest.NewRequest(http.MethodPost, "/", nil),
		nil,
	} {
		err := JSON(req, &in)

		var aerr *exception.APIError
		require.ErrorAs(t, err, &aerr)
		assert.Equal(t, http.StatusBadRequest, aerr.StatusCode())
		assert.Equal(t, EmptyBodyMessage, aerr.Message)
	}
}

func TestJSONDisallowUnknownFields(t *testing.T) {
	var in address
	body := `{"city":"Pokhara","zip":"33700"}`

	require.NoError(t, JSON(newRequest(body), &in))

	err := JSON(newRequest(body), &in, WithDisallowUnknownFields())
	var aerr *exception.APIError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, http.StatusBadRequest, aerr.StatusCode())
}

func TestJSONUseNumber(t *testing.T) {
	var in map[string]any
	require.NoError(t, JSON(newRequest(`{"id":9007199254740993}`), &in, WithUseNumber()))

	n, ok := in["id"].(json.Number)
	require.True(t, ok, "got %T", in["id"])
	assert.Equal(t, "9007199254740993", n.String())
}

func TestValidateSkipsNonStructs(t *testing.T) {
	assert.NoError(t, Validate(map[string]any{"a": 1}))
	assert.NoError(t, Validate([]int{1}))
}

func TestExpectsJSON(t *testing.T) {
	tests := []struct {
		name        string
		accept      string
		contentType string
		want        bool
	}{
		{"accept json", "application/json", "", true},
		{"accept problem json", "application/problem+json", "", true},
		{"content type json", "", "application/json; charset=utf-8", true},
		{"vendor json", "", "application/vnd.api+json", true},
		{"html", "text/html", "text/plain", false},
		{"nothing", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			assert.Equal(t, tt.want, ExpectsJSON(req))
		})
	}
	assert.False(t, ExpectsJSON(nil))
}
