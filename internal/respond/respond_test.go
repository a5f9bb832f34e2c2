// internal/respond/respond_test.go
//
// Envelope and taxonomy mapping tests.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSONEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusCreated, map[string]string{"hello": "world"})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data["hello"] != "world" {
		t.Fatalf("data = %+v", envelope.Data)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{ErrTenantInvalid, http.StatusBadRequest, "TENANT_INVALID"},
		{ErrConfigurationMissing, http.StatusBadRequest, "TENANT_CONFIGURATION_NOT_FOUND"},
		{ErrAuthNotConfigured, http.StatusBadRequest, "AUTHENTICATION_NOT_CONFIGURED"},
		{ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{ErrPermissionDenied, http.StatusForbidden, "PERMISSION_DENIED"},
		{ErrPermissionNotRegistered, http.StatusBadRequest, "PERMISSION_NOT_REGISTERED"},
		{ErrProvisioningFailed, http.StatusInternalServerError, "PROVISIONING_FAILED"},
		{errors.New("database exploded"), http.StatusInternalServerError, "INTERNAL"},
		{fmt.Errorf("wrapped: %w", ErrUnauthorized), http.StatusUnauthorized, "UNAUTHORIZED"},
	}

	for _, c := range cases {
		rr := httptest.NewRecorder()
		Error(rr, c.err)

		if rr.Code != c.wantStatus {
			t.Errorf("%v: status = %d, want %d", c.err, rr.Code, c.wantStatus)
		}
		var envelope struct {
			Errors struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"errors"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if envelope.Errors.Code != c.wantCode {
			t.Errorf("%v: code = %s, want %s", c.err, envelope.Errors.Code, c.wantCode)
		}
	}
}

func TestInternalDetailNeverLeaks(t *testing.T) {
	rr := httptest.NewRecorder()
	Error(rr, errors.New("password for root is hunter2"))

	if strings.Contains(rr.Body.String(), "hunter2") {
		t.Fatal("internal error detail leaked to the client")
	}
}

func TestWithMessagePreservesIdentity(t *testing.T) {
	err := ErrBadRequest.WithMessage("field %q is required", "email")
	if err.Code != ErrBadRequest.Code || err.Status != ErrBadRequest.Status {
		t.Fatalf("derived error = %+v", err)
	}
	if err.Message != `field "email" is required` {
		t.Fatalf("message = %q", err.Message)
	}
	// The canonical error must stay untouched.
	if ErrBadRequest.Message != "bad request" {
		t.Fatalf("canonical mutated: %q", ErrBadRequest.Message)
	}

	if got := AsAPIError(err); got != err {
		t.Fatal("derived errors should unwrap to themselves")
	}
}

func TestDecodeValid(t *testing.T) {
	type payload struct {
		Email string `json:"email" validate:"required,email"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.test"}`))
	var p payload
	if err := DecodeValid(req, &p); err != nil {
		t.Fatalf("valid payload: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"not-an-email"}`))
	if err := DecodeValid(req, &payload{}); err == nil {
		t.Fatal("invalid payload should fail validation")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{malformed`))
	if err := DecodeValid(req, &payload{}); err == nil {
		t.Fatal("malformed JSON should fail")
	}
}
