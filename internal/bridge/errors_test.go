package bridge

import (
	"encoding/json"
	"testing"
)

func TestNormalizeUnknownCode(t *testing.T) {
	e := Normalize(Error{Code: "SOMETHING_NEW"}, CodeBridgeError)
	if e.Code != CodeBridgeError {
		t.Errorf("code = %s, want BRIDGE_ERROR", e.Code)
	}
	if e.Message != DefaultMessage(CodeBridgeError) {
		t.Errorf("message = %q, want catalog default", e.Message)
	}
}

func TestNormalizeKeepsMessageAndDetails(t *testing.T) {
	details := json.RawMessage(`{"missingItems":["Donut"]}`)
	e := Normalize(Error{Code: CodeInsufficientStock, Message: "nope", Details: details}, CodeBridgeError)
	if e.Code != CodeInsufficientStock || e.Message != "nope" {
		t.Errorf("unexpected %+v", e)
	}
	if string(e.Details) != string(details) {
		t.Errorf("details lost in normalization: %s", e.Details)
	}
}

func TestBannerFormat(t *testing.T) {
	e := Normalize(Error{Code: CodeRegisterBusy}, CodeBridgeError)
	want := "[REGISTER_BUSY] Register is currently busy."
	if got := e.Banner(); got != want {
		t.Errorf("banner = %q, want %q", got, want)
	}
}

func TestRetryableClassification(t *testing.T) {
	retryable := []ErrorCode{CodeRegisterBusy, CodeRateLimited, CodeHTTPError, CodeTimeout, CodeFetchError}
	for _, code := range retryable {
		if !Retryable(code) {
			t.Errorf("expected %s retryable", code)
		}
	}
	terminal := []ErrorCode{CodeInvalidRole, CodeStaleSession, CodeInsufficientStock, CodeInternalError}
	for _, code := range terminal {
		if Retryable(code) {
			t.Errorf("expected %s not retryable", code)
		}
	}
	// unknown codes classify through the fallback
	if Retryable("NOT_A_CODE") {
		t.Error("unknown codes must not be retryable")
	}
}

func TestResponseDecodeData(t *testing.T) {
	var out struct {
		X int `json:"x"`
	}
	if (Response{}).DecodeData(&out) {
		t.Error("empty data must decode to false")
	}
	resp := Response{OK: true, Data: json.RawMessage(`{"x":7}`)}
	if !resp.DecodeData(&out) || out.X != 7 {
		t.Errorf("decode failed, got %+v", out)
	}
}
