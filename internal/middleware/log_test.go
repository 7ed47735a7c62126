package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogMiddleware(t *testing.T) {
	var buf bytes.Buffer

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(&buf),
		zapcore.DebugLevel,
	)
	logger := zap.New(core).Sugar()

	body := `{"order_id":1,"amount":40}`
	req := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()

	var seen string
	handler := LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		seen = string(data)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("response"))
	}))

	handler.ServeHTTP(rr, req)

	if seen != body {
		t.Errorf("handler got body %q", seen)
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "method=POST") {
		t.Error("log has no method")
	}
	if !strings.Contains(logOutput, "status=201") {
		t.Error("log has no status")
	}
	if !strings.Contains(logOutput, "size=8") {
		t.Error("log has no response size")
	}
	if !strings.Contains(logOutput, "body="+body) {
		t.Error("log has no request body")
	}
	if !strings.Contains(logOutput, "outputheaders=") {
		t.Error("log has no response headers")
	}
}

func TestLogMiddlewareRedactsPassword(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.DebugLevel,
	)
	logger := zap.New(core).Sugar()

	body := `{"login":"staff", "password" : "s3cr\"et"}`
	req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(body))
	rr := httptest.NewRecorder()

	var seen string
	handler := LogMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		seen = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(rr, req)

	if seen != body {
		t.Errorf("handler got body %q", seen)
	}

	logOutput := buf.String()
	if strings.Contains(logOutput, "s3cr") {
		t.Errorf("password leaked into log: %s", logOutput)
	}
	if !strings.Contains(logOutput, `"password" : "***"`) {
		t.Errorf("password field not masked: %s", logOutput)
	}
	if !strings.Contains(logOutput, `"login":"staff"`) {
		t.Errorf("login missing from log: %s", logOutput)
	}
}
