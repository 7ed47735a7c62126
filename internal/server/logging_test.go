package server

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/and161185/paytrack/internal/model"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGzipPaymentIsLoggedDecompressedWithActingUser(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	f := setupWithLogger(t, zap.New(core).Sugar())
	newPaymentLedger(f, "100")

	f.store.EXPECT().GetUserByID(gomock.Any(), 1).Return(model.User{ID: 1, Login: "staff"}, nil)

	body := `{"order_id":1,"amount":40}`
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/payments", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("Authorization", "Bearer "+f.token)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var requestLogged bool
	for _, entry := range logs.All() {
		if strings.HasPrefix(entry.Message, "method=POST") {
			require.Contains(t, entry.Message, "body="+body)
			requestLogged = true
		}
	}
	require.True(t, requestLogged, "request line missing")

	recorded := logs.FilterMessage("payment recorded").All()
	require.Len(t, recorded, 1)
	fields := recorded[0].ContextMap()
	require.Equal(t, "staff", fields["user"])
	require.Equal(t, "40", fields["amount"])
}
