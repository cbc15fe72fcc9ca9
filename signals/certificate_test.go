package signals

import (
	"context"
	"crypto/x509"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truthlens/config"
)

type fakeProber struct {
	info CertInfo
	err  error
	port string
}

func (f *fakeProber) Probe(_ context.Context, _, port string) (CertInfo, error) {
	f.port = port
	return f.info, f.err
}

func TestCertificate_Rules(t *testing.T) {
	cfg := config.DefaultScoring().Certificate

	cases := []struct {
		name string
		info CertInfo
		err  error
		want int
	}{
		{"valid", CertInfo{Issuer: "R3", NotAfter: testNow.AddDate(0, 3, 0)}, nil, 0},
		{"expiring soon", CertInfo{NotAfter: testNow.AddDate(0, 0, 5)}, nil, 10},
		{"expired", CertInfo{NotAfter: testNow.AddDate(0, 0, -1), VerifyErr: x509.CertificateInvalidError{Reason: x509.Expired}}, nil, 25},
		{"self-signed", CertInfo{NotAfter: testNow.AddDate(1, 0, 0), VerifyErr: x509.UnknownAuthorityError{}}, nil, 20},
		{"self-signed and expiring", CertInfo{NotAfter: testNow.AddDate(0, 0, 2), VerifyErr: x509.UnknownAuthorityError{}}, nil, 30},
		{"no tls", CertInfo{}, ErrNoTLS, 15},
		{"timeout", CertInfo{}, context.DeadlineExceeded, 0},
		{"unavailable", CertInfo{}, ErrUnavailable, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Certificate(context.Background(), &fakeProber{info: tc.info, err: tc.err}, "https", "example.com", "", testNow, cfg)
			assert.Equal(t, tc.want, r.Points, "%v", r.Signals)
		})
	}
}

func TestCertificate_PortSelection(t *testing.T) {
	cfg := config.DefaultScoring().Certificate

	p := &fakeProber{info: CertInfo{NotAfter: testNow.AddDate(1, 0, 0)}}
	Certificate(context.Background(), p, "https", "example.com", "8443", testNow, cfg)
	assert.Equal(t, "8443", p.port)

	Certificate(context.Background(), p, "http", "example.com", "8080", testNow, cfg)
	assert.Equal(t, "443", p.port)
}

func TestTLSProber_LocalServer(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	host, port, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)

	t.Run("untrusted chain is reported, not fatal", func(t *testing.T) {
		info, err := TLSProber{Timeout: 5 * time.Second}.Probe(context.Background(), host, port)
		require.NoError(t, err)
		assert.Error(t, info.VerifyErr)
		assert.True(t, info.NotAfter.After(time.Now()))
		assert.NotEmpty(t, info.Issuer)
	})

	t.Run("trusted chain verifies", func(t *testing.T) {
		roots := x509.NewCertPool()
		roots.AddCert(srv.Certificate())
		info, err := TLSProber{Timeout: 5 * time.Second, Roots: roots}.Probe(context.Background(), host, port)
		require.NoError(t, err)
		assert.NoError(t, info.VerifyErr)
	})
}

func TestTLSProber_PlainServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	host, port, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)

	_, err = TLSProber{Timeout: 5 * time.Second}.Probe(context.Background(), host, port)
	assert.ErrorIs(t, err, ErrNoTLS)
}
