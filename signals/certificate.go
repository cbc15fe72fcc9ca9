package signals

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"truthlens/config"
	"truthlens/risk"
)

// ErrNoTLS means the host accepted no TLS handshake at all.
var ErrNoTLS = errors.New("no TLS endpoint")

// CertInfo describes the leaf certificate a host presented.
type CertInfo struct {
	Issuer    string
	NotAfter  time.Time
	VerifyErr error
}

// CertProber fetches the certificate presented on host:port.
type CertProber interface {
	Probe(ctx context.Context, host, port string) (CertInfo, error)
}

// TLSProber dials the host and verifies the chain it presents. Roots nil
// means the system pool.
type TLSProber struct {
	Timeout time.Duration
	Roots   *x509.CertPool
}

func (p TLSProber) Probe(ctx context.Context, host, port string) (CertInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	d := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: p.Timeout},
		// Verification happens below so an invalid chain is still inspectable.
		Config: &tls.Config{ServerName: host, InsecureSkipVerify: true},
	}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return CertInfo{}, fmt.Errorf("probe %s: %w", host, err)
		}
		return CertInfo{}, fmt.Errorf("probe %s: %w: %v", host, ErrNoTLS, err)
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return CertInfo{}, ErrNoTLS
	}
	leaf := state.PeerCertificates[0]
	intermediates := x509.NewCertPool()
	for _, c := range state.PeerCertificates[1:] {
		intermediates.AddCert(c)
	}
	_, verr := leaf.Verify(x509.VerifyOptions{
		DNSName:       host,
		Roots:         p.Roots,
		Intermediates: intermediates,
	})

	issuer := leaf.Issuer.CommonName
	if issuer == "" && len(leaf.Issuer.Organization) > 0 {
		issuer = leaf.Issuer.Organization[0]
	}
	return CertInfo{Issuer: issuer, NotAfter: leaf.NotAfter, VerifyErr: verr}, nil
}

// CertificateReport is the certificate layer plus what the probe learned.
type CertificateReport struct {
	risk.Contribution
	Checked bool
	Info    *CertInfo
}

// Certificate inspects the TLS certificate of host. Plain-http links are
// probed on 443 to tell "no TLS at all" apart from "TLS not used".
func Certificate(ctx context.Context, prober CertProber, scheme, host, port string, now time.Time, cfg config.CertificateScoring) CertificateReport {
	var r CertificateReport
	if port == "" || !strings.EqualFold(scheme, "https") {
		port = "443"
	}

	info, err := prober.Probe(ctx, host, port)
	switch {
	case errors.Is(err, ErrUnavailable):
		r.Note("Certificate check not available")
		return r
	case errors.Is(err, ErrNoTLS):
		r.Checked = true
		r.Add(cfg.NoTLS, "Site does not offer HTTPS at all")
		return r
	case err != nil:
		r.Note("Certificate check timed out or failed")
		return r
	}

	r.Checked = true
	r.Info = &info

	expired := now.After(info.NotAfter)
	if expired {
		r.Add(cfg.Expired, fmt.Sprintf("SSL certificate expired on %s", info.NotAfter.Format("2006-01-02")))
	} else if left := info.NotAfter.Sub(now); left <= time.Duration(cfg.ExpiringWithinDays)*24*time.Hour {
		r.Add(cfg.ExpiringSoon, fmt.Sprintf("SSL certificate expires in %d days", int(left.Hours()/24)))
	}

	if info.VerifyErr != nil {
		var invalid x509.CertificateInvalidError
		if !(errors.As(info.VerifyErr, &invalid) && invalid.Reason == x509.Expired) {
			r.Add(cfg.Invalid, fmt.Sprintf("SSL certificate is not trusted (%s)", describeVerifyErr(info.VerifyErr)))
		}
	}
	return r
}

func describeVerifyErr(err error) string {
	var unknown x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	switch {
	case errors.As(err, &unknown):
		return "self-signed or unknown issuer"
	case errors.As(err, &hostErr):
		return "hostname mismatch"
	default:
		return "verification failed"
	}
}
