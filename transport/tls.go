package transport

import (
	"crypto/tls"
	"net"

	"github.com/sjanel/aeronet-go/certificates"
	tlsaut "github.com/sjanel/aeronet-go/certificates/auth"
	tlsvrs "github.com/sjanel/aeronet-go/certificates/tlsversion"

	"github.com/sjanel/aeronet-go/aeroerr"
	"github.com/sjanel/aeronet-go/config"
)

// buildTLSConfig loads the configured certificate/key pair and optional
// client CA, translating cfg.TLS into a *tls.Config through a
// certificates.TLSConfig builder rather than calling crypto/tls directly.
// NextProtos is passed through verbatim so a listener advertises "h2" only
// when the caller actually configured it (config.Validate already requires
// "h2" to be present when HTTP/2-over-TLS is enabled).
func buildTLSConfig(cfg config.ListenerConfig) (*tls.Config, error) {
	tc := certificates.New()

	if err := tc.AddCertificatePairFile(cfg.TLS.KeyFile, cfg.TLS.CertFile); err != nil {
		return nil, aeroerr.Wrapf(aeroerr.ConfigTLS, err, "load certificate pair")
	}

	if v := tlsvrs.Parse(cfg.TLS.MinVersion); v != tlsvrs.VersionUnknown {
		tc.SetVersionMin(v)
	}

	if cfg.TLS.ClientCAFile != "" {
		if err := tc.AddClientCAFile(cfg.TLS.ClientCAFile); err != nil {
			return nil, aeroerr.Wrapf(aeroerr.ConfigTLS, err, "read client CA file")
		}
		if cfg.TLS.RequireClientCert {
			tc.SetClientAuth(tlsaut.RequireAndVerifyClientCert)
		} else {
			tc.SetClientAuth(tlsaut.VerifyClientCertIfGiven)
		}
	}

	out := tc.TLS("")
	out.NextProtos = cfg.TLS.NextProtos
	return out, nil
}

// newTLSListener wraps ln so Accept returns *tls.Conn. The reactor still
// epolls the connection's underlying file descriptor for readiness, but
// once the fd is readable it hands off to tls.Conn.Read/Write for the
// actual handshake and record framing rather than reimplementing TLS.
func newTLSListener(ln net.Listener, tc *tls.Config) net.Listener {
	return tls.NewListener(ln, tc)
}
