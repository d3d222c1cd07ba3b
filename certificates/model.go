/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package certificates

import (
	"crypto/tls"
	"crypto/x509"
	"io"

	tlsaut "github.com/sjanel/aeronet-go/certificates/auth"
	tlscas "github.com/sjanel/aeronet-go/certificates/ca"
	tlscrt "github.com/sjanel/aeronet-go/certificates/certs"
	tlscpr "github.com/sjanel/aeronet-go/certificates/cipher"
	tlscrv "github.com/sjanel/aeronet-go/certificates/curves"
	tlsvrs "github.com/sjanel/aeronet-go/certificates/tlsversion"
)

type config struct {
	rand                  io.Reader
	cert                  []tlscrt.Cert
	cipherList            []tlscpr.Cipher
	curveList             []tlscrv.Curves
	caRoot                []tlscas.Cert
	clientAuth            tlsaut.ClientAuth
	clientCA              []tlscas.Cert
	tlsMinVersion         tlsvrs.Version
	tlsMaxVersion         tlsvrs.Version
	dynSizingDisabled     bool
	ticketSessionDisabled bool
}

func (c *config) RegisterRand(rand io.Reader) {
	c.rand = rand
}

func (c *config) SetVersionMin(v tlsvrs.Version) {
	c.tlsMinVersion = v
}

func (c *config) GetVersionMin() tlsvrs.Version {
	return c.tlsMinVersion
}

func (c *config) SetVersionMax(v tlsvrs.Version) {
	c.tlsMaxVersion = v
}

func (c *config) GetVersionMax() tlsvrs.Version {
	return c.tlsMaxVersion
}

func (c *config) SetCipherList(ciphers []tlscpr.Cipher) {
	c.cipherList = ciphers
}

func (c *config) AddCiphers(ciphers ...tlscpr.Cipher) {
	c.cipherList = append(c.cipherList, ciphers...)
}

func (c *config) GetCiphers() []tlscpr.Cipher {
	return append(make([]tlscpr.Cipher, 0, len(c.cipherList)), c.cipherList...)
}

func (c *config) SetDynamicSizingDisabled(flag bool) {
	c.dynSizingDisabled = flag
}

func (c *config) SetSessionTicketDisabled(flag bool) {
	c.ticketSessionDisabled = flag
}

func (c *config) Clone() TLSConfig {
	return &config{
		rand:                  c.rand,
		cert:                  append(make([]tlscrt.Cert, 0, len(c.cert)), c.cert...),
		cipherList:            append(make([]tlscpr.Cipher, 0, len(c.cipherList)), c.cipherList...),
		curveList:             append(make([]tlscrv.Curves, 0, len(c.curveList)), c.curveList...),
		caRoot:                append(make([]tlscas.Cert, 0, len(c.caRoot)), c.caRoot...),
		clientAuth:            c.clientAuth,
		clientCA:              append(make([]tlscas.Cert, 0, len(c.clientCA)), c.clientCA...),
		tlsMinVersion:         c.tlsMinVersion,
		tlsMaxVersion:         c.tlsMaxVersion,
		dynSizingDisabled:     c.dynSizingDisabled,
		ticketSessionDisabled: c.ticketSessionDisabled,
	}
}

func (c *config) TlsConfig(serverName string) *tls.Config {
	/* #nosec */
	cnf := &tls.Config{
		InsecureSkipVerify: false,
	}

	if serverName != "" {
		cnf.ServerName = serverName
	}

	if c.rand != nil {
		cnf.Rand = c.rand
	}

	if c.ticketSessionDisabled {
		cnf.SessionTicketsDisabled = true
	}

	if c.dynSizingDisabled {
		cnf.DynamicRecordSizingDisabled = true
	}

	if c.tlsMinVersion != tlsvrs.VersionUnknown {
		cnf.MinVersion = c.tlsMinVersion.Uint16()
	}

	if c.tlsMaxVersion != tlsvrs.VersionUnknown {
		cnf.MaxVersion = c.tlsMaxVersion.Uint16()
	}

	if len(c.cipherList) > 0 {
		cnf.PreferServerCipherSuites = true
		cnf.CipherSuites = make([]uint16, 0, len(c.cipherList))
		for _, p := range c.cipherList {
			cnf.CipherSuites = append(cnf.CipherSuites, p.Uint16())
		}
	}

	if len(c.curveList) > 0 {
		cnf.CurvePreferences = make([]tls.CurveID, 0, len(c.curveList))
		for _, p := range c.curveList {
			cnf.CurvePreferences = append(cnf.CurvePreferences, p.TLS())
		}
	}

	if len(c.caRoot) > 0 {
		pool := x509.NewCertPool()
		for _, p := range c.caRoot {
			p.AppendPool(pool)
		}
		cnf.RootCAs = pool
	}

	if len(c.cert) > 0 {
		cnf.Certificates = make([]tls.Certificate, 0, len(c.cert))
		for _, p := range c.cert {
			cnf.Certificates = append(cnf.Certificates, p.TLS())
		}
	}

	if c.clientAuth != tlsaut.NoClientCert {
		cnf.ClientAuth = c.clientAuth.TLS()

		if len(c.clientCA) > 0 {
			pool := x509.NewCertPool()
			for _, p := range c.clientCA {
				p.AppendPool(pool)
			}
			cnf.ClientCAs = pool
		}
	}

	return cnf
}

func (c *config) TLS(serverName string) *tls.Config {
	return c.TlsConfig(serverName)
}

func (c *config) Config() *Config {
	res := &Config{
		CurveList:            append(make([]tlscrv.Curves, 0, len(c.curveList)), c.curveList...),
		CipherList:           append(make([]tlscpr.Cipher, 0, len(c.cipherList)), c.cipherList...),
		RootCA:               append(make([]tlscas.Cert, 0, len(c.caRoot)), c.caRoot...),
		ClientCA:             append(make([]tlscas.Cert, 0, len(c.clientCA)), c.clientCA...),
		Certs:                make([]tlscrt.Certif, 0, len(c.cert)),
		VersionMin:           c.tlsMinVersion,
		VersionMax:           c.tlsMaxVersion,
		AuthClient:           c.clientAuth,
		DynamicSizingDisable: c.dynSizingDisabled,
		SessionTicketDisable: c.ticketSessionDisabled,
	}

	for _, p := range c.cert {
		res.Certs = append(res.Certs, p.Model())
	}

	return res
}
