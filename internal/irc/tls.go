package irc

import (
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"wolfbot/pkg/logx"
)

var ErrFingerprintMismatch = errors.New("irc: server certificate fingerprint mismatch")

// tlsConfig derives the client TLS settings from d.
//
// A pinned fingerprint replaces chain verification. In optional mode chain
// errors are logged and the connection proceeds.
func tlsConfig(d Descriptor, log logx.Logger) (*tls.Config, error) {
	cfg := &tls.Config{
		ServerName: d.Host,
		MinVersion: tls.VersionTLS12,
	}

	if d.ClientCertFile != "" {
		key := d.ClientKeyFile
		if key == "" {
			key = d.ClientCertFile
		}
		cert, err := tls.LoadX509KeyPair(d.ClientCertFile, key)
		if err != nil {
			return nil, fmt.Errorf("irc: client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	if d.Ciphers != "" {
		ids, err := cipherSuites(d.Ciphers)
		if err != nil {
			return nil, err
		}
		cfg.CipherSuites = ids
	}

	pins := parseFingerprints(d.CertFingerprint)
	switch {
	case len(pins) > 0:
		cfg.InsecureSkipVerify = true
		cfg.VerifyConnection = func(cs tls.ConnectionState) error {
			if len(cs.PeerCertificates) == 0 {
				return ErrFingerprintMismatch
			}
			got := Fingerprint(cs.PeerCertificates[0].Raw)
			for _, p := range pins {
				if p == got {
					return nil
				}
			}
			return fmt.Errorf("%w: got %s", ErrFingerprintMismatch, got)
		}
	case d.CertVerify == CertNone:
		cfg.InsecureSkipVerify = true
	case d.CertVerify == CertOptional:
		cfg.InsecureSkipVerify = true
		cfg.VerifyConnection = func(cs tls.ConnectionState) error {
			if err := verifyChain(cs, d.Host); err != nil {
				log.Warn("server certificate not trusted; continuing", logx.String("host", d.Host), logx.Err(err))
			}
			return nil
		}
	}
	return cfg, nil
}

func verifyChain(cs tls.ConnectionState, host string) error {
	if len(cs.PeerCertificates) == 0 {
		return errors.New("no peer certificate")
	}
	inter := x509.NewCertPool()
	for _, c := range cs.PeerCertificates[1:] {
		inter.AddCert(c)
	}
	_, err := cs.PeerCertificates[0].Verify(x509.VerifyOptions{DNSName: host, Intermediates: inter})
	return err
}

// Fingerprint is the lower-case hex SHA-256 of a DER certificate.
func Fingerprint(der []byte) string {
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:])
}

// parseFingerprints accepts a comma-separated list; colons and case are ignored.
func parseFingerprints(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(f), ":", ""))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// cipherSuites maps a ':' or ',' separated list of IANA suite names.
func cipherSuites(list string) ([]uint16, error) {
	known := map[string]uint16{}
	for _, cs := range tls.CipherSuites() {
		known[cs.Name] = cs.ID
	}
	for _, cs := range tls.InsecureCipherSuites() {
		known[cs.Name] = cs.ID
	}
	var ids []uint16
	for _, name := range strings.FieldsFunc(list, func(r rune) bool { return r == ':' || r == ',' }) {
		name = strings.TrimSpace(name)
		id, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("irc: unknown cipher suite %q", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
