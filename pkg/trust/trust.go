package trust

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/darksworm/argofleet/pkg/errors"
)

// Options configures the TLS material used when talking to the fleet's
// instances. Self-hosted ArgoCD commonly sits behind a private CA or a
// self-signed certificate, so the fleet file can point at extra roots or,
// as a last resort, disable verification entirely.
type Options struct {
	CACertFile         string // path to a PEM bundle file
	CACertDir          string // directory containing *.pem or *.crt files
	ClientCertFile     string // client certificate for mutual TLS
	ClientKeyFile      string // client certificate private key
	InsecureSkipVerify bool   // skip server certificate verification
	MinTLS             uint16 // minimum TLS version, zero means the stdlib default
}

// IsZero reports whether no TLS customization was requested
func (o Options) IsZero() bool {
	return o == Options{}
}

// ParseMinVersion maps the fleet file's min_version string to a tls constant
func ParseMinVersion(v string) (uint16, error) {
	switch v {
	case "":
		return 0, nil
	case "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, apperrors.ConfigError("INVALID_TLS_VERSION",
			fmt.Sprintf("unsupported minimum TLS version %q, want 1.2 or 1.3", v))
	}
}

// LoadPool creates a certificate pool with system roots plus the extras the
// options name. SSL_CERT_FILE and SSL_CERT_DIR act as fallbacks when the
// fleet file says nothing.
func LoadPool(opts Options) (*x509.CertPool, error) {
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		// no system pool on some platforms; the extras still apply
		pool = x509.NewCertPool()
	}

	add := func(src string, pem []byte) error {
		if ok := pool.AppendCertsFromPEM(pem); !ok {
			return apperrors.ConfigError("INVALID_CA_CERT",
				fmt.Sprintf("no valid certificates found in %s", src))
		}
		return nil
	}

	if f := first(opts.CACertFile, os.Getenv("SSL_CERT_FILE")); f != "" {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorConfig, "CA_CERT_READ_FAILED",
				"Failed to read CA cert file").WithContext("path", f)
		}
		if err := add(f, b); err != nil {
			return nil, err
		}
	}

	if d := first(opts.CACertDir, os.Getenv("SSL_CERT_DIR")); d != "" {
		fromFleetFile := opts.CACertDir != ""

		// colon-separated directory lists, OpenSSL style
		dirs := strings.Split(d, ":")
		for _, dir := range dirs {
			dir = strings.TrimSpace(dir)
			if dir == "" {
				continue
			}

			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if fromFleetFile && len(dirs) == 1 {
					return nil, apperrors.Wrap(err, apperrors.ErrorConfig, "CA_CERT_DIR_MISSING",
						"Configured CA cert directory does not exist").WithContext("path", dir)
				}
				continue
			}

			err := filepath.WalkDir(dir, func(p string, e fs.DirEntry, werr error) error {
				if werr != nil {
					return werr
				}
				if e.IsDir() || !hasSuffix(p, ".pem", ".crt") {
					return nil
				}
				b, err := os.ReadFile(p)
				if err != nil {
					return err
				}
				return add(p, b)
			})
			if err != nil {
				return nil, apperrors.Wrap(err, apperrors.ErrorConfig, "CA_CERT_DIR_FAILED",
					"Failed to load certificates from directory").WithContext("path", dir)
			}
		}
	}

	return pool, nil
}

// LoadClientCertificate loads the client key pair for mutual TLS. Both paths
// must be set together; empty paths mean no client certificate.
func LoadClientCertificate(certFile, keyFile string) (*tls.Certificate, error) {
	if certFile == "" && keyFile == "" {
		return nil, nil
	}
	if certFile == "" || keyFile == "" {
		return nil, apperrors.ConfigError("INCOMPLETE_CLIENT_CERT",
			"client_cert_file and client_key_file must be set together")
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorConfig, "CLIENT_CERT_LOAD_FAILED",
			"Failed to load client certificate")
	}
	return &cert, nil
}

// NewHTTPClient builds the HTTP client every instance connection uses. The
// client carries no overall timeout; per-request timing comes from context
// deadlines.
func NewHTTPClient(opts Options) (*http.Client, error) {
	pool, err := LoadPool(opts)
	if err != nil {
		return nil, err
	}
	clientCert, err := LoadClientCertificate(opts.ClientCertFile, opts.ClientKeyFile)
	if err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{
		RootCAs:            pool,
		MinVersion:         opts.MinTLS,
		InsecureSkipVerify: opts.InsecureSkipVerify,
	}
	if clientCert != nil {
		tlsConfig.Certificates = []tls.Certificate{*clientCert}
	}

	tr := &http.Transport{
		TLSClientConfig: tlsConfig,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		IdleConnTimeout:       30 * time.Second,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
	}

	return &http.Client{Transport: tr}, nil
}

// first returns the first non-empty, non-whitespace string
func first(vs ...string) string {
	for _, v := range vs {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// hasSuffix checks if string has any of the given suffixes (case insensitive)
func hasSuffix(s string, suff ...string) bool {
	s = strings.ToLower(s)
	for _, x := range suff {
		if strings.HasSuffix(s, x) {
			return true
		}
	}
	return false
}
