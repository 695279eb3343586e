package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Token bucket defaults for outgoing lines.
const (
	DefaultFloodBurst = 23
	DefaultFloodDelay = 1730 * time.Millisecond
	DefaultFloodInit  = 23
)

// Certificate verification modes.
const (
	VerifyRequired = "required"
	VerifyOptional = "optional"
	VerifyNone     = "none"
)

// Settings are the resolved, non-secret connection values of the first
// transport.
type Settings struct {
	Host     string
	Port     int
	BindHost string

	AuthName string
	Nick     string
	Ident    string
	RealName string
	SASL     bool

	UseTLS          bool
	CertVerify      string
	CertFingerprint string
	ClientCertFile  string
	ClientKeyFile   string
	Ciphers         string

	FloodBurst int
	FloodDelay time.Duration
	FloodInit  int
}

// Secrets hold credentials. They are kept apart from Settings so they are
// never part of anything that gets logged.
type Secrets struct {
	Password       string
	ServerPassword string
}

// LoggingSettings configure the well-known sinks.
type LoggingSettings struct {
	Level     string
	DebugFile string
	ErrorFile string
	UTC       bool
	Format    string
}

const transportPrefix = "transports.0."

// ResolveSettings reads the first transport, filling defaults for what is
// missing.
func ResolveSettings(s *Store) (Settings, error) {
	key := func(k string) string { return transportPrefix + k }

	useTLS := s.Bool(key("connection.use_ssl"), false)
	port := 6667
	if useTLS {
		port = 6697
	}
	nick := s.String(key("connection.nick"), "")

	delay, err := s.Duration(key("flood.delay"), DefaultFloodDelay)
	if err != nil {
		return Settings{}, err
	}

	st := Settings{
		Host:     s.String(key("connection.host"), ""),
		Port:     s.Int(key("connection.port"), port),
		BindHost: s.String(key("connection.bind_host"), ""),

		AuthName: s.String(key("authentication.services.username"), nick),
		Nick:     nick,
		Ident:    s.String(key("connection.ident"), nick),
		RealName: s.String(key("connection.realname"), nick),
		SASL:     s.Bool(key("authentication.services.use_sasl"), false),

		UseTLS:          useTLS,
		CertVerify:      strings.ToLower(s.String(key("connection.ssl.verify"), VerifyRequired)),
		CertFingerprint: s.String(key("connection.ssl.fingerprint"), ""),
		ClientCertFile:  s.String(key("connection.ssl.client_cert"), ""),
		ClientKeyFile:   s.String(key("connection.ssl.client_key"), ""),
		Ciphers:         s.String(key("connection.ssl.ciphers"), ""),

		FloodBurst: s.Int(key("flood.burst"), DefaultFloodBurst),
		FloodDelay: delay,
		FloodInit:  s.Int(key("flood.init"), DefaultFloodInit),
	}
	switch st.CertVerify {
	case VerifyRequired, VerifyOptional, VerifyNone:
	default:
		return Settings{}, fmt.Errorf("%sconnection.ssl.verify: unknown mode %q", transportPrefix, st.CertVerify)
	}
	return st, nil
}

// ResolveSecrets reads credentials from the store, then overlays
// WOLFBOT_PASSWORD and WOLFBOT_SERVER_PASSWORD from the environment.
func ResolveSecrets(s *Store) Secrets {
	sec := Secrets{
		Password:       s.String(transportPrefix+"authentication.services.password", ""),
		ServerPassword: s.String(transportPrefix+"connection.server_password", ""),
	}
	if v := os.Getenv("WOLFBOT_PASSWORD"); v != "" {
		sec.Password = v
	}
	if v := os.Getenv("WOLFBOT_SERVER_PASSWORD"); v != "" {
		sec.ServerPassword = v
	}
	return sec
}

// ResolveLogging reads the logging section.
func ResolveLogging(s *Store) LoggingSettings {
	return LoggingSettings{
		Level:     s.String("logging.level", ""),
		DebugFile: s.String("logging.debug_file", "debug.log"),
		ErrorFile: s.String("logging.error_file", "errors.log"),
		UTC:       s.Bool("logging.timestamp.utc", true),
		Format:    s.String("logging.timestamp.format", ""),
	}
}

// DebugEnabled reports the debug.enabled key.
func DebugEnabled(s *Store) bool { return s.Bool("debug.enabled", false) }
