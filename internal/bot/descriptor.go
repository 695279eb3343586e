package bot

import (
	"fmt"

	"wolfbot/internal/config"
	"wolfbot/internal/irc"
	"wolfbot/pkg/logx"
)

// BuildDescriptor copies resolved settings and secrets into the descriptor the
// IRC client consumes, attaching the callback table and connect hook. It does
// not validate anything; it always announces the target on the console.
func BuildDescriptor(s config.Settings, sec config.Secrets, cb irc.Callbacks, onConnect irc.ConnectFunc, r *logx.Router) (irc.Descriptor, error) {
	d := irc.Descriptor{
		Host:     s.Host,
		Port:     s.Port,
		BindHost: s.BindHost,

		AuthName:       s.AuthName,
		Password:       sec.Password,
		Nick:           s.Nick,
		Ident:          s.Ident,
		RealName:       s.RealName,
		SASL:           s.SASL,
		ServerPassword: sec.ServerPassword,

		UseTLS:          s.UseTLS,
		CertVerify:      irc.CertVerify(s.CertVerify),
		CertFingerprint: s.CertFingerprint,
		ClientCertFile:  s.ClientCertFile,
		ClientKeyFile:   s.ClientKeyFile,
		Ciphers:         s.Ciphers,

		TokenBucket: irc.TokenBucket{
			Burst: s.FloodBurst,
			Delay: s.FloodDelay,
			Init:  s.FloodInit,
		},
		Callbacks: cb,
		OnConnect: onConnect,
	}

	tls := ""
	if s.UseTLS {
		tls = "+"
	}
	err := r.Plog(fmt.Sprintf("Connecting to %s:%s%d", s.Host, tls, s.Port))
	return d, err
}
