package loggingx

import (
	"fmt"
	"strings"

	"github.com/dogmatiq/dodeca/logging"
)

// WithFID returns a logger that prefixes log messages with a FID.
func WithFID(target logging.Logger, id int) logging.Logger {
	return WithPrefix(target, "[fid %d] ", id)
}

// WithPrefix returns a logger that adds a prefix to log messages.
func WithPrefix(target logging.Logger, f string, v ...any) logging.Logger {
	prefix := fmt.Sprintf(f, v...)

	return &prefixer{
		target,
		prefix,
		strings.ReplaceAll(prefix, "%", "%%"),
	}
}

type prefixer struct {
	target logging.Logger
	prefix string
	format string
}

func (p *prefixer) Log(f string, v ...any) {
	p.target.Log(p.format+f, v...)
}

func (p *prefixer) LogString(s string) {
	p.target.LogString(p.prefix + s)
}

func (p *prefixer) Debug(f string, v ...any) {
	p.target.Debug(p.format+f, v...)
}

func (p *prefixer) DebugString(s string) {
	p.target.DebugString(p.prefix + s)
}

func (p *prefixer) IsDebug() bool {
	return p.target.IsDebug()
}
