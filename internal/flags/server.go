package flags

import (
	"github.com/spf13/pflag"
)

type ServerFlags struct {
	ListenAddr  string
	MetricsAddr string
	Migrate     bool
}

func NewServerFlags() *ServerFlags {
	return &ServerFlags{
		ListenAddr:  ":8080",
		MetricsAddr: ":2112",
	}
}

func (f *ServerFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ListenAddr, "listen", f.ListenAddr, "The address to serve the API on")
	fs.StringVar(&f.MetricsAddr, "listen-metrics", f.MetricsAddr, "The address to serve prometheus metrics on, empty to disable")
	fs.BoolVar(&f.Migrate, "migrate", f.Migrate, "Apply pending database migrations before serving")
}
