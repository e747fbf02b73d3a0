package flags

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/Alp4ka/quizhub/audit"
)

type AuditFlags struct {
	SweepInterval time.Duration
	Retention     time.Duration
}

func NewAuditFlags() *AuditFlags {
	return &AuditFlags{
		SweepInterval: audit.DefaultSweepInterval,
		Retention:     audit.DefaultRetention,
	}
}

func (f *AuditFlags) BindFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&f.SweepInterval, "change-sweep-interval", f.SweepInterval, "How often expired change records are deleted")
	fs.DurationVar(&f.Retention, "change-retention", f.Retention, "How long change records are kept")
}

func (f *AuditFlags) SweeperOptions() []audit.SweeperOption {
	return []audit.SweeperOption{
		audit.WithInterval(f.SweepInterval),
		audit.WithRetention(f.Retention),
	}
}
