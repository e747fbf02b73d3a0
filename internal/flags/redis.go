package flags

import (
	"github.com/spf13/pflag"

	"github.com/Alp4ka/quizhub/audit"
)

// RedisFlags selects where change notifications travel. Without a URL they
// stay inside the process.
type RedisFlags struct {
	URL              string
	SubscriberBuffer int
}

func NewRedisFlags() *RedisFlags {
	return &RedisFlags{SubscriberBuffer: audit.DefaultSubscriberBuffer}
}

func (f *RedisFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.URL, "redis-url", f.URL, "Redis URL used to share change notifications between instances")
	fs.IntVar(&f.SubscriberBuffer, "subscriber-buffer", f.SubscriberBuffer, "Changes buffered per live subscriber before they are dropped")
}

// GetRedisBroker returns nil when no redis URL is configured.
func (f *RedisFlags) GetRedisBroker() (*audit.RedisBroker, error) {
	if f.URL == "" {
		return nil, nil
	}

	return audit.NewRedisBroker(f.URL, f.SubscriberBuffer)
}
