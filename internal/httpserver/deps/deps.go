package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/hop/internal/index"
	"github.com/MrSnakeDoc/hop/internal/links"
	"github.com/MrSnakeDoc/hop/internal/logger"
	redisstore "github.com/MrSnakeDoc/hop/internal/store/redis"
	"github.com/MrSnakeDoc/hop/internal/syncer"
)

// RemoteStatus is the part of the remote link store the infra endpoint reads.
type RemoteStatus interface {
	Ping(ctx context.Context) error
	Stats(ctx context.Context) (redisstore.Stats, error)
}

// Pinger reports whether a backend answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the API
	AllowedCIDRS []string         // IPs allowed to access the API and infra endpoints
	TrustProxy   bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)

	Links       *links.Service   // Link mutations and queries
	Index       *index.LinkIndex // Local link store
	Notifier    *syncer.Notifier // Last merge report
	SyncTrigger chan struct{}    // Channel to request a sync
	Remote      RemoteStatus     // Remote link store (nil when running offline)
	Local       Pinger           // Local database
	FallbackURL string           // Redirect target when no link matches

	RateBurst     int // /go requests allowed in a burst per client IP
	RatePerMinute int // /go refill rate per client IP
}
