package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/rcapi/internal/logger"
	"github.com/MrSnakeDoc/rcapi/internal/service"
)

// Pinger reports whether the backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time // for testing, defaults to time.Now
	AllowedHosts  []string         // Host headers allowed to reach /reload
	AllowedCIDRS  []string         // IPs allowed to access readyz/reload endpoints
	TrustProxy    bool             // true if running behind a trusted reverse proxy
	PublicURL     string           // base for links, empty = derived from the request
	Service       *service.Service // replication controller operations
	Store         Pinger           // probed by /readyz
	LastBayReload func() time.Time // zero until the bay inventory was loaded once
	ReloadTrigger chan struct{}    // Channel to trigger a manual bay inventory reload
	RateBurst     int              // token bucket size for mutating requests, 0 = unlimited
	RateRefill    int              // tokens per minute per client IP
}
