package quota

import (
	"math/rand"
	"time"

	"twfollow/pkg/config"
)

// Delays computes the pause after each action
type Delays struct {
	cfg   config.FollowConfig
	float func() float64
}

// NewDelays creates delays from the follow settings
func NewDelays(cfg config.FollowConfig) *Delays {
	return &Delays{cfg: cfg, float: rand.Float64}
}

// Delay returns the pause after action. With randomize on, the base delay is
// scaled by a percentage drawn from [random_min_percent, random_max_percent].
func (d *Delays) Delay(action string) time.Duration {
	var base time.Duration
	switch action {
	case "follows":
		base = d.cfg.Delay
	default:
		return 0
	}

	if !d.cfg.Randomize || base <= 0 {
		return base
	}

	lo, hi := float64(d.cfg.RandomMinPercent), float64(d.cfg.RandomMaxPercent)
	pct := lo + d.float()*(hi-lo)
	return time.Duration(float64(base) * pct / 100)
}
