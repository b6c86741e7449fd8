package browser

import (
	"fmt"

	"property-parser/config"
	"property-parser/scraper/loopnet"
)

// Navigator is a loopnet.Navigator that owns a browser process.
type Navigator interface {
	loopnet.Navigator
	Close() error
}

// New starts the browser named by cfg.Driver.
func New(cfg *config.Config, userAgent string) (Navigator, error) {
	switch cfg.Driver {
	case config.DriverChromedp, "":
		return NewChrome(cfg.Headless, userAgent)
	case config.DriverRod:
		return NewRod(cfg.Headless, userAgent)
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}
