package providers

import (
	"errors"
	"fmt"
	"postit/internal/structures"
	"time"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return errors.New("invalid config: " + v.Errors.One())
	}

	// Bare integers decode as nanoseconds; a duration needs a unit.
	durations := []struct {
		name  string
		value time.Duration
	}{
		{"persistence.saveInterval", c.conf.Persistence.SaveInterval},
		{"session.ttl", c.conf.Session.TTL},
	}
	for _, d := range durations {
		if d.value < time.Second {
			return fmt.Errorf("invalid config: %s is %s, must be at least 1s (write it with a unit, e.g. 30s)", d.name, d.value)
		}
	}
	return nil
}
