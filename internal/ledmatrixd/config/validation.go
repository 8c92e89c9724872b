package config

import "fmt"

func (c *Config) validate() error {
	if c.Panel.Rows < 1 {
		return fmt.Errorf("invalid panel rows: %d", c.Panel.Rows)
	}
	if c.Panel.Cols < 1 {
		return fmt.Errorf("invalid panel cols: %d", c.Panel.Cols)
	}
	if c.Panel.ChainLength < 1 {
		return fmt.Errorf("invalid chain length: %d", c.Panel.ChainLength)
	}
	if c.Panel.Parallel < 1 {
		return fmt.Errorf("invalid parallel chain count: %d", c.Panel.Parallel)
	}
	if c.Panel.Driver != "native" && c.Panel.Driver != "binding" {
		return fmt.Errorf("invalid driver %q: must be \"native\" or \"binding\"", c.Panel.Driver)
	}
	if c.Panel.PWMBits < 1 || c.Panel.PWMBits > 11 {
		return fmt.Errorf("invalid pwm bits: %d (must be 1-11)", c.Panel.PWMBits)
	}
	if c.Panel.DitherBits < 0 || c.Panel.DitherBits > 2 {
		return fmt.Errorf("invalid dither bits: %d (must be 0-2)", c.Panel.DitherBits)
	}
	if c.Panel.MaxBrightness < 0 || c.Panel.MaxBrightness > 100 {
		return fmt.Errorf("invalid max brightness: %d (must be 0-100)", c.Panel.MaxBrightness)
	}
	if c.Panel.GPIOSlowdown < 0 {
		return fmt.Errorf("invalid gpio slowdown: %d", c.Panel.GPIOSlowdown)
	}

	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("invalid web port: %d", c.Web.Port)
	}
	if c.Web.StateFilePath == "" {
		return fmt.Errorf("state file path is required")
	}

	return nil
}
