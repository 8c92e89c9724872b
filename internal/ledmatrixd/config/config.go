// Package config loads the controller's startup configuration: panel
// geometry, driver selection, GPIO/PWM tuning, and HTTP server settings.
// Precedence is CLI flag > environment variable > config file > default.
package config

import (
	"time"
)

// Config holds every setting the controller reads at startup. Nothing here
// changes for the lifetime of the process.
type Config struct {
	Panel PanelConfig `yaml:"panel"`
	Web   WebConfig   `yaml:"web"`
}

// PanelConfig describes the physical matrix and how to drive it.
type PanelConfig struct {
	Rows              int    `yaml:"rows"`
	Cols              int    `yaml:"cols"`
	ChainLength       int    `yaml:"chainLength"`
	Parallel          int    `yaml:"parallel"`
	Driver            string `yaml:"driver"` // "native" or "binding"
	HardwareMapping   string `yaml:"hardwareMapping"`
	GPIOSlowdown      int    `yaml:"gpioSlowdown"`
	PWMBits           int    `yaml:"pwmBits"`
	PWMLSBNanoseconds int    `yaml:"pwmLsbNanoseconds"`
	DitherBits        int    `yaml:"ditherBits"`
	RowAddressScheme  string `yaml:"rowAddressScheme"`
	LEDSequence       string `yaml:"ledSequence"`
	MultiplexScheme   string `yaml:"multiplexScheme"`
	PixelMapperChain  string `yaml:"pixelMapperChain"`
	RefreshRateCap    int    `yaml:"refreshRateCap"`
	MaxBrightness     int    `yaml:"maxBrightness"`
	Interlaced        bool   `yaml:"interlaced"`
	InverseColors     bool   `yaml:"inverseColors"`
	NoHardwarePulse   bool   `yaml:"noHardwarePulse"`
	ShowRefresh       bool   `yaml:"showRefresh"`
}

// WebConfig describes the HTTP control plane surface.
type WebConfig struct {
	Port          int           `yaml:"port"`
	BindAddress   string        `yaml:"bindAddress"`
	StateFilePath string        `yaml:"stateFilePath"`
	RedisAddress  string        `yaml:"redisAddress"`
	ReadTimeout   time.Duration `yaml:"readTimeout"`
	WriteTimeout  time.Duration `yaml:"writeTimeout"`
}

// Default returns the built-in defaults, overridden by file/env/flags in
// that order by the caller.
func Default() *Config {
	return &Config{
		Panel: PanelConfig{
			Rows:              32,
			Cols:              64,
			ChainLength:       1,
			Parallel:          1,
			Driver:            "native",
			HardwareMapping:   "regular",
			GPIOSlowdown:      4,
			PWMBits:           11,
			PWMLSBNanoseconds: 130,
			DitherBits:        0,
			RowAddressScheme:  "direct",
			LEDSequence:       "RGB",
			MultiplexScheme:   "direct",
			RefreshRateCap:    0,
			MaxBrightness:     100,
		},
		Web: WebConfig{
			Port:          9000,
			BindAddress:   "0.0.0.0",
			StateFilePath: "/var/lib/led-matrix-controller/state.json",
			ReadTimeout:   10 * time.Second,
			WriteTimeout:  10 * time.Second,
		},
	}
}

// overlayEnv overlays LED_-prefixed environment variables on top of
// file-based config. Unset variables leave the existing value untouched.
func (c *Config) overlayEnv() {
	if v := getEnvAsInt("LED_ROWS", 0); v != 0 {
		c.Panel.Rows = v
	}
	if v := getEnvAsInt("LED_COLS", 0); v != 0 {
		c.Panel.Cols = v
	}
	if v := getEnvAsInt("LED_CHAIN_LENGTH", 0); v != 0 {
		c.Panel.ChainLength = v
	}
	if v := getEnvAsInt("LED_PARALLEL", 0); v != 0 {
		c.Panel.Parallel = v
	}
	if v := getEnv("LED_DRIVER", ""); v != "" {
		c.Panel.Driver = v
	}
	if v := getEnv("LED_HARDWARE_MAPPING", ""); v != "" {
		c.Panel.HardwareMapping = v
	}
	if v := getEnvAsInt("LED_GPIO_SLOWDOWN", -1); v != -1 {
		c.Panel.GPIOSlowdown = v
	}
	if v := getEnvAsInt("LED_PWM_BITS", 0); v != 0 {
		c.Panel.PWMBits = v
	}
	if v := getEnvAsInt("LED_PWM_LSB_NANOSECONDS", 0); v != 0 {
		c.Panel.PWMLSBNanoseconds = v
	}
	if v := getEnvAsInt("LED_DITHER_BITS", -1); v != -1 {
		c.Panel.DitherBits = v
	}
	if v := getEnv("LED_ROW_ADDRESS_SCHEME", ""); v != "" {
		c.Panel.RowAddressScheme = v
	}
	if v := getEnv("LED_LED_SEQUENCE", ""); v != "" {
		c.Panel.LEDSequence = v
	}
	if v := getEnv("LED_MULTIPLEX_SCHEME", ""); v != "" {
		c.Panel.MultiplexScheme = v
	}
	if v := getEnv("LED_PIXEL_MAPPER_CHAIN", ""); v != "" {
		c.Panel.PixelMapperChain = v
	}
	if v := getEnvAsInt("LED_REFRESH_RATE_CAP", -1); v != -1 {
		c.Panel.RefreshRateCap = v
	}
	if v := getEnvAsInt("LED_MAX_BRIGHTNESS", -1); v != -1 {
		c.Panel.MaxBrightness = v
	}
	if v := getEnvAsBool("LED_INTERLACED"); v != nil {
		c.Panel.Interlaced = *v
	}
	if v := getEnvAsBool("LED_INVERSE_COLORS"); v != nil {
		c.Panel.InverseColors = *v
	}
	if v := getEnvAsBool("LED_NO_HARDWARE_PULSE"); v != nil {
		c.Panel.NoHardwarePulse = *v
	}
	if v := getEnvAsBool("LED_SHOW_REFRESH"); v != nil {
		c.Panel.ShowRefresh = *v
	}

	if v := getEnvAsInt("LED_WEB_PORT", 0); v != 0 {
		c.Web.Port = v
	}
	if v := getEnv("LED_BIND_ADDRESS", ""); v != "" {
		c.Web.BindAddress = v
	}
	if v := getEnv("LED_STATE_FILE_PATH", ""); v != "" {
		c.Web.StateFilePath = v
	}
	if v := getEnv("LED_REDIS_ADDRESS", ""); v != "" {
		c.Web.RedisAddress = v
	}
}
