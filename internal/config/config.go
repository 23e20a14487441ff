// Package config loads gmz's runtime configuration from the environment,
// with an optional .env file loaded first via LoadEnvFile.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/groovymister/gomister/internal/input"
	"github.com/groovymister/gomister/internal/output"
	"github.com/groovymister/gomister/internal/protocol"
)

// Config holds everything needed to open an Output and Input Connection to
// one Groovy_MiSTer host.
type Config struct {
	Host       string // required; IPv4 literal
	OutputPort int    // 0 = output.DefaultPort (32100)
	InputPort  int    // 0 = input.DefaultPort (32101)

	MTU          int // 0 = output.DefaultMTU
	SendBufBytes int // 0 = output.DefaultSendBufBytes
	TOS          byte

	RGBMode       protocol.RGBMode
	SoundRate     protocol.SoundRate
	SoundChannels protocol.SoundChannels
	LZ4Mode       protocol.LZ4Mode

	MaxFrameSize     int
	KeyframeInterval int
}

// Load reads Config from the environment. GMZ_HOST is required; all other
// variables have defaults matching the zero-configuration behavior of
// Output.Config / Input.Open.
func Load() (*Config, error) {
	host := os.Getenv("GMZ_HOST")
	if host == "" {
		return nil, fmt.Errorf("config: GMZ_HOST is required")
	}

	lz4Mode, err := parseLZ4Mode(getEnv("GMZ_LZ4_MODE", "off"))
	if err != nil {
		return nil, err
	}
	rgbMode, err := parseRGBMode(getEnv("GMZ_RGB_MODE", "bgr888"))
	if err != nil {
		return nil, err
	}
	soundRate, err := parseSoundRate(getEnv("GMZ_SOUND_RATE", "off"))
	if err != nil {
		return nil, err
	}
	soundChannels, err := parseSoundChannels(getEnv("GMZ_SOUND_CHANNELS", "off"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Host:             host,
		OutputPort:       getEnvInt("GMZ_OUTPUT_PORT", 0),
		InputPort:        getEnvInt("GMZ_INPUT_PORT", 0),
		MTU:              getEnvInt("GMZ_MTU", 0),
		SendBufBytes:     getEnvInt("GMZ_SEND_BUF_BYTES", 0),
		TOS:              byte(getEnvUint32("GMZ_TOS", 0)),
		RGBMode:          rgbMode,
		SoundRate:        soundRate,
		SoundChannels:    soundChannels,
		LZ4Mode:          lz4Mode,
		MaxFrameSize:     getEnvInt("GMZ_MAX_FRAME_SIZE", 1024*1024),
		KeyframeInterval: getEnvInt("GMZ_KEYFRAME_INTERVAL", 0),
	}, nil
}

// OutputConfig builds the internal/output.Config this configuration implies.
func (c *Config) OutputConfig() output.Config {
	return output.Config{
		Host:             c.Host,
		Port:             c.OutputPort,
		MTU:              c.MTU,
		SendBufBytes:     c.SendBufBytes,
		RGBMode:          c.RGBMode,
		SoundRate:        c.SoundRate,
		SoundChannels:    c.SoundChannels,
		LZ4Mode:          c.LZ4Mode,
		MaxFrameSize:     c.MaxFrameSize,
		KeyframeInterval: c.KeyframeInterval,
		TOS:              c.TOS,
	}
}

// InputPortOrDefault returns InputPort or input.DefaultPort.
func (c *Config) InputPortOrDefault() int {
	if c.InputPort == 0 {
		return input.DefaultPort
	}
	return c.InputPort
}

func parseLZ4Mode(v string) (protocol.LZ4Mode, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "off", "":
		return protocol.LZ4ModeOff, nil
	case "lz4":
		return protocol.LZ4ModeLZ4, nil
	case "lz4_delta", "lz4delta":
		return protocol.LZ4ModeLZ4Delta, nil
	case "lz4_hc", "lz4hc":
		return protocol.LZ4ModeLZ4HC, nil
	case "lz4_hc_delta", "lz4hcdelta":
		return protocol.LZ4ModeLZ4HCDelta, nil
	case "adaptive":
		return protocol.LZ4ModeAdaptive, nil
	case "adaptive_delta", "adaptivedelta":
		return protocol.LZ4ModeAdaptiveDelta, nil
	default:
		return 0, fmt.Errorf("config: invalid GMZ_LZ4_MODE %q", v)
	}
}

func parseRGBMode(v string) (protocol.RGBMode, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "bgr888", "":
		return protocol.RGBBGR888, nil
	case "bgra8888":
		return protocol.RGBBGRA8888, nil
	case "rgb565":
		return protocol.RGBRGB565, nil
	default:
		return 0, fmt.Errorf("config: invalid GMZ_RGB_MODE %q", v)
	}
}

func parseSoundRate(v string) (protocol.SoundRate, error) {
	switch strings.TrimSpace(v) {
	case "off", "":
		return protocol.SoundRateOff, nil
	case "22050":
		return protocol.SoundRate22050, nil
	case "44100":
		return protocol.SoundRate44100, nil
	case "48000":
		return protocol.SoundRate48000, nil
	default:
		return 0, fmt.Errorf("config: invalid GMZ_SOUND_RATE %q", v)
	}
}

func parseSoundChannels(v string) (protocol.SoundChannels, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "off", "":
		return protocol.SoundChannelsOff, nil
	case "mono":
		return protocol.SoundChannelsMono, nil
	case "stereo":
		return protocol.SoundChannelsStereo, nil
	default:
		return 0, fmt.Errorf("config: invalid GMZ_SOUND_CHANNELS %q", v)
	}
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvUint32(key string, defaultVal uint32) uint32 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.ParseUint(v, 0, 32)
	if err != nil {
		return uint32(defaultVal)
	}
	return uint32(n)
}
