package config

import (
	"github.com/BurntSushi/toml"
	"github.com/jd3nn1s/rt433"
	"github.com/jd3nn1s/rt433/channel"
	"github.com/jd3nn1s/rt433/forwarder"
	"github.com/pkg/errors"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultStateFile        = "rt433.state.toml"
	defaultMaxWriteFailures = 5
	defaultReconnectDelay   = time.Second
	defaultTestModeLaps     = 5
	defaultTestModeInterval = 2 * time.Second
)

// Duration is a time.Duration written as a string ("50ms") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", string(text))
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type SerialConfig struct {
	Port             string   `toml:"port"`
	Baud             int      `toml:"baud"`
	TickInterval     Duration `toml:"tick_interval"`
	MaxWriteFailures int      `toml:"max_write_failures"`
	ReconnectDelay   Duration `toml:"reconnect_delay"`
}

type DeliveryConfig struct {
	Retries         int `toml:"retries"`
	LapStatusSweeps int `toml:"lap_status_sweeps"`
}

type MQTTConfig struct {
	URL      string `toml:"url"`
	ClientID string `toml:"client_id"`
}

type TestModeConfig struct {
	Laps     int      `toml:"laps"`
	Interval Duration `toml:"interval"`
}

type Config struct {
	LogLevel  string `toml:"log_level"`
	LogFile   string `toml:"log_file"`
	StateFile string `toml:"state_file"`

	Serial   SerialConfig        `toml:"serial"`
	Delivery DeliveryConfig      `toml:"delivery"`
	Profile  Profile             `toml:"profile"`
	Mirror   forwarder.UDPConfig `toml:"mirror"`
	MQTT     MQTTConfig          `toml:"mqtt"`
	TestMode TestModeConfig      `toml:"testmode"`
}

// Load reads fileName, relative to the binary's directory unless absolute.
func Load(fileName string) (*Config, error) {
	path, err := Resolve(fileName)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open file %s", fileName)
	}
	defer file.Close()
	return LoadFromReader(file)
}

func LoadFromReader(configReader io.Reader) (*Config, error) {
	configData, err := ioutil.ReadAll(configReader)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read config reader")
	}
	config := Config{}
	md, err := toml.Decode(string(configData), &config)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load configuration")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown configuration keys: %v", undecoded)
	}
	config.setDefaults(md)
	if _, err := config.Profile.Channels(); err != nil {
		return nil, errors.Wrap(err, "invalid profile")
	}
	return &config, nil
}

func (c *Config) setDefaults(md toml.MetaData) {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.StateFile == "" {
		c.StateFile = defaultStateFile
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = rt433.DefaultBaudRate
	}
	if c.Serial.TickInterval.Duration <= 0 {
		c.Serial.TickInterval.Duration = rt433.DefaultTickInterval
	}
	if !md.IsDefined("serial", "max_write_failures") {
		c.Serial.MaxWriteFailures = defaultMaxWriteFailures
	}
	if !md.IsDefined("serial", "reconnect_delay") {
		c.Serial.ReconnectDelay.Duration = defaultReconnectDelay
	}
	if c.Delivery.Retries <= 0 {
		c.Delivery.Retries = rt433.DefaultRetries
	}
	if c.Delivery.LapStatusSweeps <= 0 {
		c.Delivery.LapStatusSweeps = 1
	}
	if c.TestMode.Laps <= 0 {
		c.TestMode.Laps = defaultTestModeLaps
	}
	if c.TestMode.Interval.Duration <= 0 {
		c.TestMode.Interval.Duration = defaultTestModeInterval
	}
}

func (c *Config) TransportConfig() rt433.TransportConfig {
	return rt433.TransportConfig{
		PortName:         c.Serial.Port,
		BaudRate:         c.Serial.Baud,
		TickInterval:     c.Serial.TickInterval.Duration,
		MaxWriteFailures: c.Serial.MaxWriteFailures,
	}
}

func (c *Config) Options() rt433.Options {
	return rt433.Options{
		Retries:         c.Delivery.Retries,
		LapStatusSweeps: c.Delivery.LapStatusSweeps,
	}
}

// Resolve makes fileName relative to the directory of the running binary.
func Resolve(fileName string) (string, error) {
	if filepath.IsAbs(fileName) {
		return fileName, nil
	}
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))
	if err != nil {
		return "", errors.Wrapf(err, "unable to determine binary location")
	}
	return filepath.Join(dir, fileName), nil
}

// Profile is the frequency profile's band/channel assignment, one entry
// per node.
type Profile struct {
	Bands   []string `toml:"bands"`
	Numbers []int    `toml:"channels"`
}

func (p *Profile) Channels() ([]channel.Channel, error) {
	if len(p.Bands) != len(p.Numbers) {
		return nil, errors.Errorf("profile has %d bands but %d channels", len(p.Bands), len(p.Numbers))
	}
	channels := make([]channel.Channel, 0, len(p.Bands))
	for i, band := range p.Bands {
		c, err := channel.FromBandChannel(band, p.Numbers[i])
		if err != nil {
			return nil, errors.Wrapf(err, "node %d", i)
		}
		channels = append(channels, c)
	}
	return channels, nil
}
