/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

type EmulatorConfig struct {
	Address string        `yaml:"address,omitempty"`
	Port    int           `yaml:"port,omitempty"`
	Tick    time.Duration `yaml:"tick,omitempty"`
}

type ApiConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address,omitempty"`
	Port    int    `yaml:"port,omitempty"`
}

type MonitorConfig struct {
	DeviceAddress string        `yaml:"deviceAddress,omitempty"`
	DevicePort    int           `yaml:"devicePort,omitempty"`
	Timeout       time.Duration `yaml:"timeout,omitempty"`
	DBPath        string        `yaml:"dbPath,omitempty"`
	RedisAddr     string        `yaml:"redisAddr,omitempty"`
	RedisChannel  string        `yaml:"redisChannel,omitempty"`
}

type Config struct {
	*EmulatorConfig `yaml:"emulator,omitempty"`
	*ApiConfig      `yaml:"api,omitempty"`
	*MonitorConfig  `yaml:"monitor,omitempty"`
	LogLevel        string `yaml:"logLevel,omitempty"`
	filepath        string
}

func (c *Config) SetPath(path string) {
	c.filepath = path
}

func (c *Config) Path() string {
	return c.filepath
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return os.WriteFile(c.filepath, data, 0644)
}

// Load reads the config file over the defaults. A missing file leaves defaults untouched.
// Values are not checked, commands call Validate before using them.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.filepath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) Validate() error {
	if c.EmulatorConfig != nil {
		if c.EmulatorConfig.Port <= 0 || c.EmulatorConfig.Port > 65535 {
			return ErrInvalidConfig{What: fmt.Sprintf("emulator port %d", c.EmulatorConfig.Port)}
		}
		if c.EmulatorConfig.Tick <= 0 {
			return ErrInvalidConfig{What: fmt.Sprintf("emulator tick %s", c.EmulatorConfig.Tick)}
		}
	}
	if c.MonitorConfig != nil {
		if c.MonitorConfig.DevicePort <= 0 || c.MonitorConfig.DevicePort > 65535 {
			return ErrInvalidConfig{What: fmt.Sprintf("monitor device port %d", c.MonitorConfig.DevicePort)}
		}
		if c.MonitorConfig.Timeout <= 0 {
			return ErrInvalidConfig{What: fmt.Sprintf("monitor timeout %s", c.MonitorConfig.Timeout)}
		}
	}
	if c.ApiConfig != nil && c.ApiConfig.Enabled {
		if c.ApiConfig.Port <= 0 || c.ApiConfig.Port > 65535 {
			return ErrInvalidConfig{What: fmt.Sprintf("api port %d", c.ApiConfig.Port)}
		}
	}
	return nil
}

func (c *Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("---\n%s", string(data))
}

func (c *Config) EmulatorEndpoint() string {
	return fmt.Sprintf("%s:%d", c.EmulatorConfig.Address, c.EmulatorConfig.Port)
}

func (c *Config) ApiEndpoint() string {
	return fmt.Sprintf("%s:%d", c.ApiConfig.Address, c.ApiConfig.Port)
}

func (c *Config) DeviceEndpoint() string {
	return fmt.Sprintf("%s:%d", c.MonitorConfig.DeviceAddress, c.MonitorConfig.DevicePort)
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

func DefaultDBPath() string {
	return filepath.Join(filepath.Dir(DefaultConfigPath()), DefaultDBFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		EmulatorConfig: &EmulatorConfig{
			Address: DefaultEmulatorAddress,
			Port:    DefaultEmulatorPort,
			Tick:    DefaultTick,
		},
		ApiConfig: &ApiConfig{
			Enabled: false,
			Address: DefaultApiAddress,
			Port:    DefaultApiPort,
		},
		MonitorConfig: &MonitorConfig{
			DeviceAddress: DefaultMonitorDeviceAddress,
			DevicePort:    DefaultMonitorDevicePort,
			Timeout:       DefaultMonitorTimeout,
			DBPath:        DefaultDBPath(),
			RedisChannel:  DefaultRedisChannel,
		},
		LogLevel: DefaultLogLevel,
		filepath: DefaultConfigPath(),
	}
}
