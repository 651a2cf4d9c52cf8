// Copyright 2024 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/acquirecloud/timeout/config"
	"github.com/acquirecloud/timeout/logging"
)

type (
	// Config defines the command settings, which may come from a file, the
	// environment variables (the TIMEOUT_ prefix) and the command-line flags
	Config struct {
		// After is the default deadline for the executed command ("0s" disables the guard)
		After string `json:"after"`
		// LogLevel defines the logging verbosity (ERROR, WARN, INFO, DEBUG or TRACE)
		LogLevel string `json:"logLevel"`
	}
)

func getDefaultConfig() *Config {
	return &Config{
		After:    "0s",
		LogLevel: "WARN",
	}
}

// buildConfig composes the effective config: defaults, then the file values,
// then the environment variables on top
func buildConfig(cfgFile string) (*Config, error) {
	e := config.NewEnricher(*getDefaultConfig())
	fe := config.NewEnricher(Config{})
	if err := fe.LoadFromFile(cfgFile); err != nil {
		return nil, fmt.Errorf("could not read data from the file %s: %w", cfgFile, err)
	}
	// overwrite default
	_ = e.ApplyOther(fe)
	_ = e.ApplyEnvVariables("TIMEOUT", "_")
	cfg := e.Value()
	return &cfg, nil
}

// after returns the parsed After value
func (c *Config) after() (time.Duration, error) {
	return time.ParseDuration(c.After)
}

// logLevel returns the parsed LogLevel value, or WARN if it is unknown
func (c *Config) logLevel() logging.Level {
	lvl, ok := logging.ParseLevel(c.LogLevel)
	if !ok {
		return logging.WARN
	}
	return lvl
}

// String implements fmt.Stringify interface in a pretty console form
func (c *Config) String() string {
	b, _ := json.MarshalIndent(*c, "", "  ")
	return string(b)
}
