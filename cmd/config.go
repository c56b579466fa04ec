package main

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config mirrors the shell options that can be set from a TOML file, e.g.
//
//	echo = false
//	verbose = 2
//	length = 32
//	error_limit = 10
//	malloc = 25
//	seed = 7
type Config struct {
	Echo       bool  `toml:"echo"`
	Verbose    int   `toml:"verbose"`
	Length     int   `toml:"length"`
	ErrorLimit int   `toml:"error_limit"`
	Malloc     int   `toml:"malloc"`
	Seed       int64 `toml:"seed"`

	md toml.MetaData
}

func LoadConfig(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open config file %s", filename)
	}
	defer file.Close()

	conf, err := ReadConfig(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config file %s", filename)
	}

	return conf, nil
}

func ReadConfig(r io.Reader) (*Config, error) {
	conf := &Config{}
	md, err := toml.DecodeReader(r, conf)
	if err != nil {
		return nil, errors.Wrap(err, "invalid toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown config key '%s'", undecoded[0].String())
	}

	conf.md = md
	return conf, nil
}

// Apply copies the keys present in the file onto options.
func (c *Config) Apply(options *ShellOptions) {
	if c.md.IsDefined("echo") {
		options.Echo = c.Echo
	}
	if c.md.IsDefined("verbose") {
		options.Verbose = c.Verbose
	}
	if c.md.IsDefined("length") && c.Length > 0 {
		options.Length = c.Length
	}
	if c.md.IsDefined("error_limit") {
		options.ErrorLimit = c.ErrorLimit
	}
	if c.md.IsDefined("malloc") {
		options.FailProbability = c.Malloc
	}
	if c.md.IsDefined("seed") {
		options.Seed = c.Seed
	}
}
