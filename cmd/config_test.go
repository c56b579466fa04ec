package main

import (
	"strings"
	"testing"
)

func TestReadConfig(t *testing.T) {
	conf, err := ReadConfig(strings.NewReader("verbose = 2\nerror_limit = 0\nseed = 99\n"))
	if err != nil {
		t.Fatal(err)
	}

	options := defaultShellOptions()
	conf.Apply(options)

	if options.Verbose != 2 || options.ErrorLimit != 0 || options.Seed != 99 {
		t.Error("Expected config values to be applied, got", options)
	}
	if !options.Echo || options.Length != DefaultLength {
		t.Error("Expected keys missing from the file to keep defaults, got", options)
	}
}

func TestReadConfigErrors(t *testing.T) {
	if _, err := ReadConfig(strings.NewReader("verbose = ")); err == nil {
		t.Error("Expected invalid toml to fail")
	}
	if _, err := ReadConfig(strings.NewReader("colour = \"red\"")); err == nil {
		t.Error("Expected unknown key to fail")
	}
	if _, err := LoadConfig("does-not-exist.toml"); err == nil {
		t.Error("Expected missing file to fail")
	}
}
