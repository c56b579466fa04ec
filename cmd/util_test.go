package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestStringifyCommand(t *testing.T) {
	args := []string{"it", "hello world!", "2"}
	if str := StringifyCommand(args); str != "it \"hello world!\" 2" {
		t.Error("Expected other result for StringifyCommand, got", str)
	}
	if str := StringifyCommand([]string{"ih", ""}); str != "ih \"\"" {
		t.Error("Expected empty argument to be quoted, got", str)
	}
}

func TestGetShellOptions(t *testing.T) {
	options, err := getShellOptions([]string{"-f", "script.cmd", "-v", "3", "-malloc", "20"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	if options.File != "script.cmd" {
		t.Error("Expected file to be script.cmd")
	}
	if options.Verbose != 3 || options.FailProbability != 20 {
		t.Error("Expected flags to be applied, got", options)
	}
	if options.Length != DefaultLength || options.ErrorLimit != DefaultErrorLimit || !options.Echo {
		t.Error("Expected defaults for unset options, got", options)
	}
}

func TestGetShellOptionsConfig(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "strq.toml")
	err := os.WriteFile(config, []byte("echo = false\nlength = 8\nmalloc = 10\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	options, err := getShellOptions([]string{"-config", config, "-malloc", "40"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	if options.Echo {
		t.Error("Expected echo from config file to be false")
	}
	if options.Length != 8 {
		t.Error("Expected length 8 from config file")
	}
	if options.FailProbability != 40 {
		t.Error("Expected flag to win over config file")
	}

	if _, err := getShellOptions([]string{"-c", filepath.Join(dir, "missing.toml")}, io.Discard); err == nil {
		t.Error("Expected missing config file to be an error")
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	if FileExists(filepath.Join(dir, "none")) {
		t.Error("Expected FileExists() to be false")
	}
	if !FileExists(dir) {
		t.Error("Expected FileExists() to be true")
	}
}
