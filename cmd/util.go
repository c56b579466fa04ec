package main

import (
	"flag"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const (
	DefaultConfigName = "strq.toml"
	DefaultLength     = 1024
	DefaultErrorLimit = 5
	DefaultVerbose    = 1
)

type ShellOptions struct {
	File            string
	Config          string
	Seed            int64
	Echo            bool
	Verbose         int
	Length          int
	ErrorLimit      int
	FailProbability int
}

func defaultShellOptions() *ShellOptions {
	return &ShellOptions{
		Seed:       1,
		Echo:       true,
		Verbose:    DefaultVerbose,
		Length:     DefaultLength,
		ErrorLimit: DefaultErrorLimit,
	}
}

// Read command line options. Values from the config file are applied first,
// flags given explicitly win over them.
func getShellOptions(args []string, stderr io.Writer) (*ShellOptions, error) {
	var (
		file     string
		fileSr   string
		config   string
		configSr string
		verbose  int
		verbSr   int
		seed     int64
		echo     bool
		malloc   int
	)

	fs := flag.NewFlagSet("strq", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&file, "file", "", "Script file to execute instead of stdin")
	fs.StringVar(&fileSr, "f", "", "Shorthand for file")
	fs.StringVar(&config, "config", "", "TOML config file")
	fs.StringVar(&configSr, "c", "", "Shorthand for config")
	fs.IntVar(&verbose, "verbose", DefaultVerbose, "Verbosity level (0-4)")
	fs.IntVar(&verbSr, "v", DefaultVerbose, "Shorthand for verbose")
	fs.Int64Var(&seed, "seed", 1, "Seed for allocation failure injection")
	fs.BoolVar(&echo, "echo", true, "Echo commands")
	fs.IntVar(&malloc, "malloc", 0, "Allocation failure probability in percent")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if file == "" {
		file = fileSr
	}
	if config == "" {
		config = configSr
	}
	if config == "" && FileExists(DefaultConfigName) {
		config = DefaultConfigName
	}

	options := defaultShellOptions()
	options.File = file
	options.Config = config

	if config != "" {
		conf, err := LoadConfig(config)
		if err != nil {
			return nil, err
		}
		conf.Apply(options)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "verbose":
			options.Verbose = verbose
		case "v":
			options.Verbose = verbSr
		case "seed":
			options.Seed = seed
		case "echo":
			options.Echo = echo
		case "malloc":
			options.FailProbability = malloc
		}
	})

	return options, nil
}

// Join command arguments back into a line, quoting the ones that would not
// survive sanitize on their own.
func StringifyCommand(args []string) string {
	var exec string
	for i, s := range args {
		if i != 0 {
			exec += " "
		}

		if s == "" || strings.ContainsAny(s, " \t") {
			s = "\"" + s + "\""
		}

		exec += s
	}

	return exec
}

// Check if a given file path exists
func FileExists(filename string) bool {
	_, err := os.Stat(filename)
	return !errors.Is(err, os.ErrNotExist)
}
