package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const StrqVersion = "0.0.1"

func newLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger
}

func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	options, err := getShellOptions(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	logger := newLogger(stderr)

	in := stdin
	if options.File != "" {
		file, err := os.Open(options.File)
		if err != nil {
			fmt.Fprintln(stderr, errors.Wrap(err, "failed to open script"))
			return 2
		}
		defer file.Close()
		in = file
	}

	shell := NewShell(stdout, logger, options)
	logger.WithField("version", StrqVersion).Debug("Queue shell started")

	err = shell.Run(in)
	if err != nil {
		logger.Error(err)
	}
	shell.Close()

	if err != nil || shell.Errors() > 0 {
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
