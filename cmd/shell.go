package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	sizeFormat "github.com/rdev02/size-format"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"skabillium/strq/cmd/harness"
	"skabillium/strq/cmd/queue"
)

const (
	maxShown       = 50
	maxSourceDepth = 8
)

// maxLineLength bounds a single script line.
var maxLineLength = 16 * 1024 * 1024

var ErrTooManyErrors = errors.New("error limit exceeded")

// Shell interprets queue commands against a single queue whose storage is
// accounted by a harness heap.
type Shell struct {
	out    io.Writer
	logger *logrus.Logger
	log    *logrus.Entry

	heap    *harness.Heap
	q       *queue.Queue
	options *ShellOptions

	errors int
	quit   bool
	depth  int
}

func NewShell(out io.Writer, logger *logrus.Logger, options *ShellOptions) *Shell {
	heap := harness.NewHeap(options.Seed, logrus.NewEntry(logger))
	heap.SetFailProbability(options.FailProbability)
	setVerbose(logger, options.Verbose)

	return &Shell{
		out:     out,
		logger:  logger,
		log:     logger.WithField("component", "shell"),
		heap:    heap,
		options: options,
	}
}

func (s *Shell) Writeln(message string) {
	fmt.Fprintln(s.out, message)
}

func (s *Shell) Warn(message string) {
	s.Writeln("WARNING: " + message)
}

func (s *Shell) Error(message string) {
	s.errors++
	s.log.WithField("errors", s.errors).Debug(message)
	s.Writeln("ERROR: " + message)
}

func (s *Shell) Errors() int {
	return s.errors
}

// Run executes commands line by line until EOF, quit, or the error limit is
// exceeded.
func (s *Shell) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLineLength)), maxLineLength)
	for !s.quit && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		s.Execute(line)
		if s.errors > s.options.ErrorLimit {
			return errors.Wrapf(ErrTooManyErrors, "%d errors", s.errors)
		}
	}

	if err := scanner.Err(); err != nil {
		err = errors.Wrap(err, "failed to read commands")
		s.Error(err.Error())
		return err
	}
	return nil
}

// Close frees the current queue and reports leaked storage.
func (s *Shell) Close() {
	if s.q != nil {
		s.freeQueue()
	}
}

func (s *Shell) Execute(line string) {
	cmd, err := ParseCommand(line)
	if s.options.Echo {
		if args, serr := sanitize(line); serr == nil {
			line = StringifyCommand(args)
		}
		s.Writeln("cmd> " + line)
	}
	if err != nil {
		s.Error(err.Error())
		return
	}

	s.log.WithField("kind", cmd.Kind).Debug("Executing command")

	switch cmd.Kind {
	case CmdNew:
		if s.q != nil {
			s.freeQueue()
		}
		s.q = queue.New(s.heap)
		if s.q == nil {
			s.Warn("Allocation of queue failed")
		}
		s.show()
	case CmdFree:
		if s.q == nil {
			s.Warn("Calling free on null queue")
		}
		s.freeQueue()
		s.show()
	case CmdInsertHead, CmdInsertTail:
		s.insert(cmd)
		s.show()
	case CmdRemoveHead, CmdRemoveHeadQuiet:
		s.removeHead(cmd)
		s.show()
	case CmdReverse:
		if s.q == nil {
			s.Warn("Calling reverse on null queue")
		}
		s.withoutAllocation("reverse", s.q.Reverse)
		s.show()
	case CmdSort:
		if s.q == nil {
			s.Warn("Calling sort on null queue")
		}
		s.withoutAllocation("sort", s.q.Sort)
		s.checkSorted()
		s.show()
	case CmdSize:
		s.size(cmd)
	case CmdShow:
		s.show()
	case CmdOption:
		s.option(cmd)
	case CmdSource:
		s.source(cmd.Value)
	case CmdHelp:
		for _, doc := range commandDocs {
			s.Writeln(fmt.Sprintf("\t%-18s| %s", doc.usage, doc.doc))
		}
	case CmdQuit:
		s.Close()
		s.quit = true
	}
}

func (s *Shell) freeQueue() {
	violations := s.heap.Violations()
	s.q.Free()
	s.q = nil

	if s.heap.Violations() > violations {
		s.Error("Queue released storage it did not own")
	}
	if blocks := s.heap.Allocated(); blocks > 0 {
		s.Error(fmt.Sprintf("Freed queue, but %d blocks (%s) are still allocated",
			blocks, sizeFormat.ToString(int64(s.heap.Bytes()))))
	}
}

func (s *Shell) insert(cmd *Command) {
	name := "head"
	insert := s.q.InsertHead
	if cmd.Kind == CmdInsertTail {
		name = "tail"
		insert = s.q.InsertTail
	}

	if s.q == nil {
		s.Warn(fmt.Sprintf("Calling insert %s on null queue", name))
	}

	for i := 0; i < cmd.Repeat; i++ {
		size := s.q.Size()
		failures := s.heap.Failures()

		if insert(cmd.Value) {
			if s.q.Size() != size+1 {
				s.Error(fmt.Sprintf("Queue size %d after insert %s, expected %d", s.q.Size(), name, size+1))
				return
			}
			continue
		}

		switch {
		case s.q == nil:
		case cmd.Value == "":
			s.Writeln("Insertion of empty string rejected")
		case s.heap.Failures() > failures:
			s.Warn(fmt.Sprintf("Insertion of %s failed (allocation failure)", cmd.Value))
		default:
			s.Error(fmt.Sprintf("Insertion of %s failed", cmd.Value))
		}
		if s.q.Size() != size {
			s.Error("Failed insertion changed queue size")
		}
		return
	}
}

func (s *Shell) removeHead(cmd *Command) {
	var buf []byte
	if cmd.Kind == CmdRemoveHead {
		buf = make([]byte, s.options.Length+1)
	}

	if s.q == nil {
		s.Warn("Calling remove head on null queue")
	} else if s.q.Size() == 0 {
		s.Warn("Calling remove head on empty queue")
	}

	size := s.q.Size()
	ok := s.q.RemoveHead(buf)
	switch {
	case !ok && size > 0:
		s.Error("Failed to remove head from non-empty queue")
		return
	case ok && size == 0:
		s.Error("Removed head from empty queue")
		return
	case !ok:
		return
	}

	if s.q.Size() != size-1 {
		s.Error(fmt.Sprintf("Queue size %d after remove head, expected %d", s.q.Size(), size-1))
	}
	if buf == nil {
		return
	}

	removed := cString(buf)
	s.Writeln(fmt.Sprintf("Removed %s from queue", removed))
	if cmd.HasExpected {
		expected := cmd.Expected
		if len(expected) > s.options.Length {
			expected = expected[:s.options.Length]
		}
		if removed != expected {
			s.Error(fmt.Sprintf("Removed value %s does not match expected value %s", removed, expected))
		}
	}
}

// withoutAllocation runs op with the heap forbidding any allocation and
// checks that neither the heap nor the queue size changed.
func (s *Shell) withoutAllocation(name string, op func()) {
	size := s.q.Size()
	violations := s.heap.Violations()

	s.heap.Forbid()
	op()
	s.heap.Permit()

	if s.heap.Violations() > violations {
		s.Error(fmt.Sprintf("Allocation disallowed in %s", name))
	}
	if s.q.Size() != size {
		s.Error(fmt.Sprintf("Queue size changed from %d to %d in %s", size, s.q.Size(), name))
	}
}

func (s *Shell) checkSorted() {
	var prev string
	first := true
	s.q.Each(func(v string) bool {
		if !first && queue.CompareFold(prev, v) > 0 {
			s.Error(fmt.Sprintf("Queue not sorted: %s precedes %s", prev, v))
			return false
		}
		prev, first = v, false
		return true
	})
}

func (s *Shell) size(cmd *Command) {
	if s.q == nil {
		s.Warn("Calling size on null queue")
	}

	n := s.q.Size()
	s.Writeln(fmt.Sprintf("Queue size = %d", n))
	if cmd.HasExpected && n != cmd.ExpectedLen {
		s.Error(fmt.Sprintf("Computed queue size as %d, but expected %d", n, cmd.ExpectedLen))
	}
	if err := s.q.Verify(); err != nil {
		s.Error(err.Error())
	}
}

func (s *Shell) show() {
	if s.q == nil {
		s.Writeln("q = NULL")
		return
	}

	shown := []string{}
	s.q.Each(func(v string) bool {
		if len(shown) == maxShown {
			shown = append(shown, "...")
			return false
		}
		shown = append(shown, v)
		return true
	})
	s.Writeln("q = [" + strings.Join(shown, " ") + "]")

	if err := s.q.Verify(); err != nil {
		s.Error(err.Error())
	}
}

func (s *Shell) option(cmd *Command) {
	if cmd.Option == "" {
		s.Writeln("Options:")
		s.Writeln(fmt.Sprintf("\techo\t%t\tDo/don't echo commands", s.options.Echo))
		s.Writeln(fmt.Sprintf("\terror\t%d\tNumber of errors until exit", s.options.ErrorLimit))
		s.Writeln(fmt.Sprintf("\tlength\t%d\tMaximum length of displayed string", s.options.Length))
		s.Writeln(fmt.Sprintf("\tmalloc\t%d\tAllocation failure probability percent", s.heap.FailProbability()))
		s.Writeln(fmt.Sprintf("\tverbose\t%d\tVerbosity level", s.options.Verbose))
		s.Writeln(fmt.Sprintf("\theap\t%d blocks (%s)\tLive allocations", s.heap.Allocated(), sizeFormat.ToString(int64(s.heap.Bytes()))))
		return
	}

	if cmd.Option == "echo" {
		echo, err := cast.ToBoolE(cmd.Value)
		if err != nil {
			s.Error(fmt.Sprintf("Invalid value '%s' for option echo", cmd.Value))
			return
		}
		s.options.Echo = echo
		return
	}

	n, err := cast.ToIntE(cmd.Value)
	if err != nil {
		s.Error(fmt.Sprintf("Invalid value '%s' for option %s", cmd.Value, cmd.Option))
		return
	}

	switch cmd.Option {
	case "error":
		s.options.ErrorLimit = n
	case "length":
		if n < 1 {
			s.Error("Option length must be positive")
			return
		}
		s.options.Length = n
	case "malloc":
		s.heap.SetFailProbability(n)
	case "verbose":
		s.options.Verbose = n
		setVerbose(s.logger, n)
	default:
		s.Error(fmt.Sprintf("Unknown option '%s'", cmd.Option))
	}
}

func (s *Shell) source(filename string) {
	if s.depth >= maxSourceDepth {
		s.Error(fmt.Sprintf("Source nesting too deep at %s", filename))
		return
	}

	file, err := os.Open(filename)
	if err != nil {
		s.Error(errors.Wrap(err, "failed to source").Error())
		return
	}
	defer file.Close()

	s.depth++
	defer func() { s.depth-- }()

	if err := s.Run(file); err != nil {
		s.log.WithField("file", filename).Debug(err)
	}
}

// setVerbose maps a verbosity level to a logrus level: 0 is errors only,
// 4 is trace.
func setVerbose(logger *logrus.Logger, verbose int) {
	level := logrus.ErrorLevel + logrus.Level(max(0, verbose))
	if level > logrus.TraceLevel {
		level = logrus.TraceLevel
	}
	logger.SetLevel(level)
}

func cString(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}
