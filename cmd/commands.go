package main

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

func ErrUnknownCmd(cmd string) error {
	return errors.Errorf("unknown command '%s'", cmd)
}

func ErrInvalidNArg(cmd string) error {
	return errors.Errorf("invalid number of arguments for command '%s'", cmd)
}

var ErrNotInt = errors.New("value is not an integer or out of range")
var ErrUnbalancedQuotes = errors.New("unbalanced quotes")
var ErrEmptyCommand = errors.New("empty command")

type CommandType = byte

const (
	// Queue lifecycle
	CmdNew CommandType = iota
	CmdFree
	// Queue operations
	CmdInsertHead
	CmdInsertTail
	CmdRemoveHead
	CmdRemoveHeadQuiet
	CmdReverse
	CmdSort
	CmdSize
	CmdShow
	// Shell commands
	CmdOption
	CmdSource
	CmdHelp
	CmdQuit
)

type Command struct {
	Kind  CommandType
	Value string // ih, it, option, source

	Repeat      int    // ih, it
	Expected    string // rh
	ExpectedLen int    // size
	HasExpected bool   // rh, size
	Option      string // option
}

type commandHelp struct {
	usage string
	doc   string
}

var commandDocs = []commandHelp{
	{"new", "Create new queue"},
	{"free", "Delete queue"},
	{"ih str [n]", "Insert string str at head of queue n times (default: n == 1)"},
	{"it str [n]", "Insert string str at tail of queue n times (default: n == 1)"},
	{"rh [str]", "Remove from head of queue. Optionally compare to expected value str"},
	{"rhq", "Remove from head of queue without reporting value"},
	{"reverse", "Reverse queue"},
	{"sort", "Sort queue in ascending order"},
	{"size [n]", "Compute queue size. Optionally compare to expected size n"},
	{"show", "Show queue contents"},
	{"option [name val]", "Display or set options"},
	{"source file", "Read commands from source file"},
	{"help", "Show documentation"},
	{"quit", "Exit program"},
}

func ParseCommand(message string) (*Command, error) {
	split, err := sanitize(message)
	if err != nil {
		return nil, err
	}

	argc := len(split)
	if argc == 0 {
		return nil, ErrEmptyCommand
	}

	cmd := strings.ToLower(split[0])
	switch cmd {
	case "new":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdNew}, nil
	case "free":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdFree}, nil
	case "ih", "it":
		if argc < 2 || argc > 3 {
			return nil, ErrInvalidNArg(cmd)
		}

		insert := &Command{Kind: CmdInsertHead, Value: split[1], Repeat: 1}
		if cmd == "it" {
			insert.Kind = CmdInsertTail
		}
		if argc == 3 {
			n, err := cast.ToIntE(split[2])
			if err != nil || n < 1 {
				return nil, ErrNotInt
			}
			insert.Repeat = n
		}
		return insert, nil
	case "rh":
		if argc > 2 {
			return nil, ErrInvalidNArg(cmd)
		}

		rh := &Command{Kind: CmdRemoveHead}
		if argc == 2 {
			rh.Expected = split[1]
			rh.HasExpected = true
		}
		return rh, nil
	case "rhq":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdRemoveHeadQuiet}, nil
	case "reverse":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdReverse}, nil
	case "sort":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdSort}, nil
	case "size":
		if argc > 2 {
			return nil, ErrInvalidNArg(cmd)
		}

		size := &Command{Kind: CmdSize}
		if argc == 2 {
			n, err := cast.ToIntE(split[1])
			if err != nil {
				return nil, ErrNotInt
			}
			size.ExpectedLen = n
			size.HasExpected = true
		}
		return size, nil
	case "show":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdShow}, nil
	case "option":
		if argc != 1 && argc != 3 {
			return nil, ErrInvalidNArg(cmd)
		}

		option := &Command{Kind: CmdOption}
		if argc == 3 {
			option.Option = strings.ToLower(split[1])
			option.Value = split[2]
		}
		return option, nil
	case "source":
		if argc != 2 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdSource, Value: split[1]}, nil
	case "help":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdHelp}, nil
	case "quit", "exit":
		if argc != 1 {
			return nil, ErrInvalidNArg(cmd)
		}
		return &Command{Kind: CmdQuit}, nil
	}

	return nil, ErrUnknownCmd(cmd)
}

func isWhitespace(b byte) bool {
	return unicode.IsSpace(rune(b))
}

// sanitize splits a command line on whitespace. Single or double quotes group
// a token, so "" yields an empty argument.
func sanitize(message string) ([]string, error) {
	out := []string{}
	i := 0

	for i < len(message) {
		c := message[i]
		if isWhitespace(c) {
			i++
			continue
		}

		if c == '"' || c == '\'' {
			end := strings.IndexByte(message[i+1:], c)
			if end < 0 {
				return nil, ErrUnbalancedQuotes
			}

			out = append(out, message[i+1:i+1+end])
			i += end + 2
			continue
		}

		start := i
		for i < len(message) && !isWhitespace(message[i]) {
			i++
		}
		out = append(out, message[start:i])
	}

	return out, nil
}
