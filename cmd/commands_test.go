package main

import (
	"reflect"
	"testing"
)

func TestSanitize(t *testing.T) {
	if res, err := sanitize("show"); err != nil || !reflect.DeepEqual(res, []string{"show"}) {
		t.Error("Expected sanitize('show') to return ['show']")
	}
	if res, err := sanitize("show\n"); err != nil || !reflect.DeepEqual(res, []string{"show"}) {
		t.Error("Expected sanitize('show') to return ['show']")
	}
	if res, err := sanitize("ih a\nit b 2"); err != nil || !reflect.DeepEqual(res, []string{
		"ih", "a", "it", "b", "2",
	}) {
		t.Error("Expected other result for multiple operations")
	}

	if res, err := sanitize("it \"my message\" 'Hello there!'"); err != nil || !reflect.DeepEqual(res, []string{
		"it", "my message", "Hello there!",
	}) {
		t.Error("Expected other result for string input")
	}

	if res, err := sanitize("it \"\""); err != nil || !reflect.DeepEqual(res, []string{"it", ""}) {
		t.Error("Expected empty quoted argument, got", res)
	}

	_, err := sanitize("it \"error")
	if err != ErrUnbalancedQuotes {
		t.Error("Expected unterminated string error")
	}
	_, err = sanitize("it '")
	if err != ErrUnbalancedQuotes {
		t.Error("Expected unterminated string error for trailing quote")
	}
}

func TestParse(t *testing.T) {
	str := "ih apple"
	cmd := &Command{Kind: CmdInsertHead, Value: "apple", Repeat: 1}
	res, _ := ParseCommand(str)
	if !reflect.DeepEqual(cmd, res) {
		t.Error("Expected result to be:", cmd, "got", res)
	}

	str = "IT apple 3"
	cmd = &Command{Kind: CmdInsertTail, Value: "apple", Repeat: 3}
	res, _ = ParseCommand(str)
	if !reflect.DeepEqual(cmd, res) {
		t.Error("Expected result to be:", cmd, "got", res)
	}

	str = "rh apple"
	cmd = &Command{Kind: CmdRemoveHead, Expected: "apple", HasExpected: true}
	res, _ = ParseCommand(str)
	if !reflect.DeepEqual(cmd, res) {
		t.Error("Expected result to be:", cmd, "got", res)
	}

	str = "size 4"
	cmd = &Command{Kind: CmdSize, ExpectedLen: 4, HasExpected: true}
	res, _ = ParseCommand(str)
	if !reflect.DeepEqual(cmd, res) {
		t.Error("Expected result to be:", cmd, "got", res)
	}

	str = "option Malloc 30"
	cmd = &Command{Kind: CmdOption, Option: "malloc", Value: "30"}
	res, _ = ParseCommand(str)
	if !reflect.DeepEqual(cmd, res) {
		t.Error("Expected result to be:", cmd, "got", res)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := ParseCommand(""); err != ErrEmptyCommand {
		t.Error("Expected empty command error")
	}
	if _, err := ParseCommand("push x"); err == nil {
		t.Error("Expected unknown command error")
	}
	if _, err := ParseCommand("ih"); err == nil {
		t.Error("Expected arity error for 'ih'")
	}
	if _, err := ParseCommand("ih a b"); err != ErrNotInt {
		t.Error("Expected integer error for 'ih a b'")
	}
	if _, err := ParseCommand("ih a 0"); err != ErrNotInt {
		t.Error("Expected integer error for zero repeat")
	}
	if _, err := ParseCommand("size many"); err != ErrNotInt {
		t.Error("Expected integer error for 'size many'")
	}
	if _, err := ParseCommand("option malloc"); err == nil {
		t.Error("Expected arity error for 'option malloc'")
	}
	if _, err := ParseCommand("reverse now"); err == nil {
		t.Error("Expected arity error for 'reverse now'")
	}
}
