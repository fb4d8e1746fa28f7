// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AleutianAI/AleutianAsk/services/chatsession"
)

// commandKind identifies a line typed at the chat prompt.
type commandKind int

const (
	cmdAsk commandKind = iota
	cmdExit
	cmdHelp
	cmdRetry
	cmdClear
	cmdRegen
	cmdCite
	cmdThoughts
	cmdSupport
	cmdTab
	cmdFollowup
	cmdExamples
	cmdExample
	cmdSettings
	cmdConfig
	cmdInfo
	cmdHistory
)

// chatCommand is a parsed prompt line. Turn numbers are 0-based as shown in
// the transcript; citation, follow-up and example numbers are 1-based as
// listed.
type chatCommand struct {
	kind     commandKind
	question string
	turn     int
	index    int
	tab      chatsession.Tab
}

var errUsage = errors.New("usage")

// parseCommand turns a trimmed, non-empty line into a chatCommand. Lines not
// starting with "/" are questions, except the exit words.
func parseCommand(line string) (chatCommand, error) {
	if isExitCommand(line) {
		return chatCommand{kind: cmdExit}, nil
	}
	if !strings.HasPrefix(line, "/") {
		return chatCommand{kind: cmdAsk, question: line}, nil
	}

	fields := strings.Fields(line)
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "/help", "/?":
		return chatCommand{kind: cmdHelp}, noArgs(name, args)
	case "/retry":
		return chatCommand{kind: cmdRetry}, noArgs(name, args)
	case "/clear":
		return chatCommand{kind: cmdClear}, noArgs(name, args)
	case "/examples":
		return chatCommand{kind: cmdExamples}, noArgs(name, args)
	case "/settings":
		return chatCommand{kind: cmdSettings}, noArgs(name, args)
	case "/config":
		return chatCommand{kind: cmdConfig}, noArgs(name, args)
	case "/info":
		return chatCommand{kind: cmdInfo}, noArgs(name, args)
	case "/history":
		return chatCommand{kind: cmdHistory}, noArgs(name, args)
	case "/exit", "/quit":
		return chatCommand{kind: cmdExit}, noArgs(name, args)

	case "/regen":
		turn, err := intArgs(name, "TURN", args, 0)
		return chatCommand{kind: cmdRegen, turn: turn[0]}, err
	case "/thoughts":
		turn, err := intArgs(name, "TURN", args, 0)
		return chatCommand{kind: cmdThoughts, turn: turn[0]}, err
	case "/support":
		turn, err := intArgs(name, "TURN", args, 0)
		return chatCommand{kind: cmdSupport, turn: turn[0]}, err
	case "/example":
		n, err := intArgs(name, "N", args, 1)
		return chatCommand{kind: cmdExample, index: n[0] - 1}, err
	case "/cite":
		n, err := intArgs(name, "TURN N", args, 0, 1)
		return chatCommand{kind: cmdCite, turn: n[0], index: n[1] - 1}, err
	case "/followup":
		n, err := intArgs(name, "TURN K", args, 0, 1)
		return chatCommand{kind: cmdFollowup, turn: n[0], index: n[1] - 1}, err

	case "/tab":
		if len(args) != 1 {
			return chatCommand{}, fmt.Errorf("%w: /tab citation|thoughts|support", errUsage)
		}
		tab, err := chatsession.ParseTab(args[0])
		if err != nil || tab == chatsession.TabNone {
			return chatCommand{}, fmt.Errorf("%w: /tab citation|thoughts|support", errUsage)
		}
		return chatCommand{kind: cmdTab, tab: tab}, nil
	}
	return chatCommand{}, fmt.Errorf("unknown command %s, type /help", name)
}

func noArgs(name string, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %s takes no arguments", errUsage, name)
	}
	return nil
}

// intArgs parses exactly len(mins) integer arguments, each at least its
// minimum. The returned slice always has len(mins) entries.
func intArgs(name, usage string, args []string, mins ...int) ([]int, error) {
	out := make([]int, len(mins))
	if len(args) != len(mins) {
		return out, fmt.Errorf("%w: %s %s", errUsage, name, usage)
	}
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil || n < mins[i] {
			return out, fmt.Errorf("%w: %s %s", errUsage, name, usage)
		}
		out[i] = n
	}
	return out, nil
}

func isExitCommand(input string) bool {
	return input == "exit" || input == "quit"
}
