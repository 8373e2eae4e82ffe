package main

import (
	"strings"

	"github.com/zhouzirui/smartchat/internal/analysis/intent"
)

type commandKind int

const (
	cmdMessage commandKind = iota
	cmdEmpty
	cmdReset
	cmdImage
	cmdHistory
	cmdMic
	cmdQuit
)

type command struct {
	kind commandKind
	arg  string
}

// parseCommand 解析一行输入。清空规则与服务端一致，包含 reset/clear 即清空会话
func parseCommand(line string) command {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return command{kind: cmdEmpty}
	case line == "/quit" || line == "/exit":
		return command{kind: cmdQuit}
	case line == "/history":
		return command{kind: cmdHistory}
	case line == "/mic":
		return command{kind: cmdMic}
	case strings.HasPrefix(line, "/image"):
		return command{kind: cmdImage, arg: strings.TrimSpace(strings.TrimPrefix(line, "/image"))}
	case intent.IsResetCommand(line):
		return command{kind: cmdReset}
	}
	return command{kind: cmdMessage, arg: line}
}
