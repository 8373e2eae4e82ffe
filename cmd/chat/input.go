package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

type lineInput interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// basicLineInput 在无法使用 readline 的终端上退化为逐行读取
type basicLineInput struct {
	reader *bufio.Reader
	out    io.Writer
}

func newBasicLineInput(in io.Reader, out io.Writer) *basicLineInput {
	return &basicLineInput{reader: bufio.NewReader(in), out: out}
}

func (b *basicLineInput) ReadLine(prompt string) (string, error) {
	fmt.Fprint(b.out, prompt)
	line, err := b.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (b *basicLineInput) Close() error { return nil }

type readlineInput struct {
	instance *readline.Instance
}

func (r *readlineInput) ReadLine(prompt string) (string, error) {
	r.instance.SetPrompt(prompt)
	return r.instance.Readline()
}

func (r *readlineInput) Close() error { return r.instance.Close() }

// prefill places a voice transcript on the next prompt for the user to edit.
func (r *readlineInput) prefill(text string) {
	r.instance.WriteStdin([]byte(text))
}

func newLineInput(in io.ReadCloser, out io.Writer) lineInput {
	instance, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		Stdin:             in,
		Stdout:            out,
		HistorySearchFold: true,
	})
	if err != nil {
		return newBasicLineInput(in, out)
	}
	return &readlineInput{instance: instance}
}
