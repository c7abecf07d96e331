package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrInputClosed is returned when the input stream ends while a prompt is waiting
var ErrInputClosed = errors.New("input terminated")

const positiveAmountMessage = "0より大きい数を入力してください"

// Prompter reads numbered choices and amounts from a line-oriented reader
type Prompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewPrompter creates a prompter, defaulting to stdin and stdout
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: bufio.NewReader(reader),
		writer: writer,
	}
}

// Choose lists choices numbered from 1 and returns the index of the one picked.
// Anything other than a listed number re-prompts.
func (p *Prompter) Choose(ctx context.Context, message string, choices []string) (int, error) {
	if len(choices) == 0 {
		return 0, fmt.Errorf("no choices for %q", message)
	}

	if _, err := fmt.Fprintln(p.writer, FormatPrompt(message)); err != nil {
		return 0, fmt.Errorf("failed to write prompt: %w", err)
	}
	for i, choice := range choices {
		if _, err := fmt.Fprintf(p.writer, "  %d) %s\n", i+1, choice); err != nil {
			return 0, fmt.Errorf("failed to write choice: %w", err)
		}
	}

	for {
		input, err := p.readLine(ctx, "番号")
		if err != nil {
			return 0, err
		}

		n, convErr := strconv.Atoi(input)
		if convErr == nil && n >= 1 && n <= len(choices) {
			return n - 1, nil
		}
		p.complain(fmt.Sprintf("1から%dの番号を入力してください", len(choices)))
	}
}

// Amount asks for a whole yen amount greater than zero, re-prompting until it gets one
func (p *Prompter) Amount(ctx context.Context, message string) (int64, error) {
	for {
		input, err := p.readLine(ctx, message)
		if err != nil {
			return 0, err
		}

		amount, convErr := strconv.ParseInt(input, 10, 64)
		if convErr == nil && amount > 0 {
			return amount, nil
		}
		p.complain(positiveAmountMessage)
	}
}

func (p *Prompter) readLine(ctx context.Context, prompt string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if _, err := fmt.Fprintf(p.writer, "%s: ", FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompter) complain(message string) {
	_, _ = fmt.Fprintln(p.writer, FormatError(message))
}
