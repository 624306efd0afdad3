package console

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	carriageReturnConstant = "\r"
	lineFeedConstant       = "\n"
)

// LinePrompter writes a prompt and reads the next line from an io.Reader.
type LinePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewLinePrompter constructs a prompter from the provided reader and writer.
func NewLinePrompter(input io.Reader, output io.Writer) *LinePrompter {
	return &LinePrompter{reader: bufio.NewReader(input), writer: output}
}

// ReadLine writes the prompt and returns the next line without its terminator.
// The boolean is false once the input is exhausted and no characters were read.
func (prompter *LinePrompter) ReadLine(prompt string) (string, bool, error) {
	if prompter.writer != nil {
		if _, writeError := io.WriteString(prompter.writer, prompt); writeError != nil {
			return "", false, writeError
		}
	}

	line, readError := prompter.reader.ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return "", false, readError
	}
	if errors.Is(readError, io.EOF) && len(line) == 0 {
		return "", false, nil
	}

	line = strings.TrimSuffix(line, lineFeedConstant)
	line = strings.TrimSuffix(line, carriageReturnConstant)
	return line, true, nil
}
