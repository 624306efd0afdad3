package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/temirov/cowtalk/internal/cowsay"
)

const (
	lineTerminatorConstant            = "\n"
	failureLineTemplateConstant       = "%s\n"
	unsupportedResultTemplateConstant = "unsupported result %T"
)

// Renderer prints invocation results, highlighting failures in red.
type Renderer struct {
	writer        io.Writer
	failureColor  *color.Color
	farewellColor *color.Color
}

// NewRenderer constructs a Renderer. When colorEnabled is false every message is printed
// without escape sequences regardless of terminal detection.
func NewRenderer(writer io.Writer, colorEnabled bool) *Renderer {
	failureColor := color.New(color.FgRed)
	farewellColor := color.New(color.FgCyan)
	if !colorEnabled {
		failureColor.DisableColor()
		farewellColor.DisableColor()
	}
	return &Renderer{writer: writer, failureColor: failureColor, farewellColor: farewellColor}
}

// RenderResult writes the cow on success or a single highlighted line on failure.
func (renderer *Renderer) RenderResult(invocationResult cowsay.InvocationResult) error {
	switch typedResult := invocationResult.(type) {
	case cowsay.InvocationSuccess:
		return renderer.writeOutput(typedResult.Output)
	case cowsay.InvocationFailure:
		return renderer.RenderFailure(typedResult.Reason)
	default:
		return renderer.RenderFailure(fmt.Sprintf(unsupportedResultTemplateConstant, invocationResult))
	}
}

// RenderFailure writes message as a highlighted line.
func (renderer *Renderer) RenderFailure(message string) error {
	singleLineMessage := strings.Join(strings.Fields(message), " ")
	_, writeError := renderer.failureColor.Fprintf(renderer.writer, failureLineTemplateConstant, singleLineMessage)
	return writeError
}

// RenderFarewell writes the closing message.
func (renderer *Renderer) RenderFarewell(message string) error {
	_, writeError := renderer.farewellColor.Fprintln(renderer.writer, message)
	return writeError
}

func (renderer *Renderer) writeOutput(output string) error {
	if !strings.HasSuffix(output, lineTerminatorConstant) {
		output += lineTerminatorConstant
	}
	_, writeError := io.WriteString(renderer.writer, output)
	return writeError
}
