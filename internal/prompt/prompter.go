// Package prompt collects yes/no confirmations from terminal input.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	unsupportedDefaultAnswerMessageConstant = "default answer must be yes or no"
	promptSuffixDefaultYesConstant          = "[Y/n] "
	promptSuffixDefaultNoConstant           = "[y/N] "
	promptTemplateConstant                  = "%s %s"
	promptWithoutMessageTemplateConstant    = "%s"
	affirmativeShortAnswerConstant          = "y"
	affirmativeLongAnswerConstant           = "yes"
	negativeShortAnswerConstant             = "n"
	negativeLongAnswerConstant              = "no"
	answerLineSeparatorConstant             = '\n'
)

// DefaultAnswer enumerates supported prompt defaults.
type DefaultAnswer string

// Supported prompt defaults.
const (
	DefaultAnswerYes DefaultAnswer = "yes"
	DefaultAnswerNo  DefaultAnswer = "no"
)

// ErrUnsupportedDefaultAnswer indicates the prompter was constructed with an unknown default.
var ErrUnsupportedDefaultAnswer = errors.New(unsupportedDefaultAnswerMessageConstant)

// BinaryPrompter reads yes/no answers from an io.Reader, re-prompting until a recognizable answer arrives.
type BinaryPrompter struct {
	reader        *bufio.Reader
	writer        io.Writer
	defaultAnswer DefaultAnswer
}

// NewBinaryPrompter constructs a prompter, validating the requested default answer before any input is read.
func NewBinaryPrompter(input io.Reader, output io.Writer, defaultAnswer DefaultAnswer) (*BinaryPrompter, error) {
	if defaultAnswer != DefaultAnswerYes && defaultAnswer != DefaultAnswerNo {
		return nil, ErrUnsupportedDefaultAnswer
	}
	return &BinaryPrompter{reader: bufio.NewReader(input), writer: output, defaultAnswer: defaultAnswer}, nil
}

// Confirm displays the message with a bracketed default hint and reports
// whether the default answer was chosen.
//
// Empty input keeps the default (true). An explicit y/yes answer is true
// only when the default is yes, and n/no only when the default is no.
// Unrecognized input re-prompts.
func (prompter *BinaryPrompter) Confirm(message string) (bool, error) {
	promptText := prompter.buildPromptText(message)

	for {
		if prompter.writer != nil {
			if _, writeError := io.WriteString(prompter.writer, promptText); writeError != nil {
				return false, writeError
			}
		}

		response, readError := prompter.reader.ReadString(answerLineSeparatorConstant)
		trimmedResponse := strings.ToLower(strings.TrimSpace(response))

		if len(trimmedResponse) == 0 {
			if readError != nil {
				return false, readError
			}
			return true, nil
		}

		switch trimmedResponse {
		case affirmativeShortAnswerConstant, affirmativeLongAnswerConstant:
			return prompter.defaultAnswer == DefaultAnswerYes, nil
		case negativeShortAnswerConstant, negativeLongAnswerConstant:
			return prompter.defaultAnswer == DefaultAnswerNo, nil
		}

		if readError != nil {
			return false, readError
		}
	}
}

func (prompter *BinaryPrompter) buildPromptText(message string) string {
	promptSuffix := promptSuffixDefaultYesConstant
	if prompter.defaultAnswer == DefaultAnswerNo {
		promptSuffix = promptSuffixDefaultNoConstant
	}

	trimmedMessage := strings.TrimSpace(message)
	if len(trimmedMessage) == 0 {
		return fmt.Sprintf(promptWithoutMessageTemplateConstant, promptSuffix)
	}
	return fmt.Sprintf(promptTemplateConstant, trimmedMessage, promptSuffix)
}
