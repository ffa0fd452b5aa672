package reporter

import (
	"regexp"
	"strconv"
	"strings"
)

// StackFrame is one frame of a JavaScript stack trace.
type StackFrame struct {
	MethodName string `json:"methodName"`
	File       string `json:"file"`
	LineNumber int    `json:"lineNumber"`
	Column     int    `json:"column"`
	Collapse   bool   `json:"collapse,omitempty"`
}

// ParsedError is an error message split from its stack trace.
type ParsedError struct {
	Message string
	Stack   []StackFrame
}

// unsymbolicatedStackMarker appears in stack frames that point into a
// served bundle rather than a source file.
const unsymbolicatedStackMarker = ".bundle//&platform="

var (
	stackFrameWithMethod = regexp.MustCompile(`^\s*at (.*?) \((.*):(\d+):(\d+)\)\s*$`)
	stackFrameBare       = regexp.MustCompile(`^\s*at (.*):(\d+):(\d+)\s*$`)
)

// ParseErrorString splits a logged error into its message and stack frames.
// ok is false when the text has no stack trace.
func ParseErrorString(s string) (*ParsedError, bool) {
	start := strings.Index(s, "\n    at ")
	if start == -1 {
		return nil, false
	}

	parsed := &ParsedError{Message: strings.TrimSpace(s[:start])}
	for _, line := range strings.Split(s[start+1:], "\n") {
		if frame, ok := parseStackFrame(line); ok {
			parsed.Stack = append(parsed.Stack, frame)
		}
	}
	if len(parsed.Stack) == 0 {
		return nil, false
	}
	return parsed, true
}

func parseStackFrame(line string) (StackFrame, bool) {
	if m := stackFrameWithMethod.FindStringSubmatch(line); m != nil {
		return newStackFrame(m[1], m[2], m[3], m[4]), true
	}
	if m := stackFrameBare.FindStringSubmatch(line); m != nil {
		return newStackFrame("<unknown>", m[1], m[2], m[3]), true
	}
	return StackFrame{}, false
}

func newStackFrame(method, file, line, column string) StackFrame {
	l, _ := strconv.Atoi(line)
	c, _ := strconv.Atoi(column)
	return StackFrame{MethodName: method, File: file, LineNumber: l, Column: c}
}
