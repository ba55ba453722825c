package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

type Logger interface {
	Info(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// Discard drops all messages. Used when --debug is off.
var Discard Logger = discard{}

type discard struct{}

func (discard) Info(msg string, args ...interface{})  {}
func (discard) Debug(msg string, args ...interface{}) {}

type DefaultLogger struct {
	wr io.Writer
	mu sync.Mutex
}

func NewDefaultLogger(wr io.Writer) Logger {
	s := &DefaultLogger{}
	s.wr = wr
	return s
}

func (s *DefaultLogger) Info(msg string, args ...interface{}) {
	s.log("INFO", msg, args...)
}

func (s *DefaultLogger) Debug(msg string, args ...interface{}) {
	s.log("DEBUG", msg, args...)
}

func (s *DefaultLogger) log(kind string, msg string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(args)%2 != 0 {
		fmt.Fprintf(s.wr, "ERROR Logger passed odd number of args. Msg: %v Args: %v\n", msg, args)
		return
	}
	fmt.Fprintf(s.wr, "%v %v%v\n", kind, msg, formatArgs(args))
}

func formatArgs(args []interface{}) string {
	res := strings.Builder{}
	for i := 0; i < len(args); i += 2 {
		res.WriteString(fmt.Sprintf(" %v=%v", args[i], args[i+1]))
	}
	return res.String()
}
