package executor

import (
	"fmt"

	"github.com/lqviet/simpledb/internal/record"
)

type Status uint8

const (
	StatusOK Status = iota
	StatusError
)

// ResultSet is the tabular payload of a successful query.
type ResultSet struct {
	Headers []string
	Rows    []record.Row
}

// Result is what every command handler returns: ok with a message, ok with
// data, or an error with a message.
type Result struct {
	Status  Status
	Message string
	Data    *ResultSet
}

func (r Result) HasData() bool { return r.Data != nil }

func OK(format string, a ...any) Result {
	return Result{Status: StatusOK, Message: fmt.Sprintf(format, a...)}
}

func Errorf(format string, a ...any) Result {
	return Result{Status: StatusError, Message: fmt.Sprintf(format, a...)}
}

func WithData(rs ResultSet) Result {
	return Result{Status: StatusOK, Data: &rs}
}
