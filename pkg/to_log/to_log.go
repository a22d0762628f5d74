package to_log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// parameters of Print
type Param struct {
	Msg    string
	Logger *slog.Logger
	Level  slog.Level
	Out    io.Writer // console, nothing is printed when nil
	Attrs  []any
}

// Print shows the message on the console and writes it to the journal.
func Print(prm Param) {
	if prm.Out != nil {
		fmt.Fprintln(prm.Out, prm.Msg)
	}
	if prm.Logger != nil {
		prm.Logger.Log(context.Background(), prm.Level, prm.Msg, prm.Attrs...)
	}
}
