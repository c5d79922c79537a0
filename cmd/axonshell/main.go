package main

import (
	"os"
	"strings"

	"github.com/axonius-community/go-axonius/cmd/axonshell/root"
)

func main() {
	if err := root.Execute(os.Args[1:]); err != nil {
		// One short line to stderr, no usage dump or stack trace.
		msg := strings.Join(strings.Fields(err.Error()), " ")
		if msg == "" {
			msg = "error"
		}
		_, _ = os.Stderr.WriteString(msg + "\n")
		os.Exit(1)
	}
}
