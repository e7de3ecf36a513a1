package cli

import (
	"fmt"
	"os"
)

// cliNotifier surfaces the runtime's transient messages on stderr so they
// never mix with command output on stdout.
type cliNotifier struct{}

func newNotifier() cliNotifier {
	return cliNotifier{}
}

func (cliNotifier) Error(msg string) {
	errorLabel.Fprintln(os.Stderr, msg)
}

func (cliNotifier) Warn(msg string) {
	warnLabel.Fprintln(os.Stderr, msg)
}

// cliIndicator is the shared busy display: a status line on stderr that is
// overwritten once the last in-flight request completes.
type cliIndicator struct{}

func newIndicator() cliIndicator {
	return cliIndicator{}
}

func (cliIndicator) Show() {
	warnLabel.Fprint(os.Stderr, "Loading...\r")
}

func (cliIndicator) Hide() {
	fmt.Fprint(os.Stderr, "          \r")
}
