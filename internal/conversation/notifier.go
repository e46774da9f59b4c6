package conversation

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"github.com/hammamikhairi/saathi/internal/domain"
	"github.com/hammamikhairi/saathi/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*CLINotifier)(nil)

var (
	nameStyle   = color.New(color.FgCyan, color.Bold)
	urgentStyle = color.New(color.FgRed, color.Bold)
)

// PrintFunc is a function used to print formatted output.
// Matches the signature of both fmt.Printf and display.UI.Printf.
type PrintFunc func(format string, a ...interface{})

// CLINotifier prints assistant replies as "Name: reply".
type CLINotifier struct {
	name    string
	log     *logger.Logger
	printFn PrintFunc
}

// NewCLINotifier creates a stdout-based notifier speaking as name.
// If printFn is nil, fmt.Printf is used.
func NewCLINotifier(name string, log *logger.Logger, printFn PrintFunc) *CLINotifier {
	if printFn == nil {
		printFn = func(format string, a ...interface{}) {
			fmt.Printf(format+"\n", a...)
		}
	}
	return &CLINotifier{name: name, log: log, printFn: printFn}
}

// Notify prints a reply.
func (n *CLINotifier) Notify(_ context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	n.printFn("%s %s", nameStyle.Sprint(n.name+":"), message)
	return nil
}

// NotifyUrgent prints an error or warning in bold red.
func (n *CLINotifier) NotifyUrgent(_ context.Context, message string) error {
	n.log.Debug("notify-urgent: %s", message)
	n.printFn("%s %s", nameStyle.Sprint(n.name+":"), urgentStyle.Sprint(message))
	return nil
}
