package commands

import (
	"strings"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

const defaultCommandGroup = "translation"

// CommandLogger returns the logger for one command handler. Loggers are named
// "autotranslate.commands.<group>" so a single logging focus entry covers a
// whole group, and carry the message type of the handled command.
func CommandLogger[T command.Message](provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.ToLower(strings.TrimSpace(group))
	if group == "" {
		group = defaultCommandGroup
	}
	logger := logging.ModuleLogger(provider, logging.ModuleCommands+"."+group)

	var msg T
	return logging.WithFields(logger, map[string]any{
		"component":     "command",
		"command_group": group,
		"command":       command.GetMessageType(msg),
	})
}
