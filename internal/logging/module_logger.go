package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// Module names handed to LoggerProvider.GetLogger. Focus lists in the logging
// config may use them with or without the root prefix.
const (
	ModuleRoot      = "autotranslate"
	ModuleDispatch  = ModuleRoot + ".dispatch"
	ModuleMerge     = ModuleRoot + ".merge"
	ModuleProgress  = ModuleRoot + ".progress"
	ModuleExtractor = ModuleRoot + ".extractor"
	ModuleHTTP      = ModuleRoot + ".http"
	ModuleCommands  = ModuleRoot + ".commands"
)

const (
	fieldJobID       = "job_id"
	fieldDocumentID  = "document_id"
	fieldContentType = "content_type"
	fieldLocale      = "locale"
)

// ModuleLogger returns a logger scoped to module. A nil provider, or one that
// returns nil, yields the no-op logger. The module name is attached as the
// "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = ModuleRoot
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// QualifyModule prefixes a short module name such as "dispatch" with the
// root module. Blank names stay blank.
func QualifyModule(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch {
	case name == "":
		return ""
	case name == ModuleRoot, strings.HasPrefix(name, ModuleRoot+"."):
		return name
	}
	return ModuleRoot + "." + name
}

// RootLogger returns the logger for the top level module.
func RootLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, ModuleRoot)
}

// DispatchLogger returns the logger used by the outbound dispatcher and stream processor.
func DispatchLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, ModuleDispatch)
}

// MergeLogger returns the logger used by the callback merge engine.
func MergeLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, ModuleMerge)
}

func ProgressLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, ModuleProgress)
}

func ExtractorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, ModuleExtractor)
}

// HTTPLogger returns the logger used by the HTTP adapters.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, ModuleHTTP)
}

// WithDocumentContext attaches the document coordinates of a translation
// operation. Blank values are skipped.
func WithDocumentContext(logger interfaces.Logger, contentType, documentID, locale string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(contentType); trimmed != "" {
		fields[fieldContentType] = trimmed
	}
	if trimmed := strings.TrimSpace(documentID); trimmed != "" {
		fields[fieldDocumentID] = trimmed
	}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[fieldLocale] = trimmed
	}
	return WithFields(logger, fields)
}

// WithJob attaches the job identifier field.
func WithJob(logger interfaces.Logger, jobID string) interfaces.Logger {
	if strings.TrimSpace(jobID) == "" {
		return logger
	}
	return WithFields(logger, map[string]any{fieldJobID: jobID})
}

// NoOp returns a logger that discards every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
