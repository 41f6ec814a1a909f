package gologger

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-cms-autotranslate/internal/logging"
	"github.com/goliatone/go-cms-autotranslate/internal/runtimeconfig"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// Provider adapts go-logger to interfaces.LoggerProvider. Every logger it
// hands out is a child of the "autotranslate" root, so module names from the
// logging package line up with the focus list.
type Provider struct {
	root  *glog.BaseLogger
	focus []string
}

var formatOptions = map[string]func() glog.Option{
	"json":    glog.WithLoggerTypeJSON,
	"console": glog.WithLoggerTypeConsole,
	"pretty":  glog.WithLoggerTypePretty,
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

// NewProvider builds a go-logger root from the logging section of the
// runtime config. Blank format means json.
func NewProvider(cfg runtimeconfig.LoggingConfig) (*Provider, error) {
	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if format == "" {
		format = "json"
	}
	formatOption, ok := formatOptions[format]
	if !ok {
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}

	options := []glog.Option{formatOption()}
	if level, ok := levels[strings.ToLower(strings.TrimSpace(cfg.Level))]; ok {
		options = append(options, glog.WithLevel(level))
	}
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	p := &Provider{
		root:  glog.NewLogger(options...),
		focus: focusModules(cfg.Focus),
	}
	if len(p.focus) > 0 {
		p.root.Focus(p.focus...)
	}
	return p, nil
}

// GetLogger returns the go-logger child for a module. Short names such as
// "merge" resolve to "autotranslate.merge"; a blank name is the root module.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	module := logging.QualifyModule(name)
	if module == "" {
		module = logging.ModuleRoot
	}
	return wrap(p.root.GetLogger(module))
}

// Focus lists the qualified modules the root logger is restricted to. Empty
// means every module logs.
func (p *Provider) Focus() []string {
	if p == nil {
		return nil
	}
	return slices.Clone(p.focus)
}

func wrap(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &adapter{inner: inner}
}

type adapter struct {
	inner glog.Logger
}

func (l *adapter) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l *adapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, args...) }

func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}

	if with, ok := l.inner.(glog.FieldsLogger); ok {
		return wrap(with.WithFields(maps.Clone(fields)))
	}

	// go-logger children without FieldsLogger still accept key/value pairs.
	keys := slices.Sorted(maps.Keys(fields))
	args := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	if with, ok := l.inner.(interface{ With(...any) *glog.BaseLogger }); ok {
		return wrap(with.With(args...))
	}
	return l
}

// WithContext binds ctx and lifts any fields stored with
// logging.ContextWithFields onto the returned logger.
func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	bound := wrap(l.inner.WithContext(ctx))
	if fields := logging.ContextFields(ctx); len(fields) > 0 {
		return logging.WithFields(bound, fields)
	}
	return bound
}

// focusModules qualifies and dedupes the configured focus list. "all" or
// "*" anywhere in the list disables focusing.
func focusModules(names []string) []string {
	var out []string
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		switch strings.ToLower(trimmed) {
		case "":
			continue
		case "*", "all":
			return nil
		}
		module := logging.QualifyModule(trimmed)
		if !slices.Contains(out, module) {
			out = append(out, module)
		}
	}
	return out
}
