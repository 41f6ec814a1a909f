// Package translationcmd exposes translation operations as go-command
// handlers.
package translationcmd

import (
	"errors"

	"github.com/goliatone/go-cms-autotranslate/internal/commands"
	"github.com/goliatone/go-cms-autotranslate/internal/translation"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

// CommandRegistry is the registration contract of a go-command registry.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

type HandlerSet struct {
	Translate *TranslateDocumentHandler
	Apply     *ApplyTranslationHandler
}

type Option func(*options)

type options struct {
	translateOpts []commands.HandlerOption[TranslateDocumentCommand]
	applyOpts     []commands.HandlerOption[ApplyTranslationCommand]
}

func WithTranslateHandlerOptions(opts ...commands.HandlerOption[TranslateDocumentCommand]) Option {
	return func(cfg *options) {
		cfg.translateOpts = append(cfg.translateOpts, opts...)
	}
}

func WithApplyHandlerOptions(opts ...commands.HandlerOption[ApplyTranslationCommand]) Option {
	return func(cfg *options) {
		cfg.applyOpts = append(cfg.applyOpts, opts...)
	}
}

const commandGroup = "translation"

// RegisterTranslationCommands builds the handlers and registers them when a
// registry is supplied.
func RegisterTranslationCommands(reg CommandRegistry, service translation.Service, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, errors.New("translation command registration: service is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	set := &HandlerSet{
		Translate: NewTranslateDocumentHandler(service, commands.CommandLogger[TranslateDocumentCommand](provider, commandGroup), cfg.translateOpts...),
		Apply:     NewApplyTranslationHandler(service, commands.CommandLogger[ApplyTranslationCommand](provider, commandGroup), cfg.applyOpts...),
	}

	if reg != nil {
		if err := reg.RegisterCommand(set.Translate); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(set.Apply); err != nil {
			return nil, err
		}
	}
	return set, nil
}
