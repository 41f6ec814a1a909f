package translationcmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-cms-autotranslate/internal/commands"
	"github.com/goliatone/go-cms-autotranslate/internal/translation"
	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

var (
	_ command.Commander[TranslateDocumentCommand] = (*TranslateDocumentHandler)(nil)
	_ command.Commander[ApplyTranslationCommand]  = (*ApplyTranslationHandler)(nil)
)

// TranslateDocumentHandler runs TranslateDocumentCommand through the shared
// command foundation.
type TranslateDocumentHandler struct {
	inner *commands.Handler[TranslateDocumentCommand]
}

func NewTranslateDocumentHandler(service translation.Service, logger interfaces.Logger, opts ...commands.HandlerOption[TranslateDocumentCommand]) *TranslateDocumentHandler {
	exec := func(ctx context.Context, msg TranslateDocumentCommand) error {
		result, err := service.Translate(ctx, translation.TranslateRequest{
			DocumentID:    msg.DocumentID,
			ContentType:   msg.ContentType,
			TargetLocales: msg.TargetLocales,
		})
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = result
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[TranslateDocumentCommand]{
		commands.WithLogger[TranslateDocumentCommand](logger),
		commands.WithOperation[TranslateDocumentCommand]("translation.translate"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &TranslateDocumentHandler{
		inner: commands.NewHandler[TranslateDocumentCommand](exec, handlerOpts...),
	}
}

func (h *TranslateDocumentHandler) Execute(ctx context.Context, msg TranslateDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ApplyTranslationHandler runs ApplyTranslationCommand.
type ApplyTranslationHandler struct {
	inner *commands.Handler[ApplyTranslationCommand]
}

func NewApplyTranslationHandler(service translation.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ApplyTranslationCommand]) *ApplyTranslationHandler {
	exec := func(ctx context.Context, msg ApplyTranslationCommand) error {
		result, err := service.HandleCallback(ctx, translation.CallbackRequest{
			DocumentID:  msg.DocumentID,
			ContentType: msg.ContentType,
			Locale:      msg.Locale,
			Fields:      msg.Fields,
			Metadata:    msg.Metadata,
		})
		if err != nil {
			return err
		}
		if msg.Result != nil {
			*msg.Result = result
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ApplyTranslationCommand]{
		commands.WithLogger[ApplyTranslationCommand](logger),
		commands.WithOperation[ApplyTranslationCommand]("translation.apply"),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ApplyTranslationHandler{
		inner: commands.NewHandler[ApplyTranslationCommand](exec, handlerOpts...),
	}
}

func (h *ApplyTranslationHandler) Execute(ctx context.Context, msg ApplyTranslationCommand) error {
	return h.inner.Execute(ctx, msg)
}
