package dispatch

import (
	"fmt"
	"net/url"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

const (
	callbackGroup = "autotranslate"
	callbackRoute = "callback"
)

// CallbackURL builds the URL the workflow posts each locale result to.
func CallbackURL(baseURL, path, contentType string) (string, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		path = "/"
	}
	if built, err := buildWithURLKit(baseURL, path, contentType); err == nil {
		return built, nil
	}
	return buildWithNetURL(baseURL, path, contentType)
}

func buildWithURLKit(baseURL, path, contentType string) (built string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("dispatch: urlkit panic: %v", rec)
		}
	}()
	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{{
			Name:    callbackGroup,
			BaseURL: baseURL,
			Paths:   map[string]string{callbackRoute: path},
		}},
	})
	builder := manager.Group(callbackGroup).Builder(callbackRoute)
	if contentType != "" {
		builder.WithQuery("contentType", contentType)
	}
	return builder.Build()
}

func buildWithNetURL(baseURL, path, contentType string) (string, error) {
	parsed, err := url.Parse(baseURL + path)
	if err != nil {
		return "", fmt.Errorf("dispatch: invalid callback url: %w", err)
	}
	if contentType != "" {
		query := parsed.Query()
		query.Set("contentType", contentType)
		parsed.RawQuery = query.Encode()
	}
	return parsed.String(), nil
}
