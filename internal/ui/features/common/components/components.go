// Package components holds the shared page chrome used by every feature.
//
// Components are plain Go instead of generated templ files so the views
// stay greppable; they still satisfy templ.Component and plug into the
// datastar SSE helpers unchanged.
package components

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/datagrid/internal/ui/features/common"
)

const datastarSrc = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"

// Shell renders the full page document: head, sidebar navigation and the
// feature body. currentPath highlights the active nav entry.
func Shell(title, currentPath string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<link rel="stylesheet" href="/static/css/app.css">
<script type="module" src="%s"></script>
</head>
<body>
<div class="app">
`, templ.EscapeString(title), datastarSrc); err != nil {
			return err
		}
		if err := sidebar(currentPath).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<main class="main" id="main">`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</main>\n</div>\n</body>\n</html>\n")
		return err
	})
}

func sidebar(currentPath string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<nav class="sidebar"><div class="brand">DATAGRID</div>`); err != nil {
			return err
		}
		for _, item := range common.Nav {
			class := ""
			if item.Path == currentPath {
				class = ` class="active"`
			}
			if _, err := fmt.Fprintf(w, `<a href="%s"%s>%s</a>`,
				templ.EscapeString(item.Path), class, templ.EscapeString(item.Label)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</nav>`)
		return err
	})
}

// Toast renders a transient confirmation message.
func Toast(message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div id="toast" class="toast">%s</div>`, templ.EscapeString(message))
		return err
	})
}

// ErrorBanner renders an inline error with an optional retry action.
func ErrorBanner(id, message, retryAction string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		retry := ""
		if retryAction != "" {
			retry = fmt.Sprintf(` <button data-on-click="%s">Retry</button>`, templ.EscapeString(retryAction))
		}
		_, err := fmt.Fprintf(w, `<div id="%s" class="banner-error">%s%s</div>`,
			templ.EscapeString(id), templ.EscapeString(message), retry)
		return err
	})
}
