package service

import (
	"regexp"
	"strings"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/domain"
	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/ports"
)

// Template bodies reference variables as __KEY__ (uppercase, underscores
// allowed). The global wrapper marks where the compiled body goes.
var variablePattern = regexp.MustCompile(`__([A-Z_]+)__`)

const contentPlaceholder = "{{CONTENT}}"

// compileEmail validates the provided variables against the template's
// declared list, substitutes every placeholder, and wraps the HTML body in
// the global header/footer. Validation failures abort before any transport.
func compileEmail(tpl *domain.EmailTemplate, global *domain.GlobalTemplate, vars map[string]string, subjectOverride string) (ports.CompiledEmail, error) {
	if missing := missingVariables(tpl.Variables, vars); len(missing) > 0 {
		return ports.CompiledEmail{}, &domain.MissingVariablesError{Missing: missing}
	}

	subject := subjectOverride
	if subject == "" {
		subject = substitute(tpl.Subject, vars)
	}

	body := substitute(tpl.BodyHTML, vars)
	wrapper := global.HeaderHTML + contentPlaceholder + global.FooterHTML
	html := strings.Replace(wrapper, contentPlaceholder, body, 1)

	var text string
	if tpl.BodyText != "" {
		text = substitute(tpl.BodyText, vars)
	}

	return ports.CompiledEmail{Subject: subject, HTML: html, Text: text}, nil
}

// missingVariables returns declared variables with no provided value.
// Declarations may be stored bare ("PARENT_NAME") or wrapped
// ("__PARENT_NAME__"); provided keys match case-insensitively.
func missingVariables(declared []string, vars map[string]string) []string {
	provided := make(map[string]struct{}, len(vars))
	for k := range vars {
		provided[strings.ToUpper(k)] = struct{}{}
	}

	var missing []string
	for _, v := range declared {
		name := strings.ToUpper(strings.Trim(v, "_"))
		if name == "" {
			continue
		}
		if _, ok := provided[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// substitute replaces every known __KEY__ occurrence; unknown placeholders
// are left intact (validation has already rejected missing declared ones).
func substitute(s string, vars map[string]string) string {
	return variablePattern.ReplaceAllStringFunc(s, func(match string) string {
		key := strings.Trim(match, "_")
		for k, v := range vars {
			if strings.EqualFold(k, key) {
				return v
			}
		}
		return match
	})
}
