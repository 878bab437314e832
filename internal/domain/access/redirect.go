package access

import (
	"net/url"
	"strings"
)

// SafeRedirect acepta target solo si es una ruta local ("/..."); si no, devuelve fallback.
// Evita redirecciones abiertas con el parámetro ?redirect= del login.
func SafeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return fallback
	}
	if strings.ContainsAny(target, "\\\r\n\t") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return target
}
