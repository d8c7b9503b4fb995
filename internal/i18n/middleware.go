package i18n

import "net/http"

// LangCookie remembers a visitor's language choice.
const LangCookie = "lang"

// Middleware injects a localizer into every request context. A supported
// ?lang= query parameter switches the language and is remembered in a cookie;
// otherwise the cookie, then the Accept-Language header, then defaultLang decide.
func Middleware(defaultLang string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := defaultLang
			if q := r.URL.Query().Get("lang"); q != "" && IsSupported(q) {
				lang = q
				http.SetCookie(w, &http.Cookie{
					Name:     LangCookie,
					Value:    q,
					Path:     "/",
					MaxAge:   365 * 24 * 60 * 60,
					SameSite: http.SameSiteLaxMode,
				})
			} else if c, err := r.Cookie(LangCookie); err == nil && IsSupported(c.Value) {
				lang = c.Value
			} else if al := r.Header.Get("Accept-Language"); al != "" {
				lang = Negotiate(al)
			}
			ctx := WithLocalizer(r.Context(), NewLocalizer(lang, defaultLang))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
