package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "AppTitle"); got != "Dream Route" {
		t.Errorf("T(AppTitle) = %q, want 'Dream Route'", got)
	}
	if got := T(ctx, "StartQuiz"); got != "Start quiz" {
		t.Errorf("T(StartQuiz) = %q, want 'Start quiz'", got)
	}
}

func TestTranslateRussian(t *testing.T) {
	ctx := initLang(t, "ru")

	if got := T(ctx, "AppTitle"); got != "Маршрут мечты" {
		t.Errorf("T(AppTitle) = %q, want 'Маршрут мечты'", got)
	}
	if got := T(ctx, "StartQuiz"); got != "Начать тест" {
		t.Errorf("T(StartQuiz) = %q, want 'Начать тест'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	if got := Tp(ctx, "ResponsesCount", 1); got != "1 response" {
		t.Errorf("Tp(ResponsesCount, 1) = %q", got)
	}
	if got := Tp(ctx, "ResponsesCount", 5); got != "5 responses" {
		t.Errorf("Tp(ResponsesCount, 5) = %q", got)
	}

	ru := initLang(t, "ru")
	tests := map[int]string{1: "1 ответ", 3: "3 ответа", 7: "7 ответов", 21: "21 ответ"}
	for n, want := range tests {
		if got := Tp(ru, "ResponsesCount", n); got != want {
			t.Errorf("Tp(ru, ResponsesCount, %d) = %q, want %q", n, got, want)
		}
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "QuizProgress", map[string]any{"N": 2, "Max": 4})
	if got != "Question 2 of up to 4" {
		t.Errorf("Td(QuizProgress) = %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestSupported(t *testing.T) {
	initLang(t, "en")
	if !IsSupported("en") || !IsSupported("ru") || IsSupported("de") {
		t.Errorf("Supported() = %v", Supported())
	}
}

func TestMiddlewareLanguageSwitch(t *testing.T) {
	initLang(t, "en")
	var title string
	h := Middleware("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = T(r.Context(), "AppTitle")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/?lang=ru", nil))
	if title != "Маршрут мечты" {
		t.Errorf("query switch: title = %q", title)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != LangCookie || cookies[0].Value != "ru" {
		t.Fatalf("lang cookie not set: %v", cookies)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookies[0])
	h.ServeHTTP(httptest.NewRecorder(), req)
	if title != "Маршрут мечты" {
		t.Errorf("cookie: title = %q", title)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/?lang=xx", nil))
	if title != "Dream Route" {
		t.Errorf("unsupported lang: title = %q", title)
	}
}

func TestNegotiate(t *testing.T) {
	initLang(t, "en")
	tests := map[string]string{
		"ru-RU,ru;q=0.9,en;q=0.8": "ru",
		"en-GB":                   "en",
		"de-DE":                   "en",
		"":                        "en",
		"!!":                      "en",
	}
	for header, want := range tests {
		if got := Negotiate(header); got != want {
			t.Errorf("Negotiate(%q) = %q, want %q", header, got, want)
		}
	}
}

func TestMiddlewareAcceptLanguage(t *testing.T) {
	initLang(t, "en")
	var title string
	h := Middleware("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = T(r.Context(), "AppTitle")
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept-Language", "ru;q=0.9, en;q=0.5")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if title != "Маршрут мечты" {
		t.Errorf("Accept-Language ru: title = %q", title)
	}

	// An explicit cookie wins over the header.
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept-Language", "ru")
	req.AddCookie(&http.Cookie{Name: LangCookie, Value: "en"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	if title != "Dream Route" {
		t.Errorf("cookie over header: title = %q", title)
	}
}
