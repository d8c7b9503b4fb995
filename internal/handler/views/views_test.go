package views

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/pavelanni/dreamroute/internal/i18n"
	"github.com/pavelanni/dreamroute/internal/model"
)

func TestMain(m *testing.M) {
	if err := i18n.Init("en"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func renderString(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(ctx, &b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return b.String()
}

func TestIndexPageContactFieldsAreOptional(t *testing.T) {
	ctx := model.ContextWithCSRFToken(context.Background(), "tok")
	body := renderString(t, ctx, IndexPage())

	for _, want := range []string{`name="name"`, `name="email"`, `value="tok"`, "Anonymous"} {
		if !strings.Contains(body, want) {
			t.Errorf("index page missing %q", want)
		}
	}
	if strings.Contains(body, `name="name" required`) || strings.Contains(body, `name="email" required`) {
		t.Error("contact fields must not be required")
	}
}

func TestLinksUseBasePath(t *testing.T) {
	ctx := model.ContextWithBasePath(context.Background(), "/careers")
	body := renderString(t, ctx, NoticePage("Done", "All set", "/profiler", "Back"))

	if !strings.Contains(body, `<a href="/careers/profiler">Back</a>`) {
		t.Errorf("notice link not prefixed: %s", body)
	}
	if !strings.Contains(body, `href="/careers/"`) {
		t.Errorf("nav links not prefixed: %s", body)
	}
}

func TestTextIsEscaped(t *testing.T) {
	body := renderString(t, context.Background(), NoticePage("T", "<script>x</script>", "/", "home"))
	if strings.Contains(body, "<script>x") {
		t.Error("message rendered unescaped")
	}
	if !strings.Contains(body, "&lt;script&gt;x&lt;/script&gt;") {
		t.Errorf("escaped message missing: %s", body)
	}
}

func TestNavShowsAdminLinkOnlyToAdmins(t *testing.T) {
	student := model.ContextWithUser(context.Background(), &model.User{DisplayName: "sam", Role: model.UserRoleParticipant})
	if body := renderString(t, student, NoticePage("T", "m", "/", "home")); strings.Contains(body, `href="/admin"`) {
		t.Error("student sees the admin link")
	}

	admin := model.ContextWithUser(context.Background(), &model.User{DisplayName: "root", Role: model.UserRoleAdmin})
	body := renderString(t, admin, NoticePage("T", "m", "/", "home"))
	if !strings.Contains(body, `href="/admin"`) || !strings.Contains(body, `action="/logout"`) {
		t.Errorf("admin nav incomplete: %s", body)
	}
}

func TestErrorBoxOmittedWhenEmpty(t *testing.T) {
	if body := renderString(t, context.Background(), LoginPage("", "")); strings.Contains(body, `class="error"`) {
		t.Error("empty error rendered")
	}
	if body := renderString(t, context.Background(), LoginPage("Bad password", "/admin")); !strings.Contains(body, `<p class="error">Bad password</p>`) {
		t.Error("error message missing")
	}
}
