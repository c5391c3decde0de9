package cookie_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tossapp/apiclient/pkg/apicall"
	"github.com/tossapp/apiclient/pkg/cookie"
)

var (
	_ apicall.CookieReader = cookie.Static(nil)
	_ apicall.CookieReader = cookie.JarReader{}
)

func byName(name string) func(string) bool {
	return func(v string) bool { return v == name }
}

func TestStatic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := cookie.Static{"CSRF-TOKEN": "abc", "session": "xyz"}

	value, found := s.Cookie(ctx, byName("CSRF-TOKEN"))
	assert.True(t, found)
	assert.Equal(t, "abc", value)

	_, found = s.Cookie(ctx, byName("missing"))
	assert.False(t, found)

	// First match in lexical order
	value, found = s.Cookie(ctx, func(string) bool { return true })
	assert.True(t, found)
	assert.Equal(t, "abc", value)

	// Nil map
	_, found = cookie.Static(nil).Cookie(ctx, byName("CSRF-TOKEN"))
	assert.False(t, found)
}

func TestParseDocumentCookie(t *testing.T) {
	t.Parallel()

	s, err := cookie.ParseDocumentCookie("CSRF-TOKEN=abc; theme=dark")
	require.NoError(t, err)
	assert.Equal(t, cookie.Static{"CSRF-TOKEN": "abc", "theme": "dark"}, s)

	s, err = cookie.ParseDocumentCookie("  ")
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = cookie.ParseDocumentCookie("invalid")
	assert.Error(t, err)
}

func TestJarReader(t *testing.T) {
	t.Parallel()

	jar, err := cookie.NewJar()
	require.NoError(t, err)

	u, _ := url.Parse("https://app.example.com/")
	jar.SetCookies(u, []*http.Cookie{
		{Name: "CSRF-TOKEN", Value: "abc", Path: "/"},
		{Name: "session", Value: "xyz", Path: "/"},
	})

	r, err := cookie.NewJarReader(jar, "https://app.example.com/api/login")
	require.NoError(t, err)

	value, found := r.Cookie(context.Background(), byName("CSRF-TOKEN"))
	assert.True(t, found)
	assert.Equal(t, "abc", value)

	_, found = r.Cookie(context.Background(), byName("missing"))
	assert.False(t, found)

	// Other host has no cookies
	other, err := cookie.NewJarReader(jar, "https://other.example.org/")
	require.NoError(t, err)
	_, found = other.Cookie(context.Background(), byName("CSRF-TOKEN"))
	assert.False(t, found)

	_, err = cookie.NewJarReader(jar, "://invalid")
	assert.Error(t, err)
}
