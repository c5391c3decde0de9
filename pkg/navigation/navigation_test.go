package navigation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tossapp/apiclient/pkg/apicall"
	"github.com/tossapp/apiclient/pkg/navigation"
)

var (
	_ apicall.Navigator = (*navigation.History)(nil)
	_ apicall.Navigator = navigation.Func(nil)
)

func TestHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := navigation.NewHistory()
	assert.Equal(t, "", h.Current())
	assert.Empty(t, h.Paths())

	assert.NoError(t, h.NavigateTo(ctx, "/login"))
	assert.NoError(t, h.NavigateTo(ctx, "/dashboard"))
	assert.Equal(t, "/dashboard", h.Current())

	paths := h.Paths()
	assert.Equal(t, []string{"/login", "/dashboard"}, paths)

	// Returned slice is a copy
	paths[0] = "/modified"
	assert.Equal(t, []string{"/login", "/dashboard"}, h.Paths())
}

func TestFunc(t *testing.T) {
	t.Parallel()

	var visited string
	nav := navigation.Func(func(ctx context.Context, path string) error {
		visited = path
		if path == "/forbidden" {
			return errors.New("forbidden")
		}
		return nil
	})

	assert.NoError(t, nav.NavigateTo(context.Background(), "/home"))
	assert.Equal(t, "/home", visited)
	assert.EqualError(t, nav.NavigateTo(context.Background(), "/forbidden"), "forbidden")
}
