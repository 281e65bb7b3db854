package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter_Navigate(t *testing.T) {
	t.Parallel()

	r := NewRouter()
	assert.Equal(t, RouteHome, r.Current())
	assert.Empty(t, r.History())

	var seen []string
	unsubscribe := r.OnNavigate(func(route string) { seen = append(seen, route) })

	r.Navigate(RouteLogin)
	r.Navigate(RouteHome)
	unsubscribe()
	r.Navigate(RouteNewPost)

	assert.Equal(t, RouteNewPost, r.Current())
	assert.Equal(t, []string{RouteLogin, RouteHome, RouteNewPost}, r.History())
	assert.Equal(t, []string{RouteLogin, RouteHome}, seen)
}

func TestNavigatorFunc(t *testing.T) {
	t.Parallel()

	var got string
	var nav Navigator = NavigatorFunc(func(route string) { got = route })
	nav.Navigate(RouteRegister)

	assert.Equal(t, RouteRegister, got)
}
