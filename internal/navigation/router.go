// Package navigation tracks the route the user is looking at.
package navigation

import "sync"

// Routes of the application.
const (
	RouteHome     = "/"
	RouteLogin    = "/login"
	RouteRegister = "/register"
	RouteNewPost  = "/posts/new"
)

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

// Navigate calls f(route).
func (f NavigatorFunc) Navigate(route string) { f(route) }

// Router records route changes and notifies listeners synchronously.
type Router struct {
	mu        sync.RWMutex
	current   string
	history   []string
	listeners map[uint64]func(string)
	nextID    uint64
}

// NewRouter returns a Router positioned at the home route.
func NewRouter() *Router {
	return &Router{
		current:   RouteHome,
		listeners: make(map[uint64]func(string)),
	}
}

// Navigate records route as current and notifies every listener.
func (r *Router) Navigate(route string) {
	r.mu.Lock()
	r.current = route
	r.history = append(r.history, route)
	listeners := make([]func(string), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(route)
	}
}

// Current returns the current route.
func (r *Router) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// History returns every route navigated to, oldest first.
func (r *Router) History() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.history))
	copy(out, r.history)
	return out
}

// OnNavigate registers fn for later route changes.
func (r *Router) OnNavigate(fn func(route string)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}
