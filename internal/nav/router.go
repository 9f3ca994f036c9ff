// Package nav routes the terminal client between screens by path, the way a browser
// router moves between pages.
package nav

import (
	"strings"
	"sync"
)

// Screen identifies what the client shows for a path
type Screen string

const (
	ScreenSearch    Screen = "search"
	ScreenLogin     Screen = "login"
	ScreenNewRecipe Screen = "recipe-new"
	ScreenEdit      Screen = "recipe-edit"
	ScreenDetail    Screen = "recipe-detail"
)

// Paths the client navigates to
const (
	PathHome  = "/"
	PathLogin = "/login"
)

// Navigator moves the visible screen to path
type Navigator interface {
	Navigate(path string)
}

// Route is a resolved path
type Route struct {
	Path   string
	Screen Screen
	Params map[string]string
}

type pattern struct {
	segments []string
	screen   Screen
}

// routes are matched in order; the first match wins. A pattern matches any path that
// starts with its segments, so /recipe/12/anything still shows recipe 12.
var routes = []pattern{
	{segments: split("/login"), screen: ScreenLogin},
	{segments: split("/recipe/new"), screen: ScreenNewRecipe},
	{segments: split("/recipe/:recipeId/edit"), screen: ScreenEdit},
	{segments: split("/recipe/:recipeId"), screen: ScreenDetail},
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Resolve maps path to a Route. Paths that match nothing fall through to the search screen.
func Resolve(path string) Route {
	if path == "" {
		path = PathHome
	}
	segments := split(path)

	for _, p := range routes {
		if params, ok := match(p.segments, segments); ok {
			return Route{Path: path, Screen: p.screen, Params: params}
		}
	}
	return Route{Path: path, Screen: ScreenSearch, Params: map[string]string{}}
}

func match(pattern, segments []string) (map[string]string, bool) {
	if len(segments) < len(pattern) {
		return nil, false
	}
	params := make(map[string]string)
	for i, seg := range pattern {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			if segments[i] == "" {
				return nil, false
			}
			params[name] = segments[i]
			continue
		}
		if seg != segments[i] {
			return nil, false
		}
	}
	return params, true
}

// Router is a Navigator that keeps the current route and the history of visited paths
type Router struct {
	mu       sync.Mutex
	current  Route
	history  []string
	onChange func(Route)
}

// NewRouter starts at path. onChange, if set, is called after every navigation.
func NewRouter(path string, onChange func(Route)) *Router {
	route := Resolve(path)
	return &Router{
		current:  route,
		history:  []string{route.Path},
		onChange: onChange,
	}
}

// Navigate moves to path
func (r *Router) Navigate(path string) {
	route := Resolve(path)

	r.mu.Lock()
	r.current = route
	r.history = append(r.history, route.Path)
	onChange := r.onChange
	r.mu.Unlock()

	if onChange != nil {
		onChange(route)
	}
}

// Back returns to the previous path, if any
func (r *Router) Back() bool {
	r.mu.Lock()
	if len(r.history) < 2 {
		r.mu.Unlock()
		return false
	}
	r.history = r.history[:len(r.history)-1]
	route := Resolve(r.history[len(r.history)-1])
	r.current = route
	onChange := r.onChange
	r.mu.Unlock()

	if onChange != nil {
		onChange(route)
	}
	return true
}

// Current returns the route being shown
func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns the visited paths, oldest first
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}
