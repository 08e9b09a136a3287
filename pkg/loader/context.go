package loader

import (
	"github.com/matzehuels/wafconan/pkg/activate"
	"github.com/matzehuels/wafconan/pkg/program"
)

// Context binds a loaded artifact to an activator. It mirrors the control
// surface a wscript sees after loading the generator output.
//
// Context is not safe for concurrent use.
type Context struct {
	Env       *Env
	Activator *activate.Activator
}

// NewContext returns a Context. A nil activator activates into the process
// environment.
func NewContext(env *Env, a *activate.Activator) *Context {
	if a == nil {
		a = activate.New(nil)
	}
	return &Context{Env: env, Activator: a}
}

// ActivateConanEnv activates the artifact's profile for the named slot
// ("build" or "run").
func (c *Context) ActivateConanEnv(slot string) (*activate.Token, error) {
	s, err := activate.ParseSlot(slot)
	if err != nil {
		return nil, err
	}
	p, err := c.Env.Profile(s)
	if err != nil {
		return nil, err
	}
	return c.Activator.Activate(s, p)
}

// DeactivateConanEnv deactivates every active slot.
func (c *Context) DeactivateConanEnv() error {
	return c.Activator.DeactivateAll()
}

// SearchPath returns the program search path: the current PATH followed by
// the tool requirements' bin dirs.
func (c *Context) SearchPath() []string {
	return program.SearchPath(c.Activator.Environ().LookupEnv, c.Env.BuildBinPath()...)
}

// FindProgram locates name on [Context.SearchPath].
func (c *Context) FindProgram(name string) (string, error) {
	return program.Find(name, c.SearchPath())
}
