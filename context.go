package wirekit

import (
	"errors"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/wirekit/abi"
	"github.com/opd-ai/wirekit/conf"
	"github.com/opd-ai/wirekit/dict"
)

// Remote is the engine boundary: something a context can dial for a core
// object. The in-process bus engine implements it; a socket transport
// would slot in here.
type Remote interface {
	Connect(props *dict.Props) (*abi.Proxy, error)
}

// Context ties a loop, a remote, and baseline connection properties
// together. One context can dial its remote repeatedly.
type Context struct {
	loop   *MainLoop
	remote Remote
	props  *dict.Props
	config conf.Config
}

// ContextOption configures a Context at construction.
type ContextOption func(*Context) error

// WithRemote sets the engine the context dials.
func WithRemote(r Remote) ContextOption {
	return func(c *Context) error {
		if r == nil {
			return errors.New("remote is nil")
		}
		c.remote = r
		return nil
	}
}

// WithProperties sets baseline properties sent on every Connect. The
// context keeps its own copy.
func WithProperties(p *dict.Props) ContextOption {
	return func(c *Context) error {
		c.props = p.Copy()
		return nil
	}
}

// WithConfig supplies a loaded configuration; its Properties merge under
// the context's own.
func WithConfig(cfg conf.Config) ContextOption {
	return func(c *Context) error {
		c.config = cfg
		return nil
	}
}

// NewContext creates a context dispatching on the given loop.
func NewContext(loop *MainLoop, opts ...ContextOption) (*Context, error) {
	if loop == nil {
		return nil, errors.New("loop is nil")
	}
	c := &Context{
		loop:   loop,
		props:  dict.New(),
		config: conf.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	for k, v := range c.config.Properties {
		if _, ok := c.props.Get(k); !ok {
			c.props.Set(k, v)
		}
	}
	return c, nil
}

// Loop returns the loop the context dispatches on.
func (c *Context) Loop() *MainLoop {
	return c.loop
}

// Properties returns a copy of the context's baseline properties.
func (c *Context) Properties() *dict.Props {
	return c.props.Copy()
}

// Connect dials the remote and wraps the session's core object. Call
// properties override the context's baseline ones. Without a configured
// remote it fails with ErrNoRemote; a nil engine proxy maps to ENOMEM.
func (c *Context) Connect(props *dict.Props) (*Core, error) {
	if c.remote == nil {
		return nil, newProxyError("connect", CoreID, ErrNoRemote)
	}

	merged := c.props.Copy()
	if props != nil {
		for k, v := range props.All() {
			merged.Set(k, v)
		}
	}

	raw, err := c.remote.Connect(merged)
	if err != nil {
		return nil, newProxyError("connect", CoreID, err)
	}
	if raw == nil {
		return nil, newProxyError("connect", CoreID, syscall.ENOMEM)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Connect",
		"props":    merged.Len(),
	}).Debug("Connected to remote")
	return newCore(raw), nil
}
