package plugin

import (
	"fmt"
	"iter"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/wirekit/abi"
	"github.com/opd-ai/wirekit/dict"
	"github.com/opd-ai/wirekit/result"
)

// Factory describes one kind of object a module can construct.
type Factory struct {
	mod *Module
	raw *abi.Factory
}

// Name returns the factory name, or "<invalid>" when the module declared a
// name that is not valid UTF-8.
func (f *Factory) Name() string {
	s, ok := abi.GoStr(f.raw.Name)
	if !ok {
		return "<invalid>"
	}
	return s
}

// Version returns the factory's declared version.
func (f *Factory) Version() uint32 {
	return f.raw.Version
}

// Info returns a view of the factory's static properties.
func (f *Factory) Info() dict.Foreign {
	return dict.View(f.raw.Info)
}

// Interfaces enumerates the interface type names instances of this factory
// expose, with the same cursor protocol and the same panic on a negative
// return as module factory enumeration. Names that are not valid UTF-8 are
// skipped.
func (f *Factory) Interfaces() iter.Seq[string] {
	return func(yield func(string) bool) {
		if f.raw.EnumInterfaceInfo == nil {
			return
		}
		var index uint32
		for {
			var info *abi.InterfaceInfo
			res := f.raw.EnumInterfaceInfo(f.raw, &info, &index)
			if res == 0 {
				return
			}
			if res < 0 {
				panic(fmt.Sprintf("plugin: factory %q interface enumeration failed with %d", f.Name(), res))
			}
			if info == nil {
				panic(fmt.Sprintf("plugin: factory %q enumeration reported an interface but stored none", f.Name()))
			}
			name, ok := abi.GoStr(info.Type)
			if !ok {
				continue
			}
			if !yield(name) {
				return
			}
		}
	}
}

// Instantiate constructs an object from this factory: it asks the factory
// for its state size, allocates a zeroed block at maximal alignment (a
// zero size still yields a valid aligned block), and runs the factory
// initializer over it. Construction failure is unrecoverable: the block is
// released first, then Instantiate panics. The returned handle owns one
// strong reference to the module.
func (f *Factory) Instantiate(args *dict.Props) *Handle {
	rawArgs := args.Dict()
	size := f.raw.GetSize(f.raw, rawArgs)
	block := alignedBlock(size)

	logrus.WithFields(logrus.Fields{
		"function": "Instantiate",
		"module":   f.mod.path,
		"factory":  f.Name(),
		"size":     size,
	}).Debug("Allocated object state block")

	obj := &abi.Object{}
	if raw := f.raw.Init(f.raw, obj, block, rawArgs); raw != 0 {
		// Release before surfacing: abnormal construction must not leave
		// the allocation claimed.
		releaseBlock(block)
		panic(fmt.Sprintf("plugin: factory %q init failed: %v", f.Name(), result.FromRaw(raw)))
	}
	if obj.GetInterface == nil || obj.Clear == nil {
		panic(fmt.Sprintf("plugin: factory %q initialized an object without a complete header", f.Name()))
	}

	f.mod.ref()
	return newHandle(f.mod, obj, block)
}
