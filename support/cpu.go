package support

import (
	"runtime"
	"syscall"

	"github.com/opd-ai/wirekit/abi"
	"github.com/opd-ai/wirekit/plugin"
	"github.com/opd-ai/wirekit/result"
)

// TypeCPU is the interface type name served by the support.cpu factory.
const TypeCPU = "WireKit:Interface:CPU"

// VersionCPU is the cpu interface version.
const VersionCPU uint32 = 1

// CPUMethods is the method table behind TypeCPU.
type CPUMethods struct {
	Version     uint32
	GetFlags    func(data any) uint32
	GetCount    func(data any) uint32
	GetMaxAlign func(data any) uint32
}

// CPU is a typed view over an object exposing TypeCPU. It holds a view
// reference on the underlying object and must be closed.
type CPU struct {
	view *plugin.View
	m    *CPUMethods
}

// CPUFromHandle acquires the cpu interface from an instantiated object.
func CPUFromHandle(h *plugin.Handle) (*CPU, error) {
	view, err := h.Interface(TypeCPU, VersionCPU)
	if err != nil {
		return nil, err
	}
	return &CPU{view: view, m: abi.Methods[CPUMethods](view.Iface())}, nil
}

// Close releases the view reference.
func (c *CPU) Close() error {
	return c.view.Close()
}

// Flags reports the platform capability bits. None are defined yet.
func (c *CPU) Flags() uint32 {
	return c.m.GetFlags(c.data())
}

// Count reports the number of usable processors.
func (c *CPU) Count() uint32 {
	return c.m.GetCount(c.data())
}

// MaxAlign reports the alignment instance blocks are allocated with.
func (c *CPU) MaxAlign() uint32 {
	return c.m.GetMaxAlign(c.data())
}

func (c *CPU) data() any {
	return c.view.Iface().Cb.Data
}

// cpuObject carries no state of its own. The factory declares a zero
// instance size and the whole object lives in its header closures.
type cpuObject struct{}

func cpuFactory() *abi.Factory {
	return &abi.Factory{
		Version:           1,
		Name:              abi.Str(CPUName),
		GetSize:           func(*abi.Factory, *abi.RawDict) uint32 { return 0 },
		Init:              initCPU,
		EnumInterfaceInfo: singleInterface(TypeCPU),
	}
}

func initCPU(_ *abi.Factory, obj *abi.Object, _ []byte, _ *abi.RawDict) int32 {
	co := &cpuObject{}
	iface := &abi.Interface{
		Type:    abi.Str(TypeCPU),
		Version: VersionCPU,
		Cb: abi.Callbacks{
			Funcs: &CPUMethods{
				Version:     VersionCPU,
				GetFlags:    func(any) uint32 { return 0 },
				GetCount:    func(any) uint32 { return uint32(runtime.NumCPU()) },
				GetMaxAlign: func(any) uint32 { return abi.MaxAlign },
			},
			Data: co,
		},
	}

	obj.Version = 1
	obj.Data = co
	obj.GetInterface = func(_ *abi.Object, name []byte, out *any) int32 {
		if !abi.StrEq(name, TypeCPU) {
			return result.Errno(syscall.ENOENT).Raw()
		}
		*out = iface
		return 0
	}
	obj.Clear = func(o *abi.Object) int32 {
		o.Data = nil
		return 0
	}
	return 0
}
