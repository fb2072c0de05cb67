package support

import (
	"sync"

	"github.com/opd-ai/wirekit/abi"
	"github.com/opd-ai/wirekit/plugin"
)

// Module and factory names. After Register, the module opens with
// plugin.Open(ModuleName).
const (
	ModuleName = "support"
	LoggerName = "support.logger"
	CPUName    = "support.cpu"
)

var registerOnce sync.Once

// Register installs the support module in the builtin registry. Safe to
// call more than once. Nothing registers the module implicitly; programs
// opt in.
func Register() {
	registerOnce.Do(func() {
		plugin.Register(ModuleName, enumFactories)
	})
}

var factoryTable = []*abi.Factory{loggerFactory(), cpuFactory()}

func enumFactories(factory **abi.Factory, index *uint32) int32 {
	if int(*index) >= len(factoryTable) {
		return 0
	}
	*factory = factoryTable[*index]
	*index++
	return 1
}

// singleInterface builds the interface enumerator for a factory whose
// objects expose exactly one interface type.
func singleInterface(name string) func(*abi.Factory, **abi.InterfaceInfo, *uint32) int32 {
	info := &abi.InterfaceInfo{Type: abi.Str(name)}
	return func(_ *abi.Factory, out **abi.InterfaceInfo, index *uint32) int32 {
		if *index > 0 {
			return 0
		}
		*out = info
		*index++
		return 1
	}
}
