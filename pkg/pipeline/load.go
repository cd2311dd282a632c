package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matzehuels/qroute/pkg/circuit"
	"github.com/matzehuels/qroute/pkg/device"
)

// LoadDevice resolves the device description from the options: the inline
// spec when given, otherwise the device file.
func LoadDevice(opts Options) (device.Spec, error) {
	if opts.Device != nil {
		return *opts.Device, nil
	}
	return device.LoadSpecFile(opts.DevicePath)
}

// LoadProgram resolves the input program from the options: the inline
// program when given, otherwise the program file. File format is chosen by
// extension: .qasm for OpenQASM 2, .json for the native serialization.
func LoadProgram(opts Options) (circuit.Program, error) {
	if opts.Program != nil {
		p := *opts.Program
		return p, p.Validate()
	}

	switch ext := strings.ToLower(filepath.Ext(opts.ProgramPath)); ext {
	case ".qasm":
		return circuit.ParseFile(opts.ProgramPath)
	case ".json":
		return circuit.ReadProgramFile(opts.ProgramPath)
	default:
		return circuit.Program{}, fmt.Errorf("unsupported program file extension %q", ext)
	}
}
