package cli

import (
	"fmt"
	"io"
	"logpush/internal/global"
	"runtime"
)

// Version text, with build details at higher verbosity
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "%s %s\n", global.ProgBaseName, global.ProgVersion)
	if global.Verbosity > global.VerbosityStandard {
		fmt.Fprintf(out, "Built using %s(%s) for %s on %s\n", runtime.Version(), runtime.Compiler, runtime.GOOS, runtime.GOARCH)
	}
}
