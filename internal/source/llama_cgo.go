//go:build llama

package source

// cgo link directives for the in-process llama source.
// - The $ORIGIN rpath lets the runtime loader find libllama.so and
//   libggml*.so next to the built binary (./bin).
// - -L${SRCDIR}/../../bin points the linker at libllama.so when building
//   the 'llama' variant. No environment variables are required.
/*
#cgo LDFLAGS: -Wl,-rpath,'$ORIGIN' -L${SRCDIR}/../../bin -lllama
*/
import "C"
