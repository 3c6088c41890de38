package shader

import (
	"errors"
	"fmt"
	"strings"
)

// NotFound is the location returned for names the linked program does not expose.
const NotFound int32 = -1

// ErrProgramNotLinked is returned by lookups on a program that was destroyed or never linked.
var ErrProgramNotLinked = errors.New("shader program is not linked")

// MissingUniformsError lists required uniforms the linked program does not expose. The usual
// cause is a name that the GLSL compiler optimised away or a typo on either side.
type MissingUniformsError struct {
	Program string
	Names   []string
}

func (e *MissingUniformsError) Error() string {
	return fmt.Sprintf("program %q is missing required uniforms: %s", e.Program, strings.Join(e.Names, ", "))
}
