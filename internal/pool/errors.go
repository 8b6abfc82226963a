package pool

import "fmt"

// UnknownServerError is raised when a caller names a server absent from the
// Pool's definitions.
type UnknownServerError struct {
	Name string
}

func (e *UnknownServerError) Error() string {
	return fmt.Sprintf("unknown server %q", e.Name)
}

// AlreadyRegisteredError is raised by RegisterDefinition when a definition
// already exists for the name and overwrite was not requested.
type AlreadyRegisteredError struct {
	Name string
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("server %q is already registered", e.Name)
}
