package classfile

import "fmt"

// MalformedModuleError reports a class file that could not be decoded.
// Section names the part of the file being read when decoding failed and
// Offset is the byte position (or, for bytecode, the instruction pc).
type MalformedModuleError struct {
	Section string
	Offset  int64
	Err     error
}

func (e *MalformedModuleError) Error() string {
	return fmt.Sprintf("malformed class file: %s at offset %d: %v", e.Section, e.Offset, e.Err)
}

func (e *MalformedModuleError) Unwrap() error {
	return e.Err
}
