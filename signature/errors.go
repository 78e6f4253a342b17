package signature

import "fmt"

// MalformedSignatureError reports a signature that does not follow the
// grammar. Offset is the position in Signature where parsing stopped.
type MalformedSignatureError struct {
	Signature string
	Offset    int
	Reason    string
}

func (e *MalformedSignatureError) Error() string {
	return fmt.Sprintf("malformed signature %q at offset %d: %s", e.Signature, e.Offset, e.Reason)
}
