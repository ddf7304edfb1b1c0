package jsend

// Test-only exports for internal functions.
var CodeOrDefault = codeOrDefault

// Negotiate runs content negotiation against the built-in encoders plus
// extra and returns the chosen content type.
func Negotiate(accept string, extra ...Encoder) (string, bool) {
	enc, ok := newCodecRegistry(extra).negotiate(accept)
	if !ok {
		return "", false
	}
	return enc.ContentType(), true
}
