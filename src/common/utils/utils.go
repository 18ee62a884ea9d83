package utils

// Deref renders a nullable column value for log output.
func Deref(s *string) string {
	if s == nil {
		return "<null>"
	}
	return *s
}
