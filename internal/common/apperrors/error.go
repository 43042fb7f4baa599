package apperrors

// Error is the error interface used across the service. Errors form a
// hierarchy: a package declares a base error and derives new ones from it
// via New, so Is() matches both the exact error and any of its ancestors.
// Each error carries the HTTP status code it should surface as.
type Error interface {
	Error() string
	ErrorAll() string
	New(msg string) Error
	Msg(msg string) Error
	MsgErr(msg string, err ...error) Error
	Err(err ...error) Error
	Unwrap() []error
	Is(target error) bool
	SetExpandError(expand bool) Error
	SetStatusCode(code int) Error
	StatusCode() int
}
