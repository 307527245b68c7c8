package types

const (
	// CodeSuccess marks a successful command outcome
	CodeSuccess = 200
	// CodeFailure marks a failed command outcome
	CodeFailure = 500
)

// Result is the uniform envelope every bound command returns to the UI.
// The front-end treats Code == CodeSuccess as success and reads Msg otherwise.
type Result struct {
	Code int         `json:"code" yaml:"code"`
	Msg  string      `json:"msg,omitempty" yaml:"msg,omitempty"`
	Data interface{} `json:"data,omitempty" yaml:"data,omitempty"`
}

// Success builds a success envelope
func Success(msg string, data interface{}) Result {
	return Result{Code: CodeSuccess, Msg: msg, Data: data}
}

// Failure builds an error envelope
func Failure(msg string, data interface{}) Result {
	return Result{Code: CodeFailure, Msg: msg, Data: data}
}

// FromError converts a failure into an error envelope, using the error text as the message
func FromError(err error) Result {
	if err == nil {
		return Failure("unknown error", nil)
	}
	return Failure(err.Error(), nil)
}

// OK reports whether the envelope carries a success outcome
func (r Result) OK() bool {
	return r.Code == CodeSuccess
}
