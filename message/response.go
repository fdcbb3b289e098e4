package message

import "strings"

// Response is the response of an exchange. Header names are
// lower case.
type Response struct {
	Status  int
	Headers map[string]string
	Entity  interface{}
}

// Header returns the value of the response header
func (r *Response) Header(name string) string {
	if r.Headers == nil {
		return ""
	}

	return r.Headers[strings.ToLower(name)]
}

// SetHeader sets the value of the response header
func (r *Response) SetHeader(name, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}

	r.Headers[strings.ToLower(name)] = value
}
