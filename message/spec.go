package message

import (
	"regexp"
	"strings"
)

// markerPattern matches the `:name` and `*name` markers of a path template
var markerPattern = regexp.MustCompile(`[:*]\w*`)

// Spec declares a message type relative to the base path of the service
type Spec struct {
	// Method is the http method of the message
	Method string

	// Path is the path template, e.g. /db/:bucket/:id?depth
	Path string

	// Status are the response statuses the message accepts
	Status []int
}

// ExternalSpec declares a message type that targets an absolute url,
// which is not compiled
type ExternalSpec struct {
	Method string
	Path   string
	Query  []string
	Status []int
}

// Specification is the compiled, immutable form of a message type. It
// is built once per message type and shared by all its instances.
type Specification struct {
	method   string
	path     []string
	dynamic  bool
	query    []string
	status   []int
	external bool
}

// Create compiles the spec of a message type
func Create(spec Spec) *Specification {
	template := spec.Path
	queryString := ""
	if i := strings.Index(template, "?"); i >= 0 {
		queryString = template[i+1:]
		template = template[:i]
		if j := strings.Index(queryString, "?"); j >= 0 {
			queryString = queryString[:j]
		}
	}

	var query []string
	if len(queryString) > 0 {
		for _, arg := range strings.Split(queryString, "&") {
			query = append(query, strings.SplitN(arg, "=", 2)[0])
		}
	}

	markers := markerPattern.FindAllString(template, -1)
	dynamic := len(markers) > 0 && strings.HasPrefix(markers[len(markers)-1], "*")

	return &Specification{
		method:  spec.Method,
		path:    markerPattern.Split(template, -1),
		dynamic: dynamic,
		query:   query,
		status:  append([]int(nil), spec.Status...),
	}
}

// CreateExternal builds the specification of a message type
// that targets an absolute url
func CreateExternal(spec ExternalSpec) *Specification {
	return &Specification{
		method:   spec.Method,
		path:     []string{spec.Path},
		query:    append([]string(nil), spec.Query...),
		status:   append([]int(nil), spec.Status...),
		external: true,
	}
}

// Method returns the http method
func (s *Specification) Method() string {
	return s.method
}

// PathFragments returns the literal fragments of the path template
func (s *Specification) PathFragments() []string {
	return append([]string(nil), s.path...)
}

// PathParams returns the number of positional path arguments
func (s *Specification) PathParams() int {
	return len(s.path) - 1
}

// Dynamic returns true if the last path marker captures the rest of the path
func (s *Specification) Dynamic() bool {
	return s.dynamic
}

// Query returns the names of the query parameters in declaration order
func (s *Specification) Query() []string {
	return append([]string(nil), s.query...)
}

// Status returns the accepted response statuses
func (s *Specification) Status() []int {
	return append([]int(nil), s.status...)
}

// External returns true if the specification targets an absolute url
func (s *Specification) External() bool {
	return s.external
}

// Accepts returns true if status is one of the accepted statuses
func (s *Specification) Accepts(status int) bool {
	for _, accepted := range s.status {
		if accepted == status {
			return true
		}
	}

	return false
}

// New creates a message from positional arguments: one per path
// parameter, then one per query parameter and optionally the json body
func (s *Specification) New(args ...interface{}) *Message {
	return newMessage(s, args)
}

// buildPath renders the path and query of a message from the positional
// arguments and returns the index of the first argument not consumed
func (s *Specification) buildPath(args []interface{}) (string, int) {
	var sb strings.Builder
	index := 0

	sb.WriteString(s.path[0])
	for i := 1; i < len(s.path); i++ {
		arg := argString(argAt(args, index))
		if s.dynamic && i == len(s.path)-1 {
			segments := strings.Split(arg, "/")
			for j, segment := range segments {
				segments[j] = EncodeURIComponent(segment)
			}
			sb.WriteString(strings.Join(segments, "/"))
		} else {
			sb.WriteString(EncodeURIComponent(arg))
		}
		sb.WriteString(s.path[i])
		index++
	}

	path := sb.String()
	hasQuery := strings.Contains(path, "?")
	for _, name := range s.query {
		arg := argAt(args, index)
		index++
		if arg == nil {
			continue
		}

		if hasQuery {
			sb.WriteString("&")
		} else {
			sb.WriteString("?")
			hasQuery = true
		}
		sb.WriteString(name + "=" + EncodeURIComponent(argString(arg)))
	}

	return sb.String(), index
}

func argAt(args []interface{}, index int) interface{} {
	if index < len(args) {
		return args[index]
	}

	return nil
}
