package message

import (
	"strconv"

	"github.com/iancoleman/strcase"
)

// StatusCode is a response status of the service. The service extends
// the http status codes with its own codes in the 460 range.
type StatusCode int

const (
	StatusNotModified                   StatusCode = 304
	StatusObjectNotFound                StatusCode = 404
	StatusObjectOutOfDate               StatusCode = 412
	StatusBadCredentials                StatusCode = 460
	StatusBucketNotFound                StatusCode = 461
	StatusInvalidPermissionModification StatusCode = 462
	StatusInvalidTypeValue              StatusCode = 463
	StatusPermissionDenied              StatusCode = 466
	StatusQueryDisposed                 StatusCode = 467
	StatusQueryNotSupported             StatusCode = 468
	StatusSchemaNotCompatible           StatusCode = 469
	StatusSchemaStillExists             StatusCode = 470
	StatusSyntaxError                   StatusCode = 471
	StatusTransactionInactive           StatusCode = 472
	StatusTypeAlreadyExists             StatusCode = 473
	StatusTypeStillReferenced           StatusCode = 474
	StatusScriptAbortion                StatusCode = 475
)

var statusNames = map[StatusCode]string{
	StatusNotModified:                   "NotModified",
	StatusObjectNotFound:                "ObjectNotFound",
	StatusObjectOutOfDate:               "ObjectOutOfDate",
	StatusBadCredentials:                "BadCredentials",
	StatusBucketNotFound:                "BucketNotFound",
	StatusInvalidPermissionModification: "InvalidPermissionModification",
	StatusInvalidTypeValue:              "InvalidTypeValue",
	StatusPermissionDenied:              "PermissionDenied",
	StatusQueryDisposed:                 "QueryDisposed",
	StatusQueryNotSupported:             "QueryNotSupported",
	StatusSchemaNotCompatible:           "SchemaNotCompatible",
	StatusSchemaStillExists:             "SchemaStillExists",
	StatusSyntaxError:                   "SyntaxError",
	StatusTransactionInactive:           "TransactionInactive",
	StatusTypeAlreadyExists:             "TypeAlreadyExists",
	StatusTypeStillReferenced:           "TypeStillReferenced",
	StatusScriptAbortion:                "ScriptAbortion",
}

// Name returns the kebab case name of the status, e.g. object-not-found.
// Unknown statuses are named after their number.
func (s StatusCode) Name() string {
	name, ok := statusNames[s]
	if !ok {
		return strconv.Itoa(int(s))
	}

	return strcase.ToKebab(name)
}

func (s StatusCode) String() string {
	return s.Name()
}
