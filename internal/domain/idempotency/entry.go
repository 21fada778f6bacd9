package idempotency

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrWrongKeyFormat  = errors.New("the format of the idempotency key is not valid")
	ErrKeySearch       = errors.New("an error occurred while searching the idempotency key in the database")
	ErrKeyNotSet       = errors.New("an error occurred while adding the idempotency key to the database")
	ErrKeyNotGenerated = errors.New("new idempotency key not generated")
	ErrKeyReused       = errors.New("the idempotency key was already used for a different request")
)

// Request identifies one idempotent invocation
type Request struct {
	Key            string
	Method         string
	Path           string
	ParametersHash string
}

// Response is the outcome replayed for every retry of the same key
type Response struct {
	StatusCode int
	Body       []byte
}

// Entry is the stored outcome of the first completed invocation of a key.
// Entries are written once and never updated.
type Entry struct {
	Key                   string    `json:"key"`
	RequestMethod         string    `json:"request_method"`
	RequestPath           string    `json:"request_path"`
	RequestParametersHash string    `json:"request_parameters_hash"`
	ResponseCode          int       `json:"response_code"`
	ResponseBody          []byte    `json:"response_body"`
	CreatedAt             time.Time `json:"created_at"`
}

// NewEntry records resp as the outcome of req
func NewEntry(req Request, resp Response) *Entry {
	return &Entry{
		Key:                   req.Key,
		RequestMethod:         req.Method,
		RequestPath:           req.Path,
		RequestParametersHash: req.ParametersHash,
		ResponseCode:          resp.StatusCode,
		ResponseBody:          resp.Body,
		CreatedAt:             time.Now().UTC(),
	}
}

// Response returns the stored outcome
func (e *Entry) Response() Response {
	return Response{StatusCode: e.ResponseCode, Body: e.ResponseBody}
}

// Matches reports whether req is the same request that produced e
func (e *Entry) Matches(req Request) bool {
	return e.RequestMethod == req.Method &&
		e.RequestPath == req.Path &&
		e.RequestParametersHash == req.ParametersHash
}
