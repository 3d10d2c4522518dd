package mockexplorer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
)

type envelope struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []gqlError      `json:"errors,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

func mustMarshal(v interface{}) []byte {
	j, err := json.Marshal(v)
	if err != nil {
		log.Panicf("unable to encode: %v", err)
	}
	return j
}

// Body responds with raw bytes.
func Body(body []byte) HandlerOptionFunc {
	return func(opts *respOption, _ Request) error {
		opts.body = bytes.NewBuffer(body)
		return nil
	}
}

// JSONBody responds with v encoded as JSON.
func JSONBody(v interface{}) HandlerOptionFunc {
	return Body(mustMarshal(v))
}

// Data responds with a GraphQL envelope whose data member is v. A string or
// []byte is taken as already encoded JSON.
func Data(v interface{}) HandlerOptionFunc {
	var raw []byte
	switch d := v.(type) {
	case string:
		raw = []byte(d)
	case []byte:
		raw = d
	default:
		raw = mustMarshal(v)
	}
	return JSONBody(envelope{Data: raw})
}

// Errors responds with a GraphQL envelope carrying only errors.
func Errors(msgs ...string) HandlerOptionFunc {
	env := envelope{Data: json.RawMessage("null")}
	for _, m := range msgs {
		env.Errors = append(env.Errors, gqlError{Message: m})
	}
	return JSONBody(env)
}

// Status sets the HTTP status code.
func Status(code int) HandlerOptionFunc {
	return func(opts *respOption, _ Request) error {
		opts.status = code
		return nil
	}
}

// Header adds a response header.
func Header(key string, values ...string) HandlerOptionFunc {
	return func(opts *respOption, _ Request) error {
		opts.header[key] = append(opts.header[key], values...)
		return nil
	}
}

// ExpectVariable checks that the request carries variable name with the
// JSON encoding of value.
func ExpectVariable(name string, value interface{}) ExpectFunc {
	want := string(mustMarshal(value))
	return func(req Request) error {
		got, ok := req.Variables[name]
		if !ok {
			return fmt.Errorf("variable %q missing from %s", name, req.OperationName)
		}
		if g := string(mustMarshal(got)); g != want {
			return fmt.Errorf("variable %q: want %s, got %s", name, want, g)
		}
		return nil
	}
}
