package aroundegypt

import "encoding/json"

// Response is the envelope every AroundEgypt endpoint wraps its payload in.
type Response[T any] struct {
	Meta       Meta       `json:"meta"`
	Data       T          `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Meta struct {
	Code   int             `json:"code"`
	Errors json.RawMessage `json:"errors,omitempty"`
}

// Pagination is currently always empty; the API returns full lists.
type Pagination struct{}

func (m Meta) ok() bool {
	// Some responses omit the code entirely
	return m.Code == 0 || (m.Code >= 200 && m.Code < 300)
}
