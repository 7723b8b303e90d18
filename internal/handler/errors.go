package handler

import "github.com/pkg/errors"

// ErrNoExchange is returned for events that carry no request/response record.
var ErrNoExchange = errors.New("event carries no cloudfront record")
