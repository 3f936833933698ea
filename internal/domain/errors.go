package domain

import "errors"

var ErrNotFound = errors.New("not found")
var ErrFileNotFound = errors.New("file not found")
