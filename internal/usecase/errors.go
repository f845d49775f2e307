package usecase

import "errors"

// ErrInvalidRequest はリクエストの値が不正であることを表す
var ErrInvalidRequest = errors.New("リクエストが不正です")
