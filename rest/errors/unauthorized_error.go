package errors

type UnauthorizedError struct {
	msg string
}

func (e *UnauthorizedError) Error() string {
	return e.msg
}

func NewUnauthorizedError(text string) error {
	return &UnauthorizedError{text}
}

type ForbiddenError struct {
	msg string
}

func (e *ForbiddenError) Error() string {
	return e.msg
}

func NewForbiddenError(text string) error {
	return &ForbiddenError{text}
}
