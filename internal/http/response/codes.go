package response

const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeInvalidState    = 422
	CodeTooManyRequests = 429
	CodeInternal        = 500
)
