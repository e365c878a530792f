package httperror

// Error is the JSON body of every error response.
type Error struct {
	Message string `json:"error" example:"could not connect to Tally at http://localhost:9000"`
}

func New(e error) Error {
	return Error{
		Message: e.Error(),
	}
}

func NewFromString(s string) Error {
	return Error{
		Message: s,
	}
}
