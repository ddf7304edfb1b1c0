// Package jsend formats HTTP API responses in a consistent JSend-style
// envelope and represents API errors as typed values that carry the same
// envelope.
//
// Every envelope has a code, a status, and data. Error envelopes also carry
// a message:
//
//	{"code":200,"status":"success","data":{"id":42}}
//	{"code":400,"status":"error","data":{"email":"required"},"message":"Invalid input"}
//	{"code":500,"status":"fail","data":null,"message":"Database unavailable"}
//
// Note that "error" marks client-attributable problems and "fail" marks
// server-attributable ones, which is the reverse of the JSend proposal.
//
// Envelopes are built with pure functions:
//
//	env := jsend.Success(user)
//	env := jsend.ClientError("Invalid input", fields)
//	env := jsend.ClientValidationError("Invalid input", fields) // always 422
//	env := jsend.ServerError("Database unavailable", nil, http.StatusServiceUnavailable)
//
// A Responder decorates a Transport (anything that can set a status code and
// send a JSON value) with methods that build and deliver envelopes:
//
//	func getUser(w *jsend.Responder, r *http.Request) error {
//	    u, ok := users[r.PathValue("id")]
//	    if !ok {
//	        return jsend.NewClientError("User not found", nil, http.StatusNotFound)
//	    }
//	    return w.Success(u)
//	}
//
//	mux.Handle("GET /users/{id}", jsend.Handle(getUser))
//
// Errors returned from a HandlerFunc are delivered as their envelope. Use
// errors.Is with ErrClient, ErrValidation, or ErrServer to tell variants
// apart; a validation error is also a client error.
package jsend
