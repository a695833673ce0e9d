package handler

import "net/http"

func errorResponse(w http.ResponseWriter, status int, message any) {
	env := envelope{"error": message}

	if err := writeJSON(w, status, env, nil); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// failedValidationResponse answers 422 with the per-field messages.
func failedValidationResponse(w http.ResponseWriter, errors map[string]string) {
	errorResponse(w, http.StatusUnprocessableEntity, errors)
}

func badRequestResponse(w http.ResponseWriter, message any) {
	errorResponse(w, http.StatusBadRequest, message)
}

func internalErrorResponse(w http.ResponseWriter) {
	errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

// serviceErrorResponse answers with the status and text of the first known
// error err wraps. Anything else is a 500 without details.
func serviceErrorResponse(w http.ResponseWriter, err error) {
	for _, target := range exposedErrors {
		if IsOneOf(err, target) {
			errorResponse(w, GetCode(target), target.Error())
			return
		}
	}
	internalErrorResponse(w)
}
