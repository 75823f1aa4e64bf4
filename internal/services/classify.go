package services

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

type FailureClass string

const (
	FailureAuth          FailureClass = "auth"
	FailureTransient     FailureClass = "transient"
	FailureConfiguration FailureClass = "configuration"
)

// ClassifyFailure decides whether a failed analysis attempt is worth retrying.
// Auth-class failures end the run without another attempt.
func ClassifyFailure(err error) FailureClass {
	if errors.Is(err, ErrMissingCredential) {
		return FailureConfiguration
	}

	if code, ok := apiErrorCode(err); ok {
		switch code {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return FailureAuth
		}
	}

	var malformed *MalformedResponseError
	if errors.As(err, &malformed) {
		return FailureTransient
	}

	if mentionsCredential(err.Error()) {
		return FailureAuth
	}

	return FailureTransient
}

func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}

func mentionsCredential(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "api key") ||
		strings.Contains(msg, "api_key") ||
		strings.Contains(msg, "credential")
}
