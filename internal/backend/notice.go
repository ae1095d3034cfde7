package backend

import (
	"errors"
	"net/http"

	"nexthire/chat/internal/localization"
)

// Notice maps a client error onto the localized notice shown to the user.
func Notice(err error) string {
	var se *StatusError
	switch {
	case errors.Is(err, ErrUnauthorized):
		return localization.SessionExpired
	case errors.Is(err, ErrBackendUnavailable):
		return localization.ServerError
	case errors.As(err, &se):
		switch {
		case se.Status == http.StatusForbidden:
			return localization.Forbidden
		case se.Status == http.StatusNotFound:
			return localization.NotFound
		case se.Status >= http.StatusInternalServerError:
			return localization.ServerError
		}
	}
	return localization.NetworkError
}
