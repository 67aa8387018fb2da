package result

import "net/http"

// StatusPriority ranks a status code when several errors compete to become
// the response status; lower ranks win.
func StatusPriority(code int) int {
	switch {
	case code >= 500 && code <= 599:
		return 1
	case code == http.StatusConflict, code == http.StatusTooManyRequests:
		return 2
	case code == http.StatusNotFound:
		return 3
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return 4
	case code >= 400 && code <= 499:
		return 5
	case code >= 300 && code <= 399:
		return 6
	case code >= 200 && code <= 299:
		return 7
	case code >= 100 && code <= 199:
		return 8
	default:
		return 9
	}
}

// SelectMain returns the error whose status code ranks highest. The first of
// equally ranked errors wins. With no errors it returns an Unknown error.
func SelectMain(errs []Error) Error {
	if len(errs) == 0 {
		return Unknown("request failed without an error")
	}

	main := errs[0]
	for _, e := range errs[1:] {
		if StatusPriority(e.StatusCode()) < StatusPriority(main.StatusCode()) {
			main = e
		}
	}
	return main
}
