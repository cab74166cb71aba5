package relay

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Endpoint describes one domain API operation: an HTTP method and a path
// template whose {name} segments are filled from path arguments.
type Endpoint struct {
	Operation string
	Method    string
	Path      string
}

// The domain API surface the experience layer calls.
var (
	CreateCustomer        = Endpoint{Operation: "createCustomer", Method: http.MethodPost, Path: "/customers/"}
	GetCustomer           = Endpoint{Operation: "getCustomer", Method: http.MethodGet, Path: "/customers/{id}"}
	CreateOrder           = Endpoint{Operation: "createOrder", Method: http.MethodPost, Path: "/customers/{customerId}/orders/"}
	ListOrdersForCustomer = Endpoint{Operation: "listOrdersForCustomer", Method: http.MethodGet, Path: "/customers/{id}/orders"}
)

// Expand substitutes every {name} segment with the path-escaped argument.
// A missing or empty argument is an error.
func (e Endpoint) Expand(args map[string]string) (string, error) {
	var b strings.Builder
	rest := e.Path
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("path template %q: unterminated placeholder", e.Path)
		}
		name := rest[open+1 : open+end]
		v := args[name]
		if v == "" {
			return "", fmt.Errorf("path template %q: missing argument %q", e.Path, name)
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(v))
		rest = rest[open+end+1:]
	}
}

// joinPath appends an escaped path to a base URL's escaped path, keeping
// the base's stage prefix and exactly one slash between them.
func joinPath(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
