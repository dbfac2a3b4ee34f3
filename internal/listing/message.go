package listing

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jmylchreest/kinoteka/pkg/catalog"
	"github.com/jmylchreest/kinoteka/pkg/httpclient"
)

// Message turns a fetch error into the text shown in the dismissible error
// banner. A nil error or a cancellation yields "".
func Message(err error) string {
	var (
		apiErr *catalog.APIError
		netErr net.Error
	)

	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return ""
	case errors.Is(err, httpclient.ErrCircuitOpen):
		return "Serwis katalogu jest chwilowo niedostępny. Spróbuj ponownie za chwilę."
	case errors.Is(err, context.DeadlineExceeded):
		return "Serwer nie odpowiedział na czas."
	case errors.As(err, &apiErr):
		return fmt.Sprintf("Błąd serwera (%d): %s", apiErr.StatusCode, apiErr.Message())
	case errors.Is(err, httpclient.ErrResponseTooLarge):
		return "Odpowiedź serwera jest zbyt duża."
	case errors.Is(err, httpclient.ErrMaxRetries), errors.As(err, &netErr):
		return "Nie udało się połączyć z serwerem katalogu."
	default:
		return "Nie udało się pobrać listy."
	}
}
