// Package shoppinglist renders the plain text shopping list download.
package shoppinglist

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"foodgram/internal/shopping"
)

// DefaultHeader is the first line of the list when none is configured.
const DefaultHeader = "Список ингредиентов:"

// Component writes header followed by one "{name} {amount} {unit}" line per
// item. Lines are separated by "\n" with no trailing newline.
func Component(header string, items []shopping.Item) templ.Component {
	if header == "" {
		header = DefaultHeader
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(header)
		for _, item := range items {
			b.WriteByte('\n')
			b.WriteString(item.Name)
			b.WriteByte(' ')
			b.WriteString(strconv.FormatInt(item.Amount, 10))
			b.WriteByte(' ')
			b.WriteString(item.Unit)
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}
