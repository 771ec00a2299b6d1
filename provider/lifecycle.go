package provider

import (
	"context"
	"errors"
)

// Initializable is implemented by providers that need setup before serving,
// such as creating the Qdrant collection or migrating the SQL schema.
type Initializable interface {
	Init(ctx context.Context) error
}

// Closeable is implemented by providers that hold connections.
type Closeable interface {
	Close(ctx context.Context) error
}

// CloseAll closes every value that implements Closeable and joins the errors.
func CloseAll(ctx context.Context, values ...any) error {
	var errs []error
	for _, v := range values {
		if c, ok := v.(Closeable); ok {
			errs = append(errs, c.Close(ctx))
		}
	}
	return errors.Join(errs...)
}
