package pakgo

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/hupe1980/pakgo/core"
	"github.com/hupe1980/pakgo/query"
	"golang.org/x/sync/errgroup"
)

// Get retrieves the record behind ptr as a T. The pointer is bounds-checked
// against the data segment and its type tag is verified against T before any
// decoding happens.
//
// The returned value is always owned: record bytes are copied out of the
// backing storage before decoding, so results stay valid after the Reader is
// closed.
func Get[T any](r *Reader, ptr core.Pointer) (T, error) {
	start := time.Now()
	v, err := getRecord[T](r, ptr)
	duration := time.Since(start)
	err = translateError(err)
	r.opts.metrics.RecordGet(duration, err)
	r.opts.logger.LogGet(ptr, err)
	return v, err
}

func getRecord[T any](r *Reader, ptr core.Pointer) (T, error) {
	var out T

	if want := TypeTagFor[T](); ptr.TypeTag != want {
		return out, &TypeMismatchError{
			Want: fmt.Sprintf("%s (tag %#x)", typeName(reflect.TypeFor[T]()), want),
			Got:  fmt.Sprintf("tag %#x", ptr.TypeTag),
		}
	}

	data, err := r.recordBytes(ptr)
	if err != nil {
		return out, err
	}
	if err := decodeRecord(data, &out, r.opts.codec); err != nil {
		return out, &DecodeError{Type: typeName(reflect.TypeFor[T]()), cause: err}
	}
	return out, nil
}

// QueryAs evaluates q and decodes every matching record as a T, in pointer
// order. The first failure aborts the whole call; there are no partial
// results.
//
// Decoding runs sequentially unless WithDecodeConcurrency raises the bound,
// in which case records decode in parallel while the result order stays
// deterministic.
func QueryAs[T any](ctx context.Context, r *Reader, q query.Query) ([]T, error) {
	ptrs, err := r.Query(q)
	if err != nil {
		return nil, err
	}
	if len(ptrs) == 0 {
		return nil, nil
	}

	out := make([]T, len(ptrs))
	if r.opts.decodeConcurrency <= 1 || len(ptrs) == 1 {
		for i, ptr := range ptrs {
			v, err := getRecord[T](r, ptr)
			if err != nil {
				return nil, translateError(err)
			}
			out[i] = v
		}
		return out, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.decodeConcurrency)
	for i, ptr := range ptrs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := getRecord[T](r, ptr)
			if err != nil {
				return translateError(err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
