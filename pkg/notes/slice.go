package notes

import "context"

// SliceSource streams an in-memory note set, mainly for tests and reruns of a
// known subset.
type SliceSource struct {
	Items []Note
}

func NewSliceSource(items []Note) *SliceSource {
	return &SliceSource{Items: items}
}

func (s *SliceSource) Len() int {
	return len(s.Items)
}

func (s *SliceSource) Notes(ctx context.Context) (<-chan Note, <-chan error) {
	noteCh := make(chan Note)
	errCh := make(chan error, 1)
	go func() {
		defer close(noteCh)
		defer close(errCh)
		for _, note := range s.Items {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case noteCh <- note:
			}
		}
	}()
	return noteCh, errCh
}
