package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	rendered []int
	closed   bool
	err      error
}

func (s *stubRenderer) RenderPage(n int) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.rendered = append(s.rendered, n)
	return []byte{byte(n)}, nil
}

func (s *stubRenderer) Close() error {
	s.closed = true
	return nil
}

type stubRecognizer struct {
	closed bool
}

func (s *stubRecognizer) Recognize(image []byte) (string, error) {
	return "page text", nil
}

func (s *stubRecognizer) Close() error {
	s.closed = true
	return nil
}

func TestEngineInitializesLazily(t *testing.T) {
	calls := 0
	rend, rec := &stubRenderer{}, &stubRecognizer{}
	e := newEngine(
		func() (PageRenderer, error) {
			calls++
			return rend, nil
		},
		func() (TextRecognizer, error) { return rec, nil },
	)
	assert.Equal(t, 0, calls)

	text, err := e.PageText(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "page text", text)

	_, err = e.PageText(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, []int{2, 5}, rend.rendered)

	require.NoError(t, e.Close())
	assert.True(t, rend.closed)
	assert.True(t, rec.closed)
}

func TestEngineInitFailureIsSticky(t *testing.T) {
	rend := &stubRenderer{}
	e := newEngine(
		func() (PageRenderer, error) { return rend, nil },
		func() (TextRecognizer, error) { return nil, errors.New("tesseract missing") },
	)

	_, err := e.PageText(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tesseract missing")
	assert.True(t, rend.closed, "renderer is released when the recognizer cannot start")

	_, err = e.PageText(context.Background(), 2)
	assert.Error(t, err)
	assert.NoError(t, e.Close())
}

func TestEngineRenderError(t *testing.T) {
	e := newEngine(
		func() (PageRenderer, error) { return &stubRenderer{err: errors.New("bad page")}, nil },
		func() (TextRecognizer, error) { return &stubRecognizer{}, nil },
	)
	_, err := e.PageText(context.Background(), 1)
	assert.EqualError(t, err, "bad page")
}

func TestEngineCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newEngine(
		func() (PageRenderer, error) {
			t.Fatal("renderer must not be created")
			return nil, nil
		},
		func() (TextRecognizer, error) { return &stubRecognizer{}, nil },
	)
	_, err := e.PageText(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloseWithoutUse(t *testing.T) {
	assert.NoError(t, NewEngine("unused.pdf", Options{}).Close())
}
