package seoshell

import (
	"io"
	"mime"
	"net/http"

	"github.com/satinau/seoshell/seo"
)

// injectWriter pipes a 200 text/html body through a rewrite plan. Any other
// response passes through unchanged.
type injectWriter struct {
	http.ResponseWriter

	plan        seo.Plan
	wroteHeader bool
	closed      bool
	pw          *io.PipeWriter
	done        chan error
}

func newInjectWriter(w http.ResponseWriter, plan seo.Plan) *injectWriter {
	return &injectWriter{ResponseWriter: w, plan: plan}
}

func (w *injectWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	h := w.Header()
	if code != http.StatusOK || !isHTML(h.Get("Content-Type")) {
		w.ResponseWriter.WriteHeader(code)
		return
	}
	h.Del("Content-Length")
	h.Del("ETag")
	h.Del("Last-Modified")
	h.Del("Accept-Ranges")
	h.Set("Cache-Control", "public, max-age=600")
	w.ResponseWriter.WriteHeader(code)

	pr, pw := io.Pipe()
	w.pw = pw
	w.done = make(chan error, 1)
	go func() {
		err := w.plan.Apply(w.ResponseWriter, pr)
		pr.CloseWithError(err)
		w.done <- err
	}()
}

func (w *injectWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.pw == nil {
		return w.ResponseWriter.Write(b)
	}
	return w.pw.Write(b)
}

// Close flushes the pipe and waits for the rewrite to finish. It is safe to
// call more than once.
func (w *injectWriter) Close() error {
	if w.pw == nil || w.closed {
		return nil
	}
	w.closed = true
	w.pw.Close()
	return <-w.done
}

// Injected reports whether the body went through the plan.
func (w *injectWriter) Injected() bool {
	return w.pw != nil
}

func (w *injectWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "text/html"
}
