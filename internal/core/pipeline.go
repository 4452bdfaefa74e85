/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// pipeline.go: Chunked stage pipeline for go-fcrypt
package core

import (
	"bufio"
	"context"
	"errors"
	"io"

	crypto "github.com/gitrgoliveira/go-fcrypt/internal/crypto"
)

// Finalizer is implemented by every pipeline stage. Finalize flushes whatever
// the stage still holds into the next stage; it must run exactly once, after
// the last chunk.
type Finalizer interface {
	Finalize() error
}

// Stage is a push transform: each Write processes the next chunk and forwards
// the result downstream.
type Stage interface {
	io.Writer
	Finalizer
}

// Pipeline moves data from src to head one chunk at a time through a single
// reusable buffer, then finalizes its stages innermost first.
//
//	encrypt: file -> compress -> cbc encrypt -> sink
//	decrypt: file -> cbc decrypt -> inflate -> sink
type Pipeline struct {
	src   io.Reader
	head  io.Writer
	buf   []byte
	order []Finalizer
}

// NewPipeline builds a pipeline copying src into head with buf. order lists
// the stages in the sequence they must be finalized, innermost first.
func NewPipeline(src io.Reader, head io.Writer, buf []byte, order ...Finalizer) *Pipeline {
	return &Pipeline{src: src, head: head, buf: buf, order: order}
}

// Run copies src to head until EOF. It does not finalize.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return crypto.ErrContextCanceled
		}

		n, err := p.src.Read(p.buf)
		if n > 0 {
			if _, werr := p.head.Write(p.buf[:n]); werr != nil {
				return werr
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Finalize finalizes every stage in order and stops at the first failure.
func (p *Pipeline) Finalize() error {
	for _, f := range p.order {
		if err := f.Finalize(); err != nil {
			return err
		}
	}
	return nil
}

// sinkStage buffers output for the underlying writer.
type sinkStage struct {
	bw *bufio.Writer
}

func newSinkStage(dst io.Writer, size int) *sinkStage {
	return &sinkStage{bw: bufio.NewWriterSize(dst, size)}
}

func (s *sinkStage) Write(p []byte) (int, error) {
	n, err := s.bw.Write(p)
	if err != nil {
		return n, crypto.WrapIO("write output", err)
	}
	return n, nil
}

// Finalize flushes buffered output.
func (s *sinkStage) Finalize() error {
	if err := s.bw.Flush(); err != nil {
		return crypto.WrapIO("flush output", err)
	}
	return nil
}

// newEncryptPipeline wires src -> compress -> encrypt -> dst.
func newEncryptPipeline(params CipherParams, src io.Reader, sink *sinkStage, level int, buf []byte) (*Pipeline, error) {
	enc, err := newCBCWriter(params, sink)
	if err != nil {
		return nil, err
	}
	comp, err := newCompressStage(enc, level)
	if err != nil {
		return nil, err
	}
	return NewPipeline(src, comp, buf, comp, enc, sink), nil
}

// newDecryptPipeline wires src -> decrypt -> inflate -> dst.
func newDecryptPipeline(params CipherParams, src io.Reader, sink *sinkStage, buf []byte) (*Pipeline, error) {
	dec, err := newCBCReader(params, src, len(buf))
	if err != nil {
		return nil, err
	}
	inf := newInflateSource(dec)
	return NewPipeline(inf, sink, buf, inf, dec, sink), nil
}

// progressReader reports how much of an input of known size has been read,
// at most once per 20% step.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	next     int64
	step     int64
	callback func(float64)
}

func newProgressReader(r io.Reader, total int64, cb func(float64)) io.Reader {
	if cb == nil || total <= 0 {
		return r
	}
	return &progressReader{r: r, total: total, step: total / 5, callback: cb}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.read >= p.next && p.read < p.total {
		p.callback(float64(p.read) / float64(p.total))
		p.next += p.step
		if p.step == 0 {
			p.next = p.read + 1
		}
	}
	return n, err
}

var (
	_ Stage     = (*compressStage)(nil)
	_ Stage     = (*cbcWriter)(nil)
	_ Stage     = (*sinkStage)(nil)
	_ Finalizer = (*cbcReader)(nil)
	_ Finalizer = (*inflateSource)(nil)
)
