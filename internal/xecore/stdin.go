// SPDX-License-Identifier: MPL-2.0

package xecore

import (
	"bytes"
	"io"
)

// StdinSource abstracts the three ways a Request may supply standard input:
// absent, a fully-materialised byte source (string or []byte), or a lazy
// io.Reader. The local and SSH adapters stream from it; the container and
// cluster adapters read it fully before invoking their client.
type StdinSource interface {
	// Reader returns a fresh io.Reader over the stdin content. Called at
	// most once per execution attempt; retried attempts call it again, so
	// a StdinFromReader factory that returns the same one-shot io.Reader
	// on every call is only safe for single-attempt requests.
	Reader() io.Reader
	isStdinSource()
}

type stdinString string

func (s stdinString) Reader() io.Reader { return bytes.NewReader([]byte(s)) }
func (stdinString) isStdinSource()      {}

type stdinBytes []byte

func (s stdinBytes) Reader() io.Reader { return bytes.NewReader(s) }
func (stdinBytes) isStdinSource()      {}

type stdinReaderFunc func() io.Reader

func (s stdinReaderFunc) Reader() io.Reader { return s() }
func (stdinReaderFunc) isStdinSource()      {}

// StdinString wraps a string as a StdinSource.
func StdinString(s string) StdinSource { return stdinString(s) }

// StdinBytes wraps a byte slice as a StdinSource.
func StdinBytes(b []byte) StdinSource { return stdinBytes(b) }

// StdinFromReader wraps a factory function producing a fresh io.Reader on
// each call, modelling the spec's "lazy byte sequence" stdin variant.
func StdinFromReader(open func() io.Reader) StdinSource { return stdinReaderFunc(open) }
