// Package multicast carries source samples as UDP multicast datagrams.
// Each datagram is "<source id>\n<value>".
package multicast

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultGroup is the multicast group and port used by sources and the graph daemon.
const DefaultGroup = "224.0.0.114:7070"

// maxDatagram bounds a single read.
const maxDatagram = 1500

// Datagram is one decoded sample.
type Datagram struct {
	Source string
	Value  string
}

// FormatPayload encodes an integer sample for source.
func FormatPayload(source string, value int64) []byte {
	return []byte(source + "\n" + strconv.FormatInt(value, 10))
}

// ParseDatagram decodes a payload. The value is kept as text; the graph
// coerces it when an operator reads it.
func ParseDatagram(b []byte) (Datagram, error) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return Datagram{}, errors.New("missing newline separator")
	}
	source := strings.TrimSpace(string(b[:i]))
	if source == "" {
		return Datagram{}, errors.New("empty source id")
	}
	return Datagram{
		Source: source,
		Value:  strings.TrimSpace(string(b[i+1:])),
	}, nil
}

// Sender transmits payloads to the multicast group.
type Sender interface {
	Send(payload []byte) error
	Close() error
}

func (d Datagram) String() string {
	return fmt.Sprintf("%s=%s", d.Source, d.Value)
}
