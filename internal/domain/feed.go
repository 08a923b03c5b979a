package domain

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"

	"golang.org/x/net/html/charset"
)

type rssDocument struct {
	Channel *struct {
		Items []Item `xml:"item"`
	} `xml:"channel"`
}

// ParseFeed decodes an RSS document and returns the channel's items in
// document order. A document without a channel yields no items and no error.
func ParseFeed(body []byte) ([]Item, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyFeed
	}

	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel

	var doc rssDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	if err := drain(dec); err != nil {
		return nil, &ParseError{Err: err}
	}

	if doc.Channel == nil {
		return []Item{}, nil
	}
	return doc.Channel.Items, nil
}

// drain consumes whatever follows the root element so trailing garbage is
// reported as malformed input rather than silently ignored.
func drain(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if _, ok := tok.(xml.StartElement); ok {
			return errors.New("junk after document element")
		}
	}
}
