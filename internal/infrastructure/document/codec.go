package document

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/unitcost/backend/internal/domain"
)

// Codec encodes and decodes session documents in one file format
type Codec interface {
	Name() string
	Encode(w io.Writer, session *domain.Session) error
	Decode(r io.Reader) (*domain.Session, error)
}

// CodecFor picks a codec from the file extension. XML, the format of the
// desktop application's files, is used for unknown extensions.
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSONCodec{}
	case ".msgpack", ".mp":
		return MsgpackCodec{}
	default:
		return XMLCodec{}
	}
}

// XMLCodec reads and writes <session> documents
type XMLCodec struct{}

func (XMLCodec) Name() string { return "xml" }

func (XMLCodec) Encode(w io.Writer, session *domain.Session) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(toDocument(session)); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Decode checks the root element before decoding anything else
func (XMLCodec) Decode(r io.Reader) (*domain.Session, error) {
	dec := xml.NewDecoder(r)

	var start xml.StartElement
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: no root element", domain.ErrParse)
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			start = se
			break
		}
	}

	if start.Name.Local != rootTag {
		return nil, fmt.Errorf("%w: root element is <%s>, want <%s>", domain.ErrInvalidFormat, start.Name.Local, rootTag)
	}

	var doc sessionDocument
	if err := dec.DecodeElement(&doc, &start); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	return fromDocument(&doc)
}

// JSONCodec stores the document as {"session": {...}}
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Encode(w io.Writer, session *domain.Session) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(envelope{Session: toDocument(session)})
}

func (JSONCodec) Decode(r io.Reader) (*domain.Session, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidFormat, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	if env.Session == nil {
		return nil, fmt.Errorf("%w: missing %q object", domain.ErrInvalidFormat, rootTag)
	}
	return fromDocument(env.Session)
}

// MsgpackCodec stores the same envelope as JSONCodec in MessagePack
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return "msgpack" }

func (MsgpackCodec) Encode(w io.Writer, session *domain.Session) error {
	return msgpack.NewEncoder(w).Encode(envelope{Session: toDocument(session)})
}

func (MsgpackCodec) Decode(r io.Reader) (*domain.Session, error) {
	var env envelope
	if err := msgpack.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	if env.Session == nil {
		return nil, fmt.Errorf("%w: missing %q map", domain.ErrInvalidFormat, rootTag)
	}
	return fromDocument(env.Session)
}
