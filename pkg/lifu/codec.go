package lifu

import (
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DefaultCharset — кодировка строк прошивки по умолчанию.
const DefaultCharset = "iso-8859-1"

// Codec перекодирует строки протокола между UTF-8 и кодировкой устройства.
type Codec struct {
	label string
	enc   encoding.Encoding
}

// NewCodec создает кодек по метке кодировки ("iso-8859-1", "windows-1251", "utf-8" ...).
func NewCodec(label string) (*Codec, error) {
	if label == "" {
		return &Codec{label: DefaultCharset, enc: charmap.ISO8859_1}, nil
	}
	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("неизвестная кодировка %q", label)
	}
	return &Codec{label: name, enc: enc}, nil
}

// Label возвращает каноническое имя кодировки.
func (c *Codec) Label() string {
	return c.label
}

// Encode переводит строку из UTF-8 в кодировку устройства.
func (c *Codec) Encode(s string) ([]byte, error) {
	res, _, err := transform.Bytes(c.enc.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования в %s: %w", c.label, err)
	}
	return res, nil
}

// Decode переводит байты устройства в UTF-8.
func (c *Codec) Decode(b []byte) (string, error) {
	res, _, err := transform.Bytes(c.enc.NewDecoder(), b)
	if err != nil {
		return "", fmt.Errorf("ошибка декодирования из %s: %w", c.label, err)
	}
	return string(res), nil
}

// NewReader оборачивает поток устройства декодером в UTF-8.
func (c *Codec) NewReader(r io.Reader) (io.Reader, error) {
	if c.label == DefaultCharset {
		return transform.NewReader(r, c.enc.NewDecoder()), nil
	}
	return charset.NewReaderLabel(c.label, r)
}
