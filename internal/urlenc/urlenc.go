// Package urlenc compresses a structure+sequence pair into a URL-safe
// share-link token. Adapted from lib/urlenc/urlenc.go: same
// flate.NewWriterDict/base64.URLEncoding scheme, with the compression
// dictionary reseeded for this grammar's reserved characters instead of
// D2's keyword set.
package urlenc

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"io"
	"strings"

	"github.com/rnaplot/rnaplot/internal/errutil"
)

// compressionDict primes flate with the bytes a dot-bracket(-plus)
// structure string is built from, so short structures compress well
// despite flate's window needing repetition to find.
const compressionDict = "().+" +
	"((((((((....))))))))" +
	"((((....))))((((....))))" +
	"ACGUacgu"

// payload joins structure and sequence with a separator the grammar itself
// never produces, so Decode can split unambiguously.
const separator = "\x00"

// Encode compresses "structure\x00sequence" into a URL-safe base64 token.
func Encode(structure, sequence string) (_ string, err error) {
	defer errutil.Errorf(&err, "encode share link")

	raw := structure + separator + sequence

	var b bytes.Buffer
	zw, err := flate.NewWriterDict(&b, flate.BestCompression, []byte(compressionDict))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(zw, strings.NewReader(raw)); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}

	return base64.URLEncoding.EncodeToString(b.Bytes()), nil
}

// Decode reverses Encode, returning the original structure and sequence.
func Decode(token string) (structure, sequence string, err error) {
	defer errutil.Errorf(&err, "decode share link")

	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", "", err
	}

	zr := flate.NewReaderDict(bytes.NewReader(decoded), []byte(compressionDict))
	defer zr.Close()

	var b bytes.Buffer
	if _, err := io.Copy(&b, zr); err != nil {
		return "", "", err
	}

	parts := strings.SplitN(b.String(), separator, 2)
	if len(parts) != 2 {
		return "", "", errutil.Wrap(io.ErrUnexpectedEOF, "malformed share token")
	}
	return parts[0], parts[1], nil
}
